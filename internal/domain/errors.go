package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrBatchHasMovements = errors.New("el lote tiene movimientos y no puede eliminarse")
)

// ShortageDetail detalle de faltante por producto dentro de una venta o asignación.
type ShortageDetail struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
	Shortage    int64  `json:"shortage"`
}

// InsufficientStockError bloquea una venta o asignación; lleva el reporte de
// faltantes por producto. El caller puede reintentar con auto_adjust_stock o
// con cantidades menores.
type InsufficientStockError struct {
	Items []ShortageDetail
}

func (e *InsufficientStockError) Error() string {
	if len(e.Items) == 1 {
		it := e.Items[0]
		return fmt.Sprintf("stock insuficiente para producto %s: solicitado %d, disponible %d", it.ProductID, it.Requested, it.Available)
	}
	return fmt.Sprintf("stock insuficiente en %d productos", len(e.Items))
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ConcurrencyConflictError indica que previous_quantity no coincide con el
// saldo actual del lote (lost update) o que expiró la espera por un bloqueo
// de fila. Es reintentable por el caller.
type ConcurrencyConflictError struct {
	BatchID  string
	Expected int64 // previous_quantity enviado por el caller
	Actual   int64 // saldo real del lote al momento de la operación
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("conflicto de concurrencia en lote %s: previous_quantity=%d, saldo actual=%d", e.BatchID, e.Expected, e.Actual)
}

// Unwrap permite errors.Is(err, ErrConflict).
func (e *ConcurrencyConflictError) Unwrap() error { return ErrConflict }
