package entity

import "time"

// Tipos de movimiento de lote.
const (
	MovementTypeIn         = "in"         // entrada
	MovementTypeOut        = "out"        // salida
	MovementTypeAdjustment = "adjustment" // ajuste (fija NewQuantity directamente)
)

// Razones de movimiento generadas por el motor.
const (
	ReasonBatchCreation = "batch_creation"
	ReasonSale          = "sale"
	ReasonSaleReversal  = "sale_reversal"
)

// StockMovement es una entrada inmutable del libro de auditoría de lotes.
// Quantity siempre es positiva; el tipo indica la dirección.
// PreviousQuantity y NewQuantity deben abrazar el saldo del lote en ese
// instante: son la fuente de verdad para reconstruir quantity_remaining.
type StockMovement struct {
	ID               string
	BatchID          string
	Type             string // in, out, adjustment
	Quantity         int64
	PreviousQuantity int64
	NewQuantity      int64
	Reason           string
	Reference        string // ID de venta, orden de compra, nota de ajuste, etc.
	OccurredAt       time.Time
	CreatedBy        string // UserID
}
