package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemInput partida de entrada para crear/reemplazar items de una venta.
// UnitPrice en cero significa "usar el precio de catálogo".
type SaleItemInput struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// CreateSaleRequest entrada para crear una venta multi-partida.
// AutoAdjustStock: si el stock no alcanza, descuenta hasta cero en lugar de
// fallar con el reporte de faltantes.
type CreateSaleRequest struct {
	ClientID        string          `json:"client_id"`
	UserID          string          `json:"-"` // se toma del token en el handler
	DocumentType    string          `json:"document_type"` // invoice | remission
	Items           []SaleItemInput `json:"items"`
	AutoAdjustStock bool            `json:"auto_adjust_stock"`
	SaleDate        *time.Time      `json:"sale_date"`
	ShippingDate    *time.Time      `json:"shipping_date"`
	PaymentMethod   string          `json:"payment_method"`
	Notes           string          `json:"notes"`
}

// UpdateSaleRequest parche tipado para actualizar una venta: campos opcionales
// con nombre, aplicados por coincidencia exhaustiva (sin reflexión).
// Items en nil conserva las partidas actuales; no-nil las reemplaza por
// completo, revirtiendo primero los efectos de stock de las anteriores.
type UpdateSaleRequest struct {
	ClientID        *string         `json:"client_id"`
	DocumentType    *string         `json:"document_type"`
	ShippingDate    *time.Time      `json:"shipping_date"`
	ShippingStatus  *string         `json:"shipping_status"`
	PaymentStatus   *string         `json:"payment_status"`
	PaymentMethod   *string         `json:"payment_method"`
	Notes           *string         `json:"notes"`
	Items           []SaleItemInput `json:"items"`
	AutoAdjustStock bool            `json:"auto_adjust_stock"`
}

// SaleItemResponse partida en respuestas.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
}

// SaleResponse venta con partidas.
type SaleResponse struct {
	ID             string             `json:"id"`
	ClientID       string             `json:"client_id"`
	UserID         string             `json:"user_id"`
	DocumentType   string             `json:"document_type"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	Total          decimal.Decimal    `json:"total"`
	SaleDate       string             `json:"sale_date"`
	ShippingStatus string             `json:"shipping_status"`
	PaymentStatus  string             `json:"payment_status"`
	PaymentMethod  string             `json:"payment_method,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Items          []SaleItemResponse `json:"items"`
}
