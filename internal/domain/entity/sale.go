package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento de venta.
const (
	DocumentTypeInvoice   = "invoice"   // factura: suma el IVA de cada partida
	DocumentTypeRemission = "remission" // nota de remisión: sin IVA
)

// Estados de envío y pago.
const (
	ShippingStatusPending   = "pending"
	ShippingStatusShipped   = "shipped"
	ShippingStatusDelivered = "delivered"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusPartial = "partial"
)

// Sale es la cabecera de una venta multi-partida. Es dueña de la lista
// ordenada de SaleItem (borrado en cascada).
// Invariantes: Subtotal = Σ item.Subtotal; TaxAmount = Σ item.TaxAmount
// (cero para remission); Total = Subtotal + TaxAmount.
type Sale struct {
	ID             string
	ClientID       string
	UserID         string
	DocumentType   string // invoice | remission
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	SaleDate       time.Time
	ShippingDate   *time.Time
	ShippingStatus string
	PaymentStatus  string
	PaymentMethod  string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
