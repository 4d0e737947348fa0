package entity

import "github.com/shopspring/decimal"

// SaleItem representa una partida de una venta.
// TaxRate es una fotografía del IVA del producto al momento de la venta, no
// una referencia viva al catálogo. Subtotal = Quantity·UnitPrice − Discount;
// un descuento mayor que la línea produce subtotal negativo (sin clamp,
// semántica de nota de crédito). TaxAmount = Subtotal·TaxRate.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	TaxRate   decimal.Decimal
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
}
