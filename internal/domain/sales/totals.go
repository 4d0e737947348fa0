package sales

import (
	"github.com/shopspring/decimal"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
)

// LineTotals calcula el subtotal e IVA de una partida (servicio de dominio).
// Subtotal = Cantidad·PrecioUnitario − Descuento. No se hace clamp: un
// descuento mayor que la línea produce subtotal e IVA negativos.
func LineTotals(quantity int64, unitPrice, discount, taxRate decimal.Decimal) (subtotal, taxAmount decimal.Decimal) {
	subtotal = decimal.NewFromInt(quantity).Mul(unitPrice).Sub(discount)
	taxAmount = subtotal.Mul(taxRate)
	return subtotal, taxAmount
}

// SaleTotals deriva los totales de la venta a partir de las sumas de partidas
// y el tipo de documento. Una remisión no causa IVA aunque las partidas lo
// tengan calculado.
func SaleTotals(itemsSubtotal, itemsTax decimal.Decimal, documentType string) (subtotal, taxAmount, total decimal.Decimal) {
	if documentType == entity.DocumentTypeRemission {
		return itemsSubtotal, decimal.Zero, itemsSubtotal
	}
	return itemsSubtotal, itemsTax, itemsSubtotal.Add(itemsTax)
}

// NormalizeTaxRate acepta tasas expresadas como fracción (0.16) o porcentaje
// (16) y devuelve siempre la fracción.
func NormalizeTaxRate(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(decimal.NewFromInt(100))
	}
	return rate
}
