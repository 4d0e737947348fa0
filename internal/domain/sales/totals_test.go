package sales_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/dmorales/farmapos-api/internal/domain/entity"
	"github.com/dmorales/farmapos-api/internal/domain/sales"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Caso de referencia: 5 piezas a $100 con $20 de descuento e IVA 16%
// → subtotal 480, IVA 76.80.
func TestLineTotals_VectorBase(t *testing.T) {
	subtotal, tax := sales.LineTotals(5, dec("100"), dec("20"), dec("0.16"))

	assert.True(t, subtotal.Equal(dec("480")), "subtotal: %s", subtotal)
	assert.True(t, tax.Equal(dec("76.80")), "iva: %s", tax)
}

// Un descuento mayor que la línea produce subtotal e IVA negativos
// (semántica de nota de crédito, sin clamp).
func TestLineTotals_DescuentoMayorQueLinea(t *testing.T) {
	subtotal, tax := sales.LineTotals(1, dec("50"), dec("80"), dec("0.16"))

	assert.True(t, subtotal.Equal(dec("-30")), "subtotal: %s", subtotal)
	assert.True(t, tax.Equal(dec("-4.80")), "iva: %s", tax)
}

func TestLineTotals_SinDescuentoNiIVA(t *testing.T) {
	subtotal, tax := sales.LineTotals(3, dec("45"), decimal.Zero, decimal.Zero)

	assert.True(t, subtotal.Equal(dec("135")))
	assert.True(t, tax.IsZero())
}

// Factura: total = subtotal + IVA. El escenario 100/5/20/16% da 116.
func TestSaleTotals_Factura(t *testing.T) {
	itemSubtotal, itemTax := sales.LineTotals(5, dec("25"), dec("5"), dec("0.16"))
	subtotal, tax, total := sales.SaleTotals(itemSubtotal, itemTax, entity.DocumentTypeInvoice)

	assert.True(t, subtotal.Equal(dec("120")))
	assert.True(t, tax.Equal(dec("19.20")))
	assert.True(t, total.Equal(subtotal.Add(tax)), "total debe ser subtotal + IVA")
	assert.True(t, total.Equal(dec("139.20")))
}

// Remisión: el IVA de las partidas no se traslada al documento.
func TestSaleTotals_RemisionSinIVA(t *testing.T) {
	subtotal, tax, total := sales.SaleTotals(dec("100"), dec("16"), entity.DocumentTypeRemission)

	assert.True(t, subtotal.Equal(dec("100")))
	assert.True(t, tax.IsZero(), "remisión no causa IVA")
	assert.True(t, total.Equal(dec("100")))
}

// NormalizeTaxRate acepta fracción o porcentaje.
func TestNormalizeTaxRate(t *testing.T) {
	assert.True(t, sales.NormalizeTaxRate(dec("0.16")).Equal(dec("0.16")))
	assert.True(t, sales.NormalizeTaxRate(dec("16")).Equal(dec("0.16")))
	assert.True(t, sales.NormalizeTaxRate(decimal.Zero).IsZero())
	assert.True(t, sales.NormalizeTaxRate(dec("1")).Equal(dec("1")), "tasa 1 se interpreta como fracción")
}
