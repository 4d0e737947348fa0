package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El motor de ventas lo consulta
// pero no lo muta, salvo la sincronización documentada de SalePrice cuando una
// venta registra un precio unitario distinto al de catálogo.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Description   string
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal
	TaxRate       decimal.Decimal // IVA México: 0 o 0.16
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
