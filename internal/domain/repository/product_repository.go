package repository

import (
	"github.com/shopspring/decimal"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos.
// El motor solo muta SalePrice (sincronización de precio documentada).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	// UpdateSalePrice actualiza solo el precio de venta (efecto colateral de una venta
	// con precio unitario distinto al de catálogo).
	UpdateSalePrice(productID string, price decimal.Decimal) error
}
