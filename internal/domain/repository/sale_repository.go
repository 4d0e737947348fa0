package repository

import "github.com/dmorales/farmapos-api/internal/domain/entity"

// SaleRepository define el puerto de persistencia para ventas y partidas.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	GetItems(saleID string) ([]*entity.SaleItem, error)
	Update(sale *entity.Sale) error
	// DeleteItems elimina las partidas de una venta (reemplazo de items en update).
	DeleteItems(saleID string) error
	Delete(id string) error
	List(limit, offset int) ([]*entity.Sale, error)
	ListByClient(clientID string, limit, offset int) ([]*entity.Sale, error)
}
