package repository

import "github.com/dmorales/farmapos-api/internal/domain/entity"

// StockRepository define el puerto para el Stock Ledger (saldo agregado por producto).
// Las escrituras siempre ocurren dentro de una transacción.
type StockRepository interface {
	Get(productID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE). Si no existe
	// devuelve un saldo en cero; la fila se materializa en el primer Upsert.
	GetForUpdate(productID string) (*entity.StockLevel, error)
	Upsert(level *entity.StockLevel) error
}
