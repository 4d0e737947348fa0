package repository

import "github.com/dmorales/farmapos-api/internal/domain/entity"

// StockMovementRepository define el puerto del libro de movimientos de lote.
// El libro es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByBatch(batchID string) ([]*entity.StockMovement, error)
	// ListByReference devuelve los movimientos que referencian un documento
	// (ej. el ID de una venta), en orden de ocurrencia.
	ListByReference(reference string) ([]*entity.StockMovement, error)
	CountByBatch(batchID string) (int64, error)
}
