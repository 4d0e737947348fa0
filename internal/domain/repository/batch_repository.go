package repository

import (
	"time"

	"github.com/dmorales/farmapos-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes (Batch Ledger).
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Batch, error)
	// UpdateRemaining fija el saldo corriente del lote. Solo lo invoca el
	// registrador de movimientos: todo cambio de saldo lleva su movimiento.
	UpdateRemaining(id string, quantityRemaining int64) error
	// Update persiste los metadatos del lote (batch_number, expiration_date,
	// notes). Las cantidades solo cambian vía UpdateRemaining.
	Update(batch *entity.Batch) error
	ListByProduct(productID string) ([]*entity.Batch, error)
	// ListAvailableForUpdate devuelve los lotes con saldo > 0 de un producto,
	// ordenados por fecha de vencimiento ascendente (FIFO por vencimiento),
	// con bloqueo de fila para la asignación.
	ListAvailableForUpdate(productID string) ([]*entity.Batch, error)
	// CountByProduct permite distinguir productos con seguimiento por lote.
	CountByProduct(productID string) (int64, error)
	// ListExpiring devuelve lotes con saldo > 0 que vencen en o antes de cutoff,
	// ordenados por vencimiento.
	ListExpiring(cutoff time.Time) ([]*entity.Batch, error)
	Delete(id string) error
}
