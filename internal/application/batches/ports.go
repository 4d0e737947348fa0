package batches

import (
	"context"

	"github.com/dmorales/farmapos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el Batch Ledger:
// ninguna operación observa escrituras parciales de otra.
type TxRunner interface {
	RunBatch(ctx context.Context, fn func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}
