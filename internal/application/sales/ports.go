package sales

import (
	"context"
	"time"

	"github.com/dmorales/farmapos-api/internal/application/dto"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
	"github.com/dmorales/farmapos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que incluye los
// repositorios de ventas y de inventario. Una venta, sus partidas y sus
// efectos de stock persisten como una sola unidad de trabajo.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// BatchAllocator integra el procesador de ventas con el Batch Ledger usando
// los repositorios del caller (misma transacción). AllocateInTx cubre el
// decremento de un producto con seguimiento por lote (FIFO por vencimiento);
// ReverseSaleInTx devuelve a los lotes las salidas netas de una venta.
// Si retornan error, el caller debe hacer rollback.
type BatchAllocator interface {
	AllocateInTx(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		product *entity.Product,
		quantity int64,
		allowPartial bool,
		actorID string,
		now time.Time,
		reference string,
	) ([]dto.BatchAllocation, error)
	ReverseSaleInTx(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		saleID, actorID string,
		now time.Time,
	) (map[string]int64, error)
}
