package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductBatchSummary agregados por producto del Batch Ledger.
type ProductBatchSummary struct {
	ProductID      string
	ProductName    string
	BatchCount     int64
	TotalRemaining int64
}

// BatchInventorySummary agregados globales del Batch Ledger.
type BatchInventorySummary struct {
	TotalActiveBatches  int64
	ExpiringWithinDays  int64
	TotalInventoryValue decimal.Decimal // Σ quantity_remaining × unit_cost
	Products            []ProductBatchSummary
}

// StockDivergence discrepancia entre el Stock Ledger y la suma de lotes.
type StockDivergence struct {
	ProductID      string
	ProductName    string
	StockLevel     int64
	BatchRemaining int64
}

// ReportRepository consultas de solo lectura para el resumen de inventario
// por lotes y la verificación de consistencia.
type ReportRepository interface {
	// GetBatchInventorySummary agrega lotes activos, próximos a vencer
	// (vencimiento <= cutoff) y valor de inventario, más el desglose por producto.
	GetBatchInventorySummary(ctx context.Context, expiryCutoff time.Time) (*BatchInventorySummary, error)
	// GetStockDivergences devuelve los productos con seguimiento por lote cuyo
	// StockLevel difiere de Σ quantity_remaining.
	GetStockDivergences(ctx context.Context) ([]StockDivergence, error)
}
