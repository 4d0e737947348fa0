package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dmorales/farmapos-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura: resumen del inventario por lotes y
// verificación de consistencia Stock Ledger vs suma de lotes.
type ReportRepo struct {
	q Querier
}

func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// GetBatchInventorySummary agrega lotes activos, lotes próximos a vencer y el
// valor de inventario (Σ quantity_remaining × unit_cost), con desglose por producto.
func (r *ReportRepo) GetBatchInventorySummary(ctx context.Context, expiryCutoff time.Time) (*repository.BatchInventorySummary, error) {
	var summary repository.BatchInventorySummary
	err := r.q.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE quantity_remaining > 0),
			count(*) FILTER (WHERE quantity_remaining > 0 AND expiration_date <= $1),
			COALESCE(sum(quantity_remaining * unit_cost), 0)
		FROM batches`, expiryCutoff).Scan(
		&summary.TotalActiveBatches,
		&summary.ExpiringWithinDays,
		&summary.TotalInventoryValue,
	)
	if err != nil {
		return nil, fmt.Errorf("batch inventory summary: %w", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT b.product_id, p.name, count(*), COALESCE(sum(b.quantity_remaining), 0)
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE b.quantity_remaining > 0
		GROUP BY b.product_id, p.name
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("batch summary by product: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p repository.ProductBatchSummary
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.BatchCount, &p.TotalRemaining); err != nil {
			return nil, fmt.Errorf("scan product summary: %w", err)
		}
		summary.Products = append(summary.Products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetStockDivergences devuelve los productos con seguimiento por lote cuyo
// saldo agregado difiere de Σ quantity_remaining. Un producto sin fila en
// stock_levels cuenta como saldo cero.
func (r *ReportRepo) GetStockDivergences(ctx context.Context) ([]repository.StockDivergence, error) {
	rows, err := r.q.Query(ctx, `
		SELECT b.product_id, p.name,
			COALESCE(sl.quantity, 0) AS stock_level,
			COALESCE(sum(b.quantity_remaining), 0) AS batch_remaining
		FROM batches b
		JOIN products p ON p.id = b.product_id
		LEFT JOIN stock_levels sl ON sl.product_id = b.product_id
		GROUP BY b.product_id, p.name, sl.quantity
		HAVING COALESCE(sl.quantity, 0) <> COALESCE(sum(b.quantity_remaining), 0)
		ORDER BY p.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("stock divergences: %w", err)
	}
	defer rows.Close()
	var list []repository.StockDivergence
	for rows.Next() {
		var d repository.StockDivergence
		if err := rows.Scan(&d.ProductID, &d.ProductName, &d.StockLevel, &d.BatchRemaining); err != nil {
			return nil, fmt.Errorf("scan divergence: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
