package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmorales/farmapos-api/internal/domain"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
	"github.com/dmorales/farmapos-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_id, batch_number, expiration_date, quantity_received,
		quantity_remaining, unit_cost, supplier_id, received_at, notes, created_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote. (product_id, batch_number) es único por constraint.
func (r *BatchRepo) Create(batch *entity.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	supplierID := (*string)(nil)
	if batch.SupplierID != "" {
		supplierID = &batch.SupplierID
	}
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductID, batch.BatchNumber, batch.ExpirationDate,
		batch.QuantityReceived, batch.QuantityRemaining, batch.UnitCost,
		supplierID, batch.ReceivedAt, batch.Notes, batch.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s del producto %s", domain.ErrDuplicate, batch.BatchNumber, batch.ProductID)
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID. Devuelve nil si no existe.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetForUpdate obtiene un lote y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// UpdateRemaining fija el saldo corriente del lote.
func (r *BatchRepo) UpdateRemaining(id string, quantityRemaining int64) error {
	query := `UPDATE batches SET quantity_remaining = $2 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantityRemaining)
	if err != nil {
		return fmt.Errorf("update batch remaining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update persiste los metadatos del lote; las cantidades no se tocan aquí.
func (r *BatchRepo) Update(batch *entity.Batch) error {
	query := `
		UPDATE batches
		SET batch_number = $2, expiration_date = $3, notes = $4
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.BatchNumber, batch.ExpirationDate, batch.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lote %s del producto %s", domain.ErrDuplicate, batch.BatchNumber, batch.ProductID)
		}
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct lista todos los lotes de un producto, vencimiento ascendente.
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE product_id = $1
		ORDER BY expiration_date ASC, created_at ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches by product: %w", err)
	}
	return r.scanList(rows)
}

// ListAvailableForUpdate lista los lotes con saldo de un producto en orden
// FIFO por vencimiento, con bloqueo de fila para la asignación.
func (r *BatchRepo) ListAvailableForUpdate(productID string) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE product_id = $1 AND quantity_remaining > 0
		ORDER BY expiration_date ASC, created_at ASC
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list available batches: %w", err)
	}
	return r.scanList(rows)
}

// CountByProduct cuenta los lotes del producto (con o sin saldo).
func (r *BatchRepo) CountByProduct(productID string) (int64, error) {
	var n int64
	err := r.q.QueryRow(context.Background(),
		`SELECT count(*) FROM batches WHERE product_id = $1`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count batches: %w", err)
	}
	return n, nil
}

// ListExpiring lista lotes con saldo que vencen en o antes de cutoff.
func (r *BatchRepo) ListExpiring(cutoff time.Time) ([]*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE quantity_remaining > 0 AND expiration_date <= $1
		ORDER BY expiration_date ASC`
	rows, err := r.q.Query(context.Background(), query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring batches: %w", err)
	}
	return r.scanList(rows)
}

// Delete elimina un lote. El caso de uso verifica antes que no tenga movimientos.
func (r *BatchRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BatchRepo) scanOne(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	var supplierID *string
	err := row.Scan(
		&b.ID, &b.ProductID, &b.BatchNumber, &b.ExpirationDate,
		&b.QuantityReceived, &b.QuantityRemaining, &b.UnitCost,
		&supplierID, &b.ReceivedAt, &b.Notes, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan batch: %w", err)
	}
	if supplierID != nil {
		b.SupplierID = *supplierID
	}
	return &b, nil
}

func (r *BatchRepo) scanList(rows pgx.Rows) ([]*entity.Batch, error) {
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		var supplierID *string
		if err := rows.Scan(
			&b.ID, &b.ProductID, &b.BatchNumber, &b.ExpirationDate,
			&b.QuantityReceived, &b.QuantityRemaining, &b.UnitCost,
			&supplierID, &b.ReceivedAt, &b.Notes, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		if supplierID != nil {
			b.SupplierID = *supplierID
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
