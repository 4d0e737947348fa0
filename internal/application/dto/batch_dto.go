package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest entrada para registrar un lote recibido.
// ExpirationDate en formato YYYY-MM-DD.
type CreateBatchRequest struct {
	ProductID        string          `json:"product_id"`
	BatchNumber      string          `json:"batch_number"`
	ExpirationDate   string          `json:"expiration_date"`
	QuantityReceived int64           `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	SupplierID       string          `json:"supplier_id"`
	ReceivedAt       *time.Time      `json:"received_at"`
	Notes            string          `json:"notes"`
	ActorID          string          `json:"-"` // se toma del token en el handler
}

// BatchResponse lote en respuestas.
type BatchResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	BatchNumber       string          `json:"batch_number"`
	ExpirationDate    string          `json:"expiration_date"`
	QuantityReceived  int64           `json:"quantity_received"`
	QuantityRemaining int64           `json:"quantity_remaining"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	ReceivedAt        string          `json:"received_at"`
	Notes             string          `json:"notes,omitempty"`
}

// UpdateBatchRequest parche de metadatos de un lote. Campos nil no se tocan.
// Las cantidades no son parchables: solo cambian vía movimientos.
type UpdateBatchRequest struct {
	BatchID        string  `json:"-"` // de la URL
	BatchNumber    *string `json:"batch_number"`
	ExpirationDate *string `json:"expiration_date"` // YYYY-MM-DD
	Notes          *string `json:"notes"`
	ActorID        string  `json:"-"`
}

// BatchExpiryStatusResponse estado de vencimiento de un lote concreto.
// Status: expired | expiring_soon | valid.
type BatchExpiryStatusResponse struct {
	BatchID         string `json:"batch_id"`
	BatchNumber     string `json:"batch_number"`
	Valid           bool   `json:"valid"`
	Status          string `json:"status"`
	DaysUntilExpiry int    `json:"days_until_expiry"`
	ExpirationDate  string `json:"expiration_date"`
}

// RecordMovementRequest entrada para registrar un movimiento manual de lote.
// PreviousQuantity es la guarda optimista: debe coincidir con el saldo actual
// del lote o la operación falla con conflicto reintentable.
type RecordMovementRequest struct {
	BatchID          string `json:"-"` // de la URL
	Type             string `json:"type"` // in | out | adjustment
	Quantity         int64  `json:"quantity"`
	PreviousQuantity int64  `json:"previous_quantity"`
	NewQuantity      int64  `json:"new_quantity"` // solo adjustment
	Reason           string `json:"reason"`
	Reference        string `json:"reference"`
	ActorID          string `json:"-"`
}

// MovementResponse movimiento del libro de auditoría.
type MovementResponse struct {
	ID               string `json:"id"`
	BatchID          string `json:"batch_id"`
	Type             string `json:"type"`
	Quantity         int64  `json:"quantity"`
	PreviousQuantity int64  `json:"previous_quantity"`
	NewQuantity      int64  `json:"new_quantity"`
	Reason           string `json:"reason,omitempty"`
	Reference        string `json:"reference,omitempty"`
	OccurredAt       string `json:"occurred_at"`
	CreatedBy        string `json:"created_by,omitempty"`
}

// AllocateRequest entrada para asignar lotes a una venta (FIFO por vencimiento).
type AllocateRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	ActorID   string `json:"-"`
}

// BatchAllocation una asignación de cantidad contra un lote concreto.
type BatchAllocation struct {
	BatchID        string `json:"batch_id"`
	BatchNumber    string `json:"batch_number"`
	Quantity       int64  `json:"quantity"`
	ExpirationDate string `json:"expiration_date"`
}

// ProductBatchSummaryDTO desglose por producto del resumen de lotes.
type ProductBatchSummaryDTO struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	BatchCount     int64  `json:"batch_count"`
	TotalRemaining int64  `json:"total_quantity"`
}

// BatchSummaryResponse resumen global del inventario por lotes.
type BatchSummaryResponse struct {
	TotalActiveBatches  int64                    `json:"total_active_batches"`
	ExpiringWithinDays  int64                    `json:"expiring_soon"`
	ExpiryHorizonDays   int                      `json:"expiry_horizon_days"`
	TotalInventoryValue decimal.Decimal          `json:"total_inventory_value"`
	Products            []ProductBatchSummaryDTO `json:"batch_distribution"`
}

// StockDivergenceDTO discrepancia Stock Ledger vs Σ lotes para un producto.
type StockDivergenceDTO struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	StockLevel     int64  `json:"stock_level"`
	BatchRemaining int64  `json:"batch_remaining"`
	Difference     int64  `json:"difference"`
}
