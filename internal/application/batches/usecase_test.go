package batches_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmorales/farmapos-api/internal/application/apptest"
	"github.com/dmorales/farmapos-api/internal/application/batches"
	"github.com/dmorales/farmapos-api/internal/application/dto"
	"github.com/dmorales/farmapos-api/internal/application/ports"
	"github.com/dmorales/farmapos-api/internal/domain"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newBatchUC(store *apptest.Store) *batches.UseCase {
	return batches.NewUseCase(
		&apptest.TxRunner{S: store},
		&apptest.ProductRepo{S: store},
		&apptest.BatchRepo{S: store},
		&apptest.MovementRepo{S: store},
		&apptest.SupplierRepo{S: store},
		&apptest.ReportRepo{S: store},
		nil,
		ports.NopAuditLogger{},
		30,
	)
}

func seedProduct(store *apptest.Store, id, name string) {
	store.Products[id] = entity.Product{
		ID: id, SKU: "SKU-" + id, Name: name,
		SalePrice: decimal.NewFromInt(50), TaxRate: decimal.Zero,
	}
}

// seedBatch inserta un lote directo en el store (sin movimiento de creación)
// y acredita el Stock Ledger para mantener la igualdad agregado == Σ lotes.
func seedBatch(store *apptest.Store, id, productID string, remaining int64, expiresIn time.Duration) {
	store.Batches[id] = entity.Batch{
		ID: id, ProductID: productID, BatchNumber: "B-" + id,
		ExpirationDate:    time.Now().Add(expiresIn),
		QuantityReceived:  remaining,
		QuantityRemaining: remaining,
		UnitCost:          decimal.NewFromInt(10),
		CreatedAt:         time.Now(),
	}
	level := store.Stock[productID]
	level.ProductID = productID
	level.Quantity += remaining
	store.Stock[productID] = level
}

// sumRemaining suma quantity_remaining de los lotes de un producto.
func sumRemaining(store *apptest.Store, productID string) int64 {
	var sum int64
	for _, b := range store.Batches {
		if b.ProductID == productID {
			sum += b.QuantityRemaining
		}
	}
	return sum
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateBatch
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBatch_EmiteMovimientoYAbonaStock(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	uc := newBatchUC(store)

	resp, err := uc.CreateBatch(context.Background(), dto.CreateBatchRequest{
		ProductID:        "p1",
		BatchNumber:      "L-001",
		ExpirationDate:   time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
		QuantityReceived: 100,
		UnitCost:         decimal.NewFromInt(28),
		ActorID:          "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.QuantityReceived)
	assert.Equal(t, int64(100), resp.QuantityRemaining, "remaining arranca igual a received")

	// Movimiento sintético de creación
	require.Len(t, store.Movements, 1)
	mov := store.Movements[0]
	assert.Equal(t, entity.MovementTypeIn, mov.Type)
	assert.Equal(t, entity.ReasonBatchCreation, mov.Reason)
	assert.Equal(t, int64(0), mov.PreviousQuantity)
	assert.Equal(t, int64(100), mov.NewQuantity)
	assert.Equal(t, "user-1", mov.CreatedBy)

	// Stock Ledger abonado en la misma operación
	assert.Equal(t, int64(100), store.Stock["p1"].Quantity)
}

func TestCreateBatch_CantidadCeroSinMovimiento(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	uc := newBatchUC(store)

	resp, err := uc.CreateBatch(context.Background(), dto.CreateBatchRequest{
		ProductID:        "p1",
		BatchNumber:      "L-VACIO",
		ExpirationDate:   "2027-01-31",
		QuantityReceived: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.QuantityRemaining)
	assert.Empty(t, store.Movements, "un lote vacío no genera movimiento")
	assert.Equal(t, int64(0), store.Stock["p1"].Quantity)
}

func TestCreateBatch_FechaInvalida(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	uc := newBatchUC(store)

	_, err := uc.CreateBatch(context.Background(), dto.CreateBatchRequest{
		ProductID:        "p1",
		BatchNumber:      "L-001",
		ExpirationDate:   "31/01/2027",
		QuantityReceived: 10,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateBatch_ProductoInexistente(t *testing.T) {
	store := apptest.NewStore()
	uc := newBatchUC(store)

	_, err := uc.CreateBatch(context.Background(), dto.CreateBatchRequest{
		ProductID:        "nope",
		BatchNumber:      "L-001",
		ExpirationDate:   "2027-01-31",
		QuantityReceived: 10,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBatch_NumeroDuplicadoPorProducto(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	uc := newBatchUC(store)

	in := dto.CreateBatchRequest{
		ProductID:        "p1",
		BatchNumber:      "L-001",
		ExpirationDate:   "2027-01-31",
		QuantityReceived: 10,
	}
	_, err := uc.CreateBatch(context.Background(), in)
	require.NoError(t, err)
	_, err = uc.CreateBatch(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordMovement_SalidaDescuentaLoteYAgregado(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 50, 24*time.Hour*365)
	uc := newBatchUC(store)

	resp, err := uc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		BatchID:          "b1",
		Type:             entity.MovementTypeOut,
		Quantity:         20,
		PreviousQuantity: 50,
		Reason:           "merma",
		ActorID:          "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50), resp.PreviousQuantity)
	assert.Equal(t, int64(30), resp.NewQuantity)
	assert.Equal(t, int64(30), store.Batches["b1"].QuantityRemaining)
	assert.Equal(t, int64(30), store.Stock["p1"].Quantity, "el agregado sigue al lote")
}

func TestRecordMovement_GuardaOptimista(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 50, 24*time.Hour*365)
	uc := newBatchUC(store)

	// El caller leyó 40 pero el lote tiene 50: conflicto reintentable
	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		BatchID:          "b1",
		Type:             entity.MovementTypeOut,
		Quantity:         10,
		PreviousQuantity: 40,
	})
	var conflict *domain.ConcurrencyConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(40), conflict.Expected)
	assert.Equal(t, int64(50), conflict.Actual)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, store.Movements, "sin movimiento tras el conflicto")
	assert.Equal(t, int64(50), store.Batches["b1"].QuantityRemaining)
}

func TestRecordMovement_SalidaMayorQueSaldo(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 10, 24*time.Hour*365)
	uc := newBatchUC(store)

	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		BatchID:          "b1",
		Type:             entity.MovementTypeOut,
		Quantity:         15,
		PreviousQuantity: 10,
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Items, 1)
	assert.Equal(t, int64(15), insufficient.Items[0].Requested)
	assert.Equal(t, int64(10), insufficient.Items[0].Available)
	assert.Equal(t, int64(5), insufficient.Items[0].Shortage)
	assert.Equal(t, int64(10), store.Batches["b1"].QuantityRemaining, "el saldo no cambia")
}

func TestRecordMovement_EntradaNoSuperaRecibido(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 50, 24*time.Hour*365)
	// simular consumo previo
	b := store.Batches["b1"]
	b.QuantityRemaining = 30
	store.Batches["b1"] = b
	uc := newBatchUC(store)

	// 30 + 25 > 50 recibido
	_, err := uc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		BatchID:          "b1",
		Type:             entity.MovementTypeIn,
		Quantity:         25,
		PreviousQuantity: 30,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordMovement_AjusteRegistraDeltaAbsoluto(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 50, 24*time.Hour*365)
	uc := newBatchUC(store)

	resp, err := uc.RecordMovement(context.Background(), dto.RecordMovementRequest{
		BatchID:          "b1",
		Type:             entity.MovementTypeAdjustment,
		NewQuantity:      35,
		PreviousQuantity: 50,
		Reason:           "conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), resp.Quantity, "adjustment registra |delta|")
	assert.Equal(t, int64(35), resp.NewQuantity)
	assert.Equal(t, int64(35), store.Stock["p1"].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// AllocateForSale (FIFO por vencimiento)
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_FIFOPorVencimiento(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	// b2 vence antes que b1 aunque b1 se insertó primero
	seedBatch(store, "b1", "p1", 10, 60*24*time.Hour)
	seedBatch(store, "b2", "p1", 5, 10*24*time.Hour)
	uc := newBatchUC(store)

	allocations, err := uc.AllocateForSale(context.Background(), dto.AllocateRequest{
		ProductID: "p1",
		Quantity:  8,
		ActorID:   "user-1",
	})
	require.NoError(t, err)

	// Primero se agota el lote más próximo a vencer (5), el resto del siguiente (3)
	require.Len(t, allocations, 2)
	assert.Equal(t, "b2", allocations[0].BatchID)
	assert.Equal(t, int64(5), allocations[0].Quantity)
	assert.Equal(t, "b1", allocations[1].BatchID)
	assert.Equal(t, int64(3), allocations[1].Quantity)

	assert.Equal(t, int64(0), store.Batches["b2"].QuantityRemaining)
	assert.Equal(t, int64(7), store.Batches["b1"].QuantityRemaining)
	assert.Equal(t, int64(7), store.Stock["p1"].Quantity)
	assert.Equal(t, sumRemaining(store, "p1"), store.Stock["p1"].Quantity,
		"agregado == Σ lotes tras asignar")

	// Cada lote consumido deja su movimiento out con razón sale
	require.Len(t, store.Movements, 2)
	for _, m := range store.Movements {
		assert.Equal(t, entity.MovementTypeOut, m.Type)
		assert.Equal(t, entity.ReasonSale, m.Reason)
	}
}

func TestAllocate_TodoONada(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 4, 60*24*time.Hour)
	seedBatch(store, "b2", "p1", 3, 10*24*time.Hour)
	uc := newBatchUC(store)

	_, err := uc.AllocateForSale(context.Background(), dto.AllocateRequest{
		ProductID: "p1",
		Quantity:  10,
	})
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Items, 1)
	assert.Equal(t, int64(10), insufficient.Items[0].Requested)
	assert.Equal(t, int64(7), insufficient.Items[0].Available)
	assert.Equal(t, int64(3), insufficient.Items[0].Shortage)

	// Cero movimientos, saldos intactos
	assert.Empty(t, store.Movements)
	assert.Equal(t, int64(4), store.Batches["b1"].QuantityRemaining)
	assert.Equal(t, int64(3), store.Batches["b2"].QuantityRemaining)
	assert.Equal(t, int64(7), store.Stock["p1"].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateBatch (solo metadatos)
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateBatch_ParcheDeMetadatos(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 50, 24*time.Hour*365)
	uc := newBatchUC(store)

	numero := "L-REETIQUETADO"
	fecha := "2028-03-15"
	notas := "reetiquetado por proveedor"
	resp, err := uc.UpdateBatch(context.Background(), dto.UpdateBatchRequest{
		BatchID:        "b1",
		BatchNumber:    &numero,
		ExpirationDate: &fecha,
		Notes:          &notas,
		ActorID:        "user-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "L-REETIQUETADO", resp.BatchNumber)
	assert.Equal(t, "2028-03-15", resp.ExpirationDate)
	assert.Equal(t, "reetiquetado por proveedor", resp.Notes)

	// Las cantidades no son parchables: recibido y saldo intactos
	b := store.Batches["b1"]
	assert.Equal(t, int64(50), b.QuantityReceived)
	assert.Equal(t, int64(50), b.QuantityRemaining)
	assert.Empty(t, store.Movements, "un parche de metadatos no genera movimiento")
}

func TestUpdateBatch_CamposNilNoSeTocan(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 10, 24*time.Hour*365)
	original := store.Batches["b1"]
	uc := newBatchUC(store)

	notas := "solo notas"
	_, err := uc.UpdateBatch(context.Background(), dto.UpdateBatchRequest{
		BatchID: "b1",
		Notes:   &notas,
	})
	require.NoError(t, err)
	b := store.Batches["b1"]
	assert.Equal(t, original.BatchNumber, b.BatchNumber)
	assert.True(t, original.ExpirationDate.Equal(b.ExpirationDate))
	assert.Equal(t, "solo notas", b.Notes)
}

func TestUpdateBatch_FechaInvalida(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 10, 24*time.Hour*365)
	uc := newBatchUC(store)

	fecha := "15/03/2028"
	_, err := uc.UpdateBatch(context.Background(), dto.UpdateBatchRequest{
		BatchID:        "b1",
		ExpirationDate: &fecha,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateBatch_Inexistente(t *testing.T) {
	store := apptest.NewStore()
	uc := newBatchUC(store)

	notas := "x"
	_, err := uc.UpdateBatch(context.Background(), dto.UpdateBatchRequest{
		BatchID: "nope",
		Notes:   &notas,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// CheckBatchExpiration
// ──────────────────────────────────────────────────────────────────────────────

func TestCheckBatchExpiration_Estados(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "vencido", "p1", 10, -5*24*time.Hour)
	seedBatch(store, "cerca", "p1", 10, 10*24*time.Hour)
	seedBatch(store, "lejos", "p1", 10, 90*24*time.Hour)
	uc := newBatchUC(store)

	resp, err := uc.CheckBatchExpiration(context.Background(), "vencido")
	require.NoError(t, err)
	assert.False(t, resp.Valid)
	assert.Equal(t, "expired", resp.Status)
	assert.Negative(t, resp.DaysUntilExpiry)

	resp, err = uc.CheckBatchExpiration(context.Background(), "cerca")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "expiring_soon", resp.Status)
	assert.Equal(t, 10, resp.DaysUntilExpiry)

	resp, err = uc.CheckBatchExpiration(context.Background(), "lejos")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "valid", resp.Status)
}

func TestCheckBatchExpiration_Inexistente(t *testing.T) {
	store := apptest.NewStore()
	uc := newBatchUC(store)

	_, err := uc.CheckBatchExpiration(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteBatch
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteBatch_ConMovimientosNoSeElimina(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 10, 24*time.Hour*365)
	store.Movements = append(store.Movements, entity.StockMovement{
		ID: "m1", BatchID: "b1", Type: entity.MovementTypeOut, Quantity: 2,
	})
	uc := newBatchUC(store)

	err := uc.DeleteBatch(context.Background(), "b1", "user-1")
	assert.ErrorIs(t, err, domain.ErrBatchHasMovements)
	assert.Contains(t, store.Batches, "b1", "el lote tocado es historia inmutable")
}

func TestDeleteBatch_SinMovimientos(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 0, 24*time.Hour*365)
	uc := newBatchUC(store)

	require.NoError(t, uc.DeleteBatch(context.Background(), "b1", "user-1"))
	assert.NotContains(t, store.Batches, "b1")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestGetExpiringBatches_FiltraPorHorizonte(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "cerca", "p1", 10, 5*24*time.Hour)
	seedBatch(store, "lejos", "p1", 10, 90*24*time.Hour)
	seedBatch(store, "agotado", "p1", 0, 2*24*time.Hour)
	uc := newBatchUC(store)

	list, err := uc.GetExpiringBatches(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, list, 1, "solo lotes con saldo dentro del horizonte")
	assert.Equal(t, "cerca", list[0].ID)
}

func TestGetInventorySummary(t *testing.T) {
	store := apptest.NewStore()
	seedProduct(store, "p1", "Paracetamol")
	seedBatch(store, "b1", "p1", 10, 5*24*time.Hour)
	seedBatch(store, "b2", "p1", 20, 90*24*time.Hour)
	uc := newBatchUC(store)

	summary, err := uc.GetInventorySummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalActiveBatches)
	assert.Equal(t, int64(1), summary.ExpiringWithinDays)
	assert.True(t, summary.TotalInventoryValue.Equal(decimal.NewFromInt(300)),
		"30 piezas a costo 10: %s", summary.TotalInventoryValue)
	require.Len(t, summary.Products, 1)
	assert.Equal(t, int64(30), summary.Products[0].TotalRemaining)
}
