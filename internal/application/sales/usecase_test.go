package sales_test

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
	"github.com/dmorales/farmapos-api/internal/application/sales"
	"github.com/dmorales/farmapos-api/internal/domain"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// newBatchUC arma el Batch Ledger real sobre el store, para maniobras de
// inventario dentro de los tests de ventas.
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

// newSaleUC arma el procesador de ventas con el Batch Ledger real sobre el
// mismo store, como en producción.
func newSaleUC(store *apptest.Store) *sales.UseCase {
	return sales.NewUseCase(
		&apptest.TxRunner{S: store},
		newBatchUC(store),
		&apptest.SaleRepo{S: store},
		&apptest.ProductRepo{S: store},
		&apptest.ClientRepo{S: store},
		&apptest.UserRepo{S: store},
		ports.NopAuditLogger{},
	)
}

// seedBase crea cliente, usuario y un producto sin lotes con stock agregado.
func seedBase(store *apptest.Store, productStock int64) {
	store.Clients["c1"] = entity.Client{ID: "c1", Name: "Público general"}
	store.Users["u1"] = entity.User{ID: "u1", Name: "Vendedor", Role: entity.RoleVendedor}
	store.Products["p1"] = entity.Product{
		ID: "p1", SKU: "PARA-500", Name: "Paracetamol",
		SalePrice: dec("20"), TaxRate: dec("0.16"),
	}
	if productStock > 0 {
		store.Stock["p1"] = entity.StockLevel{ProductID: "p1", Quantity: productStock}
	}
}

// seedTrackedProduct agrega un producto con dos lotes (FIFO por vencimiento)
// y su Stock Ledger consistente.
func seedTrackedProduct(store *apptest.Store) {
	store.Products["p2"] = entity.Product{
		ID: "p2", SKU: "IBU-400", Name: "Ibuprofeno",
		SalePrice: dec("60"), TaxRate: decimal.Zero,
	}
	store.Batches["b1"] = entity.Batch{
		ID: "b1", ProductID: "p2", BatchNumber: "L-1",
		ExpirationDate:    time.Now().Add(10 * 24 * time.Hour),
		QuantityReceived:  5, QuantityRemaining: 5,
		UnitCost: dec("30"), CreatedAt: time.Now(),
	}
	store.Batches["b2"] = entity.Batch{
		ID: "b2", ProductID: "p2", BatchNumber: "L-2",
		ExpirationDate:    time.Now().Add(60 * 24 * time.Hour),
		QuantityReceived:  10, QuantityRemaining: 10,
		UnitCost: dec("29"), CreatedAt: time.Now(),
	}
	store.Stock["p2"] = entity.StockLevel{ProductID: "p2", Quantity: 15}
}

func sumRemaining(store *apptest.Store, productID string) int64 {
	var sum int64
	for _, b := range store.Batches {
		if b.ProductID == productID {
			sum += b.QuantityRemaining
		}
	}
	return sum
}

func createSale(t *testing.T, uc *sales.UseCase, in dto.CreateSaleRequest) *dto.SaleResponse {
	t.Helper()
	resp, err := uc.CreateSale(context.Background(), in)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateSale: totales
// ──────────────────────────────────────────────────────────────────────────────

// 5 piezas a $20 sin descuento con IVA 16%: subtotal 100, IVA 16, total 116.
func TestCreateSale_TotalesFactura(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 50)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 5}},
	})

	assert.True(t, resp.Subtotal.Equal(dec("100")), "subtotal: %s", resp.Subtotal)
	assert.True(t, resp.TaxAmount.Equal(dec("16")), "iva: %s", resp.TaxAmount)
	assert.True(t, resp.Total.Equal(dec("116")), "total: %s", resp.Total)
	assert.Equal(t, entity.DocumentTypeInvoice, resp.DocumentType, "invoice por defecto")

	// El precio se congeló del catálogo y la tasa es fotografía
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("20")))
	assert.True(t, resp.Items[0].TaxRate.Equal(dec("0.16")))

	// El stock agregado bajó
	assert.Equal(t, int64(45), store.Stock["p1"].Quantity)
}

func TestCreateSale_RemisionNoCausaIVA(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 50)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		DocumentType: entity.DocumentTypeRemission,
		Items:        []dto.SaleItemInput{{ProductID: "p1", Quantity: 5}},
	})

	assert.True(t, resp.Subtotal.Equal(dec("100")))
	assert.True(t, resp.TaxAmount.IsZero(), "remisión: IVA cero")
	assert.True(t, resp.Total.Equal(dec("100")))
}

// Un descuento mayor que la línea produce totales negativos (nota de crédito).
func TestCreateSale_DescuentoMayorQueLinea(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 50)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 1, Discount: dec("50")}},
	})

	assert.True(t, resp.Subtotal.Equal(dec("-30")), "subtotal: %s", resp.Subtotal)
	assert.True(t, resp.Total.IsNegative())
}

// Precio unitario distinto al de catálogo: se usa el indicado y se sincroniza
// el catálogo (cambio de precio documentado en la venta).
func TestCreateSale_SincronizaPrecioCatalogo(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 50)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 2, UnitPrice: dec("25")}},
	})

	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("25")))
	assert.True(t, store.Products["p1"].SalePrice.Equal(dec("25")),
		"el catálogo adopta el precio registrado en la venta")
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateSale: stock
// ──────────────────────────────────────────────────────────────────────────────

// Stock 20, venta de 30 sin auto-ajuste: falla completa con el reporte de
// faltantes y sin rastro en la base.
func TestCreateSale_FaltanteSinAutoAjuste(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 20)
	uc := newSaleUC(store)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 30}},
	})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Items, 1)
	assert.Equal(t, int64(30), insufficient.Items[0].Requested)
	assert.Equal(t, int64(20), insufficient.Items[0].Available)
	assert.Equal(t, int64(10), insufficient.Items[0].Shortage)

	assert.Empty(t, store.Sales, "la venta no se persiste")
	assert.Empty(t, store.SaleItems)
	assert.Equal(t, int64(20), store.Stock["p1"].Quantity, "el stock no cambia")
}

// Mismo escenario con auto-ajuste: la venta procede y el stock hace piso en cero.
func TestCreateSale_FaltanteConAutoAjuste(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 20)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items:           []dto.SaleItemInput{{ProductID: "p1", Quantity: 30}},
		AutoAdjustStock: true,
	})

	assert.Equal(t, int64(30), resp.Items[0].Quantity, "la partida conserva lo vendido")
	assert.Equal(t, int64(0), store.Stock["p1"].Quantity, "el agregado hace piso en cero")
}

// Dos partidas del mismo producto consumen disponibilidad acumulada.
func TestCreateSale_PartidasAcumulanConsumo(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 10)
	uc := newSaleUC(store)

	_, err := uc.CreateSale(context.Background(), dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{
			{ProductID: "p1", Quantity: 7},
			{ProductID: "p1", Quantity: 6},
		},
	})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	require.Len(t, insufficient.Items, 1)
	assert.Equal(t, int64(6), insufficient.Items[0].Requested)
	assert.Equal(t, int64(3), insufficient.Items[0].Available,
		"la segunda partida ve lo que dejó la primera")
}

// Producto con lotes: la venta consume vía asignación FIFO y deja movimientos
// con referencia a la venta.
func TestCreateSale_ProductoConLotesConsumeFIFO(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 0)
	seedTrackedProduct(store)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p2", Quantity: 8}},
	})

	// Primero el lote que vence antes (5), luego el siguiente (3)
	assert.Equal(t, int64(0), store.Batches["b1"].QuantityRemaining)
	assert.Equal(t, int64(7), store.Batches["b2"].QuantityRemaining)
	assert.Equal(t, int64(7), store.Stock["p2"].Quantity)
	assert.Equal(t, sumRemaining(store, "p2"), store.Stock["p2"].Quantity,
		"agregado == Σ lotes tras la venta")

	require.Len(t, store.Movements, 2)
	for _, m := range store.Movements {
		assert.Equal(t, entity.MovementTypeOut, m.Type)
		assert.Equal(t, entity.ReasonSale, m.Reason)
		assert.Equal(t, resp.ID, m.Reference, "el movimiento referencia la venta")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// DeleteSale: ida y vuelta
// ──────────────────────────────────────────────────────────────────────────────

// Crear y eliminar una venta con lotes deja el inventario exactamente donde
// estaba, con el rastro de auditoría completo (out + in de reversión).
func TestDeleteSale_RestauraInventario(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 40)
	seedTrackedProduct(store)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{
			{ProductID: "p1", Quantity: 10}, // sin lotes: decremento directo
			{ProductID: "p2", Quantity: 8},  // con lotes: FIFO
		},
	})
	require.Equal(t, int64(30), store.Stock["p1"].Quantity)
	require.Equal(t, int64(7), store.Stock["p2"].Quantity)

	require.NoError(t, uc.DeleteSale(context.Background(), resp.ID, "u1"))

	assert.Equal(t, int64(40), store.Stock["p1"].Quantity, "producto sin lotes restaurado")
	assert.Equal(t, int64(15), store.Stock["p2"].Quantity, "producto con lotes restaurado")
	assert.Equal(t, int64(5), store.Batches["b1"].QuantityRemaining)
	assert.Equal(t, int64(10), store.Batches["b2"].QuantityRemaining)
	assert.Equal(t, sumRemaining(store, "p2"), store.Stock["p2"].Quantity)

	assert.Empty(t, store.Sales)
	assert.Empty(t, store.SaleItems)

	// El libro conserva la historia completa: salidas y reversiones
	var outs, reversals int
	for _, m := range store.Movements {
		switch m.Reason {
		case entity.ReasonSale:
			outs++
		case entity.ReasonSaleReversal:
			reversals++
		}
	}
	assert.Equal(t, 2, outs)
	assert.Equal(t, 2, reversals, "cada salida neta tiene su reversión")
}

// Vender un lote completo, reponerlo con un ajuste y eliminar la venta no
// debe dejar el saldo por encima de lo recibido: la reversión se acota a
// received − remaining, porque el ajuste ya devolvió esas unidades.
func TestDeleteSale_TrasAjusteNoSuperaRecibido(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 0)
	seedTrackedProduct(store)
	batchUC := newBatchUC(store)
	uc := newSaleUC(store)

	// La venta de 5 agota el lote más próximo a vencer (b1: recibido 5)
	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p2", Quantity: 5}},
	})
	require.Equal(t, int64(0), store.Batches["b1"].QuantityRemaining)

	// Un conteo físico repone el lote a su máximo (legal: ≤ recibido)
	_, err := batchUC.RecordMovement(context.Background(), dto.RecordMovementRequest{
		BatchID: "b1", Type: entity.MovementTypeAdjustment,
		NewQuantity: 5, PreviousQuantity: 0,
		Reason: "conteo físico", ActorID: "u1",
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), store.Batches["b1"].QuantityRemaining)

	require.NoError(t, uc.DeleteSale(context.Background(), resp.ID, "u1"))

	b1 := store.Batches["b1"]
	assert.LessOrEqual(t, b1.QuantityRemaining, b1.QuantityReceived,
		"el saldo nunca supera la historia recibida")
	assert.Equal(t, int64(5), b1.QuantityRemaining)
	assert.Equal(t, sumRemaining(store, "p2"), store.Stock["p2"].Quantity,
		"agregado == Σ lotes tras la reversión acotada")

	// Nada que acreditar: el ajuste ya había devuelto las unidades
	for _, m := range store.Movements {
		assert.NotEqual(t, entity.ReasonSaleReversal, m.Reason)
	}
}

// Con un ajuste parcial la reversión acredita solo el hueco restante.
func TestDeleteSale_ReversionAcotadaTrasAjusteParcial(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 0)
	seedTrackedProduct(store)
	batchUC := newBatchUC(store)
	uc := newSaleUC(store)

	resp := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p2", Quantity: 5}},
	})
	_, err := batchUC.RecordMovement(context.Background(), dto.RecordMovementRequest{
		BatchID: "b1", Type: entity.MovementTypeAdjustment,
		NewQuantity: 2, PreviousQuantity: 0,
		Reason: "conteo físico", ActorID: "u1",
	})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteSale(context.Background(), resp.ID, "u1"))

	// 2 repuestas por el ajuste + 3 por la reversión = tope de 5 recibidas
	b1 := store.Batches["b1"]
	assert.Equal(t, int64(5), b1.QuantityRemaining)
	assert.LessOrEqual(t, b1.QuantityRemaining, b1.QuantityReceived)
	assert.Equal(t, sumRemaining(store, "p2"), store.Stock["p2"].Quantity)

	var reversal *entity.StockMovement
	for i, m := range store.Movements {
		if m.Reason == entity.ReasonSaleReversal {
			require.Nil(t, reversal, "una sola reversión")
			reversal = &store.Movements[i]
		}
	}
	require.NotNil(t, reversal)
	assert.Equal(t, int64(3), reversal.Quantity)
	assert.Equal(t, resp.ID, reversal.Reference)
}

func TestDeleteSale_Inexistente(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 10)
	uc := newSaleUC(store)

	err := uc.DeleteSale(context.Background(), "nope", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// UpdateSale
// ──────────────────────────────────────────────────────────────────────────────

// Cambiar solo el tipo de documento recalcula totales desde las partidas.
func TestUpdateSale_CambioDeDocumentoRecalcula(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 50)
	uc := newSaleUC(store)

	created := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 5}},
	})
	require.True(t, created.Total.Equal(dec("116")))

	remission := entity.DocumentTypeRemission
	updated, err := uc.UpdateSale(context.Background(), created.ID, dto.UpdateSaleRequest{
		DocumentType: &remission,
	})
	require.NoError(t, err)
	assert.True(t, updated.TaxAmount.IsZero())
	assert.True(t, updated.Total.Equal(dec("100")))
	assert.Equal(t, int64(45), store.Stock["p1"].Quantity, "sin reemplazo de items el stock no se toca")
}

// Reemplazar las partidas revierte el stock de las anteriores y aplica las nuevas.
func TestUpdateSale_ReemplazoDeItems(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 50)
	uc := newSaleUC(store)

	created := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 10}},
	})
	require.Equal(t, int64(40), store.Stock["p1"].Quantity)

	updated, err := uc.UpdateSale(context.Background(), created.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(47), store.Stock["p1"].Quantity,
		"se abonan las 10 anteriores y se descuentan las 3 nuevas")
	require.Len(t, updated.Items, 1)
	assert.Equal(t, int64(3), updated.Items[0].Quantity)
	assert.True(t, updated.Subtotal.Equal(dec("60")))

	items, err := (&apptest.SaleRepo{S: store}).GetItems(created.ID)
	require.NoError(t, err)
	require.Len(t, items, 1, "las partidas viejas se reemplazan por completo")
}

// Reemplazo de items sobre producto con lotes: la reversión devuelve a los
// lotes exactamente lo debitado y la nueva asignación vuelve a salir FIFO.
func TestUpdateSale_ReemplazoConLotes(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 0)
	seedTrackedProduct(store)
	uc := newSaleUC(store)

	created := createSale(t, uc, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p2", Quantity: 8}},
	})
	require.Equal(t, int64(7), store.Stock["p2"].Quantity)

	_, err := uc.UpdateSale(context.Background(), created.ID, dto.UpdateSaleRequest{
		Items: []dto.SaleItemInput{{ProductID: "p2", Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(13), store.Stock["p2"].Quantity)
	assert.Equal(t, sumRemaining(store, "p2"), store.Stock["p2"].Quantity,
		"agregado == Σ lotes tras revertir y reasignar")
}

func TestUpdateSale_Inexistente(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 10)
	uc := newSaleUC(store)

	notes := "x"
	_, err := uc.UpdateSale(context.Background(), "nope", dto.UpdateSaleRequest{Notes: &notes})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateSale_Validaciones(t *testing.T) {
	store := apptest.NewStore()
	seedBase(store, 10)
	uc := newSaleUC(store)
	ctx := context.Background()

	// Sin partidas
	_, err := uc.CreateSale(ctx, dto.CreateSaleRequest{ClientID: "c1", UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cantidad no positiva
	_, err = uc.CreateSale(ctx, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Tipo de documento desconocido
	_, err = uc.CreateSale(ctx, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1", DocumentType: "ticket",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Cliente inexistente
	_, err = uc.CreateSale(ctx, dto.CreateSaleRequest{
		ClientID: "nope", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "p1", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Producto inexistente
	_, err = uc.CreateSale(ctx, dto.CreateSaleRequest{
		ClientID: "c1", UserID: "u1",
		Items: []dto.SaleItemInput{{ProductID: "nope", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
