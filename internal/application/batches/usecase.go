package batches

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/dmorales/farmapos-api/internal/application/dto"
	"github.com/dmorales/farmapos-api/internal/application/ports"
	"github.com/dmorales/farmapos-api/internal/domain"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
	"github.com/dmorales/farmapos-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// UseCase implementa el Batch Ledger y el Allocation Planner: alta de lotes,
// movimientos auditados con guarda optimista, asignación FIFO por vencimiento
// y reportes. Toda mutación ocurre dentro de una transacción (TxRunner) con
// bloqueo de fila; cada movimiento de lote aplica su delta al saldo agregado
// en la misma transacción, de modo que StockLevel == Σ quantity_remaining se
// sostiene por construcción.
type UseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	batchRepo    repository.BatchRepository
	movRepo      repository.StockMovementRepository
	supplierRepo repository.SupplierRepository
	reportRepo   repository.ReportRepository
	cache        ports.SummaryCache
	audit        ports.AuditLogger
	horizonDays  int
}

// NewUseCase construye el caso de uso. Los repos sueltos son para lecturas
// fuera de transacción; cache puede ser nil-safe (infra) y audit nunca nil.
func NewUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	supplierRepo repository.SupplierRepository,
	reportRepo repository.ReportRepository,
	cache ports.SummaryCache,
	audit ports.AuditLogger,
	expiryHorizonDays int,
) *UseCase {
	if expiryHorizonDays <= 0 {
		expiryHorizonDays = 30
	}
	return &UseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		batchRepo:    batchRepo,
		movRepo:      movRepo,
		supplierRepo: supplierRepo,
		reportRepo:   reportRepo,
		cache:        cache,
		audit:        audit,
		horizonDays:  expiryHorizonDays,
	}
}

// CreateBatch registra un lote recibido con quantity_remaining = quantity_received.
// Si received > 0 emite un movimiento sintético "in" (reason batch_creation) y
// abona el saldo agregado del producto en la misma transacción.
func (uc *UseCase) CreateBatch(ctx context.Context, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	if in.ProductID == "" || in.BatchNumber == "" || in.QuantityReceived < 0 || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	expiration, err := time.Parse(dateLayout, in.ExpirationDate)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	// Validaciones de existencia fuera de la tx (solo lectura)
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.SupplierID != "" {
		supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, domain.ErrNotFound
		}
	}

	now := time.Now()
	receivedAt := now
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}
	batch := &entity.Batch{
		ID:                uuid.New().String(),
		ProductID:         in.ProductID,
		BatchNumber:       in.BatchNumber,
		ExpirationDate:    expiration,
		QuantityReceived:  in.QuantityReceived,
		QuantityRemaining: in.QuantityReceived,
		UnitCost:          in.UnitCost,
		SupplierID:        in.SupplierID,
		ReceivedAt:        receivedAt,
		Notes:             in.Notes,
		CreatedAt:         now,
	}

	err = uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		if err := batchRepo.Create(batch); err != nil {
			return err
		}
		if batch.QuantityReceived == 0 {
			return nil
		}
		mov := &entity.StockMovement{
			ID:               uuid.New().String(),
			BatchID:          batch.ID,
			Type:             entity.MovementTypeIn,
			Quantity:         batch.QuantityReceived,
			PreviousQuantity: 0,
			NewQuantity:      batch.QuantityReceived,
			Reason:           entity.ReasonBatchCreation,
			OccurredAt:       now,
			CreatedBy:        in.ActorID,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		return creditStock(stockRepo, batch.ProductID, batch.QuantityReceived, now)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx)
	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    in.ActorID,
		Action:     "create",
		Resource:   "batch",
		ResourceID: batch.ID,
		Detail: map[string]any{
			"product_id":        batch.ProductID,
			"batch_number":      batch.BatchNumber,
			"quantity_received": batch.QuantityReceived,
		},
	})
	return toBatchResponse(batch), nil
}

// RecordMovement aplica un movimiento manual sobre un lote. PreviousQuantity
// del request debe coincidir con el saldo actual (guarda optimista contra
// lost updates); es el único escritor de quantity_remaining junto con la
// asignación y la reversión de ventas.
func (uc *UseCase) RecordMovement(ctx context.Context, in dto.RecordMovementRequest) (*dto.MovementResponse, error) {
	switch in.Type {
	case entity.MovementTypeIn, entity.MovementTypeOut:
		if in.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
	case entity.MovementTypeAdjustment:
		if in.NewQuantity < 0 {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	if in.BatchID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var mov *entity.StockMovement

	err := uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error {
		batch, err := batchRepo.GetForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		// Guarda optimista: detecta lecturas obsoletas del caller
		if in.PreviousQuantity != batch.QuantityRemaining {
			return &domain.ConcurrencyConflictError{
				BatchID:  batch.ID,
				Expected: in.PreviousQuantity,
				Actual:   batch.QuantityRemaining,
			}
		}

		var newQty int64
		switch in.Type {
		case entity.MovementTypeIn:
			newQty = batch.QuantityRemaining + in.Quantity
			if newQty > batch.QuantityReceived {
				// remaining no puede superar la historia recibida
				return domain.ErrInvalidInput
			}
		case entity.MovementTypeOut:
			newQty = batch.QuantityRemaining - in.Quantity
			if newQty < 0 {
				product, _ := productRepo.GetByID(batch.ProductID)
				name := ""
				if product != nil {
					name = product.Name
				}
				return &domain.InsufficientStockError{Items: []domain.ShortageDetail{{
					ProductID:   batch.ProductID,
					ProductName: name,
					Requested:   in.Quantity,
					Available:   batch.QuantityRemaining,
					Shortage:    in.Quantity - batch.QuantityRemaining,
				}}}
			}
		case entity.MovementTypeAdjustment:
			if in.NewQuantity > batch.QuantityReceived {
				return domain.ErrInvalidInput
			}
			newQty = in.NewQuantity
		}

		mov = &entity.StockMovement{
			ID:               uuid.New().String(),
			BatchID:          batch.ID,
			Type:             in.Type,
			Quantity:         movementQuantity(in, batch.QuantityRemaining, newQty),
			PreviousQuantity: batch.QuantityRemaining,
			NewQuantity:      newQty,
			Reason:           in.Reason,
			Reference:        in.Reference,
			OccurredAt:       now,
			CreatedBy:        in.ActorID,
		}
		return applyMovement(batchRepo, movRepo, stockRepo, batch, mov, now)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx)
	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    in.ActorID,
		Action:     "movement",
		Resource:   "batch",
		ResourceID: in.BatchID,
		Detail: map[string]any{
			"type":         mov.Type,
			"quantity":     mov.Quantity,
			"new_quantity": mov.NewQuantity,
			"reason":       mov.Reason,
		},
	})
	return toMovementResponse(mov), nil
}

// AllocateForSale asigna lotes para cubrir una cantidad usando FIFO por
// vencimiento: los lotes más próximos a vencer se consumen primero para
// minimizar merma. Si la disponibilidad total no alcanza falla con
// InsufficientStockError y cero movimientos (todo-o-nada).
func (uc *UseCase) AllocateForSale(ctx context.Context, in dto.AllocateRequest) ([]dto.BatchAllocation, error) {
	if in.ProductID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var allocations []dto.BatchAllocation
	err = uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		allocations, err = uc.AllocateInTx(batchRepo, movRepo, stockRepo, product, in.Quantity, false, in.ActorID, now, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateSummary(ctx)
	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    in.ActorID,
		Action:     "allocate",
		Resource:   "batch",
		ResourceID: in.ProductID,
		Detail:     map[string]any{"quantity": in.Quantity, "lots": len(allocations)},
	})
	return allocations, nil
}

// AllocateInTx ejecuta la asignación FIFO usando los repositorios del caller
// (misma transacción). Con allowPartial la asignación consume hasta agotar la
// disponibilidad (ruta auto_adjust_stock de ventas); sin allowPartial es
// todo-o-nada. Cada lote consumido produce un movimiento "out" con reference
// al documento y descuenta el saldo agregado.
func (uc *UseCase) AllocateInTx(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	product *entity.Product,
	quantity int64,
	allowPartial bool,
	actorID string,
	now time.Time,
	reference string,
) ([]dto.BatchAllocation, error) {
	eligible, err := batchRepo.ListAvailableForUpdate(product.ID)
	if err != nil {
		return nil, err
	}
	var available int64
	for _, b := range eligible {
		available += b.QuantityRemaining
	}
	if available < quantity && !allowPartial {
		return nil, &domain.InsufficientStockError{Items: []domain.ShortageDetail{{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   available,
			Shortage:    quantity - available,
		}}}
	}

	toTake := quantity
	if toTake > available {
		toTake = available
	}
	var allocations []dto.BatchAllocation
	for _, batch := range eligible {
		if toTake <= 0 {
			break
		}
		take := batch.QuantityRemaining
		if take > toTake {
			take = toTake
		}
		mov := &entity.StockMovement{
			ID:               uuid.New().String(),
			BatchID:          batch.ID,
			Type:             entity.MovementTypeOut,
			Quantity:         take,
			PreviousQuantity: batch.QuantityRemaining,
			NewQuantity:      batch.QuantityRemaining - take,
			Reason:           entity.ReasonSale,
			Reference:        reference,
			OccurredAt:       now,
			CreatedBy:        actorID,
		}
		if err := applyMovement(batchRepo, movRepo, stockRepo, batch, mov, now); err != nil {
			return nil, err
		}
		allocations = append(allocations, dto.BatchAllocation{
			BatchID:        batch.ID,
			BatchNumber:    batch.BatchNumber,
			Quantity:       take,
			ExpirationDate: batch.ExpirationDate.Format(dateLayout),
		})
		toTake -= take
	}
	return allocations, nil
}

// ReverseSaleInTx revierte los efectos de lote de una venta: por cada salida
// neta referenciada por saleID emite un movimiento "in" (reason sale_reversal)
// que devuelve el saldo al lote y al agregado. Devuelve lo acreditado por
// producto. Neto = salidas − reversiones previas, para que una venta ya
// revertida (update de items) no se acredite dos veces. El abono por lote se
// acota a received − remaining: si un ajuste posterior ya repuso unidades,
// esas ya no se deben y el saldo nunca supera la historia recibida.
func (uc *UseCase) ReverseSaleInTx(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	saleID, actorID string,
	now time.Time,
) (map[string]int64, error) {
	movs, err := movRepo.ListByReference(saleID)
	if err != nil {
		return nil, err
	}
	net := make(map[string]int64) // batchID -> salida neta pendiente de revertir
	for _, m := range movs {
		switch {
		case m.Type == entity.MovementTypeOut && m.Reason == entity.ReasonSale:
			net[m.BatchID] += m.Quantity
		case m.Type == entity.MovementTypeIn && m.Reason == entity.ReasonSaleReversal:
			net[m.BatchID] -= m.Quantity
		}
	}

	credited := make(map[string]int64)
	for _, m := range movs {
		pending := net[m.BatchID]
		if pending <= 0 || m.Type != entity.MovementTypeOut {
			continue
		}
		net[m.BatchID] = 0
		batch, err := batchRepo.GetForUpdate(m.BatchID)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			continue // lote eliminado nunca tuvo movimientos; no debería ocurrir
		}
		credit := pending
		if room := batch.QuantityReceived - batch.QuantityRemaining; credit > room {
			credit = room
		}
		if credit <= 0 {
			continue
		}
		mov := &entity.StockMovement{
			ID:               uuid.New().String(),
			BatchID:          batch.ID,
			Type:             entity.MovementTypeIn,
			Quantity:         credit,
			PreviousQuantity: batch.QuantityRemaining,
			NewQuantity:      batch.QuantityRemaining + credit,
			Reason:           entity.ReasonSaleReversal,
			Reference:        saleID,
			OccurredAt:       now,
			CreatedBy:        actorID,
		}
		if err := applyMovement(batchRepo, movRepo, stockRepo, batch, mov, now); err != nil {
			return nil, err
		}
		credited[batch.ProductID] += credit
	}
	return credited, nil
}

// UpdateBatch aplica un parche de metadatos sobre un lote (batch_number,
// expiration_date, notes). Las cantidades no son parchables: recibido y saldo
// solo cambian vía movimientos.
func (uc *UseCase) UpdateBatch(ctx context.Context, in dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	if in.BatchID == "" {
		return nil, domain.ErrInvalidInput
	}
	var expiration *time.Time
	if in.ExpirationDate != nil {
		parsed, err := time.Parse(dateLayout, *in.ExpirationDate)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		expiration = &parsed
	}
	if in.BatchNumber != nil && *in.BatchNumber == "" {
		return nil, domain.ErrInvalidInput
	}

	var batch *entity.Batch
	err := uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		_ repository.StockMovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		batch, err = batchRepo.GetForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		if in.BatchNumber != nil {
			batch.BatchNumber = *in.BatchNumber
		}
		if expiration != nil {
			batch.ExpirationDate = *expiration
		}
		if in.Notes != nil {
			batch.Notes = *in.Notes
		}
		return batchRepo.Update(batch)
	})
	if err != nil {
		return nil, err
	}

	// El vencimiento participa en el resumen (lotes próximos a vencer)
	uc.invalidateSummary(ctx)
	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    in.ActorID,
		Action:     "update",
		Resource:   "batch",
		ResourceID: batch.ID,
		Detail: map[string]any{
			"batch_number":    batch.BatchNumber,
			"expiration_date": batch.ExpirationDate.Format(dateLayout),
		},
	})
	return toBatchResponse(batch), nil
}

// CheckBatchExpiration evalúa el estado de vencimiento de un lote: expired si
// la fecha ya pasó, expiring_soon dentro del horizonte configurado, valid en
// otro caso.
func (uc *UseCase) CheckBatchExpiration(ctx context.Context, batchID string) (*dto.BatchExpiryStatusResponse, error) {
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}

	today := time.Now().Truncate(24 * time.Hour)
	expiry := batch.ExpirationDate.Truncate(24 * time.Hour)
	days := int(expiry.Sub(today).Hours() / 24)

	resp := &dto.BatchExpiryStatusResponse{
		BatchID:         batch.ID,
		BatchNumber:     batch.BatchNumber,
		DaysUntilExpiry: days,
		ExpirationDate:  batch.ExpirationDate.Format(dateLayout),
	}
	switch {
	case days < 0:
		resp.Valid = false
		resp.Status = "expired"
	case days <= uc.horizonDays:
		resp.Valid = true
		resp.Status = "expiring_soon"
	default:
		resp.Valid = true
		resp.Status = "valid"
	}
	return resp, nil
}

// DeleteBatch elimina un lote solo si no tiene movimientos: un lote tocado es
// historia inmutable.
func (uc *UseCase) DeleteBatch(ctx context.Context, id, actorID string) error {
	err := uc.txRunner.RunBatch(ctx, func(
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
	) error {
		batch, err := batchRepo.GetByID(id)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.ErrNotFound
		}
		count, err := movRepo.CountByBatch(id)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrBatchHasMovements
		}
		return batchRepo.Delete(id)
	})
	if err != nil {
		return err
	}
	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    actorID,
		Action:     "delete",
		Resource:   "batch",
		ResourceID: id,
	})
	return nil
}

// GetBatchesByProduct lista los lotes de un producto ordenados por vencimiento.
func (uc *UseCase) GetBatchesByProduct(ctx context.Context, productID string) ([]dto.BatchResponse, error) {
	list, err := uc.batchRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *toBatchResponse(b))
	}
	return out, nil
}

// GetExpiringBatches devuelve lotes con saldo que vencen dentro de daysAhead
// días (o el horizonte configurado si daysAhead <= 0).
func (uc *UseCase) GetExpiringBatches(ctx context.Context, daysAhead int) ([]dto.BatchResponse, error) {
	if daysAhead <= 0 {
		daysAhead = uc.horizonDays
	}
	cutoff := time.Now().AddDate(0, 0, daysAhead)
	list, err := uc.batchRepo.ListExpiring(cutoff)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, *toBatchResponse(b))
	}
	return out, nil
}

// GetBatchMovements devuelve el rastro de auditoría de un lote.
func (uc *UseCase) GetBatchMovements(ctx context.Context, batchID string) ([]dto.MovementResponse, error) {
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movRepo.ListByBatch(batchID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, *toMovementResponse(m))
	}
	return out, nil
}

// GetInventorySummary agrega el Batch Ledger por producto y globalmente
// (lotes activos, próximos a vencer, valor del inventario). Lee a través del
// cache; las mutaciones del ledger lo invalidan.
func (uc *UseCase) GetInventorySummary(ctx context.Context) (*dto.BatchSummaryResponse, error) {
	if uc.cache != nil {
		if cached, ok, err := uc.cache.GetSummary(ctx); err == nil && ok {
			return cached, nil
		}
	}

	cutoff := time.Now().AddDate(0, 0, uc.horizonDays)
	summary, err := uc.reportRepo.GetBatchInventorySummary(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	resp := &dto.BatchSummaryResponse{
		TotalActiveBatches:  summary.TotalActiveBatches,
		ExpiringWithinDays:  summary.ExpiringWithinDays,
		ExpiryHorizonDays:   uc.horizonDays,
		TotalInventoryValue: summary.TotalInventoryValue,
		Products:            make([]dto.ProductBatchSummaryDTO, 0, len(summary.Products)),
	}
	for _, p := range summary.Products {
		resp.Products = append(resp.Products, dto.ProductBatchSummaryDTO{
			ProductID:      p.ProductID,
			ProductName:    p.ProductName,
			BatchCount:     p.BatchCount,
			TotalRemaining: p.TotalRemaining,
		})
	}
	if uc.cache != nil {
		_ = uc.cache.SetSummary(ctx, resp)
	}
	return resp, nil
}

func (uc *UseCase) invalidateSummary(ctx context.Context) {
	if uc.cache != nil {
		_ = uc.cache.InvalidateSummary(ctx)
	}
}

// applyMovement persiste el movimiento, fija el nuevo saldo del lote y aplica
// el delta al saldo agregado del producto, todo con los repos de la tx.
func applyMovement(
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	batch *entity.Batch,
	mov *entity.StockMovement,
	now time.Time,
) error {
	if err := movRepo.Create(mov); err != nil {
		return err
	}
	if err := batchRepo.UpdateRemaining(batch.ID, mov.NewQuantity); err != nil {
		return err
	}
	delta := mov.NewQuantity - mov.PreviousQuantity
	batch.QuantityRemaining = mov.NewQuantity
	if delta == 0 {
		return nil
	}
	return creditStock(stockRepo, batch.ProductID, delta, now)
}

// creditStock aplica un delta (positivo o negativo) al Stock Ledger del
// producto, materializando la fila si no existe. El saldo agregado nunca
// queda negativo.
func creditStock(stockRepo repository.StockRepository, productID string, delta int64, now time.Time) error {
	stock, err := stockRepo.GetForUpdate(productID)
	if err != nil {
		return err
	}
	qty := stock.Quantity + delta
	if qty < 0 {
		qty = 0
	}
	stock.Quantity = qty
	stock.UpdatedAt = now
	return stockRepo.Upsert(stock)
}

// movementQuantity normaliza la cantidad registrada: para adjustment se
// registra el delta absoluto entre saldos.
func movementQuantity(in dto.RecordMovementRequest, prev, newQty int64) int64 {
	if in.Type != entity.MovementTypeAdjustment {
		return in.Quantity
	}
	d := newQty - prev
	if d < 0 {
		d = -d
	}
	return d
}

func toBatchResponse(b *entity.Batch) *dto.BatchResponse {
	return &dto.BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		BatchNumber:       b.BatchNumber,
		ExpirationDate:    b.ExpirationDate.Format(dateLayout),
		QuantityReceived:  b.QuantityReceived,
		QuantityRemaining: b.QuantityRemaining,
		UnitCost:          b.UnitCost,
		SupplierID:        b.SupplierID,
		ReceivedAt:        b.ReceivedAt.Format(time.RFC3339),
		Notes:             b.Notes,
	}
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:               m.ID,
		BatchID:          m.BatchID,
		Type:             m.Type,
		Quantity:         m.Quantity,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reason:           m.Reason,
		Reference:        m.Reference,
		OccurredAt:       m.OccurredAt.Format(time.RFC3339),
		CreatedBy:        m.CreatedBy,
	}
}
