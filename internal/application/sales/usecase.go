package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/dmorales/farmapos-api/internal/application/dto"
	"github.com/dmorales/farmapos-api/internal/application/ports"
	"github.com/dmorales/farmapos-api/internal/domain"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
	"github.com/dmorales/farmapos-api/internal/domain/repository"
	domsales "github.com/dmorales/farmapos-api/internal/domain/sales"
)

// UseCase implementa el procesador de transacciones de venta: crea, actualiza
// y elimina ventas multi-partida calculando subtotal/IVA/total y aplicando los
// efectos de stock dentro de una sola transacción. Para productos con
// seguimiento por lote el decremento se cubre vía el Allocation Planner; para
// el resto se descuenta el saldo agregado directamente.
type UseCase struct {
	txRunner    TxRunner
	allocator   BatchAllocator
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
	audit       ports.AuditLogger
}

// NewUseCase construye el caso de uso. Los repos sueltos son para lecturas
// fuera de transacción.
func NewUseCase(
	txRunner TxRunner,
	allocator BatchAllocator,
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	audit ports.AuditLogger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		allocator:   allocator,
		saleRepo:    saleRepo,
		productRepo: productRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		audit:       audit,
	}
}

// CreateSale crea una venta multi-partida. Por cada partida resuelve el
// producto, determina el precio efectivo (override o catálogo), congela la
// tasa de IVA y acumula totales. El decremento de stock se aplica con clamp
// en cero solo si AutoAdjustStock; si no, cualquier faltante hace fallar la
// operación completa antes de toda mutación, con el reporte por partida.
func (uc *UseCase) CreateSale(ctx context.Context, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if in.ClientID == "" || in.UserID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.DocumentType == "" {
		in.DocumentType = entity.DocumentTypeInvoice
	}
	if in.DocumentType != entity.DocumentTypeInvoice && in.DocumentType != entity.DocumentTypeRemission {
		return nil, domain.ErrInvalidInput
	}

	// Validaciones de existencia fuera de la tx (solo lectura)
	client, err := uc.clientRepo.GetByID(in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByID(in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	productsByID, err := uc.resolveProducts(in.Items)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	saleDate := now
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}
	sale := &entity.Sale{
		ID:             uuid.New().String(),
		ClientID:       in.ClientID,
		UserID:         in.UserID,
		DocumentType:   in.DocumentType,
		SaleDate:       saleDate,
		ShippingDate:   in.ShippingDate,
		ShippingStatus: entity.ShippingStatusPending,
		PaymentStatus:  entity.PaymentStatusPending,
		PaymentMethod:  in.PaymentMethod,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	var items []*entity.SaleItem
	err = uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := saleRepo.Create(sale); err != nil {
			return err
		}
		var err error
		items, err = uc.applyItemsInTx(
			saleRepo, stockRepo, productRepo, batchRepo, movRepo,
			sale, in.Items, productsByID, in.AutoAdjustStock, in.UserID, now,
		)
		if err != nil {
			return err
		}
		return saleRepo.Update(sale)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    in.UserID,
		Action:     "create",
		Resource:   "sale",
		ResourceID: sale.ID,
		Detail: map[string]any{
			"document_type": sale.DocumentType,
			"items":         len(items),
			"total":         sale.Total,
		},
	})
	return toSaleResponse(sale, items), nil
}

// UpdateSale aplica un parche tipado sobre la venta. Si el parche reemplaza
// las partidas, primero revierte los efectos de stock de las anteriores
// (abona el stock), elimina las partidas viejas y re-ejecuta la lógica de
// creación contra las nuevas, recomputando totales.
func (uc *UseCase) UpdateSale(ctx context.Context, saleID string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	existing, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if in.ClientID != nil {
		client, err := uc.clientRepo.GetByID(*in.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, domain.ErrNotFound
		}
	}
	if in.DocumentType != nil &&
		*in.DocumentType != entity.DocumentTypeInvoice && *in.DocumentType != entity.DocumentTypeRemission {
		return nil, domain.ErrInvalidInput
	}
	var productsByID map[string]*entity.Product
	if in.Items != nil {
		if len(in.Items) == 0 {
			return nil, domain.ErrInvalidInput
		}
		productsByID, err = uc.resolveProducts(in.Items)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	var sale *entity.Sale
	var items []*entity.SaleItem
	err = uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		sale, err = saleRepo.GetByID(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}

		// Parche explícito campo por campo (sin reflexión)
		applyPatch(sale, in)
		sale.UpdatedAt = now

		if in.Items == nil {
			// Sin reemplazo de partidas: si cambió el tipo de documento los
			// totales se rederivan de las partidas existentes (remisión => IVA 0).
			if in.DocumentType != nil {
				current, err := saleRepo.GetItems(sale.ID)
				if err != nil {
					return err
				}
				recomputeTotals(sale, current)
			}
			items, err = saleRepo.GetItems(sale.ID)
			if err != nil {
				return err
			}
			return saleRepo.Update(sale)
		}

		// Reemplazo de partidas: revertir efectos de stock de las anteriores
		if err := uc.reverseSaleStockInTx(saleRepo, stockRepo, batchRepo, movRepo, sale, sale.UserID, now); err != nil {
			return err
		}
		if err := saleRepo.DeleteItems(sale.ID); err != nil {
			return err
		}
		items, err = uc.applyItemsInTx(
			saleRepo, stockRepo, productRepo, batchRepo, movRepo,
			sale, in.Items, productsByID, in.AutoAdjustStock, sale.UserID, now,
		)
		if err != nil {
			return err
		}
		return saleRepo.Update(sale)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    sale.UserID,
		Action:     "update",
		Resource:   "sale",
		ResourceID: sale.ID,
		Detail:     map[string]any{"items_replaced": in.Items != nil, "total": sale.Total},
	})
	return toSaleResponse(sale, items), nil
}

// DeleteSale revierte los efectos de stock de todas las partidas y elimina la
// venta junto con ellas.
func (uc *UseCase) DeleteSale(ctx context.Context, saleID, actorID string) error {
	now := time.Now()
	err := uc.txRunner.RunSale(ctx, func(
		saleRepo repository.SaleRepository,
		stockRepo repository.StockRepository,
		_ repository.ProductRepository,
		batchRepo repository.BatchRepository,
		movRepo repository.StockMovementRepository,
	) error {
		sale, err := saleRepo.GetByID(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if err := uc.reverseSaleStockInTx(saleRepo, stockRepo, batchRepo, movRepo, sale, actorID, now); err != nil {
			return err
		}
		return saleRepo.Delete(sale.ID)
	})
	if err != nil {
		return err
	}
	uc.audit.Log(ctx, ports.AuditEvent{
		ActorID:    actorID,
		Action:     "delete",
		Resource:   "sale",
		ResourceID: saleID,
	})
	return nil
}

// GetSale obtiene una venta con sus partidas.
func (uc *UseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.saleRepo.GetItems(saleID)
	if err != nil {
		return nil, err
	}
	return toSaleResponse(sale, items), nil
}

// ListSales lista ventas paginadas (más recientes primero).
func (uc *UseCase) ListSales(ctx context.Context, limit, offset int) ([]dto.SaleResponse, error) {
	list, err := uc.saleRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items, err := uc.saleRepo.GetItems(s.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toSaleResponse(s, items))
	}
	return out, nil
}

// resolveProducts valida las partidas y resuelve sus productos (fuera de tx).
func (uc *UseCase) resolveProducts(items []dto.SaleItemInput) (map[string]*entity.Product, error) {
	productsByID := make(map[string]*entity.Product, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Discount.IsNegative() || item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if _, ok := productsByID[item.ProductID]; ok {
			continue
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		productsByID[item.ProductID] = product
	}
	return productsByID, nil
}

// applyItemsInTx es la lógica de creación de partidas, compartida por create
// y por el reemplazo de items en update:
//  1. bloquea los saldos agregados y verifica disponibilidad; sin
//     AutoAdjustStock cualquier faltante aborta con el reporte por partida
//     antes de mutar nada;
//  2. por partida congela precio y tasa, calcula subtotal/IVA y descuenta
//     stock (vía lotes si el producto tiene seguimiento, directo si no);
//  3. sincroniza el precio de catálogo si la venta registró otro precio;
//  4. deja los totales acumulados en la venta.
func (uc *UseCase) applyItemsInTx(
	saleRepo repository.SaleRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	sale *entity.Sale,
	inputs []dto.SaleItemInput,
	productsByID map[string]*entity.Product,
	autoAdjust bool,
	actorID string,
	now time.Time,
) ([]*entity.SaleItem, error) {
	// Paso 1: disponibilidad bajo bloqueo de fila. availability acumula el
	// consumo de partidas previas del mismo producto dentro de esta venta.
	locked := make(map[string]*entity.StockLevel)
	availability := make(map[string]int64)
	var shortages []domain.ShortageDetail
	for _, in := range inputs {
		if _, ok := locked[in.ProductID]; !ok {
			stock, err := stockRepo.GetForUpdate(in.ProductID)
			if err != nil {
				return nil, err
			}
			locked[in.ProductID] = stock
			availability[in.ProductID] = stock.Quantity
		}
		if availability[in.ProductID] < in.Quantity {
			shortages = append(shortages, domain.ShortageDetail{
				ProductID:   in.ProductID,
				ProductName: productsByID[in.ProductID].Name,
				Requested:   in.Quantity,
				Available:   availability[in.ProductID],
				Shortage:    in.Quantity - availability[in.ProductID],
			})
			availability[in.ProductID] = 0
			continue
		}
		availability[in.ProductID] -= in.Quantity
	}
	if len(shortages) > 0 && !autoAdjust {
		return nil, &domain.InsufficientStockError{Items: shortages}
	}

	// Paso 2: partidas, totales y efectos de stock
	itemsSubtotal := decimal.Zero
	itemsTax := decimal.Zero
	items := make([]*entity.SaleItem, 0, len(inputs))
	for _, in := range inputs {
		product := productsByID[in.ProductID]
		unitPrice := in.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.SalePrice
		}
		taxRate := domsales.NormalizeTaxRate(product.TaxRate)
		subtotal, taxAmount := domsales.LineTotals(in.Quantity, unitPrice, in.Discount, taxRate)
		itemsSubtotal = itemsSubtotal.Add(subtotal)
		itemsTax = itemsTax.Add(taxAmount)

		item := &entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: unitPrice,
			Discount:  in.Discount,
			TaxRate:   taxRate,
			Subtotal:  subtotal,
			TaxAmount: taxAmount,
		}
		if err := saleRepo.CreateItem(item); err != nil {
			return nil, err
		}
		items = append(items, item)

		// Efecto de stock: lotes (FIFO) para productos con seguimiento,
		// decremento directo del agregado para el resto.
		tracked, err := batchRepo.CountByProduct(in.ProductID)
		if err != nil {
			return nil, err
		}
		if tracked > 0 {
			if _, err := uc.allocator.AllocateInTx(
				batchRepo, movRepo, stockRepo, product,
				in.Quantity, autoAdjust, actorID, now, sale.ID,
			); err != nil {
				return nil, err
			}
		} else {
			stock := locked[in.ProductID]
			qty := stock.Quantity - in.Quantity
			if qty < 0 {
				qty = 0 // AutoAdjustStock: el agregado hace piso en cero
			}
			stock.Quantity = qty
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return nil, err
			}
		}

		// Sincronización de precio documentada: la venta registró otro precio
		if !in.UnitPrice.IsZero() && !in.UnitPrice.Equal(product.SalePrice) {
			if err := productRepo.UpdateSalePrice(product.ID, in.UnitPrice); err != nil {
				return nil, err
			}
			product.SalePrice = in.UnitPrice
		}
	}

	sale.Subtotal, sale.TaxAmount, sale.Total = domsales.SaleTotals(itemsSubtotal, itemsTax, sale.DocumentType)
	return items, nil
}

// reverseSaleStockInTx abona el stock de todas las partidas de la venta:
// productos con lotes vía reversión de movimientos (se acredita exactamente
// lo debitado); productos sin lotes con abono directo de la cantidad.
func (uc *UseCase) reverseSaleStockInTx(
	saleRepo repository.SaleRepository,
	stockRepo repository.StockRepository,
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
	sale *entity.Sale,
	actorID string,
	now time.Time,
) error {
	credited, err := uc.allocator.ReverseSaleInTx(batchRepo, movRepo, stockRepo, sale.ID, actorID, now)
	if err != nil {
		return err
	}
	items, err := saleRepo.GetItems(sale.ID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if credited[item.ProductID] > 0 {
			continue // ya acreditado vía lotes
		}
		tracked, err := batchRepo.CountByProduct(item.ProductID)
		if err != nil {
			return err
		}
		if tracked > 0 {
			// Venta con seguimiento por lote sin nada que acreditar: sin salidas
			// netas (auto-adjust con disponibilidad cero) o reversión acotada
			// porque un ajuste ya repuso el lote.
			continue
		}
		stock, err := stockRepo.GetForUpdate(item.ProductID)
		if err != nil {
			return err
		}
		stock.Quantity += item.Quantity
		stock.UpdatedAt = now
		if err := stockRepo.Upsert(stock); err != nil {
			return err
		}
	}
	return nil
}

// applyPatch aplica el parche tipado campo por campo.
func applyPatch(sale *entity.Sale, in dto.UpdateSaleRequest) {
	if in.ClientID != nil {
		sale.ClientID = *in.ClientID
	}
	if in.DocumentType != nil {
		sale.DocumentType = *in.DocumentType
	}
	if in.ShippingDate != nil {
		sale.ShippingDate = in.ShippingDate
	}
	if in.ShippingStatus != nil {
		sale.ShippingStatus = *in.ShippingStatus
	}
	if in.PaymentStatus != nil {
		sale.PaymentStatus = *in.PaymentStatus
	}
	if in.PaymentMethod != nil {
		sale.PaymentMethod = *in.PaymentMethod
	}
	if in.Notes != nil {
		sale.Notes = *in.Notes
	}
}

// recomputeTotals rederiva los totales de la venta desde sus partidas.
func recomputeTotals(sale *entity.Sale, items []*entity.SaleItem) {
	itemsSubtotal := decimal.Zero
	itemsTax := decimal.Zero
	for _, it := range items {
		itemsSubtotal = itemsSubtotal.Add(it.Subtotal)
		itemsTax = itemsTax.Add(it.TaxAmount)
	}
	sale.Subtotal, sale.TaxAmount, sale.Total = domsales.SaleTotals(itemsSubtotal, itemsTax, sale.DocumentType)
}

func toSaleResponse(sale *entity.Sale, items []*entity.SaleItem) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:             sale.ID,
		ClientID:       sale.ClientID,
		UserID:         sale.UserID,
		DocumentType:   sale.DocumentType,
		Subtotal:       sale.Subtotal,
		TaxAmount:      sale.TaxAmount,
		Total:          sale.Total,
		SaleDate:       sale.SaleDate.Format(time.RFC3339),
		ShippingStatus: sale.ShippingStatus,
		PaymentStatus:  sale.PaymentStatus,
		PaymentMethod:  sale.PaymentMethod,
		Notes:          sale.Notes,
		Items:          make([]dto.SaleItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			TaxRate:   it.TaxRate,
			Subtotal:  it.Subtotal,
			TaxAmount: it.TaxAmount,
		})
	}
	return resp
}
