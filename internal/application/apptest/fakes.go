// Package apptest provee repositorios en memoria y un TxRunner con semántica
// de rollback por snapshot, para probar los casos de uso sin PostgreSQL.
package apptest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmorales/farmapos-api/internal/application/batches"
	"github.com/dmorales/farmapos-api/internal/application/sales"
	"github.com/dmorales/farmapos-api/internal/domain"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
	"github.com/dmorales/farmapos-api/internal/domain/repository"
)

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	Products  map[string]entity.Product
	Stock     map[string]entity.StockLevel
	Batches   map[string]entity.Batch
	Movements []entity.StockMovement
	Sales     map[string]entity.Sale
	SaleItems []entity.SaleItem
	Clients   map[string]entity.Client
	Users     map[string]entity.User
	Suppliers map[string]entity.Supplier
}

func NewStore() *Store {
	return &Store{
		Products:  make(map[string]entity.Product),
		Stock:     make(map[string]entity.StockLevel),
		Batches:   make(map[string]entity.Batch),
		Sales:     make(map[string]entity.Sale),
		Clients:   make(map[string]entity.Client),
		Users:     make(map[string]entity.User),
		Suppliers: make(map[string]entity.Supplier),
	}
}

func (s *Store) snapshot() *Store {
	cp := NewStore()
	for k, v := range s.Products {
		cp.Products[k] = v
	}
	for k, v := range s.Stock {
		cp.Stock[k] = v
	}
	for k, v := range s.Batches {
		cp.Batches[k] = v
	}
	cp.Movements = append([]entity.StockMovement(nil), s.Movements...)
	for k, v := range s.Sales {
		cp.Sales[k] = v
	}
	cp.SaleItems = append([]entity.SaleItem(nil), s.SaleItems...)
	for k, v := range s.Clients {
		cp.Clients[k] = v
	}
	for k, v := range s.Users {
		cp.Users[k] = v
	}
	for k, v := range s.Suppliers {
		cp.Suppliers[k] = v
	}
	return cp
}

func (s *Store) restore(from *Store) {
	s.Products = from.Products
	s.Stock = from.Stock
	s.Batches = from.Batches
	s.Movements = from.Movements
	s.Sales = from.Sales
	s.SaleItems = from.SaleItems
	s.Clients = from.Clients
	s.Users = from.Users
	s.Suppliers = from.Suppliers
}

// ── Repos ────────────────────────────────────────────────────────────────────

type ProductRepo struct{ S *Store }

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(p *entity.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	for _, existing := range r.S.Products {
		if existing.SKU == p.SKU {
			return fmt.Errorf("%w: SKU %s", domain.ErrDuplicate, p.SKU)
		}
	}
	r.S.Products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.S.Products[id]; ok {
		cp := p
		return &cp, nil
	}
	return nil, nil
}

func (r *ProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.S.Products {
		if p.SKU == sku {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var all []*entity.Product
	for _, p := range r.S.Products {
		cp := p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *ProductRepo) UpdateSalePrice(productID string, price decimal.Decimal) error {
	p, ok := r.S.Products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.SalePrice = price
	r.S.Products[productID] = p
	return nil
}

type StockRepo struct{ S *Store }

var _ repository.StockRepository = (*StockRepo)(nil)

func (r *StockRepo) Get(productID string) (*entity.StockLevel, error) {
	if s, ok := r.S.Stock[productID]; ok {
		cp := s
		return &cp, nil
	}
	return &entity.StockLevel{ProductID: productID}, nil
}

func (r *StockRepo) GetForUpdate(productID string) (*entity.StockLevel, error) {
	return r.Get(productID)
}

func (r *StockRepo) Upsert(level *entity.StockLevel) error {
	r.S.Stock[level.ProductID] = *level
	return nil
}

type BatchRepo struct{ S *Store }

var _ repository.BatchRepository = (*BatchRepo)(nil)

func (r *BatchRepo) Create(b *entity.Batch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	for _, existing := range r.S.Batches {
		if existing.ProductID == b.ProductID && existing.BatchNumber == b.BatchNumber {
			return fmt.Errorf("%w: lote %s", domain.ErrDuplicate, b.BatchNumber)
		}
	}
	r.S.Batches[b.ID] = *b
	return nil
}

func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	if b, ok := r.S.Batches[id]; ok {
		cp := b
		return &cp, nil
	}
	return nil, nil
}

func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *BatchRepo) UpdateRemaining(id string, quantityRemaining int64) error {
	b, ok := r.S.Batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.QuantityRemaining = quantityRemaining
	r.S.Batches[id] = b
	return nil
}

func (r *BatchRepo) Update(b *entity.Batch) error {
	existing, ok := r.S.Batches[b.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.BatchNumber = b.BatchNumber
	existing.ExpirationDate = b.ExpirationDate
	existing.Notes = b.Notes
	r.S.Batches[b.ID] = existing
	return nil
}

func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	return r.list(func(b entity.Batch) bool { return b.ProductID == productID }), nil
}

func (r *BatchRepo) ListAvailableForUpdate(productID string) ([]*entity.Batch, error) {
	return r.list(func(b entity.Batch) bool {
		return b.ProductID == productID && b.QuantityRemaining > 0
	}), nil
}

func (r *BatchRepo) CountByProduct(productID string) (int64, error) {
	var n int64
	for _, b := range r.S.Batches {
		if b.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (r *BatchRepo) ListExpiring(cutoff time.Time) ([]*entity.Batch, error) {
	return r.list(func(b entity.Batch) bool {
		return b.QuantityRemaining > 0 && !b.ExpirationDate.After(cutoff)
	}), nil
}

func (r *BatchRepo) Delete(id string) error {
	if _, ok := r.S.Batches[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.S.Batches, id)
	return nil
}

// list filtra y ordena por vencimiento ascendente (FIFO por vencimiento).
func (r *BatchRepo) list(keep func(entity.Batch) bool) []*entity.Batch {
	var out []*entity.Batch
	for _, b := range r.S.Batches {
		if keep(b) {
			cp := b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpirationDate.Equal(out[j].ExpirationDate) {
			return out[i].ExpirationDate.Before(out[j].ExpirationDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

type MovementRepo struct{ S *Store }

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.S.Movements = append(r.S.Movements, *m)
	return nil
}

func (r *MovementRepo) ListByBatch(batchID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.S.Movements {
		if r.S.Movements[i].BatchID == batchID {
			cp := r.S.Movements[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MovementRepo) ListByReference(reference string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := range r.S.Movements {
		if r.S.Movements[i].Reference == reference {
			cp := r.S.Movements[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MovementRepo) CountByBatch(batchID string) (int64, error) {
	var n int64
	for i := range r.S.Movements {
		if r.S.Movements[i].BatchID == batchID {
			n++
		}
	}
	return n, nil
}

type SaleRepo struct{ S *Store }

var _ repository.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(s *entity.Sale) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	r.S.Sales[s.ID] = *s
	return nil
}

func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.S.SaleItems = append(r.S.SaleItems, *item)
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	if s, ok := r.S.Sales[id]; ok {
		cp := s
		return &cp, nil
	}
	return nil, nil
}

func (r *SaleRepo) GetItems(saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	for i := range r.S.SaleItems {
		if r.S.SaleItems[i].SaleID == saleID {
			cp := r.S.SaleItems[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *SaleRepo) Update(s *entity.Sale) error {
	if _, ok := r.S.Sales[s.ID]; !ok {
		return domain.ErrNotFound
	}
	r.S.Sales[s.ID] = *s
	return nil
}

func (r *SaleRepo) DeleteItems(saleID string) error {
	kept := r.S.SaleItems[:0]
	for _, it := range r.S.SaleItems {
		if it.SaleID != saleID {
			kept = append(kept, it)
		}
	}
	r.S.SaleItems = kept
	return nil
}

func (r *SaleRepo) Delete(id string) error {
	if _, ok := r.S.Sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.S.Sales, id)
	return r.DeleteItems(id)
}

func (r *SaleRepo) List(limit, offset int) ([]*entity.Sale, error) {
	var all []*entity.Sale
	for _, s := range r.S.Sales {
		cp := s
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SaleDate.After(all[j].SaleDate) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *SaleRepo) ListByClient(clientID string, limit, offset int) ([]*entity.Sale, error) {
	all, err := r.List(0, 0)
	if err != nil {
		return nil, err
	}
	var out []*entity.Sale
	for _, s := range all {
		if s.ClientID == clientID {
			out = append(out, s)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type ClientRepo struct{ S *Store }

var _ repository.ClientRepository = (*ClientRepo)(nil)

func (r *ClientRepo) Create(c *entity.Client) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	r.S.Clients[c.ID] = *c
	return nil
}

func (r *ClientRepo) GetByID(id string) (*entity.Client, error) {
	if c, ok := r.S.Clients[id]; ok {
		cp := c
		return &cp, nil
	}
	return nil, nil
}

type UserRepo struct{ S *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	r.S.Users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	if u, ok := r.S.Users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (r *UserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.S.Users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

type SupplierRepo struct{ S *Store }

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

func (r *SupplierRepo) Create(s *entity.Supplier) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	r.S.Suppliers[s.ID] = *s
	return nil
}

func (r *SupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	if s, ok := r.S.Suppliers[id]; ok {
		cp := s
		return &cp, nil
	}
	return nil, nil
}

type ReportRepo struct{ S *Store }

var _ repository.ReportRepository = (*ReportRepo)(nil)

func (r *ReportRepo) GetBatchInventorySummary(_ context.Context, expiryCutoff time.Time) (*repository.BatchInventorySummary, error) {
	summary := &repository.BatchInventorySummary{TotalInventoryValue: decimal.Zero}
	perProduct := make(map[string]*repository.ProductBatchSummary)
	for _, b := range r.S.Batches {
		if b.QuantityRemaining <= 0 {
			continue
		}
		summary.TotalActiveBatches++
		if !b.ExpirationDate.After(expiryCutoff) {
			summary.ExpiringWithinDays++
		}
		summary.TotalInventoryValue = summary.TotalInventoryValue.Add(
			decimal.NewFromInt(b.QuantityRemaining).Mul(b.UnitCost))
		p := perProduct[b.ProductID]
		if p == nil {
			name := r.S.Products[b.ProductID].Name
			p = &repository.ProductBatchSummary{ProductID: b.ProductID, ProductName: name}
			perProduct[b.ProductID] = p
		}
		p.BatchCount++
		p.TotalRemaining += b.QuantityRemaining
	}
	for _, p := range perProduct {
		summary.Products = append(summary.Products, *p)
	}
	sort.Slice(summary.Products, func(i, j int) bool {
		return summary.Products[i].ProductName < summary.Products[j].ProductName
	})
	return summary, nil
}

func (r *ReportRepo) GetStockDivergences(_ context.Context) ([]repository.StockDivergence, error) {
	batchSums := make(map[string]int64)
	for _, b := range r.S.Batches {
		batchSums[b.ProductID] += b.QuantityRemaining
	}
	var out []repository.StockDivergence
	for productID, sum := range batchSums {
		level := r.S.Stock[productID].Quantity
		if level != sum {
			out = append(out, repository.StockDivergence{
				ProductID:      productID,
				ProductName:    r.S.Products[productID].Name,
				StockLevel:     level,
				BatchRemaining: sum,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// ── TxRunner ─────────────────────────────────────────────────────────────────

// TxRunner ejecuta los callbacks contra el Store con rollback por snapshot:
// si fn falla, el estado vuelve al punto de inicio, como una tx real.
type TxRunner struct{ S *Store }

var _ batches.TxRunner = (*TxRunner)(nil)
var _ sales.TxRunner = (*TxRunner)(nil)

func (r *TxRunner) RunBatch(_ context.Context, fn func(
	repository.BatchRepository,
	repository.StockMovementRepository,
	repository.StockRepository,
	repository.ProductRepository,
) error) error {
	snap := r.S.snapshot()
	err := fn(&BatchRepo{S: r.S}, &MovementRepo{S: r.S}, &StockRepo{S: r.S}, &ProductRepo{S: r.S})
	if err != nil {
		r.S.restore(snap)
	}
	return err
}

func (r *TxRunner) RunSale(_ context.Context, fn func(
	repository.SaleRepository,
	repository.StockRepository,
	repository.ProductRepository,
	repository.BatchRepository,
	repository.StockMovementRepository,
) error) error {
	snap := r.S.snapshot()
	err := fn(&SaleRepo{S: r.S}, &StockRepo{S: r.S}, &ProductRepo{S: r.S}, &BatchRepo{S: r.S}, &MovementRepo{S: r.S})
	if err != nil {
		r.S.restore(snap)
	}
	return err
}
