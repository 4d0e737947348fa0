// seed puebla la base con datos de demostración: un usuario admin, clientes,
// proveedores, un catálogo de productos de farmacia y lotes iniciales con su
// movimiento de creación.
//
// Uso: go run ./cmd/seed
// Idempotencia básica: si el admin ya existe, termina sin tocar nada.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmorales/farmapos-api/internal/application/batches"
	"github.com/dmorales/farmapos-api/internal/application/dto"
	"github.com/dmorales/farmapos-api/internal/application/ports"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
	"github.com/dmorales/farmapos-api/internal/infrastructure/cache"
	"github.com/dmorales/farmapos-api/internal/infrastructure/postgres"
	"github.com/dmorales/farmapos-api/pkg/config"
)

const adminEmail = "admin@farmapos.local"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("cargar configuración: %v", err)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fail("conexión a PostgreSQL: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	existing, err := userRepo.FindByEmail(adminEmail)
	if err != nil {
		fail("verificar admin: %v", err)
	}
	if existing != nil {
		fmt.Println("la base ya tiene datos de demostración, nada que hacer")
		return
	}

	now := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		fail("hash de contraseña: %v", err)
	}
	admin := &entity.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		Name:         "Administrador",
		Role:         entity.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(admin); err != nil {
		fail("crear admin: %v", err)
	}

	clientRepo := postgres.NewClientRepository(pool)
	client := &entity.Client{Name: "Público general", Contact: "", CreatedAt: now}
	if err := clientRepo.Create(client); err != nil {
		fail("crear cliente: %v", err)
	}

	supplierRepo := postgres.NewSupplierRepository(pool)
	supplier := &entity.Supplier{Name: "Distribuidora Central", Contact: "ventas@distcentral.mx", CreatedAt: now}
	if err := supplierRepo.Create(supplier); err != nil {
		fail("crear proveedor: %v", err)
	}

	productRepo := postgres.NewProductRepository(pool)
	products := []*entity.Product{
		{
			SKU: "PARA-500", Name: "Paracetamol 500mg c/20",
			SalePrice:     decimal.NewFromFloat(45.00),
			PurchasePrice: decimal.NewFromFloat(28.00),
			TaxRate:       decimal.Zero, // medicamento: tasa cero
			CreatedAt:     now, UpdatedAt: now,
		},
		{
			SKU: "IBU-400", Name: "Ibuprofeno 400mg c/10",
			SalePrice:     decimal.NewFromFloat(62.50),
			PurchasePrice: decimal.NewFromFloat(39.00),
			TaxRate:       decimal.Zero,
			CreatedAt:     now, UpdatedAt: now,
		},
		{
			SKU: "GEL-ANT", Name: "Gel antibacterial 250ml",
			SalePrice:     decimal.NewFromFloat(38.00),
			PurchasePrice: decimal.NewFromFloat(22.00),
			TaxRate:       decimal.NewFromFloat(0.16),
			CreatedAt:     now, UpdatedAt: now,
		},
	}
	for _, p := range products {
		if err := productRepo.Create(p); err != nil {
			fail("crear producto %s: %v", p.SKU, err)
		}
	}

	// Lotes iniciales vía el caso de uso: registra el movimiento de creación
	// y abona el Stock Ledger en la misma transacción.
	batchRepo := postgres.NewBatchRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout)
	batchUC := batches.NewUseCase(
		txRunner, productRepo, batchRepo, movRepo, supplierRepo,
		postgres.NewReportRepository(pool),
		cache.NoopSummaryCache{}, ports.NopAuditLogger{},
		cfg.Inventory.ExpiryHorizonDays,
	)

	seedBatches := []dto.CreateBatchRequest{
		{
			ProductID: products[0].ID, BatchNumber: "L2408-A",
			ExpirationDate: now.AddDate(1, 0, 0).Format("2006-01-02"),
			QuantityReceived: 200, UnitCost: decimal.NewFromFloat(28.00),
			SupplierID: supplier.ID, ActorID: admin.ID,
		},
		{
			ProductID: products[0].ID, BatchNumber: "L2501-B",
			ExpirationDate: now.AddDate(2, 0, 0).Format("2006-01-02"),
			QuantityReceived: 300, UnitCost: decimal.NewFromFloat(27.50),
			SupplierID: supplier.ID, ActorID: admin.ID,
		},
		{
			ProductID: products[1].ID, BatchNumber: "L2406-C",
			ExpirationDate: now.AddDate(0, 6, 0).Format("2006-01-02"),
			QuantityReceived: 150, UnitCost: decimal.NewFromFloat(39.00),
			SupplierID: supplier.ID, ActorID: admin.ID,
		},
	}
	for _, in := range seedBatches {
		if _, err := batchUC.CreateBatch(ctx, in); err != nil {
			fail("crear lote %s: %v", in.BatchNumber, err)
		}
	}

	fmt.Printf("datos de demostración creados (admin: %s / admin123)\n", adminEmail)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
