package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmorales/farmapos-api/internal/application/auth"
	"github.com/dmorales/farmapos-api/internal/application/batches"
	"github.com/dmorales/farmapos-api/internal/application/inventory"
	"github.com/dmorales/farmapos-api/internal/application/sales"
	"github.com/dmorales/farmapos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.UseCase
	SaleUC      *sales.UseCase
	BatchUC     *batches.UseCase
	Consistency *inventory.ConsistencyUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Ventas
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Update)
	salesGroup.Delete("/:id", RequireRole(entity.RoleAdmin), saleHandler.Delete)

	// Lotes y libro de movimientos
	batchesGroup := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.BatchUC)
	batchesGroup.Post("/", batchHandler.Create)
	batchesGroup.Get("/expiring", batchHandler.Expiring)
	batchesGroup.Get("/summary", batchHandler.Summary)
	batchesGroup.Post("/allocate", batchHandler.Allocate)
	batchesGroup.Get("/product/:productId", batchHandler.ListByProduct)
	batchesGroup.Post("/:id/movements", batchHandler.RecordMovement)
	batchesGroup.Get("/:id/movements", batchHandler.Movements)
	batchesGroup.Get("/:id/expiration", batchHandler.ExpiryStatus)
	batchesGroup.Put("/:id", batchHandler.Update)
	batchesGroup.Delete("/:id", RequireRole(entity.RoleAdmin), batchHandler.Delete)

	// Consistencia Stock Ledger vs lotes
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Consistency)
	invGroup.Get("/consistency", inventoryHandler.CheckConsistency)
}
