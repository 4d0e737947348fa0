package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dmorales/farmapos-api/internal/application/auth"
	"github.com/dmorales/farmapos-api/internal/application/batches"
	"github.com/dmorales/farmapos-api/internal/application/inventory"
	"github.com/dmorales/farmapos-api/internal/application/ports"
	"github.com/dmorales/farmapos-api/internal/application/sales"
	infraaudit "github.com/dmorales/farmapos-api/internal/infrastructure/audit"
	infracache "github.com/dmorales/farmapos-api/internal/infrastructure/cache"
	"github.com/dmorales/farmapos-api/internal/infrastructure/postgres"
	httpRouter "github.com/dmorales/farmapos-api/internal/interfaces/http"
	"github.com/dmorales/farmapos-api/pkg/config"
	"github.com/dmorales/farmapos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout)

	// Cache del resumen de lotes: Redis si está configurado, no-op si no.
	var summaryCache ports.SummaryCache = infracache.NoopSummaryCache{}
	if cfg.Redis.Addr != "" {
		redisCache := infracache.NewRedisSummaryCache(
			cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SummaryTTL,
		)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, resumen sin cache")
		} else {
			summaryCache = redisCache
			defer redisCache.Close()
		}
	}

	auditSink := infraaudit.NewZerologSink(log.Zerolog())

	batchUC := batches.NewUseCase(
		txRunner, productRepo, batchRepo, movRepo, supplierRepo, reportRepo,
		summaryCache, auditSink, cfg.Inventory.ExpiryHorizonDays,
	)
	saleUC := sales.NewUseCase(
		txRunner, batchUC, saleRepo, productRepo, clientRepo, userRepo, auditSink,
	)
	consistencyUC := inventory.NewConsistencyUseCase(reportRepo, log.Zerolog())
	authUC := auth.NewUseCase(userRepo, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)

	// Verificación periódica StockLevel == Σ lotes
	consistencyCtx, stopConsistency := context.WithCancel(ctx)
	defer stopConsistency()
	go func() {
		ticker := time.NewTicker(cfg.Inventory.ConsistencyInterval)
		defer ticker.Stop()
		for {
			select {
			case <-consistencyCtx.Done():
				return
			case <-ticker.C:
				if _, err := consistencyUC.CheckConsistency(consistencyCtx); err != nil {
					log.Error().Err(err).Msg("verificación de consistencia")
				}
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		SaleUC:      saleUC,
		BatchUC:     batchUC,
		Consistency: consistencyUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
