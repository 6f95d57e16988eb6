package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/purchasing"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

type txRunner interface {
	inventory.TxRunner
	purchasing.TxRunner
}

// storage agrupa lo que cada driver aporta a los ledgers.
type storage struct {
	tx        txRunner
	movements repository.MovementRepository
	products  repository.ProductStockRepository
	orders    repository.OrderRepository
	audit     repository.AuditRepository // nil salvo AUDIT_SINK=postgres
	close     func()
}

type storageOpener func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("audit_sink", cfg.Audit.Sink).
		Msg("iniciando aplicación")

	if err := run(cfg, log, openStorage); err != nil {
		log.Fatal().Err(err).Msg("arranque")
	}
	log.Info().Msg("aplicación detenida")
}

// run arma y sirve la aplicación hasta SIGINT/SIGTERM. Todo error de arranque vuelve por aquí
// para que los defer cierren lo ya abierto.
func run(cfg *config.Config, log *logger.Logger, open storageOpener) error {
	ctx := context.Background()
	store, err := open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("almacenamiento: %w", err)
	}
	defer store.close()

	ledgerMetrics := metrics.NewLedger("inventario")

	var auditor inventory.Auditor = audit.Nop{}
	var recorder *audit.Recorder
	switch cfg.Audit.Sink {
	case config.AuditSinkPostgres:
		recorder = audit.NewRecorder(store.audit, cfg.Audit.Buffer, cfg.Audit.Timeout, log, ledgerMetrics)
	case config.AuditSinkRedis:
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer client.Close()
		sink := infraredis.NewAuditStream(client, cfg.Redis.Stream, cfg.Redis.MaxLen)
		recorder = audit.NewRecorder(sink, cfg.Audit.Buffer, cfg.Audit.Timeout, log, ledgerMetrics)
	}
	if recorder != nil {
		auditor = recorder
	}

	movementLedger := inventory.NewMovementLedger(store.tx, store.movements, log,
		inventory.WithAuditor(auditor),
		inventory.WithMetrics(ledgerMetrics),
	)
	replenishmentUC := inventory.NewReplenishmentUseCase(store.products)
	orderLedger := purchasing.NewOrderLedger(store.tx, store.orders, log,
		purchasing.WithAuditor(auditor),
		purchasing.WithMetrics(ledgerMetrics),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "driver": cfg.DB.Driver})
	})
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(ledgerMetrics.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements:     movementLedger,
		Replenishment: replenishmentUC,
		Orders:        orderLedger,
		Logger:        log,
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
	if recorder != nil {
		if err := recorder.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("auditoría pendiente sin escribir")
		}
	}
	return nil
}

// openStorage abre PostgreSQL (aplicando migraciones si DB_AUTO_MIGRATE) o el almacén en memoria.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			tx:        s,
			movements: s.Movements(),
			products:  s.Products(),
			orders:    s.Orders(),
			close:     func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		mg, err := postgres.NewMigrator(ctx, cfg.DB.ConnectionString(), log)
		if err != nil {
			return nil, err
		}
		err = mg.Up()
		_ = mg.Close()
		if err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:        postgres.NewTxRunner(pool),
		movements: postgres.NewMovementRepository(pool),
		products:  postgres.NewProductStockRepository(pool),
		orders:    postgres.NewOrderRepository(pool),
		audit:     postgres.NewAuditRepository(pool),
		close:     pool.Close,
	}, nil
}
