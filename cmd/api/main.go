package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/parking-ticket-service/internal/api/http"
	"github.com/spec-kit/parking-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-ticket-service/internal/config"
	"github.com/spec-kit/parking-ticket-service/internal/events"
	"github.com/spec-kit/parking-ticket-service/internal/observability"
	"github.com/spec-kit/parking-ticket-service/internal/persistence"
	"github.com/spec-kit/parking-ticket-service/internal/pricing"
	"github.com/spec-kit/parking-ticket-service/internal/repository"
	"github.com/spec-kit/parking-ticket-service/internal/service"
	"github.com/spec-kit/parking-ticket-service/internal/worker"
	"github.com/spec-kit/parking-ticket-service/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger,
		zap.String("service", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version))
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tickets, closeStore := openTicketStore(ctx, cfg, logger)
	defer closeStore()

	tariff, err := pricing.NewTariff(cfg.Pricing.BlockMinutes, cfg.Pricing.BlockRate, cfg.Pricing.CurrencySymbol)
	if err != nil {
		logger.Fatal("invalid pricing config", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var publisher *events.KafkaPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer publisher.Close() //nolint:errcheck
		logger.Info("publishing ticket events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, metrics), dispatcher, publisher)

	parkingService := service.NewParkingService(service.ParkingDependencies{
		TicketRepo: tickets,
		Dispatcher: dispatcher,
		Tariff:     tariff,
		Logger:     logger,
	})

	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName:        cfg.App.Name,
		Logger:         logger,
		Metrics:        metrics,
		RequestTimeout: cfg.App.RequestTimeout(),
		Routes: httptransport.RouteConfig{
			Parking: handlers.NewParkingHandler(parkingService),
		},
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Backend))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	if addr := cfg.App.AdminAddr(); addr != "" {
		admin := httptransport.NewAdminServer(cfg.App.Name, httptransport.AdminRouteConfig{
			Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, parkingService),
			Metrics: metrics,
		})
		go func() {
			if err := admin.Listen(addr); err != nil {
				logger.Error("admin listen", zap.Error(err))
			}
		}()
		defer admin.Shutdown() //nolint:errcheck
	}

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openTicketStore connects the configured backend and returns its cleanup.
func openTicketStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.TicketRepository, func()) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.Files, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		return repository.NewTicketRepository(pg.PoolHandle()), pg.Close
	case config.StoreBackendRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		return repository.NewRedisTicketRepository(rdb.Client, cfg.Redis.KeyPrefix), rdb.Close
	default:
		logger.Warn("using in-memory ticket store; tickets are lost on restart")
		return repository.NewMemoryTicketRepository(), func() {}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
