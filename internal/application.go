package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/minigames-backend/internal/config"
	"github.com/rocketscienceinc/minigames-backend/internal/metrics"
	"github.com/rocketscienceinc/minigames-backend/internal/pkg"
	"github.com/rocketscienceinc/minigames-backend/internal/repository"
	"github.com/rocketscienceinc/minigames-backend/internal/repository/storage"
	"github.com/rocketscienceinc/minigames-backend/internal/reward"
	"github.com/rocketscienceinc/minigames-backend/internal/session"
	"github.com/rocketscienceinc/minigames-backend/internal/supervisor"
	"github.com/rocketscienceinc/minigames-backend/internal/usecase"
	"github.com/rocketscienceinc/minigames-backend/transport/rest"
	"github.com/rocketscienceinc/minigames-backend/transport/websocket"
)

var (
	ErrAddrNotFound     = errors.New("redis address string is empty")
	ErrDSNNotFound      = errors.New("postgres dsn is empty")
	ErrUnknownLedger    = errors.New("unknown ledger driver")
	ErrArchiveNeedRedis = errors.New("outcome archive needs redis")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	var redisClient *redis.Client
	if conf.Ledger.Driver == config.LedgerRedis || conf.Archive.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		redisClient = redisStorage.Connection
	}

	ledger, closeLedger, err := newLedger(ctx, conf, redisClient)
	if err != nil {
		return err
	}
	defer closeLedger()

	var outcomeRepo repository.OutcomeRepository
	if conf.Archive.Enabled {
		if redisClient == nil {
			return ErrArchiveNeedRedis
		}
		outcomeRepo = repository.NewOutcomeRepository(redisClient, conf.Archive.TTL)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gameManager := usecase.NewGameManager(
		logger,
		conf.Games,
		session.NewRegistry(),
		supervisor.New(logger, clock.New()),
		reward.NewReporter(logger, ledger),
		outcomeRepo,
		metrics.New(registry),
		pkg.Random{},
	)

	router := rest.NewRouter(
		rest.NewHandler(logger, gameManager),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		websocket.New(logger, gameManager),
	)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort, "ledger", conf.Ledger.Driver, "archive", conf.Archive.Enabled)
		if httpErr := rest.Start(ctx, conf.HTTPPort, router); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

func newLedger(ctx context.Context, conf *config.Config, redisClient *redis.Client) (repository.LedgerRepository, func(), error) {
	switch conf.Ledger.Driver {
	case config.LedgerMemory:
		return repository.NewMemoryLedger(), func() {}, nil
	case config.LedgerRedis:
		return repository.NewRedisLedger(redisClient), func() {}, nil
	case config.LedgerPostgres:
		if conf.Postgres.DSN == "" {
			return nil, nil, ErrDSNNotFound
		}

		postgresStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		if err = postgresStorage.Init(ctx); err != nil {
			postgresStorage.Close()
			return nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
		}

		return repository.NewPostgresLedger(postgresStorage.Connection), postgresStorage.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownLedger, conf.Ledger.Driver)
	}
}
