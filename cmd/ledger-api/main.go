package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
	"github.com/nextup-labs/nxt-ledger/internal/api/middleware"
	"github.com/nextup-labs/nxt-ledger/internal/api/server"
	"github.com/nextup-labs/nxt-ledger/internal/api/shared/executor"
	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/config"
	"github.com/nextup-labs/nxt-ledger/internal/emitter"
	"github.com/nextup-labs/nxt-ledger/internal/ledger"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/metrics"
	"github.com/nextup-labs/nxt-ledger/internal/providers/jetstream"
	"github.com/nextup-labs/nxt-ledger/internal/ratelimit"
	"github.com/nextup-labs/nxt-ledger/internal/registry"
	"github.com/nextup-labs/nxt-ledger/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadLedgerAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         config.SERVICE_LEDGER_API,
		Environment:     cfg.Environment,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting ledger API")

	genesis, balances, err := genesisConfig(cfg.Ledger)
	if err != nil {
		logger.FatalCtx(ctx, "Invalid ledger configuration", zap.Error(err))
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	if err := store.AutoMigrate(db); err != nil {
		logger.FatalCtx(ctx, "Failed to migrate schema", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()

	// Restore the ledger or run genesis
	runtime := chain.NewRuntime(clock)
	ledgerAddr, err := executor.Bootstrap(ctx, runtime, dataStore, executor.BootstrapConfig{
		Genesis:  genesis,
		Balances: balances,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to bootstrap ledger", zap.Error(err))
	}
	metrics.Sequence.Set(float64(runtime.Sequence()))
	logger.InfoCtx(ctx, "Ledger ready",
		zap.String("sale_ledger", ledgerAddr.Hex()),
		zap.Uint64("sequence", runtime.Sequence()),
	)

	// Start the event emitter when a broker is configured
	var em emitter.Emitter
	if cfg.NATS.URL != "" {
		publisher, err := jetstream.NewPublisher(ctx, jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			SubjectPrefix:  cfg.NATS.SubjectPrefix,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, adapter.NewNatsJetStream(), adapter.NewJSON())
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
		}
		defer publisher.Close()

		em = emitter.NewEmitter(emitter.Config{
			CursorName:           cfg.Emitter.CursorName,
			BatchSize:            cfg.Emitter.BatchSize,
			WorkerPoolSize:       cfg.Emitter.WorkerPoolSize,
			PollInterval:         cfg.Emitter.PollInterval,
			RetryInitialInterval: cfg.Emitter.RetryInitialInterval,
			RetryMaxElapsedTime:  cfg.Emitter.RetryMaxElapsedTime,
		}, dataStore, publisher, clock)
	} else {
		logger.WarnCtx(ctx, "NATS URL not configured, ledger events will not be published")
	}

	var denylist registry.Denylist
	if cfg.Auth.DenylistFile != "" {
		denylist, err = registry.LoadDenylist(adapter.NewFileSystem(), adapter.NewJSON(), cfg.Auth.DenylistFile)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to load denylist", zap.Error(err), zap.String("file", cfg.Auth.DenylistFile))
		}
		logger.InfoCtx(ctx, "Loaded denylist", zap.Int("addresses", denylist.Size()))
	}

	srv := server.New(server.Config{
		Debug:          cfg.Debug,
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.Server.IdleTimeout) * time.Second,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MetricsEnabled: cfg.Server.MetricsEnabled,
		Auth: middleware.AuthConfig{
			JWTPublicKey: cfg.Auth.JWTPublicKey,
			APIKeys:      cfg.Auth.APIKeys,
		},
		Limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
			IdleTTL:           cfg.RateLimit.IdleTTL,
		}, clock),
		Denylist: denylist,
	}, executor.NewExecutor(runtime, dataStore, em, ledgerAddr))

	errCh := make(chan error, 2)
	if em != nil {
		go func() {
			if err := em.Start(ctx); err != nil {
				errCh <- fmt.Errorf("emitter: %w", err)
			}
		}()
	}
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- fmt.Errorf("server: %w", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err, zap.String("component", "server"))
	}
	if em != nil {
		if err := em.Stop(shutdownCtx); err != nil {
			logger.ErrorCtx(shutdownCtx, err, zap.String("component", "emitter"))
		}
	}

	logger.Info("Ledger API stopped")
}

// genesisConfig builds the genesis parameters from the ledger configuration
func genesisConfig(cfg config.LedgerConfig) (ledger.GenesisConfig, map[common.Address]*uint256.Int, error) {
	owner, err := cfg.Owner()
	if err != nil {
		return ledger.GenesisConfig{}, nil, err
	}
	price, maxSupply, err := cfg.SaleTerms()
	if err != nil {
		return ledger.GenesisConfig{}, nil, err
	}
	balances, err := cfg.Balances()
	if err != nil {
		return ledger.GenesisConfig{}, nil, err
	}

	return ledger.GenesisConfig{
		Owner:                owner,
		PricePerTokenWei:     price,
		MaxSupply:            maxSupply,
		UtilityTokenName:     cfg.UtilityTokenName,
		UtilityTokenSymbol:   cfg.UtilityTokenSymbol,
		RewardRegistryName:   cfg.RewardRegistryName,
		RewardRegistrySymbol: cfg.RewardRegistrySymbol,
		SkipBind:             !cfg.AutoBind,
	}, balances, nil
}
