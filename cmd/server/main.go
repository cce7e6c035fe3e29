package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lalith-99/bubblefeed/internal/action"
	"github.com/lalith-99/bubblefeed/internal/api"
	"github.com/lalith-99/bubblefeed/internal/config"
	"github.com/lalith-99/bubblefeed/internal/db"
	"github.com/lalith-99/bubblefeed/internal/observ"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"github.com/lalith-99/bubblefeed/internal/repository/memory"
	"github.com/lalith-99/bubblefeed/internal/repository/postgres"
	"github.com/lalith-99/bubblefeed/internal/seed"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Load config
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// ---------------------------------------------------------------
	// 2. Create logger
	// ---------------------------------------------------------------
	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// ---------------------------------------------------------------
	// Root context
	//
	// Why a signal context instead of context.Background()?
	//   - Startup can block: the Postgres ping, schema DDL, the seed
	//     fixture and the Redis ping all take ctx. If the database is
	//     unreachable, Ctrl-C should abort the connect rather than wait
	//     for the dial timeout.
	//   - The same ctx tells the serve loop below when to start the
	//     graceful shutdown.
	//   - Request handlers do NOT use it. Each request gets its own
	//     context from net/http, which is cancelled when the client goes
	//     away.
	// ---------------------------------------------------------------
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 3. Storage
	//
	// STORAGE_DRIVER=memory needs no database at all, which is handy
	// for demos. Everything else goes through the pgx pool, and the
	// pool's Ping doubles as the /health check.
	// ---------------------------------------------------------------
	repos, health, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	// ---------------------------------------------------------------
	// 4. Seed fixtures
	//
	// A non-empty SEED_FILE implies a schema reset (see
	// Config.ResetOnStartup). The fixture carries explicit ids, so it
	// only applies cleanly to empty tables. Running it against old data
	// would fail on the first duplicate id and leave a partial seed.
	// ---------------------------------------------------------------
	if cfg.SeedFile != "" {
		fx, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed file: %w", err)
		}
		counts, err := seed.Apply(ctx, repos, fx, logger)
		if err != nil {
			return fmt.Errorf("apply seed file: %w", err)
		}
		logger.Info("seed applied",
			zap.String("file", cfg.SeedFile),
			zap.Int("users", counts.Users),
			zap.Int("bubbles", counts.Bubbles),
			zap.Int("bubble_tags", counts.BubbleTags),
			zap.Int("feeds", counts.Feeds),
			zap.Int("feed_tags", counts.FeedTags),
		)
	}

	// ---------------------------------------------------------------
	// 5. VR action store
	//
	// With one server process the in-memory slot is enough. Behind a
	// load balancer every process must see the same action and every
	// websocket must hear about changes made on other processes, which
	// is what ACTION_STORE=redis (key + pub/sub channel) is for.
	// ---------------------------------------------------------------
	actions, closeActions, err := openActionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeActions()

	// ---------------------------------------------------------------
	// 6. HTTP server
	// ---------------------------------------------------------------
	router := api.NewRouter(api.Deps{
		Repos:           repos,
		Actions:         actions,
		Health:          health,
		Logger:          logger,
		RestrictDeletes: cfg.DeletePolicy == config.DeletePolicyRestrict,
		PublicDir:       cfg.PublicDir,
		CORSOrigins:     cfg.CORSOrigins,
	})
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting bubblefeed",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.StorageDriver),
		zap.String("action_store", cfg.ActionStore),
		zap.String("delete_policy", cfg.DeletePolicy),
	)

	// ListenAndServe blocks, so it runs in its own goroutine while this
	// one waits for either a listen error or a shutdown signal.
	// Shutdown stops accepting new connections and waits up to
	// shutdownTimeout for in-flight requests. Hijacked websocket
	// connections are not tracked by Shutdown; their handlers exit when
	// the process does.
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStorage picks the repository backend. The returned health func is
// nil for the memory driver.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Repositories, func(context.Context) error, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage; data is lost on exit")
		return memory.New().Repositories(), nil, func() {}, nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return repository.Repositories{}, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.ResetOnStartup() {
		err = database.ResetSchema(ctx)
	} else {
		err = database.EnsureSchema(ctx)
	}
	if err != nil {
		database.Close()
		return repository.Repositories{}, nil, nil, fmt.Errorf("prepare schema: %w", err)
	}

	return postgres.NewRepositories(database.Pool()), database.Health, database.Close, nil
}

func openActionStore(ctx context.Context, cfg *config.Config) (action.Store, func(), error) {
	if cfg.ActionStore != config.ActionStoreRedis {
		return action.NewMemoryStore(), func() {}, nil
	}
	store, err := action.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}
