// Package main provides the entry point for the Shortlink URL shortener service.
//
//	@title			Shortlink API
//	@version		1.0.0
//	@description	URL shortener with expiring links and click statistics.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"context"
	"errors"
	lg "log"
	"net"
	"net/http"
	"os/signal"
	"shortlink-backend/internal/config"
	"shortlink-backend/internal/database"
	httpHandler "shortlink-backend/internal/handler/http"
	"shortlink-backend/internal/metrics"
	"shortlink-backend/internal/repository"
	"shortlink-backend/internal/repository/memory"
	"shortlink-backend/internal/repository/mongodb"
	"shortlink-backend/internal/repository/postgres"
	"shortlink-backend/internal/service"
	"shortlink-backend/internal/sweeper"
	"shortlink-backend/pkg/geo"
	"shortlink-backend/pkg/logger"
	"shortlink-backend/pkg/useragent"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "shortlink-backend/docs" // Import swagger docs
)

func main() {
	cfg := config.MustLoad()

	log, shipper, err := logger.New(cfg.Env, cfg.Logging)
	if err != nil {
		lg.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if shipper != nil {
			if err := shipper.Stop(); err != nil {
				lg.Printf("ERROR: failed to stop remote log shipper: %v\n", err)
			}
		}
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting shortlink service", zap.String("env", cfg.Env), zap.String("driver", cfg.Database.Driver))

	if err := run(ctx, cfg, log); err != nil {
		log.Error("service stopped with error", zap.Error(err))
		return
	}
	log.Info("shortlink service stopped")
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	// An unreachable database is not fatal: the selector pins the in-memory store instead.
	durable, closeDurable := openDurable(ctx, cfg, log)
	defer closeDurable()

	selector := repository.NewSelector(durable,
		func() repository.Storage { return memory.New() },
		log.Named("storage"),
		repository.WithPingTimeout(cfg.Database.PingTimeout),
		repository.OnFallback(metrics.SetStorageBackend),
	)
	selector.Active(ctx)
	metrics.SetStorageBackend(selector.Current())
	log.Info("storage backend selected", zap.String("backend", selector.Current()))

	var locator service.GeoLocator
	if cfg.Geo.DBPath != "" {
		reader, err := geo.Open(cfg.Geo.DBPath, log.Named("geo"))
		if err != nil {
			log.Warn("geoip database unavailable, clicks will have unknown location", zap.Error(err))
		} else {
			locator = reader
			defer reader.Close()
		}
	}

	var devices service.DeviceParser
	parser, err := useragent.NewParser(cfg.UserAgent.RegexesPath, log.Named("useragent"))
	if err != nil {
		log.Warn("failed to load User-Agent regexes, using bundled definitions", zap.Error(err))
		parser, err = useragent.NewParser("", log.Named("useragent"))
	}
	if err == nil {
		devices = parser
	}

	urlShortener := service.NewURLShortener(selector, locator, devices, &cfg.URLShortener, log.Named("service"))

	if cfg.Sweeper.Enabled {
		var locker sweeper.Locker
		if cfg.Redis.Enabled {
			redisLocker, err := sweeper.NewRedisLocker(ctx, cfg.Redis.URL)
			if err != nil {
				log.Warn("redis unavailable, sweeping without distributed lock", zap.Error(err))
			} else {
				locker = redisLocker
				defer redisLocker.Close()
			}
		}

		sw := sweeper.New(urlShortener, locker, cfg.Sweeper, log.Named("sweeper"))
		g.Go(func() error {
			return sw.Run(ctx)
		})
	}

	httpAPIServer := httpHandler.NewServer(urlShortener, selector, httpHandler.Options{
		BaseURL:        cfg.URLShortener.BaseURL,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	}, log)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Address,
		Handler:        httpAPIServer.SetupRoutes(),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
		// Requests in flight during shutdown drain instead of failing on the cancelled root context.
		BaseContext: func(_ net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	g.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down HTTP server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openDurable connects the configured database. It returns a nil store when no
// database is configured or it is not ready; close is always safe to call and
// must run only after the HTTP server has drained.
func openDurable(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Durable, func()) {
	dbLog := log.Named("database")
	noop := func() {}

	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewConnection(ctx, &cfg.Database, dbLog)
		if err != nil {
			log.Warn("postgres unavailable", zap.Error(err))
			return nil, noop
		}

		if cfg.Database.AutoMigrate {
			log.Info("running database migrations (auto_migrate: true)")
			if err := database.AutoMigrate(db, dbLog, postgres.Models()...); err != nil {
				log.Error("failed to run database migrations", zap.Error(err))
			}
		} else {
			log.Info("skipping database migrations (auto_migrate: false)")
		}

		closeDB := func() {
			if err := database.Close(db, dbLog); err != nil {
				log.Error("failed to close postgres connection", zap.Error(err))
			}
		}
		return postgres.New(db, log.Named("postgres")), closeDB

	case "mongo":
		db, err := database.NewMongoConnection(ctx, &cfg.Database, dbLog)
		if err != nil {
			log.Warn("mongodb unavailable", zap.Error(err))
			return nil, noop
		}

		closeDB := func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
			defer closeCancel()
			if err := database.CloseMongo(closeCtx, db, dbLog); err != nil {
				log.Error("failed to close mongodb connection", zap.Error(err))
			}
		}

		// Without the unique index concurrent custom shortcodes could both be stored.
		storage := mongodb.New(db, log.Named("mongodb"))
		if err := storage.EnsureIndexes(ctx); err != nil {
			log.Error("failed to create mongodb indexes, using in-memory storage", zap.Error(err))
			closeDB()
			return nil, noop
		}
		return storage, closeDB

	case "none", "":
		log.Info("no database configured, using in-memory storage")
		return nil, noop

	default:
		log.Warn("unknown database driver, using in-memory storage", zap.String("driver", cfg.Database.Driver))
		return nil, noop
	}
}
