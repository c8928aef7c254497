package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/robustonian/url-shortener/internal/config"
	"github.com/robustonian/url-shortener/internal/database/postgres"
	"github.com/robustonian/url-shortener/internal/database/sqlite"
	"github.com/robustonian/url-shortener/internal/service"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/robustonian/url-shortener/internal/api/http"
	pgdb "github.com/robustonian/url-shortener/pkg/postgres"
)

// Run wires the storage backend, service and HTTP server together and
// blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := httplog.NewLogger("url-shortener", httplog.Options{
		JSON:     cfg.Env == config.EnvProd,
		Concise:  cfg.Env != config.EnvProd,
		LogLevel: slog.LevelInfo,
	})

	db, urlRepo, err := setupStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to setup storage: %w", op, err)
	}

	urlSvc := service.NewURLService(urlRepo, cfg.ShortCodeLength)
	router := myhttp.NewRouter(logger, urlSvc, cfg.BaseURL)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return db.Close()
	})

	g.Go(func() error {
		logger.Info("server started", slog.String("addr", server.Addr))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// setupStorage opens the backend selected by the storage driver and returns
// the database handle together with the repository bound to it.
func setupStorage(ctx context.Context, cfg *config.Config) (*sqlx.DB, service.URLRepository, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}

		return db, sqlite.NewURLRepository(db), nil
	case config.DriverPostgres:
		db, err := pgdb.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}

		if err := pgdb.RunMigrations("file://migrations", cfg.Storage.DSN); err != nil {
			db.Close()
			return nil, nil, err
		}

		return db, postgres.NewURLRepository(db), nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %q", cfg.Storage.Driver)
	}
}
