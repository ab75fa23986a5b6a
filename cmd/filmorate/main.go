package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filmorate/internal/api"
	"filmorate/internal/config"
	grpcServer "filmorate/internal/grpc"
	"filmorate/internal/service"
	"filmorate/internal/store"

	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// stores хранилища выбранного бэкенда и функция их закрытия
type stores struct {
	films   store.FilmStore
	users   store.UserStore
	catalog store.CatalogStore
	close   func() error
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Info("In-memory stores initialized")
		users := store.NewMemoryUserStore(logger)
		return &stores{
			films:   store.NewMemoryFilmStore(users, logger),
			users:   users,
			catalog: store.NewMemoryCatalogStore(),
			close:   func() error { return nil },
		}, nil
	}

	driver := store.DriverPostgres
	if cfg.Storage == config.StorageSQLite {
		driver = store.DriverSQLite
	}
	db, err := store.Open(ctx, driver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Bootstrap(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}

	films, err := store.NewSQLFilmStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	users, err := store.NewSQLUserStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	catalog, err := store.NewSQLCatalogStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("SQL stores initialized", slog.String("driver", driver))
	return &stores{films: films, users: users, catalog: catalog, close: db.Close}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		logger.Info("Closing storage...")
		if err := st.close(); err != nil {
			logger.Error("Failed to close storage", slog.String("error", err.Error()))
		}
	}()

	filmService := service.NewFilmService(st.films, st.users, cfg.TopFilmsDefault, logger)
	userService := service.NewUserService(st.users, logger)
	catalogService := service.NewCatalogService(st.catalog)

	// --- gRPC ---
	grpcSrv, healthSrv := grpcServer.NewGRPCServer(grpcServer.NewServer(filmService, userService, logger), logger)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on port %s: %w", cfg.GRPCPort, err)
	}

	// --- HTTP ---
	handler := api.NewHTTPHandler(filmService, userService, catalogService, logger, api.NewValidator())
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server starting", slog.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("gRPC server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Filmorate shutting down...")
		healthSrv.SetServingStatus(grpcServer.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
		} else {
			logger.Info("HTTP server gracefully stopped.")
		}
		grpcSrv.GracefulStop()
		logger.Info("gRPC server gracefully stopped.")
		return nil
	})
	return g.Wait()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	logger.Info("Configuration loaded", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Filmorate stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
