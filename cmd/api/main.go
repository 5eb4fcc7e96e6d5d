// @title                       Records Management API
// @version                     1.0
// @description                 Employees, clients, projects and documents with role based access control.
// @BasePath                    /api
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/recordhub/records-system/internal/api"
	"github.com/recordhub/records-system/internal/api/handler"
	"github.com/recordhub/records-system/internal/core/ports"
	"github.com/recordhub/records-system/internal/core/service"
	mongodb "github.com/recordhub/records-system/internal/infrastructure/db/mongo"
	redisdb "github.com/recordhub/records-system/internal/infrastructure/db/redis"
	"github.com/recordhub/records-system/internal/infrastructure/report"
	"github.com/recordhub/records-system/internal/infrastructure/storage"
	"github.com/recordhub/records-system/internal/pkg/config"
	"github.com/recordhub/records-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "records-api",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Datastores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")

	files, err := newFileStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	employees := mongodb.NewEmployeeRepository(db)
	clients := mongodb.NewClientRepository(db)
	projects := mongodb.NewProjectRepository(db)
	documents := mongodb.NewDocumentRepository(db)
	stats := mongodb.NewStatsRepository(db)

	denylist := redisdb.NewTokenDenylist(rdb)
	statsCache := redisdb.NewStatsCache(rdb, cfg.Redis.StatsCacheTTL)

	// --- Services ---
	services := api.Services{
		Auth:      service.NewAuthService(users, denylist, cfg.JWTSecret, cfg.TokenTTL, logger.Named("auth")),
		Users:     service.NewUserService(users, logger.Named("users")),
		Employees: service.NewEmployeeService(employees, users, logger.Named("employees")),
		Clients:   service.NewClientService(clients, projects, users, logger.Named("clients")),
		Projects:  service.NewProjectService(projects, clients, users, logger.Named("projects")),
		Documents: service.NewDocumentService(documents, users, files, logger.Named("documents")),
		Reports: service.NewReportService(service.ReportDeps{
			Employees: employees,
			Clients:   clients,
			Projects:  projects,
			Documents: documents,
			Users:     users,
			Stats:     stats,
			Renderers: map[string]ports.ReportRenderer{
				service.FormatXLSX: report.XLSXRenderer{},
				service.FormatPDF:  report.PDFRenderer{},
			},
		}, logger.Named("reports")),
		Dashboard: service.NewDashboardService(stats, documents, users, statsCache, logger.Named("dashboard")),
	}

	e := api.NewRouter(services, api.Options{
		JWTSecret: cfg.JWTSecret,
		Denylist:  denylist,
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.MongoPinger(db),
			"redis":   handler.RedisPinger(rdb),
		},
		BodyLimit:   cfg.HTTP.MaxBody,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimit:   cfg.HTTP.RateLimit,
		RateWindow:  cfg.HTTP.RateWindow,
		Metrics:     cfg.HTTP.Metrics,
	}, logger.Named("http"))

	// --- Serve until signalled ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

func newFileStorage(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (*storage.Manager, error) {
	var backend storage.Backend
	switch cfg.Driver {
	case config.StorageMinIO:
		b, err := storage.NewMinIOBackend(storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := b.EnsureBucket(ctx, log); err != nil {
			return nil, err
		}
		backend = b
	default:
		b, err := storage.NewDiskBackend(cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		backend = b
	}
	log.Info().Str("driver", cfg.Driver).Msg("file storage ready")
	return storage.NewManager(backend, cfg.MaxUploadBytes, logger.Named("storage")), nil
}
