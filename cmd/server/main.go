// Command server runs the perizinan HTTP API: sheet previews, column
// standardization, monthly stacking sessions and PKL imports into Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/perizinan/internal/config"
	"github.com/JonMunkholm/perizinan/internal/core"
	"github.com/JonMunkholm/perizinan/internal/database"
	"github.com/JonMunkholm/perizinan/internal/logging"
	"github.com/JonMunkholm/perizinan/internal/metrics"
	"github.com/JonMunkholm/perizinan/internal/resilience"
	"github.com/JonMunkholm/perizinan/internal/web"
)

const sessionSweepInterval = 5 * time.Minute

func main() {
	// A local .env wins over inherited variables.
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "dotenv", envLoaded, "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// run wires the service and serves until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config) error {
	pool, db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	defer db.Close()
	slog.Info("connected to database", "name", databaseName(cfg.Database.URL))

	if err := database.EnsureSchema(ctx, db); err != nil {
		return fmt.Errorf("prepare schema: %w", err)
	}

	catalog, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog %q: %w", cfg.Catalog.Path, err)
	}
	slog.Info("catalog loaded",
		"sectors", len(catalog.Sectors),
		"categories", len(catalog.Categories),
		"import_aliases", len(catalog.ImportAliases),
	)

	m := metrics.NewServerMetrics("perizinan")
	limiter := core.NewImportLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	if err := m.RegisterGauge("import", "slots_active", "Import slots currently in use.", func() float64 {
		return float64(limiter.Active())
	}); err != nil {
		slog.Warn("failed to register import gauge", "error", err)
	}

	service, err := core.NewService(core.Deps{
		Store:    database.New(db),
		Executor: resilience.NewExecutor(resilience.FromConfig(cfg.Resilience)),
		Limiter:  limiter,
		Catalog:  catalog,
		Metrics:  m,
	}, core.Options{
		Workers:     cfg.Extract.Workers,
		PreviewRows: cfg.Extract.PreviewRows,
		SessionTTL:  cfg.Extract.SessionTTL,
		MaxSessions: cfg.Extract.MaxSessions,
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	go service.StartSessionSweeper(ctx, sessionSweepInterval)

	server := web.NewServer(service, cfg, m)
	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		drain(service, server, cfg.Server.ShutdownTimeout)
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// drain lets running imports finish, then closes the listener. Both share
// the shutdown timeout.
func drain(service *core.Service, server *web.Server, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if status := service.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for imports to complete", "active", status.Active, "jobs", status.Jobs)
		if err := service.WaitForImports(ctx); err != nil {
			slog.Warn("imports did not complete in time", "error", err)
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func databaseName(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
