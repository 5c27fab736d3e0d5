package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PhilHem/netlog/backend/config"
	"github.com/PhilHem/netlog/backend/database"
	"github.com/PhilHem/netlog/backend/handlers"
	"github.com/PhilHem/netlog/backend/logger"
	"github.com/PhilHem/netlog/backend/middleware"
	"github.com/PhilHem/netlog/backend/server"
	"github.com/PhilHem/netlog/backend/service"
	"github.com/PhilHem/netlog/backend/storage"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 10 * time.Second
	diagnosticsPeriod = time.Hour
	sweepPeriod       = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.C

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close(db)

	// Set before any store is built; stores capture the default logger.
	slog.SetDefault(slog.New(logger.NewHandler(db, os.Stdout, logger.ParseLevel(cfg.Diagnostics.Level))))

	dbStore := storage.NewDBStore(db, nil)
	textStore := storage.NewTextStore(cfg.TextLog.Path, nil)
	svc := service.New(dbStore, textStore, nil)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)

	router := server.NewRouter(server.Deps{
		Logs:            handlers.NewLogsHandler(svc, cfg.HTTP.MaxBodySize),
		Diagnostics:     handlers.NewDiagnosticsHandler(db),
		DB:              dbStore,
		Limiter:         limiter,
		IngestTokenHash: cfg.Auth.IngestTokenHash,
		AdminTokenHash:  cfg.Auth.AdminHash(),
	})
	srv := server.New(cfg.Listen, router, cfg.TLS)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down", "source", "server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	g.Go(func() error {
		return logger.CleanupOldDiagnostics(ctx, db, cfg.Diagnostics.Retention, diagnosticsPeriod)
	})
	g.Go(func() error {
		ticker := time.NewTicker(sweepPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	})

	return g.Wait()
}
