package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecoreport/api-go/auth"
	"github.com/ecoreport/api-go/config"
	"github.com/ecoreport/api-go/middleware"
	"github.com/ecoreport/api-go/routes"
	"github.com/ecoreport/api-go/services"
	"github.com/ecoreport/api-go/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := NewEngine(ctx, cfg, log, db)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("starting server", zap.String("port", cfg.Port), zap.String("storage", cfg.StorageBackend))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				log.Error("server stopped", zap.Error(err))
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.RunE = serveCmd.RunE
}

// NewEngine wires storage, services and routes into a gin engine.
func NewEngine(ctx context.Context, cfg *config.Config, log *zap.Logger, db *gorm.DB) (*gin.Engine, error) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)

	deps := routes.Deps{
		Tokens:     tokens,
		Users:      services.NewUserService(db, store, tokens, log),
		Reports:    services.NewReportService(db, store, log),
		Images:     services.NewImageService(db, store, log, cfg.MaxUploadBytes),
		Statistics: services.NewStatisticsService(db),
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(gin.Recovery(), middleware.Logger(log), middleware.CORS(cfg.CORSAllowedOrigins))

	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Metrics = middleware.NewMetrics(reg)
		deps.Gatherer = reg
		r.Use(deps.Metrics.Handler())
	}

	routes.SetupRoutes(r, deps)
	return r, nil
}
