package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/Artfain/dat-exchange/api"
	"github.com/Artfain/dat-exchange/core"
)

var (
	configPath string
	configSet  bool
)

var rootCmd = &cobra.Command{
	Use:   "datd",
	Short: "Digital asset trading ledger node",
	Long: `datd runs a single-process authoritative ledger for user wallets,
digital assets and marketplace listings, batching committed operations
into proof-of-work-sealed blocks. It serves an HTTP JSON API and a
WebSocket event feed.`,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ledger node",
	RunE: func(cmd *cobra.Command, args []string) error {
		configSet = cmd.Flags().Changed("config")
		return serve()
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "datd.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := loadConfig(configPath, configSet)
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	nodeID := cfg.NodeName
	if nodeID == "" {
		nodeID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	bus := EventBus.New()
	exchange := core.NewExchange(nodeID, logger, bus)
	hub, err := api.NewHub(bus, logger)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		api.RequestLogger(logger),
		api.RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)),
		api.Metrics(),
	)
	api.NewServer(exchange, hub, logger).Register(router)
	api.RegisterMetrics(router)

	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("listen", cfg.Listen).Str("node", nodeID).Msg("ledger node started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
