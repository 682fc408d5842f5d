package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/epa-bienestar/vitals-bots/internal/bots"
	"github.com/epa-bienestar/vitals-bots/internal/bots/hypertension"
	"github.com/epa-bienestar/vitals-bots/internal/bots/vitals"
	"github.com/epa-bienestar/vitals-bots/internal/config"
	"github.com/epa-bienestar/vitals-bots/internal/platform/fhir"
	"github.com/epa-bienestar/vitals-bots/internal/platform/mail"
	"github.com/epa-bienestar/vitals-bots/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bots-server",
		Short: "Clinical monitoring bots for the EPA Bienestar platform",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(botsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bot event server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func botsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bots",
		Short: "Print the registered bot roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.Nop()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine, err := buildEngine(context.Background(), cfg, logger)
			if err != nil {
				return err
			}
			fmt.Printf("%-20s %-30s %-12s %s\n", "ID", "NAME", "TRIGGER", "RESOURCE")
			for _, b := range engine.List("") {
				fmt.Printf("%-20s %-30s %-12s %s\n", b.ID, b.Name, b.Trigger.Type, b.Trigger.ResourceType)
			}
			return nil
		},
	}
}

// buildEngine wires the data store, mail sender, and bots into an Engine.
func buildEngine(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*bots.Engine, error) {
	store := fhir.NewClient(cfg.FHIRBaseURL, cfg.FHIRToken, logger)

	var sender mail.Sender
	if cfg.EmailAlerts {
		ses, err := mail.NewSESSender(ctx, cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretKey)
		if err != nil {
			return nil, fmt.Errorf("init ses sender: %w", err)
		}
		sender = ses
	}

	notifier := hypertension.NewNotifier(store, sender, hypertension.Config{
		Strategy:     cfg.ResolverStrategy,
		EmailEnabled: cfg.EmailAlerts,
		FromAddress:  cfg.AlertFromEmail,
		AdminAddress: cfg.AdminEmail,
	}, logger)

	engine := bots.NewEngine(logger)
	if err := engine.Register(vitals.NewBot(store, logger).Definition()); err != nil {
		return nil, err
	}
	if err := engine.Register(hypertension.NewBot(store, notifier, logger).Definition()); err != nil {
		return nil, err
	}
	return engine, nil
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	engine, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build bot engine")
	}
	logger.Info().Int("bots", len(engine.List(""))).Msg("bot engine ready")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	// Bot runtime routes, guarded by the webhook secret
	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.WebhookAuth(cfg.WebhookSecret))
	bots.NewHTTPHandler(engine).RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
