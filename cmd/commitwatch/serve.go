package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/commitwatch/internal/adapter/driven/github"
	slackadapter "github.com/ericfisherdev/commitwatch/internal/adapter/driven/slack"
	"github.com/ericfisherdev/commitwatch/internal/adapter/driven/statefile"
	httphandler "github.com/ericfisherdev/commitwatch/internal/adapter/driving/http"
	"github.com/ericfisherdev/commitwatch/internal/application"
	"github.com/ericfisherdev/commitwatch/internal/config"
	"github.com/ericfisherdev/commitwatch/internal/telemetry"
)

func cmdServe() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:  "serve",
		Usage: "run the monitoring daemon",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to the YAML config file",
				Value:       config.DefaultPath,
				Sources:     cli.EnvVars("COMMITWATCH_CONFIG"),
				Destination: &configPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServe(ctx, configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"config_path", configPath,
		"repositories", len(cfg.Repositories),
		"targets", len(cfg.NotificationTargets),
		"check_interval", cfg.CheckInterval,
		"listen_addr", cfg.ListenAddr,
		"state_path", cfg.StatePath,
	)

	// Wire driven adapters.
	ghClient := githubadapter.NewClient(cfg.GitHubToken)
	store := statefile.NewStore(cfg.StatePath)
	sender := slackadapter.NewSender(cfg.SlackToken)
	metrics := telemetry.New()

	if cfg.GitHubToken == "" {
		slog.Info("no github token configured, using anonymous rate limits")
	}
	if cfg.SlackToken == "" && len(cfg.NotificationTargets) > 0 {
		slog.Warn("notification targets configured but no slack token, deliveries will fail")
	}

	notifier := application.NewNotifier(sender, cfg.NotificationTargets, metrics)
	monitor := application.NewMonitorService(
		ghClient,
		store,
		notifier,
		cfg.Repositories,
		cfg.CheckInterval,
		metrics,
	)
	go monitor.Start(ctx)

	handler := httphandler.NewHandler(monitor, slog.Default())
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, metrics.Handler(), slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("commitwatch started",
		"listen_addr", cfg.ListenAddr,
		"check_interval", cfg.CheckInterval,
	)

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
