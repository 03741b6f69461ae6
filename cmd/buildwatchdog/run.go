package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"buildwatchdog/internal/config"
	"buildwatchdog/internal/dashboard"
	"buildwatchdog/internal/events"
	"buildwatchdog/internal/feed"
	"buildwatchdog/internal/fetcher"
	"buildwatchdog/internal/monitor"
	"buildwatchdog/internal/notify"
	"buildwatchdog/internal/shell"
)

const feedShutdownTimeout = 5 * time.Second

func run(ctx context.Context, cfg config.Config) error {
	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	live := dashboard.NewLive(os.Stdout, interactive)
	defer live.Stop()

	level, _ := cfg.Level()
	logger := log.NewWithOptions(live, log.Options{
		Level:           level,
		Prefix:          "buildwatchdog",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})

	source, err := newFetcher(ctx, cfg)
	if err != nil {
		return err
	}

	notifier := notify.NewDesktop(shell.Exec{}, notify.WithErrorHandler(func(err error) {
		logger.Debug("desktop notification failed", "err", err)
	}))

	var publisher monitor.Publisher
	if cfg.FeedAddr != "" {
		srv := feed.New(cfg.FeedAddr, logger)
		go func() {
			if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("live feed stopped", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), feedShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("live feed shutdown", "err", err)
			}
		}()
		publisher = srv
	}

	mon := monitor.New(monitor.Options{
		BuildID:     cfg.BuildID,
		Interval:    cfg.Interval(),
		SettleDelay: cfg.SettleDelay(),
		Fetcher:     source,
		Events:      events.NewLog(cfg.Notify, notifier),
		Renderer:    dashboard.NewRenderer(lipgloss.NewRenderer(os.Stdout)),
		Display:     live,
		Publisher:   publisher,
		Logger:      logger,
		Out:         live,
	})
	logger.Debug("session started", "session", mon.SessionID(), "source", cfg.Source, "notify", cfg.Notify)

	return mon.Run(ctx)
}

func newFetcher(ctx context.Context, cfg config.Config) (fetcher.Fetcher, error) {
	switch cfg.Source {
	case config.SourceSDK:
		sdk, err := fetcher.NewSDK(ctx, fetcher.SDKOptions{
			Profile:  cfg.Profile,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.FetchTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("init sdk fetcher: %w", err)
		}
		return sdk, nil
	default:
		return fetcher.NewCLI(shell.Exec{}, fetcher.CLIOptions{
			Command: cfg.AWSCommand,
			Profile: cfg.Profile,
			Region:  cfg.Region,
			Timeout: cfg.FetchTimeout(),
		}), nil
	}
}
