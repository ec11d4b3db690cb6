// Package commands implements the addonkit subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/addonkit/addonkit/internal/docsite"
)

func loadDocsConfig(path string) (*docsite.Config, error) {
	cfg, err := docsite.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load docs configuration: %w", err)
	}
	return cfg, nil
}

// RunDocsBuild runs a one-shot documentation build.
func RunDocsBuild(configPath, outputOverride string) error {
	cfg, err := loadDocsConfig(configPath)
	if err != nil {
		return err
	}
	if outputOverride != "" {
		cfg.Output = outputOverride
	}

	events, err := docsite.NewPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	builder := docsite.NewBuilder(cfg, nil, events, slog.Default())
	build, err := builder.Build(context.Background())
	if err != nil {
		return err
	}
	if len(build.Broken) > 0 {
		return fmt.Errorf("build %s finished with %d broken links", build.ID, len(build.Broken))
	}
	return nil
}

// RunDocsServe builds the site and serves it with live rebuild until
// interrupted.
func RunDocsServe(configPath, addrOverride string) error {
	cfg, err := loadDocsConfig(configPath)
	if err != nil {
		return err
	}
	if addrOverride != "" {
		cfg.Serve.Addr = addrOverride
	}

	events, err := docsite.NewPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	metrics := docsite.NewMetrics(prom.NewRegistry())
	builder := docsite.NewBuilder(cfg, metrics, events, slog.Default())
	server := docsite.NewServer(cfg, builder, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx)
}

// RunDocsPublish builds the site and pushes it to the configured remote.
func RunDocsPublish(configPath string) error {
	cfg, err := loadDocsConfig(configPath)
	if err != nil {
		return err
	}

	events, err := docsite.NewPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	builder := docsite.NewBuilder(cfg, nil, events, slog.Default())
	build, err := builder.Build(context.Background())
	if err != nil {
		return err
	}
	if err := docsite.Publish(cfg, build); err != nil {
		if errors.Is(err, docsite.ErrNothingToPublish) {
			slog.Info("Site unchanged, nothing to publish", "build_id", build.ID)
			return nil
		}
		return err
	}
	slog.Info("Site published", "build_id", build.ID, "remote", cfg.Publish.URL, "branch", cfg.Publish.Branch)
	return nil
}
