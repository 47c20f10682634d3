package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BDNK1/sflowg-marketplace/cli/internal/config"
	"github.com/BDNK1/sflowg-marketplace/plugins/marketplace"
	"github.com/BDNK1/sflowg-marketplace/runtime"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sflowg-marketplace",
	Short: "AI Marketplace nodes for SFlowG",
	Long: `sflowg-marketplace runs the AI Marketplace nodes from the command line
or behind an HTTP endpoint.

Configuration is read from marketplace.yaml (or --config). String values may
reference environment variables as ${VAR} or ${VAR:default}.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./"+config.DefaultFileName+")")

	rootCmd.AddCommand(nodesCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(credentialsCmd)
}

// session is everything a command needs after the config has been loaded.
type session struct {
	cfg       *config.Config
	app       *runtime.App
	plugin    *marketplace.Plugin
	logger    *slog.Logger
	telemetry *runtime.Telemetry
}

func openSession(ctx context.Context, stderr io.Writer) (*session, error) {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Log, stderr)
	telemetry, err := runtime.SetupTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	if telemetry.Logger != nil {
		logger = telemetry.Logger
	}
	slog.SetDefault(logger)

	p := &marketplace.Plugin{Logger: logger}
	if err := runtime.InitializeConfig(&p.Config, cfg.Marketplace); err != nil {
		_ = telemetry.Shutdown(ctx)
		return nil, fmt.Errorf("marketplace: %w", err)
	}

	app := runtime.NewApp(logger, cfg.Credentials)
	if err := app.RegisterPlugin("marketplace", p); err != nil {
		_ = telemetry.Shutdown(ctx)
		return nil, err
	}
	if err := app.Start(); err != nil {
		_ = telemetry.Shutdown(ctx)
		return nil, err
	}

	return &session{cfg: cfg, app: app, plugin: p, logger: logger, telemetry: telemetry}, nil
}

func (s *session) Close(ctx context.Context) {
	if err := s.app.Stop(); err != nil {
		s.logger.WarnContext(ctx, "Plugin shutdown failed", "error", err)
	}
	if err := s.telemetry.Shutdown(ctx); err != nil {
		s.logger.WarnContext(ctx, "Telemetry shutdown failed", "error", err)
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
