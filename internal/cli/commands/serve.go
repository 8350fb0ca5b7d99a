// Package commands implements the tabviz subcommands.
package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tabviz/internal/config"
	"github.com/leapstack-labs/tabviz/internal/ingest"
	"github.com/leapstack-labs/tabviz/internal/sheets"
	"github.com/leapstack-labs/tabviz/internal/state"
	"github.com/leapstack-labs/tabviz/internal/ui"
)

// ConfigFunc retrieves the loaded config from the command context.
type ConfigFunc func(ctx context.Context) *config.Config

// LoggerFunc retrieves the logger from the command context.
type LoggerFunc func(ctx context.Context) *slog.Logger

// NewServeCommand creates the serve command.
func NewServeCommand(getConfig ConfigFunc, getLogger LoggerFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the tabviz web server",
		Long: `Start a local web server for uploading spreadsheet files and viewing
them as interactive charts and a tabular preview.`,
		Example: `  # Start on the default port
  tabviz serve

  # Start on a custom port, auto-ingesting files dropped into ./drop
  tabviz serve --port 3000 --watch-dir drop`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, getConfig, getLogger)
		},
	}
	return cmd
}

func runServe(cmd *cobra.Command, getConfig ConfigFunc, getLogger LoggerFunc) error {
	cfg := getConfig(cmd.Context())
	logger := getLogger(cmd.Context())

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	secret := cfg.Server.SessionSecret
	if secret == "" {
		secret = generateSessionSecret()
	}

	server := ui.NewServer(ui.Config{
		Pipeline:      ingest.New(cfg.Limits, logger),
		Sheets:        sheets.NewClient(logger),
		Store:         store,
		Port:          cfg.Server.Port,
		WatchDir:      cfg.WatchDir,
		Limits:        cfg.Limits,
		SessionSecret: secret,
		Logger:        logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}

// openStore opens (and migrates) the session state database.
func openStore(cfg *config.Config) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(cfg.Limits.History)
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func generateSessionSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a process-unique but non-random secret; sessions
		// only carry an opaque ID.
		return fmt.Sprintf("tabviz-%d", os.Getpid())
	}
	return hex.EncodeToString(b)
}
