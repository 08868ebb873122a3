// Shared wiring for stockroom CLI commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/apothekit/stockroom/internal/auth"
	"github.com/apothekit/stockroom/internal/inventory"
	"github.com/apothekit/stockroom/internal/memory"
	"github.com/apothekit/stockroom/internal/sqlite"
	"github.com/apothekit/stockroom/pkg/types"
)

// defaultSessionTTL bounds how long a login stays valid.
const defaultSessionTTL = 24 * time.Hour

// app holds the wired components for the duration of one command.
type app struct {
	config      types.Config
	store       types.Store
	gateway     *auth.Gateway
	repo        *inventory.Repository
	coordinator *inventory.Coordinator
	history     *inventory.HistoryReader
}

// current is the global app instance, wired by PersistentPreRunE.
var current *app

// openApp loads config, attaches the store, and wires the gateway,
// repository, coordinator, and history reader.
func openApp() error {
	configDir, err := resolveConfigDir()
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}

	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	if err := store.Attach(cfg); err != nil {
		return fmt.Errorf("attach store: %w", err)
	}

	key, err := auth.LoadOrCreateKey(configDir)
	if err != nil {
		store.Detach()
		return fmt.Errorf("session key: %w", err)
	}

	gateway, err := auth.NewGateway(auth.NewLocalProvider(store), auth.NewTokenManager(key, defaultSessionTTL), configDir)
	if err != nil {
		store.Detach()
		return fmt.Errorf("open session gateway: %w", err)
	}

	repo := inventory.NewRepository(store, gateway)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	current = &app{
		config:      cfg,
		store:       store,
		gateway:     gateway,
		repo:        repo,
		coordinator: inventory.NewCoordinator(repo, cfg, logger),
		history:     inventory.NewHistoryReader(repo, cfg.HistoryWindow),
	}
	return nil
}

// closeApp tears down the app in reverse order. Safe when openApp was
// skipped or failed.
func closeApp() error {
	if current == nil {
		return nil
	}
	current.history.Cleanup()
	current.coordinator.Cleanup()
	current.gateway.Close()
	err := current.store.Detach()
	current = nil
	return err
}

// newStore selects the backend named by the config.
func newStore(cfg types.Config) (types.Store, error) {
	switch cfg.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	case types.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, types.ErrBackendUnknown)
	}
}

// readyCoordinator runs the one-shot load and returns the coordinator once
// it is ready. Commands that display or mutate inventory go through this.
func readyCoordinator(ctx context.Context) (*inventory.Coordinator, error) {
	if err := current.coordinator.Initialize(ctx); err != nil {
		return nil, err
	}
	return current.coordinator, nil
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
