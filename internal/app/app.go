// Package app wires configuration, logging, the daemon client, the store, and
// the background workers together and hands control to the TUI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/restackd/restack/internal/config"
	"github.com/restackd/restack/internal/logging"
	"github.com/restackd/restack/internal/prefs"
	"github.com/restackd/restack/internal/stackd"
	"github.com/restackd/restack/internal/state"
	"github.com/restackd/restack/internal/ui"
)

// Options configure the restack application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/restack/prefs.toml
	PollEvery  int    // seconds; zero uses the configured default
}

// Run boots the restack TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(cfg.LogFile, cfg.LogLevel)

	prefStore := prefs.NewStore(opts.PrefsPath)
	userPrefs := prefStore.Load()

	client, err := stackd.NewClient(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init stackd client: %w", err)
	}

	store := state.NewStore()

	interval := time.Duration(cfg.PollSeconds) * time.Second
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}

	// Start background poller
	StartPoller(ctx, store, client, interval)

	// Push deltas flow straight into the store; the UI notices on its next tick.
	listener, err := stackd.NewListener(cfg.APIBind)
	if err != nil {
		return fmt.Errorf("init event listener: %w", err)
	}
	go func() {
		_ = listener.Run(ctx, func(id string, redeploying bool) {
			store.ApplyDelta(id, redeploying)
		})
	}()

	// Do initial refresh to populate store before UI starts
	_ = refresh(ctx, store, client)

	uiOpts := ui.Options{
		Context:   ctx,
		Client:    client,
		Store:     store,
		Prefs:     prefStore,
		PollTick:  interval,
		ThemeName: userPrefs.Theme,
		PerPage:   userPrefs.PerPage,
	}
	return ui.Run(uiOpts)
}
