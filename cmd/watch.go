package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kvasen/spotnow/internal/player"
	"github.com/kvasen/spotnow/internal/shared"
	"github.com/kvasen/spotnow/internal/ui"
	"github.com/urfave/cli/v3"
)

// tokenRefreshInterval is how often the access token is proactively
// refreshed while watching. Spotify access tokens live for an hour.
const tokenRefreshInterval = 10 * time.Minute

// Watch follows playback live in a terminal view, polling the snapshot
// cache at the configured interval.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/spotnow-watch.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine := player.NewEngine(r.client, fileLogger)
	cache := player.NewCache(r.config.PollInterval(), func(ctx context.Context) (*player.Snapshot, error) {
		token, ok := r.session.AccessToken()
		if !ok {
			return nil, shared.ErrNotAuthenticated
		}
		return engine.Fetch(ctx, token)
	}, fileLogger)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go r.keepFresh(watchCtx)

	model := ui.NewModel(cache, r.config.PollInterval())
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running watch view: %w", err)
	}

	return nil
}

// keepFresh replaces the session's token pair on a fixed wall-clock
// interval while the watch view runs. Failures are logged and retried on
// the next tick; the stale session keeps serving until then.
func (r *Runner) keepFresh(ctx context.Context) {
	ticker := time.NewTicker(tokenRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh := r.session.RefreshToken()
			if refresh == "" {
				refresh = r.config.Credentials.Spotify.RefreshToken
			}

			flow, err := r.newFlow()
			if err != nil {
				r.logger.Warnf("cannot rebuild auth flow: %v", err)
				continue
			}

			pair, err := flow.Refresh(ctx, refresh)
			if err != nil {
				r.logger.Warnf("token refresh failed: %v", err)
				continue
			}

			r.session.SetTokens(pair)
			r.logger.Info("access token refreshed")
		}
	}
}
