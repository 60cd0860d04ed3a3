package main

import (
	"context"

	"github.com/kvasen/spotnow/internal/shared"
	"github.com/urfave/cli/v3"
)

// Auth runs the full Authorization Code + PKCE flow: starts the local
// callback listener, opens the browser, waits for the redirect, and
// exchanges the authorization code for tokens.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	flow, err := r.newFlow()
	if err != nil {
		return err
	}

	authURL := flow.AuthURL()

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically: %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (5 minute timeout)...\n")

	code, err := flow.Await(ctx)
	if err != nil {
		return err
	}

	pair, err := flow.Exchange(ctx, code)
	if err != nil {
		return err
	}

	r.session.SetTokens(pair)

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Refresh token saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: spotnow now\n")

	return nil
}
