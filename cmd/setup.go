package main

import (
	"context"

	"github.com/kvasen/spotnow/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the embedded example configuration to the config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}

	r.writePlain("✓ Wrote %s\n", configPath)
	r.writePlain("Set credentials.spotify.client_id, then run: spotnow auth\n")
	return nil
}
