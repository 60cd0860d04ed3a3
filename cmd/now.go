package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/kvasen/spotnow/internal/player"
	"github.com/urfave/cli/v3"
)

// Now fetches one playback snapshot and prints it.
func (r *Runner) Now(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if err := r.ensureSession(ctx); err != nil {
		return err
	}

	token, _ := r.session.AccessToken()
	engine := player.NewEngine(r.client, r.logger)

	snap, err := engine.Fetch(ctx, token)
	if err != nil {
		return err
	}

	if snap == nil {
		return r.writePlain("Nothing playing.\n")
	}

	if useJSON {
		return r.writeJSON(snap, pretty)
	}

	state := "▶"
	if !snap.IsPlaying {
		state = "⏸"
	}

	r.writePlain("%s %s — %s\n", state, snap.Track.Name, strings.Join(snap.Track.Artists, ", "))

	album := snap.Track.AlbumName
	if snap.Track.AlbumType != "" {
		album += " (" + snap.Track.AlbumType + ")"
	}
	r.writePlain("  %s\n", album)

	if snap.Playlist != nil {
		label := snap.Playlist.Name
		if label == "" {
			label = snap.Playlist.ID
		}
		r.writePlain("  from %s\n", label)
	}

	r.writePlain("  %s / %s  shuffle %v  repeat %s\n",
		clock(snap.ProgressMS), clock(snap.DurationMS), snap.Shuffle, snap.Repeat)

	if len(snap.Queue) > 0 {
		r.writePlain("  up next: %s — %s\n",
			snap.Queue[0].Name, strings.Join(snap.Queue[0].Artists, ", "))
	}

	return nil
}

func clock(ms int64) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
