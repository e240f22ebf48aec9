package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/kiosk/internal/formatter"
	"github.com/desertthunder/kiosk/internal/shared"
	"github.com/urfave/cli/v3"
)

// Playlists lists the user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	playlists := r.player.Playlists(ctx, cmd.Bool("refresh"))
	if cmd.Bool("json") {
		return r.writeJSON(playlists, true)
	}
	return r.writeBytes(formatter.Playlists(playlists))
}

// PlaylistTracks lists one playlist's tracks as text, JSON or CSV.
func (r *Runner) PlaylistTracks(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	tracks := r.player.PlaylistTracks(ctx, id)
	switch {
	case cmd.Bool("json"):
		return r.writeJSON(tracks, true)
	case cmd.Bool("csv"):
		data, err := formatter.TracksCSV(tracks)
		if err != nil {
			return err
		}
		return r.writeBytes(data)
	default:
		return r.writeBytes(formatter.Tracks(tracks))
	}
}
