package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/kiosk/internal/formatter"
	"github.com/desertthunder/kiosk/internal/player"
	"github.com/desertthunder/kiosk/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerStatus prints the current playback snapshot.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	snap := r.player.CurrentPlayback(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(snap, true)
	}
	return r.writeBytes(formatter.Playback(snap))
}

// PlayerToggle plays when paused and pauses when playing.
func (r *Runner) PlayerToggle(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, "Toggled playback", r.player.PlayPause(ctx))
}

// PlayerNext skips forward.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, "Skipped to next", r.player.SkipToNext(ctx))
}

// PlayerPrevious skips back.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	return r.control(ctx, "Skipped to previous", r.player.SkipToPrevious(ctx))
}

// PlayerVolume sets the volume; out of range values are clamped.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	percent, err := intArg(cmd, "percent")
	if err != nil {
		return err
	}
	return r.control(ctx, fmt.Sprintf("Volume set to %d%%", player.ClampVolume(percent)), r.player.SetVolume(ctx, percent))
}

// PlayerSeek moves the playhead.
func (r *Runner) PlayerSeek(ctx context.Context, cmd *cli.Command) error {
	position, err := intArg(cmd, "position")
	if err != nil {
		return err
	}
	return r.control(ctx, "Seeked to "+formatter.FormatDuration(position), r.player.Seek(ctx, position))
}

// PlayerTransfer moves playback to another device without starting it.
func (r *Runner) PlayerTransfer(ctx context.Context, cmd *cli.Command) error {
	deviceID := cmd.StringArg("device")
	if deviceID == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}
	return r.control(ctx, "Transferred playback to "+deviceID, r.player.TransferPlayback(ctx, deviceID))
}

// PlayerEpisode prints an episode by id, or the one currently playing.
func (r *Runner) PlayerEpisode(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	episode := r.player.CurrentEpisode(ctx)
	if id != "" {
		episode = r.player.Episode(ctx, id)
	}
	if episode == nil {
		return r.writePlain("No episode found\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(episode, true)
	}
	r.writePlain("%s\n", episode.Name)
	r.writePlain("  %s · %s\n", episode.Show.Name, formatter.FormatDuration(episode.DurationMS))
	if episode.Description != "" {
		r.writePlain("\n%s\n", episode.Description)
	}
	return nil
}

// control reports the outcome of a facade command, which never returns errors.
func (r *Runner) control(ctx context.Context, done string, ok bool) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s failed, check that a device is active", shared.ErrAPIRequest, done)
	}
	return r.writePlain("✓ %s\n", done)
}

func intArg(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return n, nil
}
