package main

import (
	"context"

	"github.com/desertthunder/kiosk/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Devices lists live devices merged with remembered ones.
//
// Without a session only remembered devices are shown.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	if !r.auth.EnsureValid(ctx) {
		r.writePlain("⚠ Not connected to Spotify, showing remembered devices only\n\n")
	}

	devices := r.player.AllDevices(ctx, cmd.Bool("refresh"))
	if cmd.Bool("json") {
		return r.writeJSON(devices, true)
	}
	return r.writeBytes(formatter.Devices(devices, r.clock.Now()))
}

// DevicesClear forgets every remembered device.
func (r *Runner) DevicesClear(ctx context.Context, cmd *cli.Command) error {
	r.player.ClearDevices()
	return r.writePlain("✓ Device cache cleared\n")
}
