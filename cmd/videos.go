package main

import (
	"context"

	"github.com/desertthunder/kiosk/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Videos lists the channel's latest uploads. No Spotify session is needed.
func (r *Runner) Videos(ctx context.Context, cmd *cli.Command) error {
	yt := r.config.Credentials.YouTube
	if yt.APIKey == "" || yt.ChannelID == "" {
		r.logger.Warn("youtube api_key or channel_id not set, showing cached videos only")
	}

	videos := r.player.LatestVideos(ctx, cmd.Bool("refresh"))
	if cmd.Bool("json") {
		return r.writeJSON(videos, true)
	}
	return r.writeBytes(formatter.Videos(videos, r.clock.Now()))
}
