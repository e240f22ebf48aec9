package services

import (
	"context"

	"github.com/desertthunder/kiosk/internal/models"
)

// PlaybackAPI is the Spotify surface the player depends on.
//
// Implemented by [SpotifyService]; tests substitute their own.
type PlaybackAPI interface {
	CurrentPlayback(ctx context.Context, token string) (*models.PlaybackSnapshot, error)
	Play(ctx context.Context, token string, opts *PlayOptions) error
	Pause(ctx context.Context, token string) error
	Next(ctx context.Context, token string) error
	Previous(ctx context.Context, token string) error
	SetVolume(ctx context.Context, token string, percent int) error
	Devices(ctx context.Context, token string) ([]models.LiveDevice, error)
	TransferPlayback(ctx context.Context, token, deviceID string, play bool) error
	Seek(ctx context.Context, token string, positionMS int) error
	Episode(ctx context.Context, token, episodeID string) (*models.Episode, error)
	UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error)
	PlaylistTracks(ctx context.Context, token, playlistID string) ([]models.PlaylistTrack, error)
}

// VideoAPI lists the newest videos of the configured channel.
type VideoAPI interface {
	LatestVideos(ctx context.Context) ([]models.Video, error)
}

var (
	_ PlaybackAPI = (*SpotifyService)(nil)
	_ VideoAPI    = (*YouTubeService)(nil)
)

// PlayOptions is the body of PUT /me/player/play. A nil *PlayOptions resumes playback.
type PlayOptions struct {
	ContextURI string      `json:"context_uri,omitempty"`
	URIs       []string    `json:"uris,omitempty"`
	Offset     *PlayOffset `json:"offset,omitempty"`
	PositionMS int         `json:"position_ms,omitempty"`
}

// PlayOffset selects where in a context playback starts.
type PlayOffset struct {
	Position *int   `json:"position,omitempty"`
	URI      string `json:"uri,omitempty"`
}
