package player

import (
	"context"
	"slices"

	gocache "github.com/patrickmn/go-cache"

	"github.com/desertthunder/kiosk/internal/models"
)

const playlistsKey = "playlists"

func tracksKey(playlistID string) string { return "tracks:" + playlistID }

// Playlists returns the user's playlists, served from memory until the cache TTL lapses.
// Callers get their own copy of the cached slice.
//
// The cache is only consulted once a token is available.
func (p *Player) Playlists(ctx context.Context, forceRefresh bool) []models.Playlist {
	tok, ok := p.token(ctx, "playlists")
	if !ok {
		return []models.Playlist{}
	}

	if !forceRefresh {
		if cached, ok := p.lists.Get(playlistsKey); ok {
			return slices.Clone(cached.([]models.Playlist))
		}
	}

	playlists, err := p.api.UserPlaylists(ctx, tok)
	if err != nil {
		p.logger.Error("failed to list playlists", "error", err)
		return []models.Playlist{}
	}

	p.lists.Set(playlistsKey, playlists, gocache.DefaultExpiration)
	return slices.Clone(playlists)
}

// PlaylistTracks returns the tracks of one playlist, cached like [Player.Playlists].
func (p *Player) PlaylistTracks(ctx context.Context, playlistID string) []models.PlaylistTrack {
	tok, ok := p.token(ctx, "playlist_tracks")
	if !ok {
		return []models.PlaylistTrack{}
	}

	key := tracksKey(playlistID)
	if cached, ok := p.lists.Get(key); ok {
		return slices.Clone(cached.([]models.PlaylistTrack))
	}

	tracks, err := p.api.PlaylistTracks(ctx, tok, playlistID)
	if err != nil {
		p.logger.Error("failed to list playlist tracks", "playlist", playlistID, "error", err)
		return []models.PlaylistTrack{}
	}

	p.lists.Set(key, tracks, gocache.DefaultExpiration)
	return slices.Clone(tracks)
}

// FlushPlaylists drops every cached playlist listing.
func (p *Player) FlushPlaylists() {
	p.lists.Flush()
}
