// Spotify Web API client
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/shared"
)

const (
	SpotifyBaseURL = "https://api.spotify.com/v1"

	playlistPageSize = 50
	tracksPageSize   = 100
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a simplified artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a track inside a playlist item.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Owner       Owner               `json:"owner"`
	Tracks      simplePlaylistTrack `json:"tracks"`
	Images      []SpotifyImage      `json:"images"`
	URI         string              `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items  []SpotifySimplePlaylist `json:"items"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Next   *string                 `json:"next"`
}

// SpotifyPlaylistItem represents one entry of a playlist's track list. Track is nil for removed items.
type SpotifyPlaylistItem struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistItems represents a paginated response of playlist items.
type SpotifyPaginatedPlaylistItems struct {
	Items  []SpotifyPlaylistItem `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
	Next   *string               `json:"next"`
}

type spotifyErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService is a stateless client for the Spotify Web API.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewSpotifyService creates a client against baseURL ([SpotifyBaseURL] when empty).
//
// limiter may be nil, in which case requests are allowed 10 per second with bursts of 5.
func NewSpotifyService(baseURL string, httpClient *http.Client, limiter *rate.Limiter) *SpotifyService {
	if baseURL == "" {
		baseURL = SpotifyBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Limit(10), 5)
	}
	return &SpotifyService{baseURL: baseURL, httpClient: httpClient, limiter: limiter}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest sends one authenticated request and decodes the body into result when non-nil.
//
// A 204 with a non-nil result returns [shared.ErrNoContent].
func (s *SpotifyService) doRequest(ctx context.Context, token, method, endpoint string, body, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody spotifyErrorBody
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Error.Message != "" {
			return fmt.Errorf("%w: %s %s: status %d: %s", shared.ErrAPIRequest, method, endpoint, resp.StatusCode, errBody.Error.Message)
		}
		return fmt.Errorf("%w: %s %s: status %d", shared.ErrAPIRequest, method, endpoint, resp.StatusCode)
	}

	if result == nil {
		return nil
	}

	if resp.StatusCode == http.StatusNoContent {
		return shared.ErrNoContent
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// CurrentPlayback returns the playback state, or (nil, nil) when nothing is playing (204).
func (s *SpotifyService) CurrentPlayback(ctx context.Context, token string) (*models.PlaybackSnapshot, error) {
	var snap models.PlaybackSnapshot
	err := s.doRequest(ctx, token, http.MethodGet, "/me/player", nil, &snap)
	if errors.Is(err, shared.ErrNoContent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Play starts or resumes playback. A nil opts resumes the current context.
func (s *SpotifyService) Play(ctx context.Context, token string, opts *PlayOptions) error {
	var body any
	if opts != nil {
		body = opts
	}
	return s.doRequest(ctx, token, http.MethodPut, "/me/player/play", body, nil)
}

func (s *SpotifyService) Pause(ctx context.Context, token string) error {
	return s.doRequest(ctx, token, http.MethodPut, "/me/player/pause", nil, nil)
}

func (s *SpotifyService) Next(ctx context.Context, token string) error {
	return s.doRequest(ctx, token, http.MethodPost, "/me/player/next", nil, nil)
}

func (s *SpotifyService) Previous(ctx context.Context, token string) error {
	return s.doRequest(ctx, token, http.MethodPost, "/me/player/previous", nil, nil)
}

// SetVolume sends percent as-is; clamping is the caller's job.
func (s *SpotifyService) SetVolume(ctx context.Context, token string, percent int) error {
	endpoint := "/me/player/volume?volume_percent=" + strconv.Itoa(percent)
	return s.doRequest(ctx, token, http.MethodPut, endpoint, nil, nil)
}

// Devices lists the devices that are currently reachable.
func (s *SpotifyService) Devices(ctx context.Context, token string) ([]models.LiveDevice, error) {
	var response struct {
		Devices []models.LiveDevice `json:"devices"`
	}
	if err := s.doRequest(ctx, token, http.MethodGet, "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}
	if response.Devices == nil {
		return []models.LiveDevice{}, nil
	}
	return response.Devices, nil
}

// TransferPlayback moves playback to deviceID.
func (s *SpotifyService) TransferPlayback(ctx context.Context, token, deviceID string, play bool) error {
	body := struct {
		DeviceIDs []string `json:"device_ids"`
		Play      bool     `json:"play"`
	}{[]string{deviceID}, play}
	return s.doRequest(ctx, token, http.MethodPut, "/me/player", body, nil)
}

func (s *SpotifyService) Seek(ctx context.Context, token string, positionMS int) error {
	endpoint := "/me/player/seek?position_ms=" + strconv.Itoa(positionMS)
	return s.doRequest(ctx, token, http.MethodPut, endpoint, nil, nil)
}

// Episode retrieves a podcast episode by ID.
func (s *SpotifyService) Episode(ctx context.Context, token, episodeID string) (*models.Episode, error) {
	var episode models.Episode
	endpoint := "/episodes/" + url.PathEscape(episodeID)
	if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &episode); err != nil {
		return nil, err
	}
	return &episode, nil
}

// UserPlaylists retrieves every playlist of the current user, following pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, token string) ([]models.Playlist, error) {
	playlists := []models.Playlist{}
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", playlistPageSize, offset)

		var page SpotifyPaginatedPlaylists
		if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, sp := range page.Items {
			playlists = append(playlists, sp.toModel())
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return playlists, nil
}

// PlaylistTracks retrieves the tracks of a playlist, skipping episodes and removed items.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, token, playlistID string) ([]models.PlaylistTrack, error) {
	tracks := []models.PlaylistTrack{}
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), tracksPageSize, offset)

		var page SpotifyPaginatedPlaylistItems
		if err := s.doRequest(ctx, token, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil || item.Track.Type != "track" {
				continue
			}
			tracks = append(tracks, item.Track.toModel())
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return tracks, nil
}

func (sp SpotifySimplePlaylist) toModel() models.Playlist {
	owner := sp.Owner.DisplayName
	if owner == "" {
		owner = "Unknown"
	}
	p := models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       owner,
		TrackCount:  sp.Tracks.Total,
	}
	if len(sp.Images) > 0 {
		p.ImageURL = sp.Images[0].URL
	}
	return p
}

func (st SpotifyTrack) toModel() models.PlaylistTrack {
	t := models.PlaylistTrack{
		ID:         st.ID,
		Name:       st.Name,
		Album:      st.Album.Name,
		DurationMS: st.DurationMS,
	}
	for _, a := range st.Artists {
		t.Artists = append(t.Artists, a.Name)
	}
	if len(st.Album.Images) > 0 {
		t.ImageURL = st.Album.Images[0].URL
	}
	return t
}
