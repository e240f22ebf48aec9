// package models defines the data model for the kiosk dashboard
package models

import (
	"encoding/json"
	"time"
)

// TokenData is the persisted OAuth credential pair.
//
// AccessToken and RefreshToken are either both set or both empty.
type TokenData struct {
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

// LiveDevice is a playback device as reported by GET /me/player/devices at one instant.
type LiveDevice struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// CachedDevice is a [LiveDevice] plus history.
//
// IsCached is only ever true in a merged view: it marks a device that is not currently reachable.
type CachedDevice struct {
	LiveDevice
	LastSeen time.Time
	IsCached bool
}

// cachedDeviceJSON is the storage shape: lastSeen is unix milliseconds.
type cachedDeviceJSON struct {
	LiveDevice
	LastSeen int64 `json:"lastSeen"`
	IsCached bool  `json:"isCached"`
}

func (d CachedDevice) MarshalJSON() ([]byte, error) {
	return json.Marshal(cachedDeviceJSON{
		LiveDevice: d.LiveDevice,
		LastSeen:   d.LastSeen.UnixMilli(),
		IsCached:   d.IsCached,
	})
}

func (d *CachedDevice) UnmarshalJSON(data []byte) error {
	var raw cachedDeviceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.LiveDevice = raw.LiveDevice
	d.LastSeen = time.UnixMilli(raw.LastSeen)
	d.IsCached = raw.IsCached
	return nil
}

// Image is an artwork reference.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Playlist is a simplified playlist from the user's library.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
}

// URI returns the playlist's spotify: URI, used as a playback context.
func (p Playlist) URI() string {
	return "spotify:playlist:" + p.ID
}

// PlaylistTrack is a track row within a playlist listing.
type PlaylistTrack struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	ImageURL   string   `json:"image_url,omitempty"`
	DurationMS int      `json:"duration_ms"`
}

// URI returns the track's spotify: URI.
func (t PlaylistTrack) URI() string {
	return "spotify:track:" + t.ID
}

// Video is an upload from the configured channel.
type Video struct {
	VideoID      string    `json:"videoId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	PublishedAt  time.Time `json:"publishedAt"`
}

// NewVideoWindow is how recent an upload must be to count as new.
const NewVideoWindow = 48 * time.Hour

// IsNew reports whether v was published within [NewVideoWindow] of now.
func (v Video) IsNew(now time.Time) bool {
	return v.PublishedAt.After(now.Add(-NewVideoWindow))
}

// URL returns the watch URL for the video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.VideoID
}
