package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ItemKind discriminates [PlaybackItem] implementations.
type ItemKind string

const (
	KindTrack   ItemKind = "track"
	KindEpisode ItemKind = "episode"
)

// PlaybackItem is whatever is currently loaded on the player: a [*Track] or an [*Episode].
type PlaybackItem interface {
	Kind() ItemKind
	Title() string
	Subtitle() string
	Duration() int
	Artwork() string
}

var (
	_ PlaybackItem = (*Track)(nil)
	_ PlaybackItem = (*Episode)(nil)
)

// Artist is a track credit.
type Artist struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Album is the album a track belongs to.
type Album struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is a music item.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	PreviewURL string   `json:"preview_url,omitempty"`
	URI        string   `json:"uri,omitempty"`
}

func (t *Track) Kind() ItemKind { return KindTrack }
func (t *Track) Title() string  { return t.Name }
func (t *Track) Duration() int  { return t.DurationMS }

// Subtitle joins artist names.
func (t *Track) Subtitle() string {
	var buf bytes.Buffer
	for i, a := range t.Artists {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(a.Name)
	}
	return buf.String()
}

func (t *Track) Artwork() string { return firstImage(t.Album.Images) }

// Show is the podcast an episode belongs to.
type Show struct {
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

// Episode is a podcast item.
type Episode struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	DurationMS  int     `json:"duration_ms"`
	Images      []Image `json:"images"`
	Show        Show    `json:"show"`
}

func (e *Episode) Kind() ItemKind   { return KindEpisode }
func (e *Episode) Title() string    { return e.Name }
func (e *Episode) Subtitle() string { return e.Show.Name }
func (e *Episode) Duration() int    { return e.DurationMS }
func (e *Episode) Artwork() string  { return firstImage(e.Images) }

func firstImage(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// PlaybackSnapshot is the decoded body of GET /me/player.
type PlaybackSnapshot struct {
	IsPlaying            bool
	ProgressMS           int
	Item                 PlaybackItem
	Device               *LiveDevice
	CurrentlyPlayingType string
	ShuffleState         bool
	RepeatState          string
}

type playbackJSON struct {
	IsPlaying            bool            `json:"is_playing"`
	ProgressMS           int             `json:"progress_ms"`
	Item                 json.RawMessage `json:"item"`
	Device               *LiveDevice     `json:"device"`
	CurrentlyPlayingType string          `json:"currently_playing_type"`
	ShuffleState         bool            `json:"shuffle_state"`
	RepeatState          string          `json:"repeat_state"`
}

// UnmarshalJSON decodes the item according to currently_playing_type.
//
// Ads, unknown types and a null item leave Item nil.
func (p *PlaybackSnapshot) UnmarshalJSON(data []byte) error {
	var raw playbackJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = PlaybackSnapshot{
		IsPlaying:            raw.IsPlaying,
		ProgressMS:           raw.ProgressMS,
		Device:               raw.Device,
		CurrentlyPlayingType: raw.CurrentlyPlayingType,
		ShuffleState:         raw.ShuffleState,
		RepeatState:          raw.RepeatState,
	}

	if len(raw.Item) == 0 || bytes.Equal(bytes.TrimSpace(raw.Item), []byte("null")) {
		return nil
	}

	switch ItemKind(raw.CurrentlyPlayingType) {
	case KindTrack:
		var t Track
		if err := json.Unmarshal(raw.Item, &t); err != nil {
			return fmt.Errorf("decode track item: %w", err)
		}
		p.Item = &t
	case KindEpisode:
		var e Episode
		if err := json.Unmarshal(raw.Item, &e); err != nil {
			return fmt.Errorf("decode episode item: %w", err)
		}
		p.Item = &e
	}

	return nil
}

// MarshalJSON writes the API shape back out, for --json output.
func (p PlaybackSnapshot) MarshalJSON() ([]byte, error) {
	out := struct {
		IsPlaying            bool         `json:"is_playing"`
		ProgressMS           int          `json:"progress_ms"`
		Item                 PlaybackItem `json:"item"`
		Device               *LiveDevice  `json:"device"`
		CurrentlyPlayingType string       `json:"currently_playing_type"`
		ShuffleState         bool         `json:"shuffle_state"`
		RepeatState          string       `json:"repeat_state"`
	}{p.IsPlaying, p.ProgressMS, p.Item, p.Device, p.CurrentlyPlayingType, p.ShuffleState, p.RepeatState}
	return json.Marshal(out)
}

// Track returns the item as a track, or nil when something else is playing.
func (p *PlaybackSnapshot) Track() *Track {
	t, _ := p.Item.(*Track)
	return t
}

// Episode returns the item as an episode, or nil when something else is playing.
func (p *PlaybackSnapshot) Episode() *Episode {
	e, _ := p.Item.(*Episode)
	return e
}
