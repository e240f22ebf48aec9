// package formatter renders playback state, devices, playlists, videos and auth status as plain text for the CLI and dashboard
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/kiosk/internal/models"
)

// FormatDuration renders milliseconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ProgressBar draws a fixed-width bar for progress out of duration.
func ProgressBar(progressMS, durationMS, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if durationMS > 0 {
		filled = progressMS * width / durationMS
	}
	filled = max(0, min(filled, width))
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

// Ago renders how long before now t was, in the largest whole unit.
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Playback renders the current snapshot. A nil snapshot or item reads as nothing playing.
func Playback(snap *models.PlaybackSnapshot) []byte {
	var buf bytes.Buffer

	if snap == nil || snap.Item == nil {
		buf.WriteString("Nothing playing\n")
		if snap != nil && snap.Device != nil {
			fmt.Fprintf(&buf, "Device: %s\n", snap.Device.Name)
		}
		return buf.Bytes()
	}

	icon := "⏸"
	if snap.IsPlaying {
		icon = "▶"
	}
	item := snap.Item

	fmt.Fprintf(&buf, "%s %s\n", icon, item.Title())
	if sub := item.Subtitle(); sub != "" {
		fmt.Fprintf(&buf, "  %s\n", sub)
	}
	if t := snap.Track(); t != nil && t.Album.Name != "" {
		fmt.Fprintf(&buf, "  %s\n", t.Album.Name)
	}
	fmt.Fprintf(&buf, "  %s / %s\n", FormatDuration(snap.ProgressMS), FormatDuration(item.Duration()))
	if snap.Device != nil {
		fmt.Fprintf(&buf, "Device: %s (%d%%)\n", snap.Device.Name, snap.Device.VolumePercent)
	}
	return buf.Bytes()
}

// DeviceStatus labels a merged device row.
func DeviceStatus(d models.CachedDevice, now time.Time) string {
	switch {
	case d.IsActive:
		return "active"
	case d.IsCached:
		return "offline, seen " + Ago(d.LastSeen, now)
	default:
		return "available"
	}
}

// Devices renders merged devices, one per line.
func Devices(devices []models.CachedDevice, now time.Time) []byte {
	var buf bytes.Buffer
	if len(devices) == 0 {
		buf.WriteString("No devices found. Open Spotify on a device and refresh.\n")
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "Found %d devices:\n\n", len(devices))
	for i, d := range devices {
		marker := "○"
		if d.IsActive {
			marker = "●"
		} else if d.IsCached {
			marker = "◌"
		}
		fmt.Fprintf(&buf, "%d. %s %s [%s] (%s)\n", i+1, marker, d.Name, d.Type, DeviceStatus(d, now))
		fmt.Fprintf(&buf, "   ID: %s\n", d.ID)
	}
	return buf.Bytes()
}

// Playlists renders the user's playlists.
func Playlists(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			fmt.Fprintf(&buf, "   Description: %s\n", p.Description)
		}
		fmt.Fprintf(&buf, "   Tracks: %d · Owner: %s\n", p.TrackCount, p.Owner)
		fmt.Fprintf(&buf, "   ID: %s\n", p.ID)
	}
	return buf.Bytes()
}

// Tracks renders a playlist's tracks as a numbered list.
func Tracks(tracks []models.PlaylistTrack) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))
	for i, t := range tracks {
		albumPart := ""
		if t.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", t.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, strings.Join(t.Artists, ", "), t.Name, albumPart, FormatDuration(t.DurationMS))
	}
	return buf.Bytes()
}

// TracksCSV converts tracks to CSV with columns: ID, Name, Artists, Album, Duration
func TracksCSV(tracks []models.PlaylistTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Artists", "Album", "Duration"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range tracks {
		record := []string{t.ID, t.Name, strings.Join(t.Artists, "; "), t.Album, strconv.Itoa(t.DurationMS / 1000)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// Videos renders the latest uploads, tagging ones published in the last two days.
func Videos(videos []models.Video, now time.Time) []byte {
	var buf bytes.Buffer
	if len(videos) == 0 {
		buf.WriteString("No videos available.\n")
		return buf.Bytes()
	}

	for i, v := range videos {
		tag := ""
		if v.IsNew(now) {
			tag = " [NEW]"
		}
		fmt.Fprintf(&buf, "%d. %s%s\n", i+1, v.Title, tag)
		fmt.Fprintf(&buf, "   Published %s · %s\n", v.PublishedAt.Local().Format("Jan 2, 2006"), v.URL())
	}
	return buf.Bytes()
}

// AuthStatus renders the token lifecycle state and, when known, time until expiry.
func AuthStatus(state string, expiry time.Time, hasExpiry bool, now time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Spotify: %s\n", state)
	if !hasExpiry {
		buf.WriteString("Run 'kiosk auth login' to connect.\n")
		return buf.Bytes()
	}

	if remaining := expiry.Sub(now); remaining > 0 {
		fmt.Fprintf(&buf, "Access token expires in %s\n", remaining.Round(time.Second))
	} else {
		fmt.Fprintf(&buf, "Access token expired %s\n", Ago(expiry, now))
	}
	return buf.Bytes()
}
