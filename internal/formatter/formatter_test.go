package formatter

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/kiosk/internal/models"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func TestFormatDuration(t *testing.T) {
	for _, tc := range []struct {
		ms   int
		want string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{59_999, "0:59"},
		{180_000, "3:00"},
		{245_000, "4:05"},
		{3_725_000, "1:02:05"},
	} {
		if got := FormatDuration(tc.ms); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Run("half", func(t *testing.T) {
		if got := ProgressBar(50, 100, 10); got != "━━━━━─────" {
			t.Errorf("unexpected bar %q", got)
		}
	})

	t.Run("clamps overflow and zero duration", func(t *testing.T) {
		if got := ProgressBar(200, 100, 4); got != "━━━━" {
			t.Errorf("unexpected bar %q", got)
		}
		if got := ProgressBar(10, 0, 4); got != "────" {
			t.Errorf("unexpected bar %q", got)
		}
	})

	t.Run("zero width", func(t *testing.T) {
		if got := ProgressBar(1, 2, 0); got != "" {
			t.Errorf("expected empty bar, got %q", got)
		}
	})
}

func TestAgo(t *testing.T) {
	for _, tc := range []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	} {
		if got := Ago(now.Add(-tc.d), now); got != tc.want {
			t.Errorf("Ago(-%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestPlayback(t *testing.T) {
	t.Run("nothing playing", func(t *testing.T) {
		if got := string(Playback(nil)); got != "Nothing playing\n" {
			t.Errorf("unexpected output %q", got)
		}

		snap := &models.PlaybackSnapshot{Device: &models.LiveDevice{Name: "Kitchen"}}
		if got := string(Playback(snap)); !strings.Contains(got, "Device: Kitchen") {
			t.Errorf("expected device line, got %q", got)
		}
	})

	t.Run("track", func(t *testing.T) {
		snap := &models.PlaybackSnapshot{
			IsPlaying:  true,
			ProgressMS: 65_000,
			Item: &models.Track{
				Name:       "Song One",
				Artists:    []models.Artist{{Name: "A"}, {Name: "B"}},
				Album:      models.Album{Name: "Album One"},
				DurationMS: 180_000,
			},
			Device: &models.LiveDevice{Name: "Speaker", VolumePercent: 40},
		}

		out := string(Playback(snap))
		for _, want := range []string{"▶ Song One", "A, B", "Album One", "1:05 / 3:00", "Device: Speaker (40%)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %s", want, out)
			}
		}
	})

	t.Run("paused episode", func(t *testing.T) {
		snap := &models.PlaybackSnapshot{
			Item: &models.Episode{Name: "Ep 1", Show: models.Show{Name: "The Show"}, DurationMS: 60_000},
		}

		out := string(Playback(snap))
		if !strings.Contains(out, "⏸ Ep 1") || !strings.Contains(out, "The Show") {
			t.Errorf("unexpected output %s", out)
		}
	})
}

func TestDevices(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if out := string(Devices(nil, now)); !strings.Contains(out, "No devices found") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("marks active, available and cached", func(t *testing.T) {
		devices := []models.CachedDevice{
			{LiveDevice: models.LiveDevice{ID: "d1", Name: "Phone", Type: "Smartphone", IsActive: true}, LastSeen: now},
			{LiveDevice: models.LiveDevice{ID: "d2", Name: "Laptop", Type: "Computer"}, LastSeen: now},
			{LiveDevice: models.LiveDevice{ID: "d3", Name: "Echo", Type: "Speaker"}, LastSeen: now.Add(-3 * time.Hour), IsCached: true},
		}

		out := string(Devices(devices, now))
		for _, want := range []string{
			"Found 3 devices",
			"1. ● Phone [Smartphone] (active)",
			"2. ○ Laptop [Computer] (available)",
			"3. ◌ Echo [Speaker] (offline, seen 3h ago)",
			"ID: d3",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %s", want, out)
			}
		}
	})
}

func TestPlaylistsAndTracks(t *testing.T) {
	t.Run("Playlists", func(t *testing.T) {
		out := string(Playlists([]models.Playlist{
			{ID: "p1", Name: "Focus", Description: "deep work", Owner: "me", TrackCount: 12},
			{ID: "p2", Name: "Run", Owner: "Unknown"},
		}))
		for _, want := range []string{"Found 2 playlists", "1. Focus", "Description: deep work", "Tracks: 12 · Owner: me", "ID: p2"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %s", want, out)
			}
		}
		if strings.Count(out, "Description:") != 1 {
			t.Error("expected description only for the first playlist")
		}
	})

	tracks := []models.PlaylistTrack{
		{ID: "t1", Name: "Song One", Artists: []string{"A", "B"}, Album: "Album One", DurationMS: 180_000},
		{ID: "t2", Name: "Song, Two", Artists: []string{"C"}, DurationMS: 240_000},
	}

	t.Run("Tracks", func(t *testing.T) {
		out := string(Tracks(tracks))
		if !strings.Contains(out, "1. A, B - Song One (Album One) [3:00]") {
			t.Errorf("unexpected first track line in %s", out)
		}
		if !strings.Contains(out, "2. C - Song, Two [4:00]") {
			t.Errorf("unexpected second track line in %s", out)
		}
	})

	t.Run("TracksCSV", func(t *testing.T) {
		data, err := TracksCSV(tracks)
		if err != nil {
			t.Fatalf("TracksCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header plus 2 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "ID,Name,Artists,Album,Duration" {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[1][2] != "A; B" || records[1][4] != "180" {
			t.Errorf("unexpected first row %v", records[1])
		}
		if records[2][1] != "Song, Two" {
			t.Errorf("expected comma to survive quoting, got %q", records[2][1])
		}
	})
}

func TestVideos(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if out := string(Videos([]models.Video{}, now)); out != "No videos available.\n" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("tags new uploads", func(t *testing.T) {
		out := string(Videos([]models.Video{
			{VideoID: "v1", Title: "Fresh", PublishedAt: now.Add(-time.Hour)},
			{VideoID: "v2", Title: "Old", PublishedAt: now.Add(-72 * time.Hour)},
		}, now))

		if !strings.Contains(out, "1. Fresh [NEW]") {
			t.Errorf("expected new tag, got %s", out)
		}
		if strings.Contains(out, "Old [NEW]") {
			t.Errorf("expected no tag on old video, got %s", out)
		}
		if !strings.Contains(out, "https://www.youtube.com/watch?v=v2") {
			t.Errorf("expected watch URL, got %s", out)
		}
	})
}

func TestAuthStatus(t *testing.T) {
	t.Run("unauthenticated", func(t *testing.T) {
		out := string(AuthStatus("unauthenticated", time.Time{}, false, now))
		if !strings.Contains(out, "Spotify: unauthenticated") || !strings.Contains(out, "kiosk auth login") {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("valid", func(t *testing.T) {
		out := string(AuthStatus("valid", now.Add(42*time.Minute), true, now))
		if !strings.Contains(out, "expires in 42m0s") {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("expired", func(t *testing.T) {
		out := string(AuthStatus("expiring_soon", now.Add(-2*time.Hour), true, now))
		if !strings.Contains(out, "expired 2h ago") {
			t.Errorf("unexpected output %s", out)
		}
	})
}
