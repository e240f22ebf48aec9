package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/kiosk/internal/devices"
	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/repositories"
	"github.com/desertthunder/kiosk/internal/services"
	"github.com/desertthunder/kiosk/internal/shared"
	tu "github.com/desertthunder/kiosk/internal/testing"
)

var start = time.Date(2025, 7, 4, 8, 0, 0, 0, time.UTC)

type fakeAuth struct {
	token string
	ok    bool
	calls int
}

func (f *fakeAuth) AccessToken(context.Context) (string, bool) {
	f.calls++
	return f.token, f.ok
}

// fakeAPI records calls by name and returns canned values.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	last  map[string]any

	snapshot  *models.PlaybackSnapshot
	snapErr   error
	devices   []models.LiveDevice
	devErr    error
	cmdErr    error
	playlists []models.Playlist
	tracks    []models.PlaylistTrack
	episode   *models.Episode
}

func (f *fakeAPI) record(name string, arg any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.last == nil {
		f.last = map[string]any{}
	}
	f.last[name] = arg
}

func (f *fakeAPI) CurrentPlayback(_ context.Context, token string) (*models.PlaybackSnapshot, error) {
	f.record("CurrentPlayback", token)
	return f.snapshot, f.snapErr
}

func (f *fakeAPI) Play(_ context.Context, _ string, opts *services.PlayOptions) error {
	f.record("Play", opts)
	return f.cmdErr
}

func (f *fakeAPI) Pause(context.Context, string) error {
	f.record("Pause", nil)
	return f.cmdErr
}

func (f *fakeAPI) Next(context.Context, string) error {
	f.record("Next", nil)
	return f.cmdErr
}

func (f *fakeAPI) Previous(context.Context, string) error {
	f.record("Previous", nil)
	return f.cmdErr
}

func (f *fakeAPI) SetVolume(_ context.Context, _ string, percent int) error {
	f.record("SetVolume", percent)
	return f.cmdErr
}

func (f *fakeAPI) Devices(context.Context, string) ([]models.LiveDevice, error) {
	f.record("Devices", nil)
	return f.devices, f.devErr
}

func (f *fakeAPI) TransferPlayback(_ context.Context, _ string, deviceID string, play bool) error {
	f.record("TransferPlayback", []any{deviceID, play})
	return f.cmdErr
}

func (f *fakeAPI) Seek(_ context.Context, _ string, positionMS int) error {
	f.record("Seek", positionMS)
	return f.cmdErr
}

func (f *fakeAPI) Episode(_ context.Context, _ string, id string) (*models.Episode, error) {
	f.record("Episode", id)
	return f.episode, f.cmdErr
}

func (f *fakeAPI) UserPlaylists(context.Context, string) ([]models.Playlist, error) {
	f.record("UserPlaylists", nil)
	return f.playlists, f.cmdErr
}

func (f *fakeAPI) PlaylistTracks(_ context.Context, _ string, id string) ([]models.PlaylistTrack, error) {
	f.record("PlaylistTracks", id)
	return f.tracks, f.cmdErr
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeVideos struct {
	videos []models.Video
	err    error
	calls  int
}

func (f *fakeVideos) LatestVideos(context.Context) ([]models.Video, error) {
	f.calls++
	return f.videos, f.err
}

type fixture struct {
	player *Player
	api    *fakeAPI
	auth   *fakeAuth
	videos *fakeVideos
	clock  *tu.FakeClock
	kv     *repositories.MemoryStore
	slept  []time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		api:    &fakeAPI{},
		auth:   &fakeAuth{token: "tok", ok: true},
		videos: &fakeVideos{},
		clock:  tu.NewFakeClock(start),
		kv:     repositories.NewMemoryStore(),
	}
	logger := tu.DiscardLogger()
	cache := devices.NewCache(f.kv, f.clock, logger, 0)
	f.player = New(Opts{
		Auth:       f.auth,
		API:        f.api,
		Videos:     f.videos,
		Reconciler: devices.NewReconciler(cache, f.clock),
		KV:         f.kv,
		Clock:      f.clock,
		Logger:     logger,
		Sleep: func(_ context.Context, d time.Duration) error {
			f.slept = append(f.slept, d)
			return nil
		},
	})
	return f
}

func TestNotAuthenticated(t *testing.T) {
	f := newFixture(t)
	f.auth.ok = false
	ctx := context.Background()

	assert.Nil(t, f.player.CurrentPlayback(ctx))
	assert.False(t, f.player.PlayPause(ctx))
	assert.False(t, f.player.SkipToNext(ctx))
	assert.False(t, f.player.SkipToPrevious(ctx))
	assert.False(t, f.player.SetVolume(ctx, 50))
	assert.False(t, f.player.Seek(ctx, 10))
	assert.False(t, f.player.TransferPlayback(ctx, "d"))
	assert.False(t, f.player.PlayTrack(ctx, "spotify:track:t", ""))
	assert.Nil(t, f.player.Episode(ctx, "e"))
	assert.Nil(t, f.player.CurrentEpisode(ctx))
	assert.Empty(t, f.player.Devices(ctx, true))
	assert.Empty(t, f.player.Playlists(ctx, false))
	assert.Empty(t, f.player.PlaylistTracks(ctx, "p"))

	assert.Empty(t, f.api.Calls(), "no API call without a token")
	assert.Empty(t, f.slept, "no wake wait without a token")
}

func TestPlayPause(t *testing.T) {
	ctx := context.Background()

	t.Run("pauses when playing", func(t *testing.T) {
		f := newFixture(t)
		f.api.snapshot = &models.PlaybackSnapshot{IsPlaying: true}

		assert.True(t, f.player.PlayPause(ctx))
		assert.Equal(t, []string{"CurrentPlayback", "Pause"}, f.api.Calls())
	})

	t.Run("plays when paused", func(t *testing.T) {
		f := newFixture(t)
		f.api.snapshot = &models.PlaybackSnapshot{IsPlaying: false}

		assert.True(t, f.player.PlayPause(ctx))
		assert.Equal(t, []string{"CurrentPlayback", "Play"}, f.api.Calls())
	})

	t.Run("plays when nothing is loaded", func(t *testing.T) {
		f := newFixture(t)

		assert.True(t, f.player.PlayPause(ctx))
		assert.Equal(t, []string{"CurrentPlayback", "Play"}, f.api.Calls())
	})

	t.Run("command failure is false", func(t *testing.T) {
		f := newFixture(t)
		f.api.cmdErr = shared.ErrAPIRequest

		assert.False(t, f.player.PlayPause(ctx))
	})
}

func TestSetVolume(t *testing.T) {
	ctx := context.Background()

	for _, tt := range []struct{ in, want int }{{150, 100}, {-10, 0}, {55, 55}} {
		f := newFixture(t)
		require.True(t, f.player.SetVolume(ctx, tt.in))
		assert.Equal(t, tt.want, f.api.last["SetVolume"], "SetVolume(%d)", tt.in)
	}
}

func TestAdjustVolume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.api.snapshot = &models.PlaybackSnapshot{Device: &models.LiveDevice{ID: "d", VolumePercent: 95}}

	require.True(t, f.player.AdjustVolume(ctx, 1))
	assert.Equal(t, 100, f.api.last["SetVolume"])

	f.api.snapshot = nil
	assert.False(t, f.player.AdjustVolume(ctx, -1), "no device to adjust")
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.True(t, f.player.SkipToNext(ctx))
	assert.True(t, f.player.SkipToPrevious(ctx))
	assert.True(t, f.player.Seek(ctx, -5))
	assert.Equal(t, 0, f.api.last["Seek"])
	assert.True(t, f.player.TransferPlayback(ctx, "dev"))
	assert.Equal(t, []any{"dev", false}, f.api.last["TransferPlayback"])

	f.api.cmdErr = errors.New("boom")
	assert.False(t, f.player.SkipToNext(ctx))
}

func TestPlayTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("with context", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.player.PlayTrack(ctx, "spotify:track:t1", "spotify:playlist:p1"))

		opts := f.api.last["Play"].(*services.PlayOptions)
		assert.Equal(t, "spotify:playlist:p1", opts.ContextURI)
		assert.Equal(t, "spotify:track:t1", opts.Offset.URI)
		assert.Empty(t, opts.URIs)
	})

	t.Run("without context", func(t *testing.T) {
		f := newFixture(t)
		require.True(t, f.player.PlayTrack(ctx, "spotify:track:t1", ""))

		opts := f.api.last["Play"].(*services.PlayOptions)
		assert.Equal(t, []string{"spotify:track:t1"}, opts.URIs)
		assert.Nil(t, opts.Offset)
	})
}

func TestEpisodes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ep := &models.Episode{ID: "e1", Name: "Pilot"}
	f.api.snapshot = &models.PlaybackSnapshot{CurrentlyPlayingType: "episode", Item: ep}
	assert.Equal(t, ep, f.player.CurrentEpisode(ctx))

	f.api.snapshot = &models.PlaybackSnapshot{CurrentlyPlayingType: "track", Item: &models.Track{ID: "t"}}
	assert.Nil(t, f.player.CurrentEpisode(ctx))

	f.api.episode = ep
	assert.Equal(t, ep, f.player.Episode(ctx, "e1"))
	assert.Equal(t, "e1", f.api.last["Episode"])
}

func TestDevices(t *testing.T) {
	ctx := context.Background()

	t.Run("caches live devices", func(t *testing.T) {
		f := newFixture(t)
		f.api.devices = []models.LiveDevice{{ID: "a", IsActive: true}}

		live := f.player.Devices(ctx, false)
		assert.Len(t, live, 1)
		assert.Empty(t, f.slept)
		assert.Equal(t, []string{"Devices"}, f.api.Calls())

		cached := f.player.Reconciler().Cache().GetCachedDevices()
		require.Len(t, cached, 1)
		assert.True(t, cached[0].LastSeen.Equal(start))
	})

	t.Run("force refresh probes then waits", func(t *testing.T) {
		f := newFixture(t)
		f.api.snapErr = shared.ErrAPIRequest
		f.api.devices = []models.LiveDevice{{ID: "a"}}

		assert.Len(t, f.player.Devices(ctx, true), 1)
		assert.Equal(t, []string{"CurrentPlayback", "Devices"}, f.api.Calls())
		assert.Equal(t, []time.Duration{DefaultWakeGracePeriod}, f.slept)
	})

	t.Run("cancelled wait aborts", func(t *testing.T) {
		f := newFixture(t)
		f.player.sleep = sleepContext
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.Empty(t, f.player.Devices(cctx, true))
		assert.Equal(t, []string{"CurrentPlayback"}, f.api.Calls())
	})

	t.Run("failure leaves cache alone", func(t *testing.T) {
		f := newFixture(t)
		f.api.devices = []models.LiveDevice{{ID: "a"}}
		f.player.Devices(ctx, false)

		f.api.devErr = shared.ErrAPIRequest
		f.clock.Advance(time.Hour)
		assert.Empty(t, f.player.Devices(ctx, false))

		cached := f.player.Reconciler().Cache().GetCachedDevices()
		require.Len(t, cached, 1)
		assert.True(t, cached[0].LastSeen.Equal(start))
	})

	t.Run("AllDevices merges history", func(t *testing.T) {
		f := newFixture(t)
		f.api.devices = []models.LiveDevice{{ID: "old"}}
		f.player.Devices(ctx, false)

		f.clock.Advance(time.Minute)
		f.api.devices = []models.LiveDevice{{ID: "new", IsActive: true}}
		all := f.player.AllDevices(ctx, false)

		require.Len(t, all, 2)
		assert.Equal(t, "new", all[0].ID)
		assert.False(t, all[0].IsCached)
		assert.Equal(t, "old", all[1].ID)
		assert.True(t, all[1].IsCached)
	})

	t.Run("AllDevices without auth shows history", func(t *testing.T) {
		f := newFixture(t)
		f.api.devices = []models.LiveDevice{{ID: "old", IsActive: true}}
		f.player.Devices(ctx, false)

		f.auth.ok = false
		all := f.player.AllDevices(ctx, false)
		require.Len(t, all, 1)
		assert.True(t, all[0].IsCached)
		assert.False(t, all[0].IsActive)
	})

	t.Run("ClearDevices", func(t *testing.T) {
		f := newFixture(t)
		f.api.devices = []models.LiveDevice{{ID: "a"}}
		f.player.Devices(ctx, false)
		f.player.ClearDevices()

		assert.Empty(t, f.player.Reconciler().Cache().GetCachedDevices())
	})
}

func TestPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("served from cache until forced", func(t *testing.T) {
		f := newFixture(t)
		f.api.playlists = []models.Playlist{{ID: "p1"}}

		assert.Len(t, f.player.Playlists(ctx, false), 1)
		assert.Len(t, f.player.Playlists(ctx, false), 1)
		assert.Equal(t, []string{"UserPlaylists"}, f.api.Calls())

		f.api.playlists = []models.Playlist{{ID: "p1"}, {ID: "p2"}}
		assert.Len(t, f.player.Playlists(ctx, true), 2)
		assert.Len(t, f.api.Calls(), 2)
	})

	t.Run("failure is not cached", func(t *testing.T) {
		f := newFixture(t)
		f.api.cmdErr = shared.ErrAPIRequest
		assert.Empty(t, f.player.Playlists(ctx, false))

		f.api.cmdErr = nil
		f.api.playlists = []models.Playlist{{ID: "p1"}}
		assert.Len(t, f.player.Playlists(ctx, false), 1)
	})

	t.Run("callers cannot modify the cached listing", func(t *testing.T) {
		f := newFixture(t)
		f.api.playlists = []models.Playlist{{ID: "p1", Name: "Focus"}}
		f.api.tracks = []models.PlaylistTrack{{ID: "t1", Name: "Song"}}

		fetched := f.player.Playlists(ctx, false)
		fetched[0].Name = "changed"
		cached := f.player.Playlists(ctx, false)
		assert.Equal(t, "Focus", cached[0].Name)
		cached[0].Name = "changed"
		assert.Equal(t, "Focus", f.player.Playlists(ctx, false)[0].Name)

		tracks := f.player.PlaylistTracks(ctx, "p1")
		tracks[0].Name = "changed"
		assert.Equal(t, "Song", f.player.PlaylistTracks(ctx, "p1")[0].Name)
		assert.Equal(t, []string{"UserPlaylists", "PlaylistTracks"}, f.api.Calls())
	})

	t.Run("tracks cached per playlist", func(t *testing.T) {
		f := newFixture(t)
		f.api.tracks = []models.PlaylistTrack{{ID: "t1"}}

		assert.Len(t, f.player.PlaylistTracks(ctx, "p1"), 1)
		assert.Len(t, f.player.PlaylistTracks(ctx, "p1"), 1)
		assert.Len(t, f.player.PlaylistTracks(ctx, "p2"), 1)
		assert.Equal(t, []string{"PlaylistTracks", "PlaylistTracks"}, f.api.Calls())

		f.player.FlushPlaylists()
		f.player.PlaylistTracks(ctx, "p1")
		assert.Len(t, f.api.Calls(), 3)
	})
}

func TestLatestVideos(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches then serves from cache", func(t *testing.T) {
		f := newFixture(t)
		f.videos.videos = []models.Video{{VideoID: "v1"}}

		assert.Len(t, f.player.LatestVideos(ctx, false), 1)
		f.clock.Advance(59 * time.Minute)
		assert.Len(t, f.player.LatestVideos(ctx, false), 1)
		assert.Equal(t, 1, f.videos.calls)
	})

	t.Run("expired cache refetches", func(t *testing.T) {
		f := newFixture(t)
		f.videos.videos = []models.Video{{VideoID: "v1"}}
		f.player.LatestVideos(ctx, false)

		f.clock.Advance(time.Hour)
		f.videos.videos = []models.Video{{VideoID: "v2"}}
		got := f.player.LatestVideos(ctx, false)
		require.Len(t, got, 1)
		assert.Equal(t, "v2", got[0].VideoID)
		assert.Equal(t, 2, f.videos.calls)
	})

	t.Run("force bypasses cache", func(t *testing.T) {
		f := newFixture(t)
		f.player.LatestVideos(ctx, false)
		f.player.LatestVideos(ctx, true)
		assert.Equal(t, 2, f.videos.calls)
	})

	t.Run("failure falls back to stale feed", func(t *testing.T) {
		f := newFixture(t)
		f.videos.videos = []models.Video{{VideoID: "v1"}}
		f.player.LatestVideos(ctx, false)

		f.clock.Advance(2 * time.Hour)
		f.videos.err = shared.ErrAPIRequest
		got := f.player.LatestVideos(ctx, false)
		require.Len(t, got, 1)
		assert.Equal(t, "v1", got[0].VideoID)
	})

	t.Run("works without spotify auth", func(t *testing.T) {
		f := newFixture(t)
		f.auth.ok = false
		f.videos.videos = []models.Video{{VideoID: "v1"}}

		assert.Len(t, f.player.LatestVideos(ctx, false), 1)
		assert.Equal(t, 0, f.auth.calls)
	})

	t.Run("no store, no cache", func(t *testing.T) {
		f := newFixture(t)
		f.player.kv = nil
		f.videos.err = shared.ErrAPIRequest

		got := f.player.LatestVideos(ctx, false)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 100, ClampVolume(150))
	assert.Equal(t, 0, ClampVolume(-10))
	assert.Equal(t, 30, ClampVolume(30))
}
