package player

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"

	"github.com/desertthunder/kiosk/internal/devices"
	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/repositories"
	"github.com/desertthunder/kiosk/internal/services"
	"github.com/desertthunder/kiosk/internal/shared"
)

const (
	DefaultWakeGracePeriod  = 1500 * time.Millisecond
	DefaultPlaylistCacheTTL = time.Hour
	DefaultVideoCacheTTL    = time.Hour

	volumeStep = 10
)

// Authenticator hands out the access token for the next request. Implemented by auth.Manager.
type Authenticator interface {
	AccessToken(ctx context.Context) (string, bool)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Opts configures a [Player].
type Opts struct {
	Auth       Authenticator
	API        services.PlaybackAPI
	Videos     services.VideoAPI
	Reconciler *devices.Reconciler
	// KV backs the video feed cache. May be nil.
	KV     repositories.KVStore
	Clock  shared.Clock
	Logger *log.Logger
	Sleep  SleepFunc

	WakeGracePeriod  time.Duration
	PlaylistCacheTTL time.Duration
	VideoCacheTTL    time.Duration
}

// Player is the playback facade.
type Player struct {
	auth       Authenticator
	api        services.PlaybackAPI
	videos     services.VideoAPI
	reconciler *devices.Reconciler
	kv         repositories.KVStore
	clock      shared.Clock
	logger     *log.Logger
	sleep      SleepFunc

	wakeGrace time.Duration
	videoTTL  time.Duration
	lists     *gocache.Cache
}

// New builds a [Player], filling unset durations with the package defaults.
func New(opts Opts) *Player {
	p := &Player{
		auth:       opts.Auth,
		api:        opts.API,
		videos:     opts.Videos,
		reconciler: opts.Reconciler,
		kv:         opts.KV,
		clock:      opts.Clock,
		logger:     opts.Logger,
		sleep:      opts.Sleep,
		wakeGrace:  opts.WakeGracePeriod,
		videoTTL:   opts.VideoCacheTTL,
	}

	if p.clock == nil {
		p.clock = shared.RealClock{}
	}
	if p.logger == nil {
		p.logger = shared.NewLogger(nil)
	}
	if p.sleep == nil {
		p.sleep = sleepContext
	}
	if p.reconciler == nil {
		p.reconciler = devices.NewReconciler(devices.NewCache(nil, p.clock, p.logger, 0), p.clock)
	}
	if p.wakeGrace <= 0 {
		p.wakeGrace = DefaultWakeGracePeriod
	}
	if p.videoTTL <= 0 {
		p.videoTTL = DefaultVideoCacheTTL
	}

	listTTL := opts.PlaylistCacheTTL
	if listTTL <= 0 {
		listTTL = DefaultPlaylistCacheTTL
	}
	p.lists = gocache.New(listTTL, 2*listTTL)
	return p
}

// Reconciler exposes the device reconciler, e.g. for clearing the cache.
func (p *Player) Reconciler() *devices.Reconciler { return p.reconciler }

// token is the shared guard: without a token nothing is sent.
func (p *Player) token(ctx context.Context, op string) (string, bool) {
	tok, ok := p.auth.AccessToken(ctx)
	if !ok {
		p.logger.Debug("not authenticated", "op", op)
	}
	return tok, ok
}

// CurrentPlayback returns the current playback state or nil.
func (p *Player) CurrentPlayback(ctx context.Context) *models.PlaybackSnapshot {
	tok, ok := p.token(ctx, "current_playback")
	if !ok {
		return nil
	}
	snap, err := p.api.CurrentPlayback(ctx, tok)
	if err != nil {
		p.logger.Error("failed to get playback state", "error", err)
		return nil
	}
	return snap
}

// PlayPause pauses when something is playing and plays otherwise.
//
// The read and the write are not atomic: a change made elsewhere in between is overwritten.
func (p *Player) PlayPause(ctx context.Context) bool {
	tok, ok := p.token(ctx, "play_pause")
	if !ok {
		return false
	}

	snap, err := p.api.CurrentPlayback(ctx, tok)
	if err != nil {
		p.logger.Warn("failed to read playback state before toggle", "error", err)
	}

	if snap != nil && snap.IsPlaying {
		return p.check("pause", p.api.Pause(ctx, tok))
	}
	return p.check("play", p.api.Play(ctx, tok, nil))
}

func (p *Player) SkipToNext(ctx context.Context) bool {
	tok, ok := p.token(ctx, "next")
	if !ok {
		return false
	}
	return p.check("next", p.api.Next(ctx, tok))
}

func (p *Player) SkipToPrevious(ctx context.Context) bool {
	tok, ok := p.token(ctx, "previous")
	if !ok {
		return false
	}
	return p.check("previous", p.api.Previous(ctx, tok))
}

// SetVolume clamps percent to [0, 100] before sending it.
func (p *Player) SetVolume(ctx context.Context, percent int) bool {
	tok, ok := p.token(ctx, "volume")
	if !ok {
		return false
	}
	return p.check("volume", p.api.SetVolume(ctx, tok, ClampVolume(percent)))
}

// AdjustVolume changes the active device volume by steps of ten.
func (p *Player) AdjustVolume(ctx context.Context, steps int) bool {
	snap := p.CurrentPlayback(ctx)
	if snap == nil || snap.Device == nil {
		return false
	}
	return p.SetVolume(ctx, snap.Device.VolumePercent+steps*volumeStep)
}

// ClampVolume limits percent to [0, 100].
func ClampVolume(percent int) int {
	return max(0, min(100, percent))
}

// Seek moves the playhead to positionMS.
func (p *Player) Seek(ctx context.Context, positionMS int) bool {
	tok, ok := p.token(ctx, "seek")
	if !ok {
		return false
	}
	return p.check("seek", p.api.Seek(ctx, tok, max(0, positionMS)))
}

// TransferPlayback moves playback to deviceID without starting it.
func (p *Player) TransferPlayback(ctx context.Context, deviceID string) bool {
	tok, ok := p.token(ctx, "transfer")
	if !ok {
		return false
	}
	return p.check("transfer", p.api.TransferPlayback(ctx, tok, deviceID, false))
}

// PlayTrack plays trackURI, inside contextURI when one is given.
func (p *Player) PlayTrack(ctx context.Context, trackURI, contextURI string) bool {
	tok, ok := p.token(ctx, "play_track")
	if !ok {
		return false
	}

	opts := &services.PlayOptions{URIs: []string{trackURI}}
	if contextURI != "" {
		opts = &services.PlayOptions{ContextURI: contextURI, Offset: &services.PlayOffset{URI: trackURI}}
	}
	return p.check("play_track", p.api.Play(ctx, tok, opts))
}

// CurrentEpisode returns the playing podcast episode, or nil when nothing or music is playing.
func (p *Player) CurrentEpisode(ctx context.Context) *models.Episode {
	snap := p.CurrentPlayback(ctx)
	if snap == nil {
		return nil
	}
	return snap.Episode()
}

// Episode fetches an episode by ID.
func (p *Player) Episode(ctx context.Context, id string) *models.Episode {
	tok, ok := p.token(ctx, "episode")
	if !ok {
		return nil
	}
	ep, err := p.api.Episode(ctx, tok, id)
	if err != nil {
		p.logger.Error("failed to get episode", "id", id, "error", err)
		return nil
	}
	return ep
}

func (p *Player) check(op string, err error) bool {
	if err != nil {
		p.logger.Error("playback command failed", "op", op, "error", err)
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
