package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/shared"
)

// DefaultPollInterval is the time between playback reads.
const DefaultPollInterval = 5 * time.Second

// PlaybackSource reads the current playback state. Implemented by player.Player.
type PlaybackSource interface {
	CurrentPlayback(ctx context.Context) *models.PlaybackSnapshot
}

// Validator keeps the session alive. Implemented by auth.Manager.
type Validator interface {
	EnsureValid(ctx context.Context) bool
}

// Poller periodically reads playback state while the session is valid.
type Poller struct {
	source   PlaybackSource
	auth     Validator
	interval time.Duration
	clock    shared.Clock
	logger   *log.Logger
}

// NewPoller creates a [Poller]. interval <= 0 means [DefaultPollInterval].
func NewPoller(source PlaybackSource, auth Validator, interval time.Duration, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Poller{source: source, auth: auth, interval: interval, clock: shared.RealClock{}, logger: logger}
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration { return p.interval }

// Start launches the poll loop and returns its update channel.
func (p *Poller) Start(ctx context.Context) <-chan Update {
	updates := make(chan Update, 1)
	go p.run(ctx, updates)
	return updates
}

func (p *Poller) run(ctx context.Context, updates chan<- Update) {
	defer close(updates)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if !p.poll(ctx, updates) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll performs one read and reports whether the loop should continue.
func (p *Poller) poll(ctx context.Context, updates chan<- Update) bool {
	if ctx.Err() != nil {
		return false
	}

	if !p.auth.EnsureValid(ctx) {
		p.logger.Info("playback polling stopped", "reason", "not authenticated")
		p.send(ctx, updates, authLostUpdate(p.clock.Now()))
		return false
	}

	snap := p.source.CurrentPlayback(ctx)
	return p.send(ctx, updates, playbackUpdate(p.clock.Now(), snap))
}

func (p *Poller) send(ctx context.Context, updates chan<- Update, u Update) bool {
	select {
	case updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}
