package player

import (
	"context"

	"github.com/desertthunder/kiosk/internal/models"
)

// Devices lists reachable devices and records them in the device cache.
//
// With forceRefresh it first sends a throwaway playback read and waits the wake grace period,
// which sometimes gets idle devices to report in. Failure returns an empty list and leaves the
// cache untouched.
func (p *Player) Devices(ctx context.Context, forceRefresh bool) []models.LiveDevice {
	tok, ok := p.token(ctx, "devices")
	if !ok {
		return []models.LiveDevice{}
	}

	if forceRefresh {
		if _, err := p.api.CurrentPlayback(ctx, tok); err != nil {
			p.logger.Debug("wake-up probe failed, continuing", "error", err)
		}
		if err := p.sleep(ctx, p.wakeGrace); err != nil {
			return []models.LiveDevice{}
		}
	}

	live, err := p.api.Devices(ctx, tok)
	if err != nil {
		p.logger.Error("failed to list devices", "error", err)
		return []models.LiveDevice{}
	}

	p.reconciler.Cache().CacheDevices(live)
	return live
}

// AllDevices is the merged view: live devices plus remembered ones, active first.
//
// When not authenticated or the fetch fails this is the cached history alone.
func (p *Player) AllDevices(ctx context.Context, forceRefresh bool) []models.CachedDevice {
	return p.reconciler.GetMergedDevices(p.Devices(ctx, forceRefresh))
}

// ClearDevices forgets every remembered device.
func (p *Player) ClearDevices() {
	p.reconciler.Cache().ClearCachedDevices()
}
