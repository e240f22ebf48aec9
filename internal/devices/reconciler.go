package devices

import (
	"sort"

	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/shared"
)

// Reconciler overlays the persisted device history on a live device list.
type Reconciler struct {
	cache *Cache
	clock shared.Clock
}

func NewReconciler(cache *Cache, clock shared.Clock) *Reconciler {
	if clock == nil {
		clock = shared.RealClock{}
	}
	return &Reconciler{cache: cache, clock: clock}
}

// Cache exposes the underlying [Cache].
func (r *Reconciler) Cache() *Cache { return r.cache }

// GetMergedDevices returns live devices (LastSeen = now) plus every cached device not currently
// live (inactive, IsCached), active first then most recently seen.
//
// Live data always wins over cached data for the same ID. The cache is not written.
func (r *Reconciler) GetMergedDevices(live []models.LiveDevice) []models.CachedDevice {
	now := r.clock.Now()

	merged := make([]models.CachedDevice, 0, len(live))
	seen := make(map[string]int, len(live))
	for _, d := range live {
		entry := models.CachedDevice{LiveDevice: d, LastSeen: now}
		if i, ok := seen[d.ID]; ok {
			merged[i] = entry
			continue
		}
		seen[d.ID] = len(merged)
		merged = append(merged, entry)
	}

	for _, d := range r.cache.GetCachedDevices() {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = len(merged)
		d.IsActive = false
		d.IsCached = true
		merged = append(merged, d)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].IsActive != merged[j].IsActive {
			return merged[i].IsActive
		}
		return merged[i].LastSeen.After(merged[j].LastSeen)
	})
	return merged
}
