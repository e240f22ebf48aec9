package devices

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/repositories"
	"github.com/desertthunder/kiosk/internal/shared"
)

// DefaultRetention is how long a device is remembered after it was last seen.
const DefaultRetention = 30 * 24 * time.Hour

// Cache persists [models.CachedDevice] entries as one JSON array under [repositories.KeyCachedDevices].
//
// Reads and writes are not transactional with each other; concurrent writers are last-write-wins.
type Cache struct {
	kv        repositories.KVStore
	clock     shared.Clock
	logger    *log.Logger
	retention time.Duration
}

// NewCache creates a [Cache]. A nil kv disables persistence; retention <= 0 means [DefaultRetention].
func NewCache(kv repositories.KVStore, clock shared.Clock, logger *log.Logger, retention time.Duration) *Cache {
	if clock == nil {
		clock = shared.RealClock{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Cache{kv: kv, clock: clock, logger: logger, retention: retention}
}

// GetCachedDevices returns the persisted collection in storage order.
//
// A missing or malformed blob reads as empty.
func (c *Cache) GetCachedDevices() []models.CachedDevice {
	if c.kv == nil {
		return []models.CachedDevice{}
	}

	blob, ok, err := c.kv.Get(repositories.KeyCachedDevices)
	if err != nil {
		c.logger.Warn("failed to read device cache", "error", err)
		return []models.CachedDevice{}
	}
	if !ok || blob == "" {
		return []models.CachedDevice{}
	}

	var devices []models.CachedDevice
	if err := json.Unmarshal([]byte(blob), &devices); err != nil {
		c.logger.Warn("discarding malformed device cache", "error", err)
		return []models.CachedDevice{}
	}
	if devices == nil {
		devices = []models.CachedDevice{}
	}
	return devices
}

// CacheDevices upserts live by ID with LastSeen = now, purges entries not seen within the
// retention window and writes the whole collection back.
//
// Entries absent from live keep their previous LastSeen.
func (c *Cache) CacheDevices(live []models.LiveDevice) {
	if c.kv == nil {
		return
	}

	now := c.clock.Now()
	existing := c.GetCachedDevices()

	index := make(map[string]int, len(existing))
	for i, d := range existing {
		index[d.ID] = i
	}

	for _, d := range live {
		entry := models.CachedDevice{LiveDevice: d, LastSeen: now}
		if i, ok := index[d.ID]; ok {
			existing[i] = entry
			continue
		}
		index[d.ID] = len(existing)
		existing = append(existing, entry)
	}

	cutoff := now.Add(-c.retention)
	kept := make([]models.CachedDevice, 0, len(existing))
	for _, d := range existing {
		if d.LastSeen.After(cutoff) {
			d.IsCached = false
			kept = append(kept, d)
		}
	}

	if dropped := len(existing) - len(kept); dropped > 0 {
		c.logger.Debug("purged stale devices", "count", dropped)
	}

	blob, err := json.Marshal(kept)
	if err != nil {
		c.logger.Error("failed to encode device cache", "error", err)
		return
	}
	if err := c.kv.SetMany(map[string]string{repositories.KeyCachedDevices: string(blob)}); err != nil {
		c.logger.Error("failed to write device cache", "error", err)
	}
}

// ClearCachedDevices removes the persisted collection.
func (c *Cache) ClearCachedDevices() {
	if c.kv == nil {
		return
	}
	if err := c.kv.Delete(repositories.KeyCachedDevices); err != nil {
		c.logger.Error("failed to clear device cache", "error", err)
	}
}
