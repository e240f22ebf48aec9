package repositories

// Logical keys used by the kiosk.
const (
	KeyAccessToken   = "spotify_access_token"
	KeyRefreshToken  = "spotify_refresh_token"
	KeyTokenExpiry   = "spotify_token_expiry"
	KeyCachedDevices = "spotify_cached_devices"
	KeyLatestVideos  = "youtube_latest_videos"
)

// KVStore is durable string storage keyed by logical name.
type KVStore interface {
	// Get returns the value and whether it exists.
	Get(key string) (string, bool, error)
	// SetMany writes every pair or none of them.
	SetMany(values map[string]string) error
	// Delete removes keys; missing keys are ignored.
	Delete(keys ...string) error
}

var (
	_ KVStore = (*SQLiteStore)(nil)
	_ KVStore = (*MemoryStore)(nil)
)
