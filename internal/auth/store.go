package auth

import (
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/repositories"
	"github.com/desertthunder/kiosk/internal/shared"
)

// TokenStore persists the access token, refresh token and expiry under three KV keys.
//
// A nil [repositories.KVStore] means persistence is unavailable: reads report absent and writes do nothing.
// Storage errors are logged, never returned.
type TokenStore struct {
	kv     repositories.KVStore
	clock  shared.Clock
	logger *log.Logger
}

// NewTokenStore creates a [TokenStore]. clock defaults to [shared.RealClock].
func NewTokenStore(kv repositories.KVStore, clock shared.Clock, logger *log.Logger) *TokenStore {
	if clock == nil {
		clock = shared.RealClock{}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TokenStore{kv: kv, clock: clock, logger: logger}
}

// GetStoredTokens returns the persisted tokens, absent unless both tokens are present.
//
// An unparsable expiry yields a zero Expiry, which always needs refresh.
func (s *TokenStore) GetStoredTokens() (*models.TokenData, bool) {
	if s.kv == nil {
		return nil, false
	}

	access := s.get(repositories.KeyAccessToken)
	refresh := s.get(repositories.KeyRefreshToken)
	if access == "" || refresh == "" {
		return nil, false
	}

	data := &models.TokenData{AccessToken: access, RefreshToken: refresh}
	if ms, err := strconv.ParseInt(s.get(repositories.KeyTokenExpiry), 10, 64); err == nil {
		data.Expiry = time.UnixMilli(ms)
	}
	return data, true
}

// StoreTokens persists both tokens with expiry = now + expiresInSeconds in a single write.
func (s *TokenStore) StoreTokens(accessToken, refreshToken string, expiresInSeconds int) {
	if s.kv == nil {
		return
	}

	expiry := s.clock.Now().Add(time.Duration(expiresInSeconds) * time.Second)
	err := s.kv.SetMany(map[string]string{
		repositories.KeyAccessToken:  accessToken,
		repositories.KeyRefreshToken: refreshToken,
		repositories.KeyTokenExpiry:  strconv.FormatInt(expiry.UnixMilli(), 10),
	})
	if err != nil {
		s.logger.Error("failed to store tokens", "error", err)
	}
}

// ClearTokens removes all three keys. Safe to call repeatedly.
func (s *TokenStore) ClearTokens() {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(repositories.KeyAccessToken, repositories.KeyRefreshToken, repositories.KeyTokenExpiry); err != nil {
		s.logger.Error("failed to clear tokens", "error", err)
	}
}

func (s *TokenStore) get(key string) string {
	v, ok, err := s.kv.Get(key)
	if err != nil {
		s.logger.Warn("failed to read token key", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}
