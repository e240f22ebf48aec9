package auth

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/kiosk/internal/shared"
)

const (
	SpotifyAuthURL  = "https://accounts.spotify.com/authorize"
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"

	// DefaultRefreshMargin is how long before expiry a token counts as stale.
	DefaultRefreshMargin = 5 * time.Minute

	refreshTimeout = 30 * time.Second
)

// Scopes requested at authorization.
var Scopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-recently-played",
	"playlist-read-private",
	"playlist-read-collaborative",
	"user-read-playback-position",
}

// State is a token lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Valid
	ExpiringSoon
	Refreshing
	RefreshFailed
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Valid:
		return "valid"
	case ExpiringSoon:
		return "expiring_soon"
	case Refreshing:
		return "refreshing"
	case RefreshFailed:
		return "refresh_failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ManagerOpts configures a [Manager].
type ManagerOpts struct {
	Credentials shared.SpotifyConfig
	Store       *TokenStore
	Clock       shared.Clock
	Logger      *log.Logger

	// RefreshMargin defaults to [DefaultRefreshMargin].
	RefreshMargin time.Duration
	// HTTPClient is used for token endpoint calls. Defaults to [http.DefaultClient].
	HTTPClient *http.Client
	// AuthURL and TokenURL override the Spotify accounts endpoints.
	AuthURL  string
	TokenURL string
	// OnTransition, when set, observes every lifecycle transition.
	OnTransition func(from, to State)
}

// Manager owns the token lifecycle.
type Manager struct {
	oauth        *oauth2.Config
	store        *TokenStore
	clock        shared.Clock
	logger       *log.Logger
	margin       time.Duration
	httpClient   *http.Client
	onTransition func(from, to State)

	group      singleflight.Group
	refreshing atomic.Bool

	mu      sync.Mutex
	lastErr error
}

// NewManager builds a [Manager] from opts.
func NewManager(opts ManagerOpts) *Manager {
	authURL, tokenURL := opts.AuthURL, opts.TokenURL
	if authURL == "" {
		authURL = SpotifyAuthURL
	}
	if tokenURL == "" {
		tokenURL = SpotifyTokenURL
	}

	m := &Manager{
		oauth: &oauth2.Config{
			ClientID:     opts.Credentials.ClientID,
			ClientSecret: opts.Credentials.ClientSecret,
			RedirectURL:  opts.Credentials.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		store:        opts.Store,
		clock:        opts.Clock,
		logger:       opts.Logger,
		margin:       opts.RefreshMargin,
		httpClient:   opts.HTTPClient,
		onTransition: opts.OnTransition,
	}

	if m.clock == nil {
		m.clock = shared.RealClock{}
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(nil)
	}
	if m.store == nil {
		m.store = NewTokenStore(nil, m.clock, m.logger)
	}
	if m.margin <= 0 {
		m.margin = DefaultRefreshMargin
	}
	if m.httpClient == nil {
		m.httpClient = http.DefaultClient
	}
	return m
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	if m.refreshing.Load() {
		return Refreshing
	}
	tokens, ok := m.store.GetStoredTokens()
	if !ok {
		return Unauthenticated
	}
	if m.stale(tokens.Expiry) {
		return ExpiringSoon
	}
	return Valid
}

// NeedsRefresh is true when there are no tokens or now is past expiry minus the refresh margin.
func (m *Manager) NeedsRefresh() bool {
	tokens, ok := m.store.GetStoredTokens()
	if !ok {
		return true
	}
	return m.stale(tokens.Expiry)
}

// IsAuthenticated reports tokens present and not stale.
//
// It is false during the ExpiringSoon window even though a token exists.
func (m *Manager) IsAuthenticated() bool {
	_, ok := m.store.GetStoredTokens()
	return ok && !m.NeedsRefresh()
}

// Expiry returns the stored expiry, if any.
func (m *Manager) Expiry() (time.Time, bool) {
	tokens, ok := m.store.GetStoredTokens()
	if !ok {
		return time.Time{}, false
	}
	return tokens.Expiry, true
}

// LastError returns the error from the most recent failed refresh or exchange.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// EnsureValid refreshes the access token when it is stale and reports whether a usable token exists.
//
// Concurrent callers share a single in-flight refresh.
func (m *Manager) EnsureValid(ctx context.Context) bool {
	tokens, ok := m.store.GetStoredTokens()
	if !ok {
		return false
	}
	if !m.stale(tokens.Expiry) {
		return true
	}

	v, _, _ := m.group.Do("refresh", func() (any, error) {
		return m.refresh(ctx), nil
	})
	return v.(bool)
}

// AccessToken ensures validity and returns the token to pass to the next request.
func (m *Manager) AccessToken(ctx context.Context) (string, bool) {
	if !m.EnsureValid(ctx) {
		return "", false
	}
	tokens, ok := m.store.GetStoredTokens()
	if !ok {
		return "", false
	}
	return tokens.AccessToken, true
}

// AuthCodeURL returns the authorization URL for the given state.
func (m *Manager) AuthCodeURL(state string) string {
	return m.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens and stores them.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	tok, err := m.oauth.Exchange(m.clientContext(ctx), code)
	if err != nil {
		m.setLastErr(err)
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if tok.RefreshToken == "" {
		m.setLastErr(shared.ErrNoRefreshToken)
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, shared.ErrNoRefreshToken)
	}

	m.store.StoreTokens(tok.AccessToken, tok.RefreshToken, m.expiresIn(tok))
	m.setLastErr(nil)
	m.transition(Unauthenticated, Valid)
	return nil
}

// Logout clears the stored tokens.
func (m *Manager) Logout() {
	from := m.State()
	m.store.ClearTokens()
	m.transition(from, Unauthenticated)
}

// refresh runs inside the singleflight group.
func (m *Manager) refresh(ctx context.Context) bool {
	// Another caller may have completed a refresh before this one entered the group.
	tokens, ok := m.store.GetStoredTokens()
	if !ok {
		return false
	}
	if !m.stale(tokens.Expiry) {
		return true
	}

	m.refreshing.Store(true)
	defer m.refreshing.Store(false)
	m.transition(ExpiringSoon, Refreshing)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	src := m.oauth.TokenSource(m.clientContext(ctx), &oauth2.Token{RefreshToken: tokens.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		m.logger.Error("token refresh failed", "error", err)
		m.setLastErr(fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err))
		m.store.ClearTokens()
		m.transition(Refreshing, RefreshFailed)
		m.transition(RefreshFailed, Unauthenticated)
		return false
	}

	refreshToken := tok.RefreshToken
	if refreshToken == "" {
		refreshToken = tokens.RefreshToken
	}
	m.store.StoreTokens(tok.AccessToken, refreshToken, m.expiresIn(tok))
	m.setLastErr(nil)
	m.transition(Refreshing, Valid)
	m.logger.Debug("token refreshed", "rotated", refreshToken != tokens.RefreshToken)
	return true
}

func (m *Manager) stale(expiry time.Time) bool {
	return m.clock.Now().After(expiry.Add(-m.margin))
}

func (m *Manager) expiresIn(tok *oauth2.Token) int {
	if tok.ExpiresIn > 0 {
		return int(tok.ExpiresIn)
	}
	if v, ok := tok.Extra("expires_in").(float64); ok && v > 0 {
		return int(v)
	}
	if tok.Expiry.IsZero() {
		return 0
	}
	return int(math.Round(tok.Expiry.Sub(m.clock.Now()).Seconds()))
}

func (m *Manager) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}

func (m *Manager) transition(from, to State) {
	if from == to {
		return
	}
	m.logger.Debug("auth state", "from", from, "to", to)
	if m.onTransition != nil {
		m.onTransition(from, to)
	}
}

func (m *Manager) setLastErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}
