package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/kiosk/internal/auth"
	"github.com/desertthunder/kiosk/internal/devices"
	"github.com/desertthunder/kiosk/internal/player"
	"github.com/desertthunder/kiosk/internal/repositories"
	"github.com/desertthunder/kiosk/internal/services"
	"github.com/desertthunder/kiosk/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultLoginTimeout = 2 * time.Minute

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configPath   string
	logger       *log.Logger
	output       io.Writer
	clock        shared.Clock
	httpClient   *http.Client
	openURL      func(string) error
	loginTimeout time.Duration

	spotifyURL string
	youtubeURL string
	authURL    string
	tokenURL   string

	db     *sql.DB
	kv     repositories.KVStore
	auth   *auth.Manager
	player *player.Player
}

// RunnerOpts contains configuration options for creating a Runner.
//
// KV and the endpoint URLs exist for tests; main leaves them empty so Before opens the
// configured SQLite database and the real Spotify and YouTube endpoints are used.
type RunnerOpts struct {
	Config       *shared.Config
	ConfigPath   string
	Logger       *log.Logger
	Output       io.Writer
	Clock        shared.Clock
	HTTPClient   *http.Client
	OpenURL      func(string) error
	LoginTimeout time.Duration
	KV           repositories.KVStore

	SpotifyBaseURL string
	YouTubeBaseURL string
	AuthURL        string
	TokenURL       string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Clock == nil {
		opts.Clock = shared.RealClock{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = defaultLoginTimeout
	}

	return &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		logger:       opts.Logger,
		output:       opts.Output,
		clock:        opts.Clock,
		httpClient:   opts.HTTPClient,
		openURL:      opts.OpenURL,
		loginTimeout: opts.LoginTimeout,
		kv:           opts.KV,
		spotifyURL:   opts.SpotifyBaseURL,
		youtubeURL:   opts.YouTubeBaseURL,
		authURL:      opts.AuthURL,
		tokenURL:     opts.TokenURL,
	}
}

// Before loads the config named by --config, when present, and wires every component.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	shared.SetLogLevel(r.logger, shared.ParseLevel(r.config.Kiosk.LogLevel))
	return ctx, r.wire()
}

// After closes the database opened by Before.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// SetLogger swaps the logger and rebuilds the components that captured the old one.
func (r *Runner) SetLogger(logger *log.Logger) error {
	r.logger = logger
	return r.wire()
}

// wire builds the auth manager, device cache, API clients and playback facade.
//
// The KV store is opened once; later calls only rebuild what sits on top of it.
func (r *Runner) wire() error {
	if r.kv == nil {
		db, err := shared.OpenMigrated(r.config.Database)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStorageUnavailable, err)
		}
		r.db = db
		r.kv = repositories.NewSQLiteStore(db)
	}

	k := r.config.Kiosk
	logger := r.logger

	r.auth = auth.NewManager(auth.ManagerOpts{
		Credentials:   r.config.Credentials.Spotify,
		Store:         auth.NewTokenStore(r.kv, r.clock, shared.WithLogger(logger, "component", "tokens")),
		Clock:         r.clock,
		Logger:        shared.WithLogger(logger, "component", "auth"),
		RefreshMargin: k.RefreshMargin.Or(auth.DefaultRefreshMargin),
		HTTPClient:    r.httpClient,
		AuthURL:       r.authURL,
		TokenURL:      r.tokenURL,
		OnTransition: func(from, to auth.State) {
			logger.Debug("auth state changed", "from", from, "to", to)
		},
	})

	cache := devices.NewCache(r.kv, r.clock, shared.WithLogger(logger, "component", "devices"), k.DeviceRetention.Or(devices.DefaultRetention))

	spotify := services.NewSpotifyService(r.spotifyURL, r.httpClient, nil)
	yt := services.NewYouTubeService(r.youtubeURL, r.config.Credentials.YouTube)

	var videos services.VideoAPI
	if yt.Configured() {
		videos = yt
	} else {
		logger.Debug("video feed disabled, credentials not set", "service", yt.Name())
	}

	r.player = player.New(player.Opts{
		Auth:             r.auth,
		API:              spotify,
		Videos:           videos,
		Reconciler:       devices.NewReconciler(cache, r.clock),
		KV:               r.kv,
		Clock:            r.clock,
		Logger:           shared.WithLogger(logger, "component", "player"),
		WakeGracePeriod:  k.WakeGracePeriod.Or(player.DefaultWakeGracePeriod),
		PlaylistCacheTTL: k.PlaylistCacheTTL.Or(player.DefaultPlaylistCacheTTL),
		VideoCacheTTL:    k.VideoCacheTTL.Or(player.DefaultVideoCacheTTL),
	})
	return nil
}

// requireAuth fails with [shared.ErrNotAuthenticated] when no session is stored
// or the stored refresh token is rejected. A stale access token is refreshed first.
func (r *Runner) requireAuth(ctx context.Context) error {
	if !r.auth.EnsureValid(ctx) {
		return fmt.Errorf("%w: run 'kiosk auth login'", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
