package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/shared"
	"github.com/desertthunder/kiosk/internal/tasks"
)

// Screen is one page of the dashboard carousel.
type Screen int

const (
	ScreenClock Screen = iota
	ScreenNowPlaying
	ScreenDevices
	ScreenPlaylists
	ScreenVideos
	screenCount
)

func (s Screen) String() string {
	switch s {
	case ScreenClock:
		return "Clock"
	case ScreenNowPlaying:
		return "Now Playing"
	case ScreenDevices:
		return "Devices"
	case ScreenPlaylists:
		return "Playlists"
	case ScreenVideos:
		return "Videos"
	default:
		return ""
	}
}

// needsAuth reports whether the screen is backed by the Spotify session.
func (s Screen) needsAuth() bool {
	return s == ScreenNowPlaying || s == ScreenDevices || s == ScreenPlaylists
}

// Controller is the playback surface the dashboard drives. Implemented by player.Player.
type Controller interface {
	CurrentPlayback(ctx context.Context) *models.PlaybackSnapshot
	PlayPause(ctx context.Context) bool
	SkipToNext(ctx context.Context) bool
	SkipToPrevious(ctx context.Context) bool
	AdjustVolume(ctx context.Context, steps int) bool
	TransferPlayback(ctx context.Context, deviceID string) bool
	PlayTrack(ctx context.Context, trackURI, contextURI string) bool
	AllDevices(ctx context.Context, forceRefresh bool) []models.CachedDevice
	Playlists(ctx context.Context, forceRefresh bool) []models.Playlist
	PlaylistTracks(ctx context.Context, playlistID string) []models.PlaylistTrack
	LatestVideos(ctx context.Context, forceRefresh bool) []models.Video
}

// AuthChecker reports whether a Spotify session exists. Implemented by auth.Manager.
type AuthChecker interface {
	IsAuthenticated() bool
}

// Opts configures a [Model]. Updates is usually the channel returned by tasks.Poller.Start.
type Opts struct {
	Player  Controller
	Auth    AuthChecker
	Updates <-chan tasks.Update
	Clock   shared.Clock
	OpenURL func(string) error
}

// Model represents the dashboard state.
type Model struct {
	ctx     context.Context
	player  Controller
	auth    AuthChecker
	updates <-chan tasks.Update
	clock   shared.Clock
	openURL func(string) error

	screen   Screen
	width    int
	height   int
	authed   bool
	now      time.Time
	playback *models.PlaybackSnapshot
	status   string

	devices    list.Model
	playlists  list.Model
	tracks     list.Model
	videos     list.Model
	showTracks bool
	selected   models.Playlist

	help help.Model
	keys keyMap
}

// NewModel creates a new dashboard model with the provided dependencies.
func NewModel(ctx context.Context, opts Opts) *Model {
	if opts.Clock == nil {
		opts.Clock = shared.RealClock{}
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	return &Model{
		ctx:       ctx,
		player:    opts.Player,
		auth:      opts.Auth,
		updates:   opts.Updates,
		clock:     opts.Clock,
		openURL:   opts.OpenURL,
		screen:    ScreenClock,
		authed:    opts.Auth != nil && opts.Auth.IsAuthenticated(),
		now:       opts.Clock.Now(),
		devices:   newList("Devices"),
		playlists: newList("Playlists"),
		tracks:    newList("Tracks"),
		videos:    newList("Latest Videos"),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Screen returns the screen currently shown.
func (m *Model) Screen() Screen { return m.screen }

// Init starts the clock, listens for poller updates and loads every screen's data.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), m.waitForUpdate(), m.fetchVideos(false)}
	if m.authed {
		cmds = append(cmds, m.fetchPlayback(), m.fetchDevices(false), m.fetchPlaylists(false))
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.devices, &m.playlists, &m.tracks, &m.videos} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTick:
		m.now = msg.data.(time.Time)
		m.advanceProgress(time.Second)
		return m, tick()

	case MsgUpdate:
		u := msg.data.(tasks.Update)
		switch u.Kind {
		case tasks.AuthLost:
			m.authed = false
			m.playback = nil
			m.status = u.Message
			return m, nil
		default:
			m.playback = u.Snapshot
			if !m.authed {
				// The poller refreshed a token that was stale at startup.
				m.authed = true
				return m, tea.Batch(m.waitForUpdate(), m.fetchDevices(false), m.fetchPlaylists(false))
			}
		}
		return m, m.waitForUpdate()

	case MsgPlaybackFetched:
		m.playback = msg.data.(*models.PlaybackSnapshot)
		return m, nil

	case MsgDevicesFetched:
		devices := msg.data.([]models.CachedDevice)
		items := make([]list.Item, len(devices))
		for i, d := range devices {
			items[i] = deviceItem{device: d, now: m.now}
		}
		return m, m.devices.SetItems(items)

	case MsgPlaylistsFetched:
		playlists := msg.data.([]models.Playlist)
		items := make([]list.Item, len(playlists))
		for i, p := range playlists {
			items[i] = playlistItem{playlist: p}
		}
		return m, m.playlists.SetItems(items)

	case MsgTracksFetched:
		data := msg.data.(struct {
			playlist models.Playlist
			tracks   []models.PlaylistTrack
		})
		items := make([]list.Item, len(data.tracks))
		for i, t := range data.tracks {
			items[i] = trackItem{track: t}
		}
		m.selected = data.playlist
		m.tracks.Title = data.playlist.Name
		m.tracks.Select(0)
		m.showTracks = true
		return m, m.tracks.SetItems(items)

	case MsgVideosFetched:
		videos := msg.data.([]models.Video)
		items := make([]list.Item, len(videos))
		for i, v := range videos {
			items[i] = videoItem{video: v, now: m.now}
		}
		return m, m.videos.SetItems(items)

	case MsgActionDone:
		data := msg.data.(struct {
			op string
			ok bool
		})
		if !data.ok {
			m.status = data.op + " failed"
			return m, nil
		}
		m.status = data.op
		if data.op == "Transferred playback" {
			return m, tea.Batch(m.fetchPlayback(), m.fetchDevices(false))
		}
		return m, m.fetchPlayback()
	}

	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.left):
		m.screen = (m.screen + screenCount - 1) % screenCount
		return m, nil
	case key.Matches(msg, m.keys.right):
		m.screen = (m.screen + 1) % screenCount
		return m, nil
	case key.Matches(msg, m.keys.back):
		if m.screen == ScreenPlaylists && m.showTracks {
			m.showTracks = false
		}
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.enter):
		return m, m.selectItem()
	case key.Matches(msg, m.keys.toggle):
		return m, m.act("Toggled playback", func(ctx context.Context) bool { return m.player.PlayPause(ctx) })
	case key.Matches(msg, m.keys.next):
		return m, m.act("Skipped to next", func(ctx context.Context) bool { return m.player.SkipToNext(ctx) })
	case key.Matches(msg, m.keys.prev):
		return m, m.act("Skipped to previous", func(ctx context.Context) bool { return m.player.SkipToPrevious(ctx) })
	case key.Matches(msg, m.keys.volUp):
		return m, m.act("Volume up", func(ctx context.Context) bool { return m.player.AdjustVolume(ctx, 1) })
	case key.Matches(msg, m.keys.volDown):
		return m, m.act("Volume down", func(ctx context.Context) bool { return m.player.AdjustVolume(ctx, -1) })
	}

	return m.updateList(msg)
}

// refresh force-reloads the current screen's data. Devices is the default target.
func (m *Model) refresh() tea.Cmd {
	switch m.screen {
	case ScreenVideos:
		return m.fetchVideos(true)
	case ScreenPlaylists:
		if !m.requireAuth() {
			return nil
		}
		return m.fetchPlaylists(true)
	default:
		if !m.requireAuth() {
			return nil
		}
		m.status = "Refreshing devices..."
		return m.fetchDevices(true)
	}
}

func (m *Model) selectItem() tea.Cmd {
	switch m.screen {
	case ScreenDevices:
		item, ok := m.devices.SelectedItem().(deviceItem)
		if !ok || !m.requireAuth() {
			return nil
		}
		id := item.device.ID
		return m.act("Transferred playback", func(ctx context.Context) bool { return m.player.TransferPlayback(ctx, id) })

	case ScreenPlaylists:
		if !m.requireAuth() {
			return nil
		}
		if m.showTracks {
			item, ok := m.tracks.SelectedItem().(trackItem)
			if !ok {
				return nil
			}
			trackURI, contextURI := item.track.URI(), m.selected.URI()
			return m.act("Playing "+item.track.Name, func(ctx context.Context) bool {
				return m.player.PlayTrack(ctx, trackURI, contextURI)
			})
		}
		item, ok := m.playlists.SelectedItem().(playlistItem)
		if !ok {
			return nil
		}
		return m.fetchTracks(item.playlist)

	case ScreenVideos:
		item, ok := m.videos.SelectedItem().(videoItem)
		if !ok {
			return nil
		}
		if err := m.openURL(item.video.URL()); err != nil {
			m.status = "Could not open browser"
		}
	}
	return nil
}

// requireAuth sets the connect hint when there is no session.
func (m *Model) requireAuth() bool {
	if !m.authed {
		m.status = "Not connected. Run 'kiosk auth login'"
	}
	return m.authed
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case ScreenDevices:
		m.devices, cmd = m.devices.Update(msg)
	case ScreenPlaylists:
		if m.showTracks {
			m.tracks, cmd = m.tracks.Update(msg)
		} else {
			m.playlists, cmd = m.playlists.Update(msg)
		}
	case ScreenVideos:
		m.videos, cmd = m.videos.Update(msg)
	}
	return m, cmd
}

// advanceProgress moves the local progress estimate between polls.
func (m *Model) advanceProgress(d time.Duration) {
	if m.playback == nil || !m.playback.IsPlaying || m.playback.Item == nil {
		return
	}
	m.playback.ProgressMS = min(m.playback.ProgressMS+int(d.Milliseconds()), m.playback.Item.Duration())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return nil
		}
		return updateMsg(u)
	}
}

// act runs a playback command unless there is no session.
func (m *Model) act(op string, fn func(context.Context) bool) tea.Cmd {
	if !m.requireAuth() {
		return nil
	}
	return func() tea.Msg {
		return actionDoneMsg(op, fn(m.ctx))
	}
}

func (m *Model) fetchPlayback() tea.Cmd {
	return func() tea.Msg {
		return playbackFetchedMsg(m.player.CurrentPlayback(m.ctx))
	}
}

func (m *Model) fetchDevices(force bool) tea.Cmd {
	return func() tea.Msg {
		return devicesFetchedMsg(m.player.AllDevices(m.ctx, force))
	}
}

func (m *Model) fetchPlaylists(force bool) tea.Cmd {
	return func() tea.Msg {
		return playlistsFetchedMsg(m.player.Playlists(m.ctx, force))
	}
}

func (m *Model) fetchTracks(playlist models.Playlist) tea.Cmd {
	return func() tea.Msg {
		return tracksFetchedMsg(playlist, m.player.PlaylistTracks(m.ctx, playlist.ID))
	}
}

func (m *Model) fetchVideos(force bool) tea.Cmd {
	return func() tea.Msg {
		return videosFetchedMsg(m.player.LatestVideos(m.ctx, force))
	}
}
