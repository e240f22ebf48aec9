package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/kiosk/internal/models"
	"github.com/desertthunder/kiosk/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTick MsgKind = iota
	MsgUpdate
	MsgPlaybackFetched
	MsgDevicesFetched
	MsgPlaylistsFetched
	MsgTracksFetched
	MsgVideosFetched
	MsgActionDone
)

// tickMsg is the constructor for [MsgTick]
func tickMsg(t time.Time) Msg {
	return Msg{kind: MsgTick, data: t}
}

// updateMsg is the constructor for [MsgUpdate], carrying one poller update
func updateMsg(u tasks.Update) Msg {
	return Msg{kind: MsgUpdate, data: u}
}

// playbackFetchedMsg is the constructor for [MsgPlaybackFetched]
func playbackFetchedMsg(snap *models.PlaybackSnapshot) Msg {
	return Msg{kind: MsgPlaybackFetched, data: snap}
}

// devicesFetchedMsg is the constructor for [MsgDevicesFetched]
func devicesFetchedMsg(devices []models.CachedDevice) Msg {
	return Msg{kind: MsgDevicesFetched, data: devices}
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlists}
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(playlist models.Playlist, tracks []models.PlaylistTrack) Msg {
	return Msg{
		kind: MsgTracksFetched,
		data: struct {
			playlist models.Playlist
			tracks   []models.PlaylistTrack
		}{playlist, tracks},
	}
}

// videosFetchedMsg is the constructor for [MsgVideosFetched]
func videosFetchedMsg(videos []models.Video) Msg {
	return Msg{kind: MsgVideosFetched, data: videos}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(op string, ok bool) Msg {
	return Msg{
		kind: MsgActionDone,
		data: struct {
			op string
			ok bool
		}{op, ok},
	}
}
