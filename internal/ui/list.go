package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/kiosk/internal/formatter"
	"github.com/desertthunder/kiosk/internal/models"
)

var (
	_ list.Item = deviceItem{}
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
	_ list.Item = videoItem{}
)

// deviceItem wraps [models.CachedDevice] to implement [list.Item].
type deviceItem struct {
	device models.CachedDevice
	now    time.Time
}

func (i deviceItem) FilterValue() string { return i.device.Name }
func (i deviceItem) Title() string {
	if i.device.IsActive {
		return "● " + i.device.Name
	}
	return i.device.Name
}
func (i deviceItem) Description() string {
	return fmt.Sprintf("%s • %s", i.device.Type, formatter.DeviceStatus(i.device, i.now))
}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks • %s", i.playlist.TrackCount, i.playlist.Owner)
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// trackItem wraps [models.PlaylistTrack] to implement [list.Item].
type trackItem struct {
	track models.PlaylistTrack
}

func (i trackItem) FilterValue() string { return i.track.Name }
func (i trackItem) Title() string       { return i.track.Name }
func (i trackItem) Description() string {
	desc := strings.Join(i.track.Artists, ", ")
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return fmt.Sprintf("%s • %s", desc, formatter.FormatDuration(i.track.DurationMS))
}

// videoItem wraps [models.Video] to implement [list.Item].
type videoItem struct {
	video models.Video
	now   time.Time
}

func (i videoItem) FilterValue() string { return i.video.Title }
func (i videoItem) Title() string {
	if i.video.IsNew(i.now) {
		return i.video.Title + " [NEW]"
	}
	return i.video.Title
}
func (i videoItem) Description() string {
	return i.video.PublishedAt.Local().Format("Jan 2, 2006")
}

// newList builds a list with the dashboard's own help, quit and pagination handling.
func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.NextPage.SetEnabled(false)
	l.KeyMap.PrevPage.SetEnabled(false)
	return l
}
