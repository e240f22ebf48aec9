package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	left    key.Binding
	right   key.Binding
	enter   key.Binding
	back    key.Binding
	toggle  key.Binding
	next    key.Binding
	prev    key.Binding
	volUp   key.Binding
	volDown key.Binding
	refresh key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev screen")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next screen")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		volUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "vol up")),
		volDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "vol down")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.left, k.right, k.toggle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.left, k.right, k.enter, k.back},
		{k.toggle, k.next, k.prev, k.volUp, k.volDown},
		{k.refresh, k.quit},
	}
}

// screenHelp returns the bindings shown in the footer for screen s.
func (k keyMap) screenHelp(s Screen, showTracks bool) []key.Binding {
	switch s {
	case ScreenNowPlaying:
		return []key.Binding{k.left, k.right, k.toggle, k.next, k.prev, k.volUp, k.volDown, k.quit}
	case ScreenDevices:
		transfer := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "transfer"))
		return []key.Binding{k.left, k.right, transfer, k.refresh, k.quit}
	case ScreenPlaylists:
		if showTracks {
			play := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play"))
			return []key.Binding{play, k.back, k.toggle, k.quit}
		}
		open := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "tracks"))
		return []key.Binding{k.left, k.right, open, k.refresh, k.quit}
	case ScreenVideos:
		watch := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))
		return []key.Binding{k.left, k.right, watch, k.refresh, k.quit}
	default:
		return k.ShortHelp()
	}
}
