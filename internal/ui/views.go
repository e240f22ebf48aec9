package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/kiosk/internal/formatter"
)

// View renders the tab bar, the current screen and the footer.
func (m *Model) View() string {
	var body string
	switch {
	case m.screen.needsAuth() && !m.authed:
		body = m.renderConnect()
	case m.screen == ScreenClock:
		body = m.renderClock()
	case m.screen == ScreenNowPlaying:
		body = m.renderNowPlaying()
	case m.screen == ScreenDevices:
		body = m.devices.View()
	case m.screen == ScreenPlaylists && m.showTracks:
		body = m.tracks.View()
	case m.screen == ScreenPlaylists:
		body = m.playlists.View()
	case m.screen == ScreenVideos:
		body = m.videos.View()
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderTabs(), body, m.renderFooter())
}

func (m *Model) renderTabs() string {
	tabs := make([]string, 0, screenCount)
	for s := Screen(0); s < screenCount; s++ {
		if s == m.screen {
			tabs = append(tabs, styles.activeTab.Render(s.String()))
		} else {
			tabs = append(tabs, styles.tab.Render(s.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFooter() string {
	var status string
	if m.status != "" {
		if strings.HasSuffix(m.status, "failed") {
			status = styles.err.Render(m.status) + "\n"
		} else {
			status = styles.help.Render(m.status) + "\n"
		}
	}
	return status + m.help.ShortHelpView(m.keys.screenHelp(m.screen, m.showTracks))
}

func (m *Model) renderClock() string {
	clock := styles.clock.Render(m.now.Format("15:04:05"))
	date := styles.help.Render(m.now.Format("Monday, January 2"))
	return lipgloss.JoinVertical(lipgloss.Center, clock, date)
}

func (m *Model) renderConnect() string {
	title := styles.title.Render("Connect to Spotify")
	return fmt.Sprintf("%s\n%s\n%s", title,
		"Run 'kiosk auth login' on this device to link your account.",
		styles.help.Render("The clock and videos screens work without an account."))
}

func (m *Model) renderNowPlaying() string {
	snap := m.playback
	if snap == nil || snap.Item == nil {
		msg := styles.warn.Render("Nothing playing")
		if snap != nil && snap.Device != nil {
			msg += "\n" + styles.help.Render("on "+snap.Device.Name)
		}
		return msg
	}

	item := snap.Item
	icon := "⏸"
	if snap.IsPlaying {
		icon = "▶"
	}

	lines := []string{styles.title.Render(icon + " " + item.Title())}
	if sub := item.Subtitle(); sub != "" {
		lines = append(lines, sub)
	}
	if t := snap.Track(); t != nil && t.Album.Name != "" {
		lines = append(lines, styles.help.Render(t.Album.Name))
	}

	width := 40
	if m.width > 0 {
		width = max(10, min(width, m.width-20))
	}
	lines = append(lines, "", fmt.Sprintf("%s %s %s",
		formatter.FormatDuration(snap.ProgressMS),
		formatter.ProgressBar(snap.ProgressMS, item.Duration(), width),
		formatter.FormatDuration(item.Duration())))

	if snap.Device != nil {
		lines = append(lines, "", styles.ok.Render(fmt.Sprintf("%s • %d%%", snap.Device.Name, snap.Device.VolumePercent)))
	}
	return strings.Join(lines, "\n")
}
