// Package ui implements the kiosk dashboard using bubbletea's Elm architecture.
//
// The dashboard is a carousel of screens, switched with left/right:
//  1. [ScreenClock] : Current time and date, ticking every second
//  2. [ScreenNowPlaying] : Current track or episode, fed by the playback poller
//  3. [ScreenDevices] : Live and remembered devices; enter transfers playback
//  4. [ScreenPlaylists] : Library playlists; enter lists tracks, enter again plays one
//  5. [ScreenVideos] : Latest uploads from the configured channel
//
// Playback keys (space, n, p, +, -) work from any screen. Every action goes through the
// [Controller] (player.Player), which never returns errors; a false result becomes a status line.
//
// When no Spotify session exists the music screens show a Connect prompt pointing at
// `kiosk auth login`. The clock and videos keep working.
package ui
