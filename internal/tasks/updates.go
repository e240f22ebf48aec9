package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/kiosk/internal/models"
)

// Update is one poller event.
type Update struct {
	Kind     Kind                     // Event kind
	Snapshot *models.PlaybackSnapshot // Playback state; nil when nothing is playing or the read failed
	At       time.Time                // When the read completed
	Message  string                   // Human-readable message for display
}

// Update kind enumeration
type Kind int

const (
	Playback Kind = iota
	Idle
	AuthLost
)

func (k Kind) String() string {
	switch k {
	case Playback:
		return "playback"
	case Idle:
		return "idle"
	case AuthLost:
		return "auth_lost"
	default:
		return ""
	}
}

func playbackUpdate(at time.Time, snap *models.PlaybackSnapshot) Update {
	if snap == nil {
		return Update{Kind: Idle, At: at, Message: "Nothing playing"}
	}

	msg := "Paused"
	if snap.IsPlaying {
		msg = "Playing"
	}
	if snap.Item != nil {
		msg = fmt.Sprintf("%s: %s", msg, snap.Item.Title())
		if sub := snap.Item.Subtitle(); sub != "" {
			msg = fmt.Sprintf("%s - %s", msg, sub)
		}
	}
	return Update{Kind: Playback, Snapshot: snap, At: at, Message: msg}
}

func authLostUpdate(at time.Time) Update {
	return Update{Kind: AuthLost, At: at, Message: "Spotify session ended, run `kiosk auth login`"}
}
