// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// rootCommand builds the kiosk command tree around r.
func (r *Runner) rootCommand() *cli.Command {
	return &cli.Command{
		Name:    "kiosk",
		Usage:   "Clock, Spotify controls and latest videos for an always-on display",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playerCommand, devicesCommand, playlistsCommand, videosCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func refreshFlag(usage string) cli.Flag {
	return &cli.BoolFlag{Name: "refresh", Aliases: []string{"r"}, Usage: usage}
}

// setupCommand creates the config file and runs database migrations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing and run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
			&cli.StringFlag{Name: "client-id", Usage: "Spotify client ID to save in the config"},
			&cli.StringFlag{Name: "client-secret", Usage: "Spotify client secret to save in the config"},
			&cli.StringFlag{Name: "youtube-key", Usage: "YouTube Data API key to save in the config"},
			&cli.StringFlag{Name: "channel-id", Usage: "YouTube channel whose uploads are listed"},
		},
		Action: r.Setup,
	}
}

// authCommand handles the Spotify session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify in the browser (2 minute timeout)",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show token lifecycle state and expiry",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget stored Spotify tokens",
				Action: r.AuthLogout,
			},
		},
	}
}

// playerCommand handles playback control
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "player",
		Aliases: []string{"p"},
		Usage:   "Control Spotify playback",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show what is playing",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PlayerStatus,
			},
			{
				Name:    "toggle",
				Aliases: []string{"pp"},
				Usage:   "Play or pause",
				Action:  r.PlayerToggle,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next item",
				Action: r.PlayerNext,
			},
			{
				Name:    "prev",
				Aliases: []string{"previous"},
				Usage:   "Skip to the previous item",
				Action:  r.PlayerPrevious,
			},
			{
				Name:      "volume",
				Usage:     "Set volume percent (clamped to 0-100)",
				ArgsUsage: "<percent>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "percent"}},
				Action:    r.PlayerVolume,
			},
			{
				Name:      "seek",
				Usage:     "Seek to a position in milliseconds",
				ArgsUsage: "<ms>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "position"}},
				Action:    r.PlayerSeek,
			},
			{
				Name:      "transfer",
				Usage:     "Move playback to a device without starting it",
				ArgsUsage: "<device-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "device"}},
				Action:    r.PlayerTransfer,
			},
			{
				Name:      "episode",
				Usage:     "Show an episode, or the one currently playing",
				ArgsUsage: "[episode-id]",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{jsonFlag()},
				Action:    r.PlayerEpisode,
			},
		},
	}
}

// devicesCommand lists live and remembered devices
func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List playback devices, including recently seen ones",
		Flags: []cli.Flag{
			refreshFlag("Wake the player before listing so idle devices show up"),
			jsonFlag(),
		},
		Action: r.Devices,
		Commands: []*cli.Command{
			{
				Name:   "clear",
				Usage:  "Forget remembered devices",
				Action: r.DevicesClear,
			},
		},
	}
}

// playlistsCommand lists library playlists and their tracks
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your Spotify playlists",
		Flags: []cli.Flag{
			refreshFlag("Bypass the playlist cache"),
			jsonFlag(),
		},
		Action: r.Playlists,
		Commands: []*cli.Command{
			{
				Name:      "tracks",
				Usage:     "List the tracks of a playlist",
				ArgsUsage: "<playlist-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.BoolFlag{Name: "csv", Usage: "Output CSV"},
				},
				Action: r.PlaylistTracks,
			},
		},
	}
}

// videosCommand lists the latest uploads of the configured channel
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "videos",
		Usage: "List the latest videos from the configured YouTube channel",
		Flags: []cli.Flag{
			refreshFlag("Bypass the video cache"),
			jsonFlag(),
		},
		Action: r.Videos,
	}
}

// tuiCommand returns the top-level command for the dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"dashboard", "ui"},
		Usage:   "Launch the kiosk dashboard",
		Action:  r.TUI,
	}
}
