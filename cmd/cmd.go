// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// syncCommand handles playlist synchronization and its history
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Mirror configured YouTube Music playlists into Spotify",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Add missing tracks to each configured Spotify playlist",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Playlist name to sync (repeatable, overrides sync.playlists)",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Search and match without adding tracks",
					},
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Show progress in an interactive terminal UI",
					},
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Start the TUI without confirmation",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "Do not record the run in the history database",
					},
				},
				Action: r.SyncRun,
			},
			{
				Name:  "history",
				Usage: "Show recorded sync runs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Only show reports for this playlist",
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Only show reports for this run ID",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only show reports with this status (synced, preview, skipped, empty)",
					},
					&cli.BoolFlag{
						Name:  "latest",
						Usage: "Only show the most recent run",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of reports to show",
						Value: 50,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, markdown, csv, json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to file instead of stdout",
					},
				},
				Action: r.SyncHistory,
			},
		},
	}
}

// authCommand handles target platform authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authentication commands",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authorize with Spotify using OAuth2 and store the token in the config file",
				Action: r.AuthSpotify,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Check stored credentials",
				Action: r.AuthStatus,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Action: r.SetupDatabase,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
			},
		},
	}
}
