// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand creates the config file and initializes the mapping database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the mapping database",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// authCommand handles Spotify authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "auth",
		Usage:  "Authenticate with Spotify using OAuth2",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Auth,
	}
}

// processCommand runs the title cleanup and enhancement pipeline.
func processCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "process",
		Usage: "Clean and enhance track titles in the library",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would change without writing to the library",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write a change report to this path (.csv, .md, or plain text); requires --dry-run",
			},
		},
		Action: r.Process,
	}
}

// duplicatesCommand reports tracks that appear more than once.
func duplicatesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "duplicates",
		Aliases: []string{"dupes"},
		Usage:   "Report tracks that appear more than once in the library",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to this path (.csv, .md, or plain text) instead of stdout",
			},
		},
		Action: r.Duplicates,
	}
}

// cleanCommand unwinds stacked title annotations.
func cleanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Strip stacked title annotations left behind by earlier runs",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would change without writing to the library",
			},
		},
		Action: r.Clean,
	}
}

// syncCommand mirrors library playlists to Spotify.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Mirror library playlists to Spotify",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Plan the sync without touching Spotify",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Pick matches by hand when automatic search misses",
			},
			&cli.BoolFlag{
				Name:  "force-remap",
				Usage: "Ignore cached matches and search every track again",
			},
		},
		Action: r.Sync,
	}
}

// cacheCommand manages the track mapping cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and manage the track mapping cache",
		Commands: []*cli.Command{
			{
				Name:   "count",
				Usage:  "Show how many track mappings are cached",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheCount,
			},
			{
				Name:  "clear",
				Usage: "Drop cached track mappings",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:    "algorithm",
						Aliases: []string{"a"},
						Usage:   "Only drop mappings produced by this algorithm (e.g. basic); manual picks survive unless named",
					},
				},
				Action: r.CacheClear,
			},
			{
				Name:  "warm",
				Usage: "Match every library track against Spotify ahead of a sync",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent search workers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Searches per second",
						Value: 5.0,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-match tracks that already have a cached mapping",
					},
				},
				Action: r.CacheWarm,
			},
		},
	}
}
