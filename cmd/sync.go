package main

import (
	"context"

	"github.com/desertthunder/rekordsync/internal/processor"
	"github.com/desertthunder/rekordsync/internal/tasks"
	"github.com/desertthunder/rekordsync/internal/ui"
	"github.com/urfave/cli/v3"
)

// Sync mirrors the library's playlists into Spotify.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	opts := tasks.SyncOptions{
		DryRun:      cmd.Bool("dry-run"),
		Interactive: cmd.Bool("interactive"),
		ForceRemap:  cmd.Bool("force-remap"),
	}

	source, closeSource, err := r.openSource()
	if err != nil {
		return err
	}
	defer closeSource()

	sink, err := r.connectSpotify(ctx)
	if err != nil {
		return err
	}

	cache, closeCache, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	picker := r.picker
	if picker == nil && opts.Interactive {
		picker = ui.NewPicker()
	}

	proc := processor.New(r.config.Processor, r.logger)
	engine := tasks.NewEngine(source, sink, proc, cache, r.config, picker, r.logger)

	progress, stop := r.logProgress()
	result, err := engine.SyncPlaylists(ctx, progress, opts)
	stop()
	if err != nil {
		return err
	}

	if result.DryRun {
		r.writePlainln("Dry run, nothing was written to Spotify")
	}
	r.writePlain("Playlists synced: %d (skipped %d, deleted %d, orphans removed %d)\n",
		result.PlaylistsSynced, result.PlaylistsSkipped, result.PlaylistsDeleted, result.OrphansRemoved)
	r.writePlain("Tracks matched: %d (unmatched %d, cache hits %d)\n",
		result.TracksMatched, result.TracksUnmatched, result.CacheHits)
	r.writePlain("Tracks added: %d, removed: %d\n", result.TracksAdded, result.TracksRemoved)

	return nil
}
