package main

import (
	"context"

	"github.com/desertthunder/rekordsync/internal/processor"
	"github.com/desertthunder/rekordsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheCount shows how many track mappings are cached.
func (r *Runner) CacheCount(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	cache, closeCache, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	count, err := cache.Count()
	if err != nil {
		return err
	}
	return r.writePlain("%d cached track mappings\n", count)
}

// CacheClear drops cached track mappings, optionally only one algorithm's.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	cache, closeCache, err := r.openCache()
	if err != nil {
		return err
	}
	defer closeCache()

	algorithm := cmd.String("algorithm")

	var cleared int
	if algorithm == "" {
		cleared, err = cache.ClearAll()
	} else {
		cleared, err = cache.ClearByAlgorithm(algorithm)
	}
	if err != nil {
		return err
	}
	return r.writePlain("Cleared %d cached mappings\n", cleared)
}

// CacheWarm matches every library track against Spotify ahead of a sync.
func (r *Runner) CacheWarm(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
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

	proc := processor.New(r.config.Processor, r.logger)
	engine := tasks.NewEngine(source, sink, proc, cache, r.config, nil, r.logger)

	opts := tasks.WarmCacheOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		ForceRemap: cmd.Bool("force"),
	}

	progress, stop := r.logProgress()
	result, err := engine.WarmCache(ctx, progress, opts)
	stop()
	if err != nil {
		return err
	}

	r.writePlain("Warmed cache for %d tracks: %d matched, %d unmatched (%d cache hits)\n",
		result.TotalTracks, result.Matched, result.Unmatched, result.CacheHits)
	return nil
}
