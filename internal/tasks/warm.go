package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
	"golang.org/x/time/rate"
)

// WarmCacheOpts contains configuration for bulk cache warming.
type WarmCacheOpts struct {
	NumWorkers int     // Concurrent workers (default: 4)
	RateLimit  float64 // Searches per second (default: 5)
	ForceRemap bool    // Re-match tracks that already have a cached mapping
}

// WarmCacheResult summarizes a cache warming run.
type WarmCacheResult struct {
	TotalTracks int
	Matched     int
	Unmatched   int
	CacheHits   int
}

type warmOutcome struct {
	matched  bool
	cacheHit bool
	err      error
}

// WarmCache matches every unique library track against the sink ahead of a sync,
// populating the mapping cache so the sync itself makes no search calls.
//
// Uses a worker pool with rate limiting so a large library warms quickly without
// tripping the sink's request ceiling.
func (e *Engine) WarmCache(ctx context.Context, progress chan<- ProgressUpdate, opts WarmCacheOpts) (*WarmCacheResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source library not initialized", shared.ErrServiceUnavailable)
	}
	if e.sink == nil {
		return nil, fmt.Errorf("%w: sink service not initialized", shared.ErrServiceUnavailable)
	}
	if e.cache == nil {
		return nil, fmt.Errorf("%w: mapping cache not initialized", shared.ErrServiceUnavailable)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	e.sendProgress(progress, loadLibraryUpdate())
	collection, err := e.source.Collection()
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	e.proc.SetOriginalTitles(collection)
	e.proc.ProcessCollection(collection)

	tracks := collection.AllTracks()
	result := &WarmCacheResult{TotalTracks: len(tracks)}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan *models.Track, len(tracks))
	outcomes := make(chan warmOutcome, len(tracks))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.warmWorker(ctx, &wg, limiter, jobs, outcomes, opts.ForceRemap)
	}

	go func() {
		for i, track := range tracks {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}
			e.sendProgress(progress, warmCacheUpdate(i+1, len(tracks), track))
			jobs <- track
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = outcome.err
			}
			continue
		}
		if outcome.cacheHit {
			result.CacheHits++
		}
		if outcome.matched {
			result.Matched++
		} else {
			result.Unmatched++
		}
	}

	return result, firstErr
}

// warmWorker matches tracks from the jobs channel until it closes.
func (e *Engine) warmWorker(ctx context.Context, wg *sync.WaitGroup, limiter *rate.Limiter,
	jobs <-chan *models.Track, outcomes chan<- warmOutcome, force bool) {
	defer wg.Done()

	opts := SyncOptions{ForceRemap: force, DryRun: true}
	for track := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			outcomes <- warmOutcome{err: err}
			return
		}

		// Per-job counters keep the shared result free of data races.
		local := &SyncResult{}
		targetID, err := e.matchTrack(ctx, track, opts, local)
		outcomes <- warmOutcome{
			matched:  targetID != "",
			cacheHit: local.CacheHits > 0,
			err:      err,
		}
	}
}
