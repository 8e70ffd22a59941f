package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/services"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// SyncPlaylists mirrors the source library's playlists into the sink service.
//
// Every eligible playlist becomes a sink playlist named prefix + flattened hierarchy
// name. Existing playlists are updated by set difference, playlists with no matched
// tracks are skipped or deleted, and prefixed sink playlists with no library
// counterpart are removed at the end.
func (e *Engine) SyncPlaylists(ctx context.Context, progress chan<- ProgressUpdate, opts SyncOptions) (*SyncResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source library not initialized", shared.ErrServiceUnavailable)
	}
	if e.sink == nil {
		return nil, fmt.Errorf("%w: sink service not initialized", shared.ErrServiceUnavailable)
	}
	if e.cache == nil {
		return nil, fmt.Errorf("%w: mapping cache not initialized", shared.ErrServiceUnavailable)
	}

	prefix := e.config.Spotify.PlaylistPrefix
	if prefix == "" {
		return nil, fmt.Errorf("%w: spotify.playlist_prefix is required", shared.ErrInvalidConfig)
	}

	result := &SyncResult{DryRun: opts.DryRun}

	e.sendProgress(progress, loadLibraryUpdate())
	collection, err := e.source.Collection()
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}

	// Search quality depends on clean titles, so the pipeline runs before matching.
	e.proc.SetOriginalTitles(collection)
	e.proc.ProcessCollection(collection)

	e.sendProgress(progress, fetchSinkPlaylistsUpdate(e.sink.Name()))
	sinkPlaylists, err := e.sink.GetPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load sink playlists: %w", err)
	}
	sinkByName := make(map[string]services.Playlist, len(sinkPlaylists))
	for _, p := range sinkPlaylists {
		sinkByName[p.Name] = p
	}

	eligible := e.eligiblePlaylists(collection.FlattenPlaylists())
	e.logger.Infof("syncing %d playlists to %s", len(eligible), e.sink.Name())

	expectedNames := make(map[string]bool, len(eligible))

	for i, playlist := range eligible {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sinkName := e.sinkPlaylistName(playlist)
		expectedNames[sinkName] = true
		e.sendProgress(progress, syncPlaylistUpdate(i+1, len(eligible), playlist.FullName(), sinkName))

		matched, err := e.matchPlaylistTracks(ctx, progress, playlist, opts, result)
		if err != nil {
			return result, err
		}

		if len(matched) == 0 {
			if existing, ok := sinkByName[sinkName]; ok {
				if !opts.DryRun {
					if err := e.sink.DeletePlaylist(ctx, existing.ID); err != nil {
						return result, err
					}
				}
				e.logger.Infof("%s: no matching tracks, deleted", sinkName)
				result.PlaylistsDeleted++
			} else {
				e.logger.Infof("%s: no matching tracks, skipped", sinkName)
				result.PlaylistsSkipped++
			}
			continue
		}

		if existing, ok := sinkByName[sinkName]; ok {
			added, removed, err := e.updateSinkPlaylist(ctx, existing, matched, opts.DryRun)
			if err != nil {
				return result, err
			}
			result.TracksAdded += added
			result.TracksRemoved += removed
		} else {
			if err := e.createSinkPlaylist(ctx, sinkName, matched, opts.DryRun); err != nil {
				return result, err
			}
			result.TracksAdded += len(matched)
		}
		result.PlaylistsSynced++
	}

	orphans, err := e.cleanupOrphans(ctx, progress, sinkPlaylists, expectedNames, prefix, opts.DryRun)
	if err != nil {
		return result, err
	}
	result.OrphansRemoved = orphans

	return result, nil
}

// eligiblePlaylists filters the flattened playlist list: excluded names are dropped,
// empty playlists (folders) are dropped.
func (e *Engine) eligiblePlaylists(playlists []*models.Playlist) []*models.Playlist {
	var eligible []*models.Playlist
	for _, p := range playlists {
		if len(p.Tracks) == 0 || e.nameExcluded(p.Name) {
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible
}

func (e *Engine) nameExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range e.config.Spotify.ExcludeFromPlaylistNames {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// sinkPlaylistName builds the sink-side name: mandatory prefix plus the hierarchical
// name flattened to one level, with excluded terms scrubbed.
func (e *Engine) sinkPlaylistName(playlist *models.Playlist) string {
	name := strings.ReplaceAll(playlist.FullName(), " / ", " ")
	for _, term := range e.config.Spotify.ExcludeFromPlaylistNames {
		if term == "" {
			continue
		}
		name = strings.ReplaceAll(name, term, "")
	}
	return e.config.Spotify.PlaylistPrefix + shared.CollapseWhitespace(name)
}

// matchPlaylistTracks resolves a playlist's tracks to sink track ids, deduplicating by
// library id so a track repeated in a playlist is matched once.
func (e *Engine) matchPlaylistTracks(ctx context.Context, progress chan<- ProgressUpdate,
	playlist *models.Playlist, opts SyncOptions, result *SyncResult) ([]string, error) {

	var matched []string
	seen := make(map[string]bool, len(playlist.Tracks))

	for i, track := range playlist.Tracks {
		if seen[track.ID] {
			continue
		}
		seen[track.ID] = true

		if err := ctx.Err(); err != nil {
			return matched, err
		}
		e.sendProgress(progress, matchTrackUpdate(i+1, len(playlist.Tracks), track))

		targetID, err := e.matchTrack(ctx, track, opts, result)
		if err != nil {
			return matched, err
		}
		if targetID != "" {
			matched = append(matched, targetID)
			result.TracksMatched++
		} else {
			result.TracksUnmatched++
		}
	}

	return matched, nil
}

// updateSinkPlaylist reconciles an existing sink playlist with the matched track set.
func (e *Engine) updateSinkPlaylist(ctx context.Context, existing services.Playlist,
	matched []string, dryRun bool) (added, removed int, err error) {

	current, err := e.sink.GetPlaylistTracks(ctx, existing.ID)
	if err != nil {
		return 0, 0, err
	}

	currentIDs := make(map[string]bool, len(current))
	for _, t := range current {
		currentIDs[t.ID] = true
	}
	wantedIDs := make(map[string]bool, len(matched))
	for _, id := range matched {
		wantedIDs[id] = true
	}

	var toAdd, toRemove []string
	for _, id := range matched {
		if !currentIDs[id] {
			toAdd = append(toAdd, id)
		}
	}
	for _, t := range current {
		if !wantedIDs[t.ID] {
			toRemove = append(toRemove, t.ID)
		}
	}

	if dryRun {
		return len(toAdd), len(toRemove), nil
	}

	if len(toRemove) > 0 {
		if err := e.sink.RemoveTracks(ctx, existing.ID, toRemove); err != nil {
			return 0, 0, err
		}
	}
	if len(toAdd) > 0 {
		if err := e.sink.AddTracks(ctx, existing.ID, toAdd); err != nil {
			return 0, 0, err
		}
	}
	return len(toAdd), len(toRemove), nil
}

func (e *Engine) createSinkPlaylist(ctx context.Context, name string, matched []string, dryRun bool) error {
	if dryRun {
		return nil
	}

	created, err := e.sink.CreatePlaylist(ctx, name)
	if err != nil {
		return err
	}
	return e.sink.AddTracks(ctx, created.ID, matched)
}

// cleanupOrphans deletes prefixed sink playlists that no longer correspond to a library
// playlist. Unprefixed playlists are never touched.
func (e *Engine) cleanupOrphans(ctx context.Context, progress chan<- ProgressUpdate,
	sinkPlaylists []services.Playlist, expectedNames map[string]bool, prefix string, dryRun bool) (int, error) {

	var orphans []services.Playlist
	for _, p := range sinkPlaylists {
		if strings.HasPrefix(p.Name, prefix) && !expectedNames[p.Name] {
			orphans = append(orphans, p)
		}
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	e.sendProgress(progress, cleanupOrphansUpdate(len(orphans)))
	for _, p := range orphans {
		if dryRun {
			e.logger.Infof("would delete orphaned playlist %q", p.Name)
			continue
		}
		e.logger.Infof("deleting orphaned playlist %q", p.Name)
		if err := e.sink.DeletePlaylist(ctx, p.ID); err != nil {
			return 0, err
		}
	}
	return len(orphans), nil
}
