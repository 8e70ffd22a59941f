package library

import (
	"fmt"

	"github.com/desertthunder/rekordsync/internal/models"
)

// Source is the capability interface for a DJ source library.
type Source interface {
	// Collection loads every playlist and track in one pass. Top-level playlists carry
	// their children; the track table is deduplicated with shared identity.
	Collection() (*models.Collection, error)

	// AllTracks returns every track in the library, including ones in no playlist.
	AllTracks() ([]*models.Track, error)

	// UpdateTrack rewrites a track's stored title and artists.
	UpdateTrack(id, title, artists string) error

	// Close releases the underlying database handle.
	Close() error
}

// SaveChanges pushes every changed track through the sink and finalizes it. Unchanged
// tracks are skipped, so a run over an already-synchronized library writes nothing.
// Returns the number of tracks the sink accepted.
func SaveChanges(tracks []*models.Track, sink CommitSink) (int, error) {
	for _, track := range tracks {
		if !track.Changed() {
			continue
		}
		if err := sink.Save(track); err != nil {
			return sink.Count(), fmt.Errorf("failed to save track %s: %w", track.ID, err)
		}
	}

	if err := sink.Commit(); err != nil {
		return sink.Count(), fmt.Errorf("failed to commit changes: %w", err)
	}
	return sink.Count(), nil
}
