package library

import (
	"database/sql"
	_ "embed"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteLibrary reads and writes a sqlite-backed source library.
type SQLiteLibrary struct {
	db              *sql.DB
	ignorePlaylists []string
	logger          *log.Logger
}

// Open opens the library database at path. Playlists whose name appears in
// ignorePlaylists are pruned from Collection results together with their subtrees.
func Open(path string, ignorePlaylists []string, logger *log.Logger) (*SQLiteLibrary, error) {
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SQLiteLibrary{db: db, ignorePlaylists: ignorePlaylists, logger: logger}, nil
}

// NewSQLiteLibrary wraps an existing database handle. The caller keeps ownership of db.
func NewSQLiteLibrary(db *sql.DB, ignorePlaylists []string, logger *log.Logger) *SQLiteLibrary {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SQLiteLibrary{db: db, ignorePlaylists: ignorePlaylists, logger: logger}
}

// EnsureSchema creates the library tables when they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create library schema: %w", err)
	}
	return nil
}

// Collection loads the full playlist tree and the deduplicated track table.
//
// Playlists come back in the library's native sequence order, parents before children.
// Every playlist membership of the same track points at one shared *models.Track, so a
// single processing pass is visible everywhere.
func (l *SQLiteLibrary) Collection() (*models.Collection, error) {
	playlists, err := l.loadPlaylists()
	if err != nil {
		return nil, err
	}

	trackMap := make(map[string]*models.Track)
	byID := make(map[string]*models.Playlist, len(playlists))
	for _, p := range playlists {
		byID[p.ID] = p
		if err := l.loadPlaylistTracks(p, trackMap); err != nil {
			return nil, err
		}
	}

	ignored := l.prunedIDs(playlists, byID)

	var topLevel []*models.Playlist
	for _, p := range playlists {
		if ignored[p.ID] {
			continue
		}
		parent, ok := byID[p.ParentID]
		if p.ParentID == "" || !ok || ignored[p.ParentID] {
			topLevel = append(topLevel, p)
			continue
		}
		p.Parent = parent
		parent.Children = append(parent.Children, p)
	}

	return &models.Collection{Playlists: topLevel, Tracks: trackMap}, nil
}

// AllTracks returns every track in the library regardless of playlist membership.
func (l *SQLiteLibrary) AllTracks() ([]*models.Track, error) {
	rows, err := l.db.Query(`SELECT id, title, artists, key, duration_ms, bpm FROM tracks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// UpdateTrack rewrites the stored title and artists for one track.
func (l *SQLiteLibrary) UpdateTrack(id, title, artists string) error {
	result, err := l.db.Exec(`UPDATE tracks SET title = ?, artists = ? WHERE id = ?`, title, artists, id)
	if err != nil {
		return fmt.Errorf("failed to update track %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	return nil
}

// Close releases the database handle.
func (l *SQLiteLibrary) Close() error {
	return l.db.Close()
}

// loadPlaylists reads every playlist row in sequence order.
func (l *SQLiteLibrary) loadPlaylists() ([]*models.Playlist, error) {
	rows, err := l.db.Query(`SELECT id, name, parent_id FROM playlists ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		p := &models.Playlist{}
		if err := rows.Scan(&p.ID, &p.Name, &p.ParentID); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return playlists, nil
}

// loadPlaylistTracks fills a playlist's track slice, reusing entries from trackMap so
// track identity stays shared across playlists.
func (l *SQLiteLibrary) loadPlaylistTracks(p *models.Playlist, trackMap map[string]*models.Track) error {
	query := `
		SELECT t.id, t.title, t.artists, t.key, t.duration_ms, t.bpm
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position ASC
	`

	rows, err := l.db.Query(query, p.ID)
	if err != nil {
		return fmt.Errorf("failed to query tracks for playlist %s: %w", p.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return err
		}
		if existing, ok := trackMap[track.ID]; ok {
			track = existing
		} else {
			trackMap[track.ID] = track
		}
		p.Tracks = append(p.Tracks, track)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}

// prunedIDs returns the ids of ignored playlists and all of their descendants.
func (l *SQLiteLibrary) prunedIDs(playlists []*models.Playlist, byID map[string]*models.Playlist) map[string]bool {
	ignored := make(map[string]bool)
	if len(l.ignorePlaylists) == 0 {
		return ignored
	}

	// Rows are sequence-ordered, not hierarchy-ordered, so resolve ancestry per playlist.
	for _, p := range playlists {
		for cur := p; cur != nil; cur = byID[cur.ParentID] {
			if slices.Contains(l.ignorePlaylists, cur.Name) {
				ignored[p.ID] = true
				break
			}
		}
	}
	return ignored
}

// scanTrack scans one track row. Original values mirror the stored values until the
// de-enhancement pass refines the baseline.
func scanTrack(rows *sql.Rows) (*models.Track, error) {
	t := &models.Track{}
	if err := rows.Scan(&t.ID, &t.Title, &t.Artists, &t.Key, &t.DurationMS, &t.BPM); err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	t.OriginalTitle = t.Title
	t.OriginalArtists = t.Artists
	return t, nil
}
