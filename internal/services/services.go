// package services defines interface Service for the streaming side of a sync.
//
// Spotify is the only production implementation; tests substitute a mock.
package services

import (
	"context"
)

// Service is the playlist sink: a streaming service the library is mirrored into.
type Service interface {
	// Authenticate performs OAuth or token authentication with the service.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// GetPlaylists retrieves all playlists owned by the authenticated user.
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// GetPlaylistTracks retrieves every track in a playlist.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)

	// CreatePlaylist creates a new private playlist and returns it.
	CreatePlaylist(ctx context.Context, name string) (*Playlist, error)

	// AddTracks adds tracks to a playlist, batching as the service requires.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// RemoveTracks removes every occurrence of the given tracks from a playlist.
	RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error

	// DeletePlaylist removes a playlist from the user's account.
	DeletePlaylist(ctx context.Context, playlistID string) error

	// SearchTrack searches for a track by title and artists. A miss returns
	// shared.ErrTrackNotFound so callers can cache the negative result.
	SearchTrack(ctx context.Context, title, artists string) (*Track, error)

	// SearchTracks returns up to limit candidate matches for interactive selection.
	SearchTracks(ctx context.Context, title, artists string, limit int) ([]Track, error)

	// Name returns the service name (e.g. "Spotify")
	Name() string
}

// Playlist represents a playlist on the sink service
type Playlist struct {
	ID         string
	Name       string
	OwnerID    string
	TrackCount int
	Public     bool
}

// Track represents a track on the sink service
type Track struct {
	ID         string
	Title      string
	Artist     string
	Album      string
	DurationMS int
	URI        string
}
