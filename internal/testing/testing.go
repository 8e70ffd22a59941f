// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/rekordsync/internal/services"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// MockService is a configurable test double for [services.Service].
//
// Search results are keyed by "title|artists"; unlisted queries miss. Mutating calls are
// recorded so tests can assert what a workflow did to the sink.
type MockService struct {
	Playlists      []services.Playlist
	PlaylistTracks map[string][]services.Track
	SearchResults  map[string]services.Track

	Created     []string
	Deleted     []string
	Added       map[string][]string
	Removed     map[string][]string
	SearchCalls int

	AuthErr error
}

func NewMockService() *MockService {
	return &MockService{
		PlaylistTracks: make(map[string][]services.Track),
		SearchResults:  make(map[string]services.Track),
		Added:          make(map[string][]string),
		Removed:        make(map[string][]string),
	}
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	return m.AuthErr
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]services.Playlist, error) {
	return m.Playlists, nil
}

func (m *MockService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]services.Track, error) {
	return m.PlaylistTracks[playlistID], nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name string) (*services.Playlist, error) {
	m.Created = append(m.Created, name)
	playlist := services.Playlist{ID: fmt.Sprintf("created-%d", len(m.Created)), Name: name}
	m.Playlists = append(m.Playlists, playlist)
	return &playlist, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.Added[playlistID] = append(m.Added[playlistID], trackIDs...)
	return nil
}

func (m *MockService) RemoveTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	m.Removed[playlistID] = append(m.Removed[playlistID], trackIDs...)
	return nil
}

func (m *MockService) DeletePlaylist(ctx context.Context, playlistID string) error {
	m.Deleted = append(m.Deleted, playlistID)
	return nil
}

func (m *MockService) SearchTrack(ctx context.Context, title, artists string) (*services.Track, error) {
	m.SearchCalls++
	if track, ok := m.SearchResults[title+"|"+artists]; ok {
		return &track, nil
	}
	return nil, fmt.Errorf("%w: %s - %s", shared.ErrTrackNotFound, title, artists)
}

func (m *MockService) SearchTracks(ctx context.Context, title, artists string, limit int) ([]services.Track, error) {
	if track, ok := m.SearchResults[title+"|"+artists]; ok {
		return []services.Track{track}, nil
	}
	return nil, nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
