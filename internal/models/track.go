package models

import "strings"

// Track represents a source-library track.
//
// Title and Artists are mutable working values; OriginalTitle and OriginalArtists hold
// the values last known to be persisted in the library and serve as the diff baseline.
// They are populated once per load cycle and never touched by the processor.
type Track struct {
	ID              string // Opaque library identifier, stable per source record
	Title           string
	Artists         string // One or more artist names joined by separators, not a structured list
	OriginalTitle   string
	OriginalArtists string
	Key             string // Musical key, e.g. "Am". Empty when the library has none.
	EnhancedTitle   string // Computed canonical display title; persisted as Title when set
	DurationMS      int
	BPM             float64
}

// Changed reports whether the track differs from its persisted baseline.
func (t *Track) Changed() bool {
	title := t.EnhancedTitle
	if title == "" {
		title = t.Title
	}
	return title != t.OriginalTitle || t.Artists != t.OriginalArtists
}

// DisplayTitle returns the enhanced title when one has been computed, else the raw title.
func (t *Track) DisplayTitle() string {
	if t.EnhancedTitle != "" {
		return t.EnhancedTitle
	}
	return t.Title
}

// Playlist represents an ordered list of tracks, optionally nested in a folder hierarchy.
// Children keep the source library's native sequence order, not insertion order.
type Playlist struct {
	ID       string
	Name     string
	Tracks   []*Track
	ParentID string
	Parent   *Playlist
	Children []*Playlist
}

// FullName returns the parent chain joined by " / ", ending with the playlist's own name.
func (p *Playlist) FullName() string {
	if p.Parent == nil {
		return p.Name
	}
	return p.Parent.FullName() + " / " + p.Name
}

// Collection aggregates top-level playlists with a deduplicated id → track table.
//
// Track identity is shared: the table and every playlist reference the same *Track, so a
// single processing pass updates all playlist memberships at once.
type Collection struct {
	Playlists []*Playlist
	Tracks    map[string]*Track
}

// AllTracks returns every unique track in the collection. Order is unspecified.
func (c *Collection) AllTracks() []*Track {
	tracks := make([]*Track, 0, len(c.Tracks))
	for _, t := range c.Tracks {
		tracks = append(tracks, t)
	}
	return tracks
}

// FlattenPlaylists returns all playlists depth-first, parents before children.
func (c *Collection) FlattenPlaylists() []*Playlist {
	var out []*Playlist
	var walk func(ps []*Playlist)
	walk = func(ps []*Playlist) {
		for _, p := range ps {
			out = append(out, p)
			walk(p.Children)
		}
	}
	walk(c.Playlists)
	return out
}

// ReplaceRule is a single ordered literal text substitution. An empty To deletes the match.
type ReplaceRule struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// Apply runs the rule against s as a literal substring replacement, trimming the result.
func (r ReplaceRule) Apply(s string) string {
	if r.From == "" || !strings.Contains(s, r.From) {
		return s
	}
	return strings.TrimSpace(strings.ReplaceAll(s, r.From, r.To))
}
