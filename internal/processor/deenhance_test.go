package processor

import (
	"io"
	"testing"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		artists string
		want    string
	}{
		{
			name:    "strips artist and key suffix",
			title:   "Song - Artist [Am]",
			artists: "Artist",
			want:    "Song",
		},
		{
			name:    "strips bare artist suffix",
			title:   "Song - Artist",
			artists: "Artist",
			want:    "Song",
		},
		{
			name:    "suffix matching the full artist field",
			title:   "Be There ft. Ayah Marar - T & Sugah",
			artists: "T & Sugah",
			want:    "Be There ft. Ayah Marar",
		},
		{
			name:    "suffix that is a substring of one artist",
			title:   "Song - Sugah",
			artists: "T & Sugah",
			want:    "Song",
		},
		{
			name:    "unattributable suffix is preserved",
			title:   "Leave The World Behind - A Cappella",
			artists: "Axwell",
			want:    "Leave The World Behind - A Cappella",
		},
		{
			name:    "stacked corruption unwinds completely",
			title:   "Title - A [Am] - A [Am] - A [Am]",
			artists: "A",
			want:    "Title",
		},
		{
			name:    "case-insensitive attribution",
			title:   "Song - ARTIST [F#m]",
			artists: "artist",
			want:    "Song",
		},
		{
			name:    "no separator leaves title alone",
			title:   "Plain Song [Am]",
			artists: "Artist",
			want:    "Plain Song [Am]",
		},
		{
			name:    "empty artists leaves title alone",
			title:   "Song - Artist",
			artists: "",
			want:    "Song - Artist",
		},
		{
			name:    "empty title",
			title:   "",
			artists: "Artist",
			want:    "",
		},
		{
			name:    "key only strips together with its artist segment",
			title:   "Song - Artist [Db]",
			artists: "Artist",
			want:    "Song",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.title, tt.artists); got != tt.want {
				t.Errorf("Clean(%q, %q) = %q, want %q", tt.title, tt.artists, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	titles := []struct{ title, artists string }{
		{"Song - Artist [Am]", "Artist"},
		{"Be There ft. Ayah Marar - T & Sugah", "T & Sugah"},
		{"Leave The World Behind - A Cappella", "Axwell"},
	}
	for _, tt := range titles {
		once := Clean(tt.title, tt.artists)
		if twice := Clean(once, tt.artists); twice != once {
			t.Errorf("Clean not idempotent for %q: %q then %q", tt.title, once, twice)
		}
	}
}

func TestCleanRoundTrip(t *testing.T) {
	// Enhancing a title and then de-enhancing the result recovers the input.
	p := New(fullConfig(), shared.NewLogger(io.Discard))

	tests := []models.Track{
		{Title: "Test Song", Artists: "Test Artist", Key: "Am"},
		{Title: "Test Song", Artists: "Alice, Bob"},
		{Title: "Be There ft. Ayah Marar", Artists: "T & Sugah", Key: "F#m"},
	}

	for _, tt := range tests {
		track := tt
		p.Process(&track)
		if got := Clean(track.EnhancedTitle, track.Artists); got != tt.Title {
			t.Errorf("Clean(%q, %q) = %q, want %q", track.EnhancedTitle, track.Artists, got, tt.Title)
		}
	}
}

func TestSetOriginalTitles(t *testing.T) {
	p := New(shared.ProcessorConfig{}, shared.NewLogger(io.Discard))

	enhanced := &models.Track{ID: "t1", Title: "Song - Artist [Am]", Artists: "Artist"}
	plain := &models.Track{ID: "t2", Title: "Another Song", Artists: "Someone"}
	c := &models.Collection{Tracks: map[string]*models.Track{"t1": enhanced, "t2": plain}}

	p.SetOriginalTitles(c)

	if enhanced.OriginalTitle != "Song" {
		t.Errorf("OriginalTitle = %q, want %q", enhanced.OriginalTitle, "Song")
	}
	if enhanced.OriginalArtists != "Artist" {
		t.Errorf("OriginalArtists = %q, want %q", enhanced.OriginalArtists, "Artist")
	}
	if enhanced.Title != "Song - Artist [Am]" {
		t.Errorf("Title = %q, want stored value untouched", enhanced.Title)
	}
	if plain.OriginalTitle != "Another Song" {
		t.Errorf("OriginalTitle = %q, want %q", plain.OriginalTitle, "Another Song")
	}
}
