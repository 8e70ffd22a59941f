package processor

import (
	"regexp"
	"strings"

	"github.com/desertthunder/rekordsync/internal/models"
)

// Suffix shapes produced by enhancement (and by historical corruption): a final
// " - segment" with or without a trailing key annotation. The segment itself never
// contains a hyphen, which anchors the match to the last " - " in the title.
var (
	suffixWithKeyRe = regexp.MustCompile(`^(.+) - ([^-]+) \[[A-G][#b]?m?\]$`)
	suffixRe        = regexp.MustCompile(`^(.+) - ([^-]+)$`)
)

// Clean recovers the original (pre-enhancement) title by stripping trailing artist and
// key annotations. It is a pure function used to populate the diff baseline after loading
// and by the standalone repair command.
//
// A suffix candidate is removed only when it can be attributed to the artist field:
// either the candidate is a case-insensitive substring of an individual artist name, or
// it equals the whole field. Unattributable candidates are left alone, so titles that
// legitimately contain " - " never lose text. Each removal strictly shrinks the title,
// which bounds the loop.
func Clean(title, artists string) string {
	if title == "" || artists == "" || !strings.Contains(title, " - ") {
		return title
	}

	names := SplitArtists(artists)
	full := strings.ToLower(strings.TrimSpace(artists))

	for {
		next, ok := stripOneSuffix(title, names, full)
		if !ok {
			return title
		}
		title = next
	}
}

// stripOneSuffix removes a single trailing " - artist [key]" or " - artist" annotation.
// Returns the shortened title and whether a removal happened.
func stripOneSuffix(title string, names []string, fullArtists string) (string, bool) {
	for _, re := range []*regexp.Regexp{suffixWithKeyRe, suffixRe} {
		m := re.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		if attributable(m[2], names, fullArtists) {
			return m[1], true
		}
	}
	return title, false
}

// attributable reports whether a suffix candidate belongs to a known artist.
func attributable(candidate string, names []string, fullArtists string) bool {
	cand := strings.ToLower(strings.TrimSpace(candidate))
	if cand == "" {
		return false
	}
	if cand == fullArtists {
		return true
	}
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), cand) {
			return true
		}
	}
	return false
}

// SetOriginalTitles populates every track's baseline fields by de-enhancing the stored
// title. Must run once per load cycle, before any enhancement pass, so change detection
// compares against what the library actually persisted.
func (p *Processor) SetOriginalTitles(c *models.Collection) {
	for _, track := range c.Tracks {
		track.OriginalTitle = Clean(track.Title, track.Artists)
		track.OriginalArtists = track.Artists
	}
}
