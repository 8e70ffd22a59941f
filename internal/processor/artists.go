package processor

import (
	"regexp"
	"strings"
)

// artistSeparatorRe splits a combined artist credit into individual names. Keywords are
// case-insensitive and must be anchored by whitespace so they never split inside a name.
var artistSeparatorRe = regexp.MustCompile(`(?i),\s*|\s*&\s*|\s+feat\.?\s+|\s+ft\.?\s+|\s+featuring\s+`)

// SplitArtists splits an artist field on the separator set (comma, ampersand, feat., ft.,
// featuring) into trimmed individual names, dropping empty segments.
func SplitArtists(artists string) []string {
	if artists == "" {
		return nil
	}
	parts := artistSeparatorRe.Split(artists, -1)
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// partitionArtistsByTitle splits a comma-joined artist field into the portion that should
// be appended to the title and the portion already represented inside it.
//
// An artist counts as represented when its name literally appears in the title. The field
// value itself is never touched here, only the title-suffix candidate list. When every
// artist would be filtered out the full original string is kept instead: a track must not
// lose its artist suffix just because the title happens to mention everyone.
func partitionArtistsByTitle(title, artists string) (forTitle, inTitle string) {
	if artists == "" {
		return "", ""
	}

	var retained, removed []string
	for _, name := range strings.Split(artists, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.Contains(title, name) {
			removed = append(removed, name)
		} else {
			retained = append(retained, name)
		}
	}

	if len(removed) > 0 && len(retained) > 0 {
		return strings.Join(retained, ", "), strings.Join(removed, ", ")
	}
	return artists, strings.Join(removed, ", ")
}
