package processor

import (
	"sort"
	"strings"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// DuplicateGroup holds tracks sharing a normalized (title, artists) signature.
type DuplicateGroup struct {
	Title   string
	Artists string
	Tracks  []*models.Track
}

// DuplicateGroups groups tracks by signature and returns every group with more than one
// member, ordered by signature for stable output.
func DuplicateGroups(tracks []*models.Track) []DuplicateGroup {
	bySignature := make(map[string][]*models.Track)
	for _, track := range tracks {
		sig := shared.TrackSignature(track.DisplayTitle(), track.Artists)
		bySignature[sig] = append(bySignature[sig], track)
	}

	sigs := make([]string, 0, len(bySignature))
	for sig, members := range bySignature {
		if len(members) > 1 {
			sigs = append(sigs, sig)
		}
	}
	sort.Strings(sigs)

	groups := make([]DuplicateGroup, 0, len(sigs))
	for _, sig := range sigs {
		members := bySignature[sig]
		groups = append(groups, DuplicateGroup{
			Title:   members[0].DisplayTitle(),
			Artists: members[0].Artists,
			Tracks:  members,
		})
	}
	return groups
}

// CheckDuplicates emits one warning per group of tracks sharing a signature, naming every
// member id. A read-only diagnostic pass for operator triage, not automatic resolution.
func (p *Processor) CheckDuplicates(tracks []*models.Track) {
	for _, group := range DuplicateGroups(tracks) {
		ids := make([]string, len(group.Tracks))
		for i, track := range group.Tracks {
			ids[i] = track.ID
		}
		artists := group.Artists
		if artists == "" {
			artists = "(no artist)"
		}
		p.logger.Warnf("duplicate track %q by %s (%d copies): ids %s",
			group.Title, artists, len(group.Tracks), strings.Join(ids, ", "))
	}
}
