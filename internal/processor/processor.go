package processor

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// keySuffixRe matches a trailing musical key annotation like " [Am]", " [F#m]" or " [Db]".
var keySuffixRe = regexp.MustCompile(`\s\[[A-G][#b]?m?\]$`)

// Processor enhances track metadata according to the configured rules.
type Processor struct {
	config shared.ProcessorConfig
	logger *log.Logger
}

// New creates a Processor. A nil logger falls back to the default stderr logger.
func New(config shared.ProcessorConfig, logger *log.Logger) *Processor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Processor{config: config, logger: logger}
}

// Process mutates track in place, computing EnhancedTitle and a cleaned Artists field.
//
// The working title is always re-derived from OriginalTitle when one is present, so
// reprocessing an already-enhanced track reproduces the same result instead of stacking
// suffixes. With every enhancement feature disabled only whitespace is normalized.
func (p *Processor) Process(track *models.Track) {
	title := track.OriginalTitle
	if title == "" {
		title = track.Title
	}

	title = shared.CollapseWhitespace(title)
	artists := shared.CollapseWhitespace(track.Artists)

	if !p.config.Enabled() {
		track.Title = title
		track.Artists = artists
		return
	}

	// Libraries that predate a separate artist column embed the credit in the title.
	if artists == "" && strings.Contains(title, " - ") {
		if parts := strings.Split(title, " - "); len(parts) == 2 {
			title = strings.TrimSpace(parts[0])
			artists = strings.TrimSpace(parts[1])
			p.logger.Infof("extracted artist %q from title %q", artists, track.Title)
		}
	}

	// Redundant given the OriginalTitle baseline, but guards against reprocessing a
	// value that was enhanced before the baseline existed.
	title = keySuffixRe.ReplaceAllString(title, "")

	for _, rule := range p.config.ReplaceInTitle {
		title = rule.Apply(title)
	}
	for _, rule := range p.config.ReplaceInArtist {
		artists = rule.Apply(artists)
	}

	if artists != "" {
		if suffix := " - " + artists; strings.HasSuffix(title, suffix) {
			title = strings.TrimSuffix(title, suffix)
		}
	}

	artistsForTitle := artists
	if artists != "" && p.config.RemoveArtistsInTitle {
		forTitle, inTitle := partitionArtistsByTitle(title, artists)
		if inTitle != "" && forTitle != artists {
			p.logger.Infof("artist(s) %q already present in title %q, keeping %q", inTitle, title, forTitle)
		}
		artistsForTitle = forTitle
	}

	enhanced := title
	if artistsForTitle != "" && p.config.AddArtistToTitle {
		enhanced += " - " + artistsForTitle
	}
	if track.Key != "" && p.config.AddKeyToTitle {
		enhanced += " [" + track.Key + "]"
	}

	track.Title = title
	track.Artists = artists
	track.EnhancedTitle = enhanced

	p.reportChanges(track)
}

// ProcessCollection runs Process over every unique track in the collection. Because track
// identity is shared, each playlist membership sees the update.
func (p *Processor) ProcessCollection(c *models.Collection) {
	for _, track := range c.Tracks {
		p.Process(track)
	}
}

// reportChanges logs a human-readable summary of what Process changed relative to the
// persisted baseline. Silent when nothing changed.
func (p *Processor) reportChanges(track *models.Track) {
	titleChanged := track.EnhancedTitle != track.OriginalTitle
	artistsChanged := track.Artists != track.OriginalArtists

	switch {
	case titleChanged && artistsChanged:
		p.logger.Infof("updating title %q to %q and artists %q to %q",
			track.OriginalTitle, track.EnhancedTitle, track.OriginalArtists, track.Artists)
	case titleChanged:
		p.logger.Infof("updating title %q to %q", track.OriginalTitle, track.EnhancedTitle)
	case artistsChanged:
		p.logger.Infof("updating artists %q to %q for %q",
			track.OriginalArtists, track.Artists, track.OriginalTitle)
	}
}
