package library

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/shared"
)

// CommitSink receives changed tracks during a save pass. Injecting the sink decides
// between real persistence and a dry run without branching inside the save loop.
type CommitSink interface {
	// Save accepts one changed track.
	Save(track *models.Track) error

	// Commit finalizes the pass after the last Save.
	Commit() error

	// Count reports how many tracks Save accepted so far.
	Count() int
}

// RealSink writes accepted tracks back to the source library.
type RealSink struct {
	source Source
	logger *log.Logger
	count  int
}

// NewRealSink creates a sink persisting to source.
func NewRealSink(source Source, logger *log.Logger) *RealSink {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RealSink{source: source, logger: logger}
}

// Save writes the track's display title and artists to the library.
func (s *RealSink) Save(track *models.Track) error {
	if err := s.source.UpdateTrack(track.ID, track.DisplayTitle(), track.Artists); err != nil {
		return err
	}
	s.count++
	return nil
}

// Commit logs the result of the pass.
func (s *RealSink) Commit() error {
	if s.count > 0 {
		s.logger.Infof("saved %d changed track(s) to library", s.count)
	}
	return nil
}

func (s *RealSink) Count() int { return s.count }

// DryRunSink counts and reports changes without touching the library.
type DryRunSink struct {
	logger *log.Logger
	saved  []*models.Track
}

// NewDryRunSink creates a sink that only records what would change.
func NewDryRunSink(logger *log.Logger) *DryRunSink {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DryRunSink{logger: logger}
}

// Save records the track without persisting anything.
func (s *DryRunSink) Save(track *models.Track) error {
	s.saved = append(s.saved, track)
	s.logger.Infof("dry run: would update track %s to %q / %q", track.ID, track.DisplayTitle(), track.Artists)
	return nil
}

// Commit summarizes the dry run.
func (s *DryRunSink) Commit() error {
	s.logger.Infof("dry run: %d track(s) would change", len(s.saved))
	return nil
}

func (s *DryRunSink) Count() int { return len(s.saved) }

// Saved returns the tracks recorded during the pass, for change reports.
func (s *DryRunSink) Saved() []*models.Track { return s.saved }
