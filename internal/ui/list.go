package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/rekordsync/internal/services"
)

var _ list.Item = candidateItem{}

// candidateItem wraps [services.Track] to implement [list.Item].
type candidateItem struct {
	track services.Track
}

func (i candidateItem) FilterValue() string { return i.track.Title }
func (i candidateItem) Title() string       { return i.track.Title }
func (i candidateItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	if i.track.DurationMS > 0 {
		d := time.Duration(i.track.DurationMS) * time.Millisecond
		desc = fmt.Sprintf("%s • %d:%02d", desc, int(d.Minutes()), int(d.Seconds())%60)
	}
	return desc
}
