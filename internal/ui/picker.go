package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/services"
)

// Picker resolves ambiguous track matches by asking the user. It satisfies the sync
// engine's picker contract: returning (nil, nil) skips the track.
type Picker struct{}

func NewPicker() *Picker { return &Picker{} }

// Pick runs a full-screen candidate list for one library track. An empty candidate list
// is an immediate skip without entering the TUI.
func (p *Picker) Pick(ctx context.Context, track *models.Track, candidates []services.Track) (*services.Track, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	program := tea.NewProgram(newPickModel(track, candidates), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("match picker failed: %w", err)
	}

	m, ok := final.(*pickModel)
	if !ok || m.aborted {
		return nil, context.Canceled
	}
	return m.choice, nil
}

// pickModel is the bubbletea model for a single pick decision.
type pickModel struct {
	track      *models.Track
	candidates list.Model
	choice     *services.Track
	aborted    bool
	help       help.Model
	keys       keyMap
	width      int
	height     int
}

func newPickModel(track *models.Track, candidates []services.Track) *pickModel {
	items := make([]list.Item, len(candidates))
	for i, c := range candidates {
		items[i] = candidateItem{track: c}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("No exact match for '%s - %s'", track.Title, track.Artists)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	return &pickModel{
		track:      track,
		candidates: l,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

func (m *pickModel) Init() tea.Cmd { return nil }

func (m *pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.candidates.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.enter):
			if selected, ok := m.candidates.SelectedItem().(candidateItem); ok {
				m.choice = &selected.track
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.skip):
			m.choice = nil
			return m, tea.Quit
		case key.Matches(msg, m.keys.quit):
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.candidates, cmd = m.candidates.Update(msg)
	return m, cmd
}

func (m *pickModel) View() string {
	header := styles.title.Render("Pick a Spotify match")
	hint := styles.help.Render("enter keeps the selection for future syncs; s skips this track")
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", header, m.candidates.View(), hint, helpView)
}
