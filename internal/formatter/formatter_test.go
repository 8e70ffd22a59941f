package formatter

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/processor"
	th "github.com/desertthunder/rekordsync/internal/testing"
)

func testGroups() []processor.DuplicateGroup {
	return []processor.DuplicateGroup{
		{
			Title:   "Song One",
			Artists: "Artist One",
			Tracks: []*models.Track{
				{ID: "track1", Title: "Song One", Artists: "Artist One", Key: "Am", BPM: 128},
				{ID: "track2", Title: "Song One", Artists: "Artist One"},
			},
		},
		{
			Title: "Untitled",
			Tracks: []*models.Track{
				{ID: "track3", Title: "Untitled"},
				{ID: "track4", Title: "Untitled"},
			},
		},
	}
}

func testChanges() []*models.Track {
	return []*models.Track{
		{
			ID:            "track1",
			Title:         "Song One",
			Artists:       "Artist One",
			EnhancedTitle: "Song One - Artist One [Am]",
			OriginalTitle: "Song One", OriginalArtists: "Artist One",
		},
	}
}

func TestDuplicateExporters(t *testing.T) {
	t.Run("DuplicatesToCSV", func(t *testing.T) {
		data, err := DuplicatesToCSV(testGroups())
		if err != nil {
			t.Fatalf("DuplicatesToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Group,ID,Title,Artists,Key,BPM") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "1,track1,Song One,Artist One,Am,128") {
			t.Errorf("CSV missing first copy, got: %s", output)
		}
		if !strings.Contains(output, "2,track3,Untitled") {
			t.Errorf("CSV missing second group, got: %s", output)
		}
	})

	t.Run("DuplicatesToMarkdown", func(t *testing.T) {
		data, err := DuplicatesToMarkdown(testGroups())
		if err != nil {
			t.Fatalf("DuplicatesToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Duplicate Tracks") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Groups**: 2") {
			t.Errorf("Markdown missing group count")
		}
		if !strings.Contains(output, "## 1. Song One - Artist One") {
			t.Errorf("Markdown missing group heading, got: %s", output)
		}
		if !strings.Contains(output, "## 2. Untitled - (no artist)") {
			t.Errorf("Markdown missing artistless fallback, got: %s", output)
		}
		if !strings.Contains(output, "`track1` Song One [Am]") {
			t.Errorf("Markdown missing track line, got: %s", output)
		}
	})

	t.Run("DuplicatesToText", func(t *testing.T) {
		data, err := DuplicatesToText(testGroups())
		if err != nil {
			t.Fatalf("DuplicatesToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Duplicate groups: 2") {
			t.Errorf("text missing group count")
		}
		if !strings.Contains(output, "1. Song One - Artist One (2 copies)") {
			t.Errorf("text missing group line, got: %s", output)
		}
	})
}

func TestChangeExporters(t *testing.T) {
	t.Run("ChangesToCSV", func(t *testing.T) {
		data, err := ChangesToCSV(testChanges())
		if err != nil {
			t.Fatalf("ChangesToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "ID,Original Title,New Title,Original Artists,New Artists") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "track1,Song One,Song One - Artist One [Am],Artist One,Artist One") {
			t.Errorf("CSV missing change row, got: %s", output)
		}
	})

	t.Run("ChangesToMarkdown", func(t *testing.T) {
		data, err := ChangesToMarkdown(testChanges())
		if err != nil {
			t.Fatalf("ChangesToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "| track1 | Song One - Artist One | Song One - Artist One [Am] - Artist One |") {
			t.Errorf("Markdown missing change row, got: %s", output)
		}
	})

	t.Run("ChangesToText", func(t *testing.T) {
		data, err := ChangesToText(testChanges())
		if err != nil {
			t.Fatalf("ChangesToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "before: Song One - Artist One") {
			t.Errorf("text missing before line, got: %s", output)
		}
		if !strings.Contains(output, "after:  Song One - Artist One [Am] - Artist One") {
			t.Errorf("text missing after line, got: %s", output)
		}
	})
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()

	t.Run("duplicate report format follows extension", func(t *testing.T) {
		csvPath := filepath.Join(dir, "dupes.csv")
		if err := WriteDuplicateReport(testGroups(), csvPath); err != nil {
			t.Fatalf("WriteDuplicateReport failed: %v", err)
		}
		th.AssertFileExists(t, csvPath)
		if content := th.MustReadFile(t, csvPath); !strings.HasPrefix(content, "Group,ID") {
			t.Errorf("expected CSV content, got: %s", content)
		}

		mdPath := filepath.Join(dir, "dupes.md")
		if err := WriteDuplicateReport(testGroups(), mdPath); err != nil {
			t.Fatalf("WriteDuplicateReport failed: %v", err)
		}
		if content := th.MustReadFile(t, mdPath); !strings.HasPrefix(content, "# Duplicate Tracks") {
			t.Errorf("expected Markdown content, got: %s", content)
		}
	})

	t.Run("change report defaults to text", func(t *testing.T) {
		txtPath := filepath.Join(dir, "changes.log")
		if err := WriteChangeReport(testChanges(), txtPath); err != nil {
			t.Fatalf("WriteChangeReport failed: %v", err)
		}
		if content := th.MustReadFile(t, txtPath); !strings.Contains(content, "Pending changes: 1") {
			t.Errorf("expected text content, got: %s", content)
		}
	})
}
