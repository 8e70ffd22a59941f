// package formatter exports processing reports to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/rekordsync/internal/models"
	"github.com/desertthunder/rekordsync/internal/processor"
)

// DuplicatesToCSV converts duplicate groups to CSV with one row per copy.
// Columns: Group, ID, Title, Artists, Key, BPM
func DuplicatesToCSV(groups []processor.DuplicateGroup) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Group", "ID", "Title", "Artists", "Key", "BPM"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, group := range groups {
		for _, track := range group.Tracks {
			record := []string{
				strconv.Itoa(i + 1),
				track.ID,
				track.DisplayTitle(),
				track.Artists,
				track.Key,
				formatBPM(track.BPM),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// DuplicatesToMarkdown converts duplicate groups to a Markdown report.
func DuplicatesToMarkdown(groups []processor.DuplicateGroup) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Duplicate Tracks\n\n")
	buf.WriteString(fmt.Sprintf("**Groups**: %d\n\n", len(groups)))

	for i, group := range groups {
		artists := group.Artists
		if artists == "" {
			artists = "(no artist)"
		}
		buf.WriteString(fmt.Sprintf("## %d. %s - %s\n\n", i+1, group.Title, artists))
		for _, track := range group.Tracks {
			detail := ""
			if track.Key != "" {
				detail = fmt.Sprintf(" [%s]", track.Key)
			}
			buf.WriteString(fmt.Sprintf("- `%s` %s%s\n", track.ID, track.DisplayTitle(), detail))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// DuplicatesToText converts duplicate groups to plain text.
func DuplicatesToText(groups []processor.DuplicateGroup) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Duplicate groups: %d\n\n", len(groups)))

	for i, group := range groups {
		artists := group.Artists
		if artists == "" {
			artists = "(no artist)"
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%d copies)\n", i+1, group.Title, artists, len(group.Tracks)))
		for _, track := range group.Tracks {
			buf.WriteString(fmt.Sprintf("   %s\n", track.ID))
		}
	}

	return buf.Bytes(), nil
}

// ChangesToCSV converts a dry-run change set to CSV.
// Columns: ID, Original Title, New Title, Original Artists, New Artists
func ChangesToCSV(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Original Title", "New Title", "Original Artists", "New Artists"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID,
			track.OriginalTitle,
			track.DisplayTitle(),
			track.OriginalArtists,
			track.Artists,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ChangesToMarkdown converts a dry-run change set to a Markdown report.
func ChangesToMarkdown(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Pending Changes\n\n")
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	buf.WriteString("| ID | Before | After |\n")
	buf.WriteString("|----|--------|-------|\n")
	for _, track := range tracks {
		before := fmt.Sprintf("%s - %s", track.OriginalTitle, track.OriginalArtists)
		after := fmt.Sprintf("%s - %s", track.DisplayTitle(), track.Artists)
		buf.WriteString(fmt.Sprintf("| %s | %s | %s |\n", track.ID, escapePipes(before), escapePipes(after)))
	}

	return buf.Bytes(), nil
}

// ChangesToText converts a dry-run change set to plain text.
func ChangesToText(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Pending changes: %d\n\n", len(tracks)))

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track.ID))
		buf.WriteString(fmt.Sprintf("   before: %s - %s\n", track.OriginalTitle, track.OriginalArtists))
		buf.WriteString(fmt.Sprintf("   after:  %s - %s\n", track.DisplayTitle(), track.Artists))
	}

	return buf.Bytes(), nil
}

// WriteDuplicateReport writes a duplicate report to path, choosing the format from the
// file extension: .csv, .md, or plain text for anything else.
func WriteDuplicateReport(groups []processor.DuplicateGroup, path string) error {
	data, err := renderByExtension(path,
		func() ([]byte, error) { return DuplicatesToCSV(groups) },
		func() ([]byte, error) { return DuplicatesToMarkdown(groups) },
		func() ([]byte, error) { return DuplicatesToText(groups) },
	)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteChangeReport writes a dry-run change report to path, choosing the format from the
// file extension: .csv, .md, or plain text for anything else.
func WriteChangeReport(tracks []*models.Track, path string) error {
	data, err := renderByExtension(path,
		func() ([]byte, error) { return ChangesToCSV(tracks) },
		func() ([]byte, error) { return ChangesToMarkdown(tracks) },
		func() ([]byte, error) { return ChangesToText(tracks) },
	)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func renderByExtension(path string, csvFn, mdFn, textFn func() ([]byte, error)) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return csvFn()
	case ".md", ".markdown":
		return mdFn()
	default:
		return textFn()
	}
}

func formatBPM(bpm float64) string {
	if bpm == 0 {
		return ""
	}
	return strconv.FormatFloat(bpm, 'f', -1, 64)
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
