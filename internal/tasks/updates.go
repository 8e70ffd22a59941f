package tasks

import (
	"fmt"

	"github.com/desertthunder/rekordsync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadLibrary Phase = iota
	CleanTitles
	Enhance
	DetectDuplicates
	SaveLibrary
	FetchSinkPlaylists
	MatchTracks
	SyncPlaylist
	CleanupOrphans
	RepairTitles
	WarmCache
)

func (p Phase) String() string {
	switch p {
	case LoadLibrary:
		return "load_library"
	case CleanTitles:
		return "clean_titles"
	case Enhance:
		return "enhance"
	case DetectDuplicates:
		return "detect_duplicates"
	case SaveLibrary:
		return "save_library"
	case FetchSinkPlaylists:
		return "fetch_sink_playlists"
	case MatchTracks:
		return "match_tracks"
	case SyncPlaylist:
		return "sync_playlist"
	case CleanupOrphans:
		return "cleanup_orphans"
	case RepairTitles:
		return "repair_titles"
	case WarmCache:
		return "warm_cache"
	default:
		return ""
	}
}

func loadLibraryUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadLibrary,
		Step:    1,
		Total:   1,
		Message: "Loading source library...",
	}
}

func cleanTitlesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CleanTitles,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recovering original titles for %d tracks...", total),
	}
}

func enhanceUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Enhance,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Enhancing %d tracks...", total),
	}
}

func detectDuplicatesUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   DetectDuplicates,
		Step:    1,
		Total:   1,
		Message: "Checking for duplicate tracks...",
	}
}

func saveLibraryUpdate(changed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saving %d changed tracks...", changed),
	}
}

func fetchSinkPlaylistsUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSinkPlaylists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loading playlists from %s...", name),
	}
}

func matchTrackUpdate(step, total int, track *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, track.Title, track.Artists),
	}
}

func syncPlaylistUpdate(step, total int, source, target string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("(%d/%d) %s -> %s", step, total, source, target),
		Data:    target,
	}
}

func cleanupOrphansUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CleanupOrphans,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Cleaning up %d orphaned playlists...", count),
	}
}

func repairTitlesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RepairTitles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Repairing titles [%d/%d]...", step, total),
	}
}

func warmCacheUpdate(step, total int, track *models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WarmCache,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Matching %s - %s", step, total, track.Title, track.Artists),
	}
}
