package tasks

import (
	"fmt"

	"github.com/desertthunder/recall/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	RunID   string // Correlates sync-phase updates with their run, empty otherwise
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPage Phase = iota
	ApplyItems
	CommitWatermark
	RankTrends
	ComposeDigest
	ExportItems
)

func (p Phase) String() string {
	switch p {
	case FetchPage:
		return "fetch_page"
	case ApplyItems:
		return "apply_items"
	case CommitWatermark:
		return "commit_watermark"
	case RankTrends:
		return "rank_trends"
	case ComposeDigest:
		return "compose_digest"
	case ExportItems:
		return "export_items"
	default:
		return ""
	}
}

func fetchPageUpdate(runID string, page, offset int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		RunID:   runID,
		Step:    page,
		Message: fmt.Sprintf("Fetching page %d from Pocket (offset %d)...", page, offset),
	}
}

func appliedPageUpdate(runID string, page, items int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyItems,
		RunID:   runID,
		Step:    page,
		Message: fmt.Sprintf("Applied %d items from page %d", items, page),
	}
}

func committedWatermarkUpdate(runID string, watermark int64) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CommitWatermark,
		RunID:   runID,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Committed sync watermark %d", watermark),
	}
}

func rankTrendUpdate(step, total int, trend models.Trend) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RankTrends,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Ranking saved items for: %s", step, total, trend.Name),
	}
}

func composedDigestUpdate(selected []RelevantItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComposeDigest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Digest composed with %d items", len(selected)),
		Data:    selected,
	}
}

func exportingUserUpdate(step, total int, email string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting items for: %s...", step, total, email),
	}
}

func exportCompletedUpdate(step, total int, email string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, email, filesCount),
	}
}

func exportFailedUpdate(step, total int, email string, errMsg string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, email, errMsg),
	}
}
