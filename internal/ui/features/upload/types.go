package upload

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/tabviz/internal/dataset"
	"github.com/leapstack-labs/tabviz/internal/state"
)

// Response confirms a completed ingestion.
type Response struct {
	Success   bool            `json:"success"`
	Filename  string          `json:"filename"`
	Truncated bool            `json:"truncated"`
	Summary   dataset.Summary `json:"summary"`
}

// URLRequest is the body of a remote-sheet upload.
type URLRequest struct {
	URL string `json:"url"`
}

// HistoryItem is one upload record as rendered to the client, with the
// human-readable fields the page shows next to each entry.
type HistoryItem struct {
	*state.UploadRecord
	TimeAgo    string `json:"time_ago"`
	FileSizeMB string `json:"file_size_mb"`
}

// NewHistoryItem decorates an upload record for display.
func NewHistoryItem(rec *state.UploadRecord, now time.Time) HistoryItem {
	return HistoryItem{
		UploadRecord: rec,
		TimeAgo:      timeAgo(now.Sub(rec.UploadedAt)),
		FileSizeMB:   fmt.Sprintf("%.1f", float64(rec.SizeBytes)/1024/1024),
	}
}

func timeAgo(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}
