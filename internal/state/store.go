// Package state persists per-session data: the current dataset and the
// bounded upload history. Each session's dataset is exclusively owned and
// replaced atomically on successful ingestion; a failed ingestion never
// touches it.
package state

import (
	"errors"
	"time"

	"github.com/leapstack-labs/tabviz/internal/dataset"
)

// ErrNoDataset indicates the session has no current dataset.
var ErrNoDataset = errors.New("no dataset for session")

// UploadRecord is metadata about one completed ingestion. Records are
// append-only; they are evicted past the history cap, never mutated.
type UploadRecord struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"-"`
	Filename       string    `json:"filename"`
	SizeBytes      int64     `json:"size_bytes"`
	RowCount       int       `json:"row_count"`
	ColumnCount    int       `json:"column_count"`
	NumericColumns int       `json:"numeric_columns"`
	SourceKind     string    `json:"source_kind"`
	Truncated      bool      `json:"truncated"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// Store is the session state storage contract.
type Store interface {
	// SaveDataset installs the session's current dataset, replacing any
	// prior one.
	SaveDataset(sessionID string, ds *dataset.Dataset, filename string) error
	// Dataset returns the session's current dataset and its source name.
	// Returns ErrNoDataset when none is installed.
	Dataset(sessionID string) (*dataset.Dataset, string, error)
	// ClearDataset discards the session's current dataset.
	ClearDataset(sessionID string) error
	// AddUpload appends an upload record, dropping any older record with
	// the same filename and evicting past the cap.
	AddUpload(rec *UploadRecord) error
	// Uploads lists the session's upload history, most recent first.
	Uploads(sessionID string) ([]*UploadRecord, error)
	Close() error
}
