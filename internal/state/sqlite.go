package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/tabviz/internal/dataset"
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	historyCap int
}

// NewSQLiteStore creates a store that keeps at most historyCap upload
// records per session.
func NewSQLiteStore(historyCap int) *SQLiteStore {
	return &SQLiteStore{historyCap: historyCap}
}

// Open opens the SQLite database. Use ":memory:" for an in-memory store.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for migrations and tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// SaveDataset installs the session's current dataset (replace-on-write).
func (s *SQLiteStore) SaveDataset(sessionID string, ds *dataset.Dataset, filename string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	blob, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO session_datasets (session_id, filename, dataset, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   filename = excluded.filename,
		   dataset = excluded.dataset,
		   updated_at = excluded.updated_at`,
		sessionID, filename, blob, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}

// Dataset returns the session's current dataset.
func (s *SQLiteStore) Dataset(sessionID string) (*dataset.Dataset, string, error) {
	if s.db == nil {
		return nil, "", fmt.Errorf("database not opened")
	}
	var blob []byte
	var filename string
	err := s.db.QueryRow(
		`SELECT dataset, filename FROM session_datasets WHERE session_id = ?`,
		sessionID,
	).Scan(&blob, &filename)
	if err == sql.ErrNoRows {
		return nil, "", ErrNoDataset
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load dataset: %w", err)
	}
	var ds dataset.Dataset
	if err := json.Unmarshal(blob, &ds); err != nil {
		return nil, "", fmt.Errorf("failed to decode dataset: %w", err)
	}
	return &ds, filename, nil
}

// ClearDataset discards the session's current dataset.
func (s *SQLiteStore) ClearDataset(sessionID string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	_, err := s.db.Exec(`DELETE FROM session_datasets WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to clear dataset: %w", err)
	}
	return nil
}

// AddUpload appends an upload record, deduping by filename and trimming
// the history to the cap.
func (s *SQLiteStore) AddUpload(rec *UploadRecord) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.UploadedAt.IsZero() {
		rec.UploadedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`DELETE FROM uploads WHERE session_id = ? AND filename = ?`,
		rec.SessionID, rec.Filename,
	); err != nil {
		return fmt.Errorf("failed to dedupe uploads: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO uploads
		   (id, session_id, filename, size_bytes, row_count, column_count,
		    numeric_columns, source_kind, truncated, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Filename, rec.SizeBytes, rec.RowCount,
		rec.ColumnCount, rec.NumericColumns, rec.SourceKind, rec.Truncated,
		rec.UploadedAt,
	); err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	// Evict beyond the cap, oldest first. rowid breaks ties between
	// records sharing a timestamp so the newest insert always survives.
	if _, err := tx.Exec(
		`DELETE FROM uploads WHERE session_id = ? AND id NOT IN (
		   SELECT id FROM uploads WHERE session_id = ?
		   ORDER BY uploaded_at DESC, rowid DESC LIMIT ?
		 )`,
		rec.SessionID, rec.SessionID, s.historyCap,
	); err != nil {
		return fmt.Errorf("failed to trim upload history: %w", err)
	}

	return tx.Commit()
}

// Uploads lists the session's upload history, most recent first.
func (s *SQLiteStore) Uploads(sessionID string) ([]*UploadRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	rows, err := s.db.Query(
		`SELECT id, session_id, filename, size_bytes, row_count, column_count,
		        numeric_columns, source_kind, truncated, uploaded_at
		 FROM uploads WHERE session_id = ?
		 ORDER BY uploaded_at DESC, rowid DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var out []*UploadRecord
	for rows.Next() {
		rec := &UploadRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.Filename, &rec.SizeBytes,
			&rec.RowCount, &rec.ColumnCount, &rec.NumericColumns,
			&rec.SourceKind, &rec.Truncated, &rec.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
