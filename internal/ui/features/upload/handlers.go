// Package upload provides handlers for file and remote-sheet ingestion,
// session reset and upload history.
package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/tabviz/internal/dataset"
	"github.com/leapstack-labs/tabviz/internal/ingest"
	"github.com/leapstack-labs/tabviz/internal/sheets"
	"github.com/leapstack-labs/tabviz/internal/state"
	"github.com/leapstack-labs/tabviz/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the upload feature.
type Handlers struct {
	pipeline     *ingest.Pipeline
	sheets       *sheets.Client
	store        state.Store
	sessionStore sessions.Store
	maxFileSize  int64
	logger       *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(pipeline *ingest.Pipeline, sheetsClient *sheets.Client, store state.Store, sessionStore sessions.Store, maxFileSize int64, logger *slog.Logger) *Handlers {
	return &Handlers{
		pipeline:     pipeline,
		sheets:       sheetsClient,
		store:        store,
		sessionStore: sessionStore,
		maxFileSize:  maxFileSize,
		logger:       logger,
	}
}

// Upload ingests a multipart file upload into the caller's session.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	// One byte past the cap is enough to let the pipeline report
	// ErrFileTooLarge instead of buffering an unbounded body.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.WriteError(w, h.logger, fmt.Errorf("%w: body exceeds %d bytes", ingest.ErrFileTooLarge, maxErr.Limit))
			return
		}
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Message: "no file provided"})
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.WriteError(w, h.logger, fmt.Errorf("%w: body exceeds %d bytes", ingest.ErrFileTooLarge, maxErr.Limit))
			return
		}
		common.WriteError(w, h.logger, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	h.ingest(w, r, sessionID, raw, sanitizeFilename(header.Filename), ingest.Options{})
}

// UploadURL fetches a publicly viewable hosted sheet and ingests it.
func (h *Handlers) UploadURL(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	var req URLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorBody{Message: "no sheet URL provided"})
		return
	}

	raw, filename, err := h.sheets.FetchCSV(r.Context(), req.URL)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	h.ingest(w, r, sessionID, raw, filename, ingest.Options{Remote: true})
}

// Reset discards the session's current dataset.
func (h *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if err := h.store.ClearDataset(sessionID); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// History lists the session's upload history, most recent first.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	recs, err := h.store.Uploads(sessionID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	now := time.Now().UTC()
	items := make([]HistoryItem, len(recs))
	for i, rec := range recs {
		items[i] = NewHistoryItem(rec, now)
	}
	common.WriteJSON(w, http.StatusOK, map[string]any{"uploads": items})
}

// ingest runs the pipeline and installs the result. On failure the prior
// session dataset stays in place.
func (h *Handlers) ingest(w http.ResponseWriter, r *http.Request, sessionID string, raw []byte, filename string, opts ingest.Options) {
	res, err := h.pipeline.Ingest(r.Context(), raw, filename, opts)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	if err := h.store.SaveDataset(sessionID, res.Dataset, filename); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	summary := dataset.Summarize(res.Dataset)
	rec := &state.UploadRecord{
		SessionID:      sessionID,
		Filename:       filename,
		SizeBytes:      int64(len(raw)),
		RowCount:       summary.Rows,
		ColumnCount:    summary.Columns,
		NumericColumns: summary.Numeric,
		SourceKind:     string(res.Kind),
		Truncated:      res.Truncated,
	}
	if err := h.store.AddUpload(rec); err != nil {
		// History is best effort; the dataset is already installed.
		h.logger.Error("failed to record upload", "error", err)
	}

	h.logger.Info("ingested file",
		"file", filename, "rows", summary.Rows, "cols", summary.Columns,
		"truncated", res.Truncated)

	common.WriteJSON(w, http.StatusOK, Response{
		Success:   true,
		Filename:  filename,
		Truncated: res.Truncated,
		Summary:   summary,
	})
}

// sanitizeFilename strips directory components and characters that could
// leak into paths or headers.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
}
