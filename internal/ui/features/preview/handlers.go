// Package preview serves the bounded tabular preview of the session's
// current dataset: head rows, column classification and summary stats.
package preview

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/tabviz/internal/dataset"
	"github.com/leapstack-labs/tabviz/internal/state"
	"github.com/leapstack-labs/tabviz/internal/ui/features/common"
)

// Response is the preview payload.
type Response struct {
	Filename       string                 `json:"filename"`
	Columns        []string               `json:"columns"`
	Rows           [][]string             `json:"rows"`
	Summary        dataset.Summary        `json:"summary"`
	Classification dataset.Classification `json:"classification"`
	Stats          []dataset.ColumnStats  `json:"stats"`
}

// Handlers provides HTTP handlers for the preview feature.
type Handlers struct {
	store        state.Store
	sessionStore sessions.Store
	previewRows  int
	logger       *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(store state.Store, sessionStore sessions.Store, previewRows int, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, sessionStore: sessionStore, previewRows: previewRows, logger: logger}
}

// Preview returns the first rows of the current dataset plus counts.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	ds, filename, err := h.store.Dataset(sessionID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	cls := dataset.Classify(ds)
	common.WriteJSON(w, http.StatusOK, Response{
		Filename:       filename,
		Columns:        ds.Names(),
		Rows:           ds.HeadRows(h.previewRows),
		Summary:        dataset.Summarize(ds),
		Classification: cls,
		Stats:          dataset.Describe(ds),
	})
}
