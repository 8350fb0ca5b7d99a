// Package charts serves declarative chart specs built from the session's
// current dataset and the caller's column selections.
package charts

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/tabviz/internal/chart"
	"github.com/leapstack-labs/tabviz/internal/state"
	"github.com/leapstack-labs/tabviz/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the charts feature.
type Handlers struct {
	store        state.Store
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(store state.Store, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	return &Handlers{store: store, sessionStore: sessionStore, logger: logger}
}

// Chart builds the chart spec for the kind in the URL. The request body
// carries the column selections; an empty body falls back to the first
// suitable columns.
func (h *Handlers) Chart(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	ds, _, err := h.store.Dataset(sessionID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	var sel chart.Selections
	if r.Body != nil {
		// A missing or empty body is fine; selections default below.
		_ = json.NewDecoder(r.Body).Decode(&sel)
	}

	kind := chart.Kind(chi.URLParam(r, "kind"))
	spec, err := chart.Build(ds, kind, sel)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]any{"chart": spec})
}
