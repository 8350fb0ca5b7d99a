package charts

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/tabviz/internal/state"
)

// SetupRoutes registers the charts feature routes.
func SetupRoutes(router chi.Router, store state.Store, sessionStore sessions.Store, logger *slog.Logger) {
	handlers := NewHandlers(store, sessionStore, logger)
	router.Post("/api/chart/{kind}", handlers.Chart)
}
