package preview

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/tabviz/internal/state"
)

// SetupRoutes registers the preview feature routes.
func SetupRoutes(router chi.Router, store state.Store, sessionStore sessions.Store, previewRows int, logger *slog.Logger) {
	handlers := NewHandlers(store, sessionStore, previewRows, logger)
	router.Get("/api/preview", handlers.Preview)
}
