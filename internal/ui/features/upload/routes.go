package upload

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/tabviz/internal/ingest"
	"github.com/leapstack-labs/tabviz/internal/sheets"
	"github.com/leapstack-labs/tabviz/internal/state"
)

// SetupRoutes registers the upload feature routes.
func SetupRoutes(
	router chi.Router,
	pipeline *ingest.Pipeline,
	sheetsClient *sheets.Client,
	store state.Store,
	sessionStore sessions.Store,
	maxFileSize int64,
	logger *slog.Logger,
) {
	handlers := NewHandlers(pipeline, sheetsClient, store, sessionStore, maxFileSize, logger)

	router.Post("/api/upload", handlers.Upload)
	router.Post("/api/upload/url", handlers.UploadURL)
	router.Post("/api/reset", handlers.Reset)
	router.Get("/api/history", handlers.History)
}
