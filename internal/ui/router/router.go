// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/tabviz/internal/config"
	"github.com/leapstack-labs/tabviz/internal/ingest"
	"github.com/leapstack-labs/tabviz/internal/sheets"
	"github.com/leapstack-labs/tabviz/internal/state"
	chartsFeature "github.com/leapstack-labs/tabviz/internal/ui/features/charts"
	previewFeature "github.com/leapstack-labs/tabviz/internal/ui/features/preview"
	uploadFeature "github.com/leapstack-labs/tabviz/internal/ui/features/upload"
	"github.com/leapstack-labs/tabviz/internal/ui/notifier"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	pipeline *ingest.Pipeline,
	sheetsClient *sheets.Client,
	store state.Store,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	limits config.Limits,
	logger *slog.Logger,
) {
	setupUpdates(router, notify)

	uploadFeature.SetupRoutes(router, pipeline, sheetsClient, store, sessionStore, limits.MaxFileSize, logger)
	previewFeature.SetupRoutes(router, store, sessionStore, limits.PreviewRows, logger)
	chartsFeature.SetupRoutes(router, store, sessionStore, logger)
}

// setupUpdates wires the SSE endpoint the page listens on for
// watch-directory ingests. A ping tells the browser to reload and
// re-query the session state.
func setupUpdates(router chi.Router, notify *notifier.Notifier) {
	router.Get("/updates", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		ch := notify.Subscribe()
		defer notify.Unsubscribe(ch)
		for {
			select {
			case <-ch:
				_ = sse.ExecuteScript("window.location.reload()")
			case <-r.Context().Done():
				return
			}
		}
	})
}
