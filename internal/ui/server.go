// Package ui provides the tabviz web server: file upload, tabular preview
// and chart spec endpoints over per-browser cookie sessions.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/tabviz/internal/config"
	"github.com/leapstack-labs/tabviz/internal/dataset"
	"github.com/leapstack-labs/tabviz/internal/ingest"
	"github.com/leapstack-labs/tabviz/internal/sheets"
	"github.com/leapstack-labs/tabviz/internal/state"
	"github.com/leapstack-labs/tabviz/internal/ui/notifier"
	"github.com/leapstack-labs/tabviz/internal/ui/router"
)

// watchSessionID is the session that watch-directory ingests land in.
// Browsers on the same machine share it via the /updates reload ping.
const watchSessionID = "local"

// Server is the main UI server.
type Server struct {
	pipeline     *ingest.Pipeline
	sheets       *sheets.Client
	store        state.Store
	sessionStore *sessions.CookieStore
	port         int
	watchDir     string
	limits       config.Limits
	logger       *slog.Logger
	notifier     *notifier.Notifier
}

// Config holds configuration for the UI server.
type Config struct {
	Pipeline      *ingest.Pipeline
	Sheets        *sheets.Client
	Store         state.Store
	Port          int
	WatchDir      string
	Limits        config.Limits
	SessionSecret string
	Logger        *slog.Logger
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400 * 30) // 30 days
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		pipeline:     cfg.Pipeline,
		sheets:       cfg.Sheets,
		store:        cfg.Store,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watchDir:     cfg.WatchDir,
		limits:       cfg.Limits,
		logger:       cfg.Logger,
		notifier:     notifier.New(),
	}
}

// Serve starts the UI server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	router.SetupRoutes(r, s.pipeline, s.sheets, s.store, s.sessionStore, s.notifier, s.limits, s.logger)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watchDir != "" {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchFiles ingests spreadsheet files dropped into the watch directory
// into the shared local session and pings connected browsers.
func (s *Server) watchFiles(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.watchDir); err != nil {
		s.logger.Error("failed to watch directory", "dir", s.watchDir, "error", err)
		// Don't fail - continue without watching
		return nil
	}

	// Debounce timer per path; editors fire several events per save.
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !supportedExt(event.Name) {
				continue
			}

			if t, ok := timers[event.Name]; ok {
				t.Stop()
			}
			path := event.Name
			timers[path] = time.AfterFunc(100*time.Millisecond, func() {
				s.ingestWatched(ctx, path)
			})

		case err := <-watcher.Errors:
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func (s *Server) ingestWatched(ctx context.Context, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to read watched file", "file", path, "error", err)
		return
	}

	res, err := s.pipeline.Ingest(ctx, raw, filepath.Base(path), ingest.Options{})
	if err != nil {
		s.logger.Error("failed to ingest watched file", "file", path, "error", err)
		return
	}

	filename := filepath.Base(path)
	if err := s.store.SaveDataset(watchSessionID, res.Dataset, filename); err != nil {
		s.logger.Error("failed to save watched dataset", "file", path, "error", err)
		return
	}

	summary := dataset.Summarize(res.Dataset)
	if err := s.store.AddUpload(&state.UploadRecord{
		SessionID:      watchSessionID,
		Filename:       filename,
		SizeBytes:      int64(len(raw)),
		RowCount:       summary.Rows,
		ColumnCount:    summary.Columns,
		NumericColumns: summary.Numeric,
		SourceKind:     string(res.Kind),
		Truncated:      res.Truncated,
	}); err != nil {
		s.logger.Error("failed to record watched upload", "file", path, "error", err)
	}

	s.logger.Info("ingested watched file", "file", filename, "rows", summary.Rows)
	s.notifier.Broadcast()
}

func supportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xls":
		return true
	default:
		return false
	}
}
