// Package common holds helpers shared by the UI feature packages:
// JSON responses, error-to-status mapping and session resolution.
package common

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/tabviz/internal/chart"
	"github.com/leapstack-labs/tabviz/internal/ingest"
	"github.com/leapstack-labs/tabviz/internal/sheets"
	"github.com/leapstack-labs/tabviz/internal/state"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "tabviz_session"

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ErrorBody is the JSON shape of every failure response.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteError maps a pipeline or chart error to an HTTP status and writes
// the user-facing message. Every error here is scoped to the request; the
// session's prior dataset is untouched.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError

	var fetchErr *sheets.FetchError
	var buildErr *chart.BuildError
	var parseErr *ingest.ParseError

	switch {
	case errors.Is(err, ingest.ErrUnsupportedFileType):
		status = http.StatusBadRequest
	case errors.Is(err, ingest.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, ingest.ErrEmptyDataset):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &parseErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		switch fetchErr.Reason {
		case sheets.ReasonMalformedURL:
			status = http.StatusBadRequest
		case sheets.ReasonAccessDenied:
			status = http.StatusForbidden
		default:
			status = http.StatusBadGateway
		}
	case errors.As(err, &buildErr):
		status = http.StatusBadRequest
	case errors.Is(err, state.ErrNoDataset):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "status", status, "error", err)
	}
	WriteJSON(w, status, ErrorBody{Success: false, Message: err.Error()})
}

// SessionID resolves the caller's session ID, assigning a fresh one when
// the cookie is absent or undecodable.
func SessionID(store sessions.Store, w http.ResponseWriter, r *http.Request) (string, error) {
	sess, _ := store.Get(r, SessionCookie) // decode errors yield a fresh session
	if id, ok := sess.Values["id"].(string); ok && id != "" {
		return id, nil
	}
	id := uuid.New().String()
	sess.Values["id"] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}
