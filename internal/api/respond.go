package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lostfound/internal/matching"
	"lostfound/internal/messaging"
	"lostfound/internal/search"
	"lostfound/internal/storage"

	"github.com/go-chi/chi/v5/middleware"
)

// envelope is the body of every API response.
type envelope struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
	// Fields carries per-field messages for validation failures.
	Fields map[string]string `json:"fields,omitempty"`
}

// errBadRequest marks malformed requests (bad JSON, bad query parameters).
var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("api: encode response", "err", err)
	}
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Data: data})
}

// fail maps err onto a status code and writes it.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *matching.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, envelope{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, errBadRequest),
		errors.Is(err, search.ErrBadRequest),
		errors.Is(err, messaging.ErrEmptyMessage),
		errors.Is(err, messaging.ErrSelfMessage):
		writeJSON(w, http.StatusBadRequest, envelope{Error: err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Error: err.Error()})
	case errors.Is(err, matching.ErrForbidden), errors.Is(err, messaging.ErrForbidden):
		writeJSON(w, http.StatusForbidden, envelope{Error: err.Error()})
	case errors.Is(err, matching.ErrNotPending):
		writeJSON(w, http.StatusConflict, envelope{Error: err.Error()})
	default:
		slog.Error("api: request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
