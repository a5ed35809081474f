package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crisoull/bodega/internal/store"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps store errors onto HTTP responses. Validation
// failures return every message so the client can show them all.
func storeError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":    "validation failed",
			"messages": verr.Messages,
		})
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrExists):
		jsonError(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrNoStock):
		jsonError(w, http.StatusConflict, "no stock available")
	default:
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
