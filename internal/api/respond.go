package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/dofcatalog/internal/resolve"
	"github.com/dgallion1/dofcatalog/internal/store"
)

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps a catalog or resolution failure to a response code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, resolve.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolve.ErrUnsupportedLocator):
		return http.StatusNotImplemented
	case errors.Is(err, resolve.ErrRemoteFetch):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads a non-negative integer query parameter, clamped to
// ceiling when ceiling > 0.
func queryInt(r *http.Request, name string, fallback, ceiling int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	if ceiling > 0 && n > ceiling {
		n = ceiling
	}
	return n, true
}
