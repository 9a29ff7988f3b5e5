package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mind-engage/coeus/internal/learning"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps the learning error taxonomy onto HTTP statuses. Store
// failures are logged and reported without their cause.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusServiceUnavailable || status == http.StatusInternalServerError {
		log.Printf("http: %s %s: %v", r.Method, r.URL.Path, err)
		msg = http.StatusText(status)
	}
	respondJSON(w, status, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, learning.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, learning.ErrValidation), errors.Is(err, learning.ErrIntegrity):
		return http.StatusBadRequest
	case errors.Is(err, learning.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, learning.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. Any failure is a validation error.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return learning.Validationf("bad json: %v", err)
	}
	return nil
}

// parseCount reads the optional ?count= parameter; 0 means "use the default".
func parseCount(r *http.Request) (int, error) { return queryInt(r, "count") }

// queryInt reads an optional non-negative integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, learning.Validationf("%s must be a non-negative integer, got %q", name, s)
	}
	return v, nil
}
