package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/ewilliams-labs/setlist/internal/core/domain"
)

// maxBodyBytes bounds request bodies; /curate carries whole candidate lists.
const maxBodyBytes = 8 << 20

const (
	errCodeInvalidOptions = "INVALID_OPTIONS"
	errCodeNotFound       = "NOT_FOUND"
	errCodeNoTracks       = "NO_TRACKS"
	errCodeTimeout        = "TIMEOUT"
	errCodeInternal       = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("WARN rest: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownArc), errors.Is(err, domain.ErrInvalidOptions):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeInvalidOptions)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, err.Error(), errCodeNotFound)
	case errors.Is(err, domain.ErrNoTracks):
		writeErrorWithCode(w, http.StatusUnprocessableEntity, err.Error(), errCodeNoTracks)
	case errors.Is(err, context.DeadlineExceeded):
		writeErrorWithCode(w, http.StatusGatewayTimeout, err.Error(), errCodeTimeout)
	default:
		log.Printf("WARN rest: request failed: %v", err)
		writeErrorWithCode(w, http.StatusInternalServerError, err.Error(), errCodeInternal)
	}
}

func isJSONContentType(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// decodeJSON enforces the content type and size limit before decoding dst.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
