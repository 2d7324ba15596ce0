package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/benjaminschreck/go-clause/internal/service"
	"github.com/benjaminschreck/go-clause/internal/store"
	"github.com/benjaminschreck/go-clause/pkg/clause"
)

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// statusFor maps service and library errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case clause.IsUnsupportedFormat(err):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrInvalidInput),
		clause.IsDocumentError(err),
		clause.IsAuthoringError(err),
		clause.IsQuestionnaireError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
