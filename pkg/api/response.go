package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ontoforge/ontoforge-go/pkg/metadatastore"
)

// Response helpers for common HTTP response patterns

// writeJSONResponse writes a JSON response with the given status code
func writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes an error response with the given status code and message
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]any{
		"error":  message,
		"status": "error",
	})
}

// writeStoreError maps persistence failures onto HTTP status codes
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, metadatastore.ErrNotFound) {
		writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}
	writeErrorResponse(w, http.StatusInternalServerError, err.Error())
}
