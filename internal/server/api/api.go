// Package api provides the HTTP API handlers for the morphing application.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mukha/internal/morph"
)

// Controller is the application surface the HTTP API drives. Implemented by
// the app package; tests substitute a fake.
type Controller interface {
	SelectTarget(id string) error
	ClearTarget()
	ActiveTargetID() string
	Options() morph.Options
	SetOptions(opts morph.Options)
	IsEnabled() bool
	SetEnabled(enabled bool)
	StartRecording() error
	StopRecording() (string, error)
	IsRecording() bool
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
