// Package server provides the HTTP server for the morphing application:
// the JSON API, the MJPEG output stream, and the landmark websocket.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mukha/internal/detector"
	"github.com/ayusman/mukha/internal/server/api"
	"github.com/ayusman/mukha/internal/store"
)

// FrameSource provides the latest pipeline output. Implemented by the app
// package.
type FrameSource interface {
	// LatestJPEG returns the most recent composited frame as JPEG bytes
	// plus a sequence number that increments with every new frame.
	LatestJPEG() ([]byte, uint64)

	// LatestFaces returns the faces detected in the most recent frame.
	LatestFaces() []detector.FaceLandmarks
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Control   api.Controller
	Frames    FrameSource
}

// Server represents the HTTP server for the morphing application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil && s.config.Control != nil {
		targetHandler := api.NewTargetHandler(s.config.Store, s.config.Control)
		s.mux.Handle("/api/targets", targetHandler)
		s.mux.Handle("/api/targets/", targetHandler)

		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Control))

		recordHandler := api.NewRecordHandler(s.config.Store, s.config.Control)
		s.mux.Handle("/api/record", recordHandler)
		s.mux.Handle("/api/record/", recordHandler)
		s.mux.Handle("/api/clips", recordHandler)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
		s.mux.Handle("/api/landmarks", NewLandmarksHandler(s.config.Frames))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
