package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mukha/internal/store"
)

// RecordHandler controls clip recording and lists recorded clips.
type RecordHandler struct {
	store   *store.Store
	control Controller
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(s *store.Store, control Controller) *RecordHandler {
	return &RecordHandler{store: s, control: control}
}

type recordStatusResponse struct {
	Recording bool `json:"recording"`
}

type stopRecordResponse struct {
	Path string `json:"path"`
}

type clipResponse struct {
	ID            string `json:"id"`
	Path          string `json:"path"`
	TargetID      string `json:"target_id,omitempty"`
	FramesDropped int64  `json:"frames_dropped"`
	CreatedAt     string `json:"created_at"`
}

type listClipsResponse struct {
	Clips []clipResponse `json:"clips"`
}

// ServeHTTP routes recording requests.
// Expected paths: /api/record, /api/record/start, /api/record/stop, /api/clips.
func (h *RecordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/clips") {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.listClips(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/record")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, recordStatusResponse{Recording: h.control.IsRecording()})
	case path == "start" && r.Method == http.MethodPost:
		h.start(w, r)
	case path == "stop" && r.Method == http.MethodPost:
		h.stop(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *RecordHandler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.control.StartRecording(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, recordStatusResponse{Recording: true})
}

func (h *RecordHandler) stop(w http.ResponseWriter, r *http.Request) {
	path, err := h.control.StopRecording()
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stopRecordResponse{Path: path})
}

func (h *RecordHandler) listClips(w http.ResponseWriter, r *http.Request) {
	clips, err := h.store.Clips().List()
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Failed to list clips")
		return
	}

	response := listClipsResponse{Clips: make([]clipResponse, 0, len(clips))}
	for _, c := range clips {
		response.Clips = append(response.Clips, clipResponse{
			ID:            c.ID,
			Path:          c.Path,
			TargetID:      c.TargetID,
			FramesDropped: c.FramesDropped,
			CreatedAt:     c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
