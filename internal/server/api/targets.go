package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mukha/internal/store"
)

// TargetHandler handles HTTP requests for morph target resources.
type TargetHandler struct {
	store   *store.Store
	control Controller
}

// NewTargetHandler creates a new TargetHandler.
func NewTargetHandler(s *store.Store, control Controller) *TargetHandler {
	return &TargetHandler{store: s, control: control}
}

// ServeHTTP routes target requests.
// Expected paths: /api/targets, /api/targets/{id}, /api/targets/{id}/select,
// /api/targets/active.
func (h *TargetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/targets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/targets
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "active" {
		switch r.Method {
		case http.MethodGet:
			h.getActive(w, r)
		case http.MethodDelete:
			h.clearActive(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, ok := strings.CutSuffix(path, "/select"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.selectTarget(w, r, id)
		return
	}

	// Item endpoint: /api/targets/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type targetResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	LandmarkCount int    `json:"landmark_count"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
}

type listTargetsResponse struct {
	Targets []targetResponse `json:"targets"`
}

func toTargetResponse(t *store.Target) targetResponse {
	return targetResponse{
		ID:            t.ID,
		Name:          t.Name,
		Width:         t.Width,
		Height:        t.Height,
		LandmarkCount: t.LandmarkCount,
		Active:        t.Active,
		CreatedAt:     t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/targets and returns all registered targets.
func (h *TargetHandler) list(w http.ResponseWriter, r *http.Request) {
	targets, err := h.store.Targets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list targets")
		return
	}

	response := listTargetsResponse{
		Targets: make([]targetResponse, 0, len(targets)),
	}
	for _, t := range targets {
		response.Targets = append(response.Targets, toTargetResponse(t))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/targets/{id}.
func (h *TargetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	target, err := h.store.Targets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Target not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get target")
		return
	}

	writeJSON(w, http.StatusOK, toTargetResponse(target))
}

// getActive handles GET /api/targets/active.
func (h *TargetHandler) getActive(w http.ResponseWriter, r *http.Request) {
	target, err := h.store.Targets().Active()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No active target")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get active target")
		return
	}

	writeJSON(w, http.StatusOK, toTargetResponse(target))
}

// selectTarget handles POST /api/targets/{id}/select and makes the target
// the live morph destination.
func (h *TargetHandler) selectTarget(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.control.SelectTarget(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Target not found")
			return
		}
		// Triangulation failure: the previous target stays active.
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clearActive handles DELETE /api/targets/active; frames then pass through
// unmodified.
func (h *TargetHandler) clearActive(w http.ResponseWriter, r *http.Request) {
	h.control.ClearTarget()
	w.WriteHeader(http.StatusNoContent)
}

// delete handles DELETE /api/targets/{id} and removes the registration.
func (h *TargetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if h.control.ActiveTargetID() == id {
		h.control.ClearTarget()
	}

	if err := h.store.Targets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Target not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete target")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
