package api

import (
	"encoding/json"
	"net/http"
)

// SettingsHandler exposes the morph options over HTTP.
type SettingsHandler struct {
	control Controller
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(control Controller) *SettingsHandler {
	return &SettingsHandler{control: control}
}

type settingsResponse struct {
	Alpha         float64 `json:"alpha"`
	PreserveEyes  bool    `json:"preserve_eyes"`
	PreserveMouth bool    `json:"preserve_mouth"`
	Enabled       bool    `json:"enabled"`
}

// updateSettingsRequest uses pointers so a PUT can update a subset of
// fields without resetting the rest.
type updateSettingsRequest struct {
	Alpha         *float64 `json:"alpha"`
	PreserveEyes  *bool    `json:"preserve_eyes"`
	PreserveMouth *bool    `json:"preserve_mouth"`
	Enabled       *bool    `json:"enabled"`
}

// ServeHTTP handles GET and PUT on /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) current() settingsResponse {
	opts := h.control.Options()
	return settingsResponse{
		Alpha:         opts.Alpha,
		PreserveEyes:  opts.PreserveEyes,
		PreserveMouth: opts.PreserveMouth,
		Enabled:       h.control.IsEnabled(),
	}
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.current())
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Alpha != nil && (*req.Alpha < 0 || *req.Alpha > 1) {
		writeError(w, http.StatusBadRequest, "alpha must be between 0 and 1")
		return
	}

	opts := h.control.Options()
	if req.Alpha != nil {
		opts.Alpha = *req.Alpha
	}
	if req.PreserveEyes != nil {
		opts.PreserveEyes = *req.PreserveEyes
	}
	if req.PreserveMouth != nil {
		opts.PreserveMouth = *req.PreserveMouth
	}
	h.control.SetOptions(opts)

	if req.Enabled != nil {
		h.control.SetEnabled(*req.Enabled)
	}

	writeJSON(w, http.StatusOK, h.current())
}
