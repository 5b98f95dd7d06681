package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSettingsHandler_Get(t *testing.T) {
	h := NewSettingsHandler(newFakeController())

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response settingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Alpha != 0.8 || !response.PreserveEyes || response.PreserveMouth || response.Enabled {
		t.Errorf("settings = %+v", response)
	}
}

func TestSettingsHandler_PartialUpdate(t *testing.T) {
	control := newFakeController()
	h := NewSettingsHandler(control)

	// Only alpha and enabled are sent; preserve flags must survive.
	body := `{"alpha": 0.4, "enabled": true}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if control.opts.Alpha != 0.4 {
		t.Errorf("alpha = %f, want 0.4", control.opts.Alpha)
	}
	if !control.opts.PreserveEyes {
		t.Error("preserve_eyes should be unchanged by a partial update")
	}
	if !control.enabled {
		t.Error("enabled should have been set")
	}
}

func TestSettingsHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"alpha": `},
		{"alpha above one", `{"alpha": 1.5}`},
		{"alpha below zero", `{"alpha": -0.1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			control := newFakeController()
			h := NewSettingsHandler(control)

			req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if control.opts.Alpha != 0.8 {
				t.Errorf("rejected update changed alpha to %f", control.opts.Alpha)
			}
		})
	}
}

func TestRecordHandler_Workflow(t *testing.T) {
	s := newTestStore(t)
	control := newFakeController()
	h := NewRecordHandler(s, control)

	// Initial status.
	req := httptest.NewRequest(http.MethodGet, "/api/record", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var status recordStatusResponse
	json.NewDecoder(rec.Body).Decode(&status)
	if status.Recording {
		t.Error("should not be recording initially")
	}

	// Start.
	req = httptest.NewRequest(http.MethodPost, "/api/record/start", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !control.recording {
		t.Fatal("controller should be recording after start")
	}

	// Double start conflicts.
	req = httptest.NewRequest(http.MethodPost, "/api/record/start", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("double start status = %d, want %d", rec.Code, http.StatusConflict)
	}

	// Stop returns the clip path.
	req = httptest.NewRequest(http.MethodPost, "/api/record/stop", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want %d", rec.Code, http.StatusOK)
	}
	var stopped stopRecordResponse
	json.NewDecoder(rec.Body).Decode(&stopped)
	if stopped.Path != control.clipPath {
		t.Errorf("stop path = %q, want %q", stopped.Path, control.clipPath)
	}
}

func TestRecordHandler_ListClips(t *testing.T) {
	s := newTestStore(t)
	h := NewRecordHandler(s, newFakeController())

	// Empty list is an empty array, not null.
	req := httptest.NewRequest(http.MethodGet, "/api/clips", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `"clips":[]`) {
		t.Errorf("empty list body = %s", rec.Body.String())
	}
}
