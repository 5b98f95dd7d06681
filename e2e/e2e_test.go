package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mukha/internal/app"
	"github.com/ayusman/mukha/internal/detector"
	"github.com/ayusman/mukha/internal/server"
	"github.com/ayusman/mukha/internal/store"
	"github.com/ayusman/mukha/testdata"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	targetDir := filepath.Join(tmpDir, "targets")
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		t.Fatal(err)
	}
	if _, _, err := testdata.WriteTargetPair(targetDir, "anand"); err != nil {
		t.Fatalf("write target pair: %v", err)
	}

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	application := app.New(app.Config{
		Store:     s,
		TargetDir: targetDir,
		ClipDir:   filepath.Join(tmpDir, "clips"),
		CameraID:  -1,
	})
	application.SetDetector(detector.NewMockDetector())

	t.Run("ImportTargets", func(t *testing.T) {
		if err := application.ImportTargets(); err != nil {
			t.Fatalf("ImportTargets() error = %v", err)
		}
		if err := application.LoadTargets(); err != nil {
			t.Fatalf("LoadTargets() error = %v", err)
		}
	})

	srv := server.New(server.Config{
		Store:   s,
		Control: application,
		Frames:  application,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	var targetID string

	t.Run("ListTargets", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/targets")
		if err != nil {
			t.Fatalf("list targets error = %v", err)
		}
		defer resp.Body.Close()

		var listed struct {
			Targets []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				LandmarkCount int    `json:"landmark_count"`
			} `json:"targets"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(listed.Targets) != 1 {
			t.Fatalf("targets = %d, want 1", len(listed.Targets))
		}
		if listed.Targets[0].Name != "anand" || listed.Targets[0].LandmarkCount != 68 {
			t.Fatalf("target = %+v", listed.Targets[0])
		}
		targetID = listed.Targets[0].ID
	})

	t.Run("SelectTarget", func(t *testing.T) {
		resp, err := client.Post(ts.URL+"/api/targets/"+targetID+"/select", "application/json", nil)
		if err != nil {
			t.Fatalf("select error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("select status = %d, want %d", resp.StatusCode, http.StatusNoContent)
		}
		if application.ActiveTargetID() != targetID {
			t.Errorf("active target = %q, want %q", application.ActiveTargetID(), targetID)
		}
	})

	t.Run("UpdateSettings", func(t *testing.T) {
		body := bytes.NewBufferString(`{"alpha": 0.6, "preserve_mouth": true}`)
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", body)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("update settings error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("settings status = %d", resp.StatusCode)
		}

		opts := application.Options()
		if opts.Alpha != 0.6 || !opts.PreserveMouth {
			t.Errorf("options = %+v", opts)
		}
	})

	t.Run("MorphFrame", func(t *testing.T) {
		frame := testdata.GradientFrame(256, 256)
		before := frame.NRGBAAt(128, 120)

		out, err := application.Morpher().Morph(frame, testdata.Face68(128, 120, 0.9), application.Options())
		if err != nil {
			t.Fatalf("Morph() error = %v", err)
		}
		if out.NRGBAAt(128, 120) == before {
			t.Error("face interior unchanged after morph")
		}
	})

	t.Run("SettingsSurviveRestart", func(t *testing.T) {
		second := app.New(app.Config{
			Store:     s,
			TargetDir: targetDir,
			ClipDir:   filepath.Join(tmpDir, "clips"),
			CameraID:  -1,
		})
		second.SetDetector(detector.NewMockDetector())
		if err := second.LoadTargets(); err != nil {
			t.Fatalf("LoadTargets() error = %v", err)
		}
		second.LoadSettings()

		if second.ActiveTargetID() != targetID {
			t.Errorf("restored active target = %q, want %q", second.ActiveTargetID(), targetID)
		}
		if opts := second.Options(); opts.Alpha != 0.6 || !opts.PreserveMouth {
			t.Errorf("restored options = %+v", opts)
		}

		// The engine must still hold the restored target after settings are
		// applied, not just report its ID.
		if second.Morpher().ActiveTarget() == nil {
			t.Fatal("engine has no target after settings restore")
		}
		out, err := second.Morpher().Morph(testdata.GradientFrame(256, 256), testdata.Face68(128, 120, 0.9), second.Options())
		if err != nil {
			t.Fatalf("Morph() after restore error = %v", err)
		}
		if out == nil {
			t.Fatal("Morph() after restore returned nil frame")
		}
	})

	t.Run("DeleteTarget", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/targets/"+targetID, nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("delete error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("delete status = %d", resp.StatusCode)
		}
		if application.ActiveTargetID() != "" {
			t.Errorf("active target = %q after delete, want empty", application.ActiveTargetID())
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health check error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after app operations")
		}
	})
}
