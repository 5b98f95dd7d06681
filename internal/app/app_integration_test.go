package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mukha/internal/capture"
	"github.com/ayusman/mukha/internal/detector"
	"github.com/ayusman/mukha/internal/morph"
	"github.com/ayusman/mukha/internal/store"
	"github.com/ayusman/mukha/testdata"
)

func newTestApp(t *testing.T) (*App, *store.Store, string) {
	t.Helper()

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	targetDir := filepath.Join(tmpDir, "targets")
	app := New(Config{
		Store:     s,
		TargetDir: targetDir,
		ClipDir:   filepath.Join(tmpDir, "clips"),
		CameraID:  -1,
	})
	app.SetDetector(detector.NewMockDetector())
	return app, s, targetDir
}

func TestApp_TargetWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, s, targetDir := newTestApp(t)

	if _, _, err := testdata.WriteTargetPair(mkdir(t, targetDir), "anand"); err != nil {
		t.Fatalf("write target pair: %v", err)
	}

	// Import registers the directory pair in the store.
	if err := app.ImportTargets(); err != nil {
		t.Fatalf("ImportTargets() error = %v", err)
	}
	records, err := s.Targets().List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 1 || records[0].Name != "anand" {
		t.Fatalf("registered targets = %+v, want one named anand", records)
	}

	// A second import is a no-op.
	if err := app.ImportTargets(); err != nil {
		t.Fatalf("second ImportTargets() error = %v", err)
	}
	if records, _ = s.Targets().List(); len(records) != 1 {
		t.Fatalf("re-import duplicated targets: %d", len(records))
	}

	if err := app.LoadTargets(); err != nil {
		t.Fatalf("LoadTargets() error = %v", err)
	}

	if err := app.SelectTarget(records[0].ID); err != nil {
		t.Fatalf("SelectTarget() error = %v", err)
	}
	if app.ActiveTargetID() != records[0].ID {
		t.Errorf("ActiveTargetID() = %q, want %q", app.ActiveTargetID(), records[0].ID)
	}
	if app.Morpher().ActiveTarget() == nil {
		t.Fatal("morpher should have an active target after SelectTarget")
	}

	// Applying persisted settings must not evict the selected target from
	// the engine.
	app.LoadSettings()
	if app.Morpher().ActiveTarget() == nil {
		t.Fatal("morpher lost its target after LoadSettings")
	}

	// Selection persists and is restored by a fresh load.
	active, err := s.Targets().Active()
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if active.ID != records[0].ID {
		t.Errorf("persisted active = %q, want %q", active.ID, records[0].ID)
	}

	app.ClearTarget()
	if app.ActiveTargetID() != "" {
		t.Error("ActiveTargetID() should be empty after ClearTarget")
	}
	if app.Morpher().ActiveTarget() != nil {
		t.Error("morpher should have no target after ClearTarget")
	}
}

func TestApp_SelectTarget_Missing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, _, _ := newTestApp(t)

	if err := app.SelectTarget("nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SelectTarget() error = %v, want ErrNotFound", err)
	}
}

func TestApp_SettingsRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, s, _ := newTestApp(t)

	app.SetOptions(morph.Options{Alpha: 0.6, PreserveEyes: false, PreserveMouth: true})
	app.SetEnabled(true)

	// A fresh app restores the persisted settings.
	other := New(Config{Store: s, CameraID: -1})
	other.SetDetector(detector.NewMockDetector())
	other.LoadSettings()

	opts := other.Options()
	if opts.Alpha != 0.6 || opts.PreserveEyes || !opts.PreserveMouth {
		t.Errorf("restored options = %+v", opts)
	}
	if !other.IsEnabled() {
		t.Error("enabled flag should be restored")
	}
}

func TestApp_SetOptions_ClampsAlpha(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, _, _ := newTestApp(t)

	app.SetOptions(morph.Options{Alpha: 1.7})
	if got := app.Options().Alpha; got != 1 {
		t.Errorf("Alpha = %f, want clamped to 1", got)
	}

	app.SetOptions(morph.Options{Alpha: -0.2})
	if got := app.Options().Alpha; got != 0 {
		t.Errorf("Alpha = %f, want clamped to 0", got)
	}
}

func TestApp_MorphFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, s, targetDir := newTestApp(t)
	if _, _, err := testdata.WriteTargetPair(mkdir(t, targetDir), "star"); err != nil {
		t.Fatalf("write target pair: %v", err)
	}
	if err := app.ImportTargets(); err != nil {
		t.Fatalf("ImportTargets() error = %v", err)
	}
	if err := app.LoadTargets(); err != nil {
		t.Fatalf("LoadTargets() error = %v", err)
	}
	records, _ := s.Targets().List()
	if err := app.SelectTarget(records[0].ID); err != nil {
		t.Fatalf("SelectTarget() error = %v", err)
	}

	// Frame with a live face matching the target's landmark scheme.
	frame, err := gocv.ImageToMatRGBA(testdata.GradientFrame(256, 256))
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	defer frame.Close()

	faces := []detector.FaceLandmarks{
		detector.FromPixels(testdata.Face68(128, 120, 0.9), 256, 256),
	}

	out := app.morphFrame(&frame, faces)
	if out == nil {
		t.Fatal("morphFrame returned nil")
	}

	// The face interior carries the morph; the far corner is untouched.
	orig := testdata.GradientFrame(256, 256)
	if out.NRGBAAt(128, 120) == orig.NRGBAAt(128, 120) {
		t.Error("face interior should have been morphed")
	}
	if out.NRGBAAt(3, 3) != orig.NRGBAAt(3, 3) {
		t.Error("background should be unchanged")
	}
}

func TestApp_IdleActiveMode_Switching(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app, _, _ := newTestApp(t)

	// A looping camera: a static frame, then a bright one to trigger motion.
	dark := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer dark.Close()
	bright := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer bright.Close()
	bright.SetTo(gocv.NewScalar(255, 255, 255, 0))

	mockCamera := capture.NewMockCamera([]*gocv.Mat{&dark, &dark, &bright, &bright, &bright}, true)
	app.SetCamera(mockCamera)

	if err := app.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer app.Stop()

	// The alternating dark/bright loop keeps motion firing, so the pipeline
	// should settle into active mode.
	deadline := time.After(3 * time.Second)
	for app.Camera().FPS() != ActiveFPS {
		select {
		case <-deadline:
			t.Fatalf("pipeline never switched to active mode, FPS = %d", app.Camera().FPS())
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func mkdir(t *testing.T, dir string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	return dir
}
