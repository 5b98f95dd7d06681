// Package app wires the capture, detection, morphing, and recording pieces
// into the running application.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ayusman/mukha/internal/capture"
	"github.com/ayusman/mukha/internal/detector"
	"github.com/ayusman/mukha/internal/morph"
	"github.com/ayusman/mukha/internal/record"
	"github.com/ayusman/mukha/internal/store"
	"github.com/ayusman/mukha/internal/target"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while faces are being morphed.
	ActiveFPS = 15
	// IdleTimeoutMs is the time in milliseconds to wait before switching back to idle mode.
	IdleTimeoutMs = 2000
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	TargetDir    string
	ClipDir      string
	CameraID     int
	MotionThresh float64
}

// App orchestrates the webcam morphing pipeline: capture, face detection,
// morphing against the active target, streaming, and recording.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	morpher  *morph.Morpher
	recorder *record.Recorder

	mu       sync.RWMutex
	enabled  bool
	targets  map[string]*target.Target
	activeID string
	opts     morph.Options
	stopCh   chan struct{}

	// Latest pipeline output, consumed by the stream and websocket handlers.
	frameMu   sync.RWMutex
	frameJPEG []byte
	frameSeq  uint64
	faces     []detector.FaceLandmarks
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.CameraID),
		motion:   capture.NewMotionDetector(motionThreshold),
		morpher:  morph.New(morph.Config{FeatherSigma: morph.DefaultFeatherSigma}),
		recorder: record.NewRecorder(record.Config{Dir: config.ClipDir, FPS: ActiveFPS}),
		targets:  make(map[string]*target.Target),
		opts:     morph.Options{Alpha: 0.8, PreserveEyes: true, PreserveMouth: false},
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe face detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables morphing.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Settings().SetBool(store.SettingEnabled, enabled); err != nil {
			log.Printf("save enabled setting: %v", err)
		}
	}
}

// IsEnabled returns whether morphing is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the face detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the camera, for tests that play back recorded frames.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Options returns the current morph options.
func (a *App) Options() morph.Options {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.opts
}

// SetOptions updates the morph options and persists them.
func (a *App) SetOptions(opts morph.Options) {
	if opts.Alpha < 0 {
		opts.Alpha = 0
	}
	if opts.Alpha > 1 {
		opts.Alpha = 1
	}

	a.mu.Lock()
	a.opts = opts
	a.mu.Unlock()

	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()
	if err := settings.SetFloat(store.SettingAlpha, opts.Alpha); err != nil {
		log.Printf("save alpha setting: %v", err)
	}
	if err := settings.SetBool(store.SettingPreserveEyes, opts.PreserveEyes); err != nil {
		log.Printf("save preserve_eyes setting: %v", err)
	}
	if err := settings.SetBool(store.SettingPreserveMouth, opts.PreserveMouth); err != nil {
		log.Printf("save preserve_mouth setting: %v", err)
	}
}

// LoadSettings restores morph options and the enabled flag from the store.
func (a *App) LoadSettings() {
	if a.config.Store == nil {
		return
	}
	settings := a.config.Store.Settings()

	a.mu.Lock()
	a.opts = morph.Options{
		Alpha:         settings.GetFloat(store.SettingAlpha, 0.8),
		PreserveEyes:  settings.GetBool(store.SettingPreserveEyes, true),
		PreserveMouth: settings.GetBool(store.SettingPreserveMouth, false),
	}
	a.enabled = settings.GetBool(store.SettingEnabled, false)
	mirror := settings.GetBool(store.SettingMirror, true)
	a.camera.SetMirror(mirror)
	a.mu.Unlock()

	// Applied in place: replacing the morpher here would discard the
	// target restored by LoadTargets.
	sigma := settings.GetFloat(store.SettingFeatherSigma, morph.DefaultFeatherSigma)
	a.morpher.SetFeatherSigma(sigma)
}

// ImportTargets scans the target directory for image+landmark pairs and
// registers any that are not yet in the store.
func (a *App) ImportTargets() error {
	if a.config.Store == nil || a.config.TargetDir == "" {
		return nil
	}

	loaded, err := target.LoadDir(a.config.TargetDir, 0)
	if err != nil {
		return fmt.Errorf("scan target dir: %w", err)
	}

	repo := a.config.Store.Targets()
	for _, t := range loaded {
		if _, err := repo.GetByName(t.Name); err == nil {
			continue
		}
		rec := &store.Target{
			ID:            uuid.New().String(),
			Name:          t.Name,
			ImagePath:     t.ImagePath,
			LandmarksPath: t.LandmarksPath,
			Width:         t.Width,
			Height:        t.Height,
			LandmarkCount: len(t.Landmarks),
		}
		if err := repo.Create(rec); err != nil {
			log.Printf("register target %q: %v", t.Name, err)
			continue
		}
		log.Printf("Registered target %q (%d landmarks)", t.Name, rec.LandmarkCount)
	}
	return nil
}

// LoadTargets loads every registered target's image and landmarks from disk
// and restores the previously active selection. Targets whose files are
// missing or broken are skipped.
func (a *App) LoadTargets() error {
	if a.config.Store == nil {
		return nil
	}

	records, err := a.config.Store.Targets().List()
	if err != nil {
		return err
	}

	loaded := make(map[string]*target.Target, len(records))
	for _, rec := range records {
		t, err := target.Load(rec.ImagePath, rec.LandmarksPath, 0)
		if err != nil {
			log.Printf("load target %q: %v", rec.Name, err)
			continue
		}
		loaded[rec.ID] = t
	}

	a.mu.Lock()
	a.targets = loaded
	a.mu.Unlock()

	if active, err := a.config.Store.Targets().Active(); err == nil {
		if err := a.SelectTarget(active.ID); err != nil {
			log.Printf("restore active target %q: %v", active.Name, err)
		}
	}

	log.Printf("Loaded %d targets from database", len(loaded))
	return nil
}

// SelectTarget makes the given target the morph destination. On failure the
// previous target stays active.
func (a *App) SelectTarget(id string) error {
	a.mu.RLock()
	t, ok := a.targets[id]
	a.mu.RUnlock()
	if !ok {
		return store.ErrNotFound
	}

	if err := a.morpher.SetTarget(t.Name, t.Image, t.Landmarks); err != nil {
		return fmt.Errorf("activate target %q: %w", t.Name, err)
	}

	a.mu.Lock()
	a.activeID = id
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Targets().SetActive(id); err != nil {
			log.Printf("persist active target: %v", err)
		}
	}

	log.Printf("Active target: %q", t.Name)
	return nil
}

// ClearTarget deselects the active target; frames pass through unmodified.
func (a *App) ClearTarget() {
	a.morpher.ClearTarget()

	a.mu.Lock()
	a.activeID = ""
	a.mu.Unlock()

	if a.config.Store != nil {
		if err := a.config.Store.Targets().ClearActive(); err != nil {
			log.Printf("clear active target: %v", err)
		}
	}
}

// ActiveTargetID returns the store ID of the active target, or "".
func (a *App) ActiveTargetID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.activeID
}

// LoadedTarget returns the loaded target for a store ID.
func (a *App) LoadedTarget(id string) (*target.Target, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.targets[id]
	return t, ok
}

// StartRecording opens a clip sized to the camera's output.
func (a *App) StartRecording() error {
	return a.recorder.Start(capture.DefaultWidth, capture.DefaultHeight)
}

// StopRecording finishes the clip and records its metadata.
func (a *App) StopRecording() (string, error) {
	path, dropped, err := a.recorder.Stop()
	if err != nil {
		return "", err
	}

	if a.config.Store != nil {
		clip := &store.Clip{
			ID:            uuid.New().String(),
			Path:          path,
			TargetID:      a.ActiveTargetID(),
			FramesDropped: dropped,
		}
		if err := a.config.Store.Clips().Create(clip); err != nil {
			log.Printf("record clip metadata: %v", err)
		}
	}
	return path, nil
}

// IsRecording reports whether a clip is currently being written.
func (a *App) IsRecording() bool {
	return a.recorder.IsRecording()
}

// Start begins the morphing pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	// Set initial FPS to idle mode
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline()

	log.Println("Morphing pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if a.recorder.IsRecording() {
		if _, _, err := a.recorder.Stop(); err != nil {
			log.Printf("Error stopping recorder: %v", err)
		}
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Morphing pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// MotionDetector returns the motion detector instance.
func (a *App) MotionDetector() *capture.MotionDetector {
	return a.motion
}

// Morpher returns the morph engine.
func (a *App) Morpher() *morph.Morpher {
	return a.morpher
}

// Detector returns the face detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Store returns the backing store.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// LatestJPEG returns the most recent pipeline output frame as JPEG bytes
// plus a sequence number that increments with every new frame.
func (a *App) LatestJPEG() ([]byte, uint64) {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.frameJPEG, a.frameSeq
}

// LatestFaces returns the faces detected in the most recent frame.
func (a *App) LatestFaces() []detector.FaceLandmarks {
	a.frameMu.RLock()
	defer a.frameMu.RUnlock()
	return a.faces
}

func (a *App) publishFrame(jpeg []byte, faces []detector.FaceLandmarks) {
	a.frameMu.Lock()
	a.frameJPEG = jpeg
	a.faces = faces
	a.frameSeq++
	a.frameMu.Unlock()
}
