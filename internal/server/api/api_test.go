package api

import (
	"errors"

	"github.com/ayusman/mukha/internal/morph"
	"github.com/ayusman/mukha/internal/store"
)

// fakeController records API-driven state changes for assertions.
type fakeController struct {
	known     map[string]bool
	active    string
	opts      morph.Options
	enabled   bool
	recording bool
	clipPath  string
}

func newFakeController(ids ...string) *fakeController {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return &fakeController{
		known:    known,
		opts:     morph.Options{Alpha: 0.8, PreserveEyes: true},
		clipPath: "/clips/morph-20260314-150926.mp4",
	}
}

func (f *fakeController) SelectTarget(id string) error {
	if !f.known[id] {
		return store.ErrNotFound
	}
	f.active = id
	return nil
}

func (f *fakeController) ClearTarget()                  { f.active = "" }
func (f *fakeController) ActiveTargetID() string        { return f.active }
func (f *fakeController) Options() morph.Options        { return f.opts }
func (f *fakeController) SetOptions(opts morph.Options) { f.opts = opts }
func (f *fakeController) IsEnabled() bool               { return f.enabled }
func (f *fakeController) SetEnabled(enabled bool)       { f.enabled = enabled }
func (f *fakeController) IsRecording() bool             { return f.recording }

func (f *fakeController) StartRecording() error {
	if f.recording {
		return errors.New("already recording")
	}
	f.recording = true
	return nil
}

func (f *fakeController) StopRecording() (string, error) {
	if !f.recording {
		return "", errors.New("not recording")
	}
	f.recording = false
	return f.clipPath, nil
}
