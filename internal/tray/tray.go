// Package tray provides the system tray interface for the morphing
// application.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onRecord func(recording bool)
	onOpenUI func()
	onQuit   func()
	enabled  bool
	record   bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuRecord *systray.MenuItem
	menuTarget *systray.MenuItem
}

// New creates a new Tray instance with morphing enabled by default.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback for toggling morphing on and off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnRecord sets the callback for starting and stopping clip recording.
func (t *Tray) OnRecord(fn func(recording bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecord = fn
}

// OnOpenUI sets the callback for the "open control panel" menu item.
func (t *Tray) OnOpenUI(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenUI = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mukha")
	systray.SetTooltip("Mukha Face Morphing")

	t.menuToggle = systray.AddMenuItem("● Morphing on", "Toggle face morphing")
	systray.AddSeparator()

	t.menuTarget = systray.AddMenuItem("Target: none", "Active morph target")
	t.menuTarget.Disable()
	systray.AddSeparator()

	t.menuRecord = systray.AddMenuItem("Start recording", "Record the morphed output to a clip")
	systray.AddSeparator()

	menuOpenUI := systray.AddMenuItem("Open Control Panel...", "Open the control panel in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mukha")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuRecord.ClickedCh:
				t.handleRecord()
			case <-menuOpenUI.ClickedCh:
				t.handleOpenUI()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
}

// handleToggle handles the morphing toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Morphing on")
	} else {
		t.menuToggle.SetTitle("○ Morphing off")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleRecord handles the recording menu item click.
func (t *Tray) handleRecord() {
	t.mu.Lock()
	t.record = !t.record
	recording := t.record

	if recording {
		t.menuRecord.SetTitle("Stop recording")
	} else {
		t.menuRecord.SetTitle("Start recording")
	}

	callback := t.onRecord
	t.mu.Unlock()

	if callback != nil {
		callback(recording)
	}
}

// handleOpenUI handles the control panel menu item click.
func (t *Tray) handleOpenUI() {
	t.mu.RLock()
	callback := t.onOpenUI
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetTargetName updates the active target display in the menu.
func (t *Tray) SetTargetName(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuTarget != nil {
		if name == "" {
			t.menuTarget.SetTitle("Target: none")
		} else {
			t.menuTarget.SetTitle("Target: " + name)
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
