// Package record writes morphed output frames to disk as video clips.
package record

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"
)

// Default recorder settings
const (
	DefaultFPS       = 15.0
	DefaultQueueSize = 30
	fourCC           = "mp4v"
)

// ErrNotRecording is returned when writing a frame while no clip is open.
var ErrNotRecording = errors.New("recorder is not recording")

// ErrAlreadyRecording is returned by Start when a clip is already open.
var ErrAlreadyRecording = errors.New("recorder is already recording")

// Config holds recorder settings.
type Config struct {
	// Dir is the directory clips are written into.
	Dir string

	// FPS is the playback frame rate of written clips.
	FPS float64

	// QueueSize bounds the frame queue. When the encoder falls behind,
	// excess frames are dropped rather than stalling the pipeline.
	QueueSize int
}

// Recorder encodes frames to an MP4 file on a background goroutine so the
// capture loop never blocks on disk or codec speed.
type Recorder struct {
	config Config

	mu        sync.Mutex
	writer    *gocv.VideoWriter
	frames    chan gocv.Mat
	done      chan struct{}
	recording bool
	path      string
	dropped   atomic.Int64
}

// NewRecorder creates a Recorder writing into config.Dir.
func NewRecorder(config Config) *Recorder {
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	return &Recorder{config: config}
}

// Start opens a new timestamped clip for width x height frames.
func (r *Recorder) Start(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}

	if err := os.MkdirAll(r.config.Dir, 0755); err != nil {
		return fmt.Errorf("create clip dir: %w", err)
	}

	path := ClipPath(r.config.Dir, time.Now())
	writer, err := gocv.VideoWriterFile(path, fourCC, r.config.FPS, width, height, true)
	if err != nil {
		return fmt.Errorf("open clip %s: %w", path, err)
	}

	r.writer = writer
	r.path = path
	r.frames = make(chan gocv.Mat, r.config.QueueSize)
	r.done = make(chan struct{})
	r.recording = true
	r.dropped.Store(0)

	go r.encodeLoop(r.frames, r.done)

	log.Printf("record: started clip %s (%dx%d @ %.0f fps)", path, width, height, r.config.FPS)
	return nil
}

// Write enqueues a frame for encoding. The frame is cloned, so the caller
// keeps ownership of its Mat. If the queue is full the frame is dropped.
//
// The non-blocking send happens under the mutex: Stop closes the queue in
// the same critical section that flips recording, so a Write racing a Stop
// sees ErrNotRecording rather than a closed channel.
func (r *Recorder) Write(frame *gocv.Mat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return ErrNotRecording
	}

	clone := frame.Clone()
	select {
	case r.frames <- clone:
	default:
		clone.Close()
		r.dropped.Add(1)
	}
	return nil
}

// Stop finishes the current clip and returns its path plus the number of
// frames dropped due to encoder backpressure.
func (r *Recorder) Stop() (string, int64, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return "", 0, ErrNotRecording
	}
	done := r.done
	path := r.path
	r.recording = false
	close(r.frames)
	r.frames = nil
	r.mu.Unlock()

	<-done

	r.mu.Lock()
	err := r.writer.Close()
	r.writer = nil
	r.mu.Unlock()

	dropped := r.dropped.Load()
	if dropped > 0 {
		log.Printf("record: clip %s dropped %d frames", path, dropped)
	}
	return path, dropped, err
}

// IsRecording reports whether a clip is currently open.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Dropped returns the number of frames dropped in the current clip.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Recorder) encodeLoop(frames chan gocv.Mat, done chan struct{}) {
	defer close(done)
	for frame := range frames {
		if err := r.writer.Write(frame); err != nil {
			log.Printf("record: write frame: %v", err)
		}
		frame.Close()
	}
}

// ClipPath builds the timestamped file name for a clip started at t.
func ClipPath(dir string, t time.Time) string {
	return filepath.Join(dir, "morph-"+t.Format("20060102-150405")+".mp4")
}
