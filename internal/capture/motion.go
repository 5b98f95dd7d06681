package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gate tuning. Frames are blurred before differencing so sensor
// noise and JPEG artifacts don't register as motion.
const (
	// motionBlurKernel is the Gaussian kernel side length.
	motionBlurKernel = 21
	// motionPixelDelta is the per-pixel grayscale delta that counts a
	// pixel as changed.
	motionPixelDelta = 25
)

// MotionDetector gates the morph pipeline: face detection and warping are
// expensive, so the pipeline runs at the idle rate until enough of the
// frame changes between captures. The score is the percentage of pixels
// whose blurred grayscale value moved by more than motionPixelDelta.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	baseline  gocv.Mat
	primed    bool
}

// NewMotionDetector creates a detector that reports motion when more than
// threshold percent of the frame changed (1.0 means 1%).
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares a frame against the previous one and reports whether the
// changed-pixel percentage exceeds the threshold, along with the
// percentage itself. The first frame after creation or Reset only primes
// the baseline and never reports motion.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := grayBlur(frame)
	defer blurred.Close()

	if !m.primed {
		blurred.CopyTo(&m.baseline)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.baseline, &diff)

	changed := gocv.NewMat()
	defer changed.Close()
	gocv.Threshold(diff, &changed, motionPixelDelta, 255, gocv.ThresholdBinary)

	total := changed.Rows() * changed.Cols()
	pct := float64(gocv.CountNonZero(changed)) / float64(total) * 100.0

	blurred.CopyTo(&m.baseline)
	return pct > m.threshold, pct
}

// grayBlur converts a frame to blurred grayscale, the representation all
// comparisons run on.
func grayBlur(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	kernel := image.Point{X: motionBlurKernel, Y: motionBlurKernel}
	gocv.GaussianBlur(gray, &blurred, kernel, 0, 0, gocv.BorderDefault)
	return blurred
}

// Reset discards the baseline so the next frame primes a fresh one, e.g.
// after the camera reopens or the target scene changes wholesale.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

// Close releases the baseline frame. The detector re-primes itself if
// Detect is called again afterwards.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropBaseline()
}

func (m *MotionDetector) dropBaseline() {
	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold adjusts the changed-pixel percentage that counts as motion.
// Non-positive values are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}
