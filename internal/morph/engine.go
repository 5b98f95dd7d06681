// Package morph implements real-time 2D face morphing: a Delaunay
// triangulation computed once per target is reused every frame to warp the
// target's facial geometry onto live landmarks, piecewise-affine per
// triangle, then alpha-composited back onto the frame with region masks.
package morph

import (
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/disintegration/imaging"
)

// DefaultFeatherSigma is the Gaussian sigma applied to mask boundaries.
// Tunable for visual quality only; correctness does not depend on it.
const DefaultFeatherSigma = 7.0

// Target is an immutable morph target: an image, its landmark set, and the
// triangulation derived from those landmarks. Swapped wholesale when the
// user selects a different target, never mutated.
type Target struct {
	Name      string
	Image     *image.NRGBA
	Landmarks LandmarkSet
	Triangles Triangulation
	Scheme    Scheme
}

// NewTarget builds a Target from an image and its landmark set, computing
// the Delaunay triangulation. Fails with ErrDegenerateGeometry when the
// landmarks cannot be triangulated.
func NewTarget(name string, img image.Image, landmarks LandmarkSet) (*Target, error) {
	tris, err := Triangulate(landmarks)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", name, err)
	}
	return &Target{
		Name:      name,
		Image:     imaging.Clone(img),
		Landmarks: landmarks,
		Triangles: tris,
		Scheme:    SchemeFor(len(landmarks)),
	}, nil
}

// Engine is the morphing capability: concrete variants (piecewise-affine
// today, alternative warp kernels later) are selected by configuration.
type Engine interface {
	// SetTarget switches the active target, triangulating the landmarks.
	// On failure the previously active target stays in effect.
	SetTarget(name string, img image.Image, landmarks LandmarkSet) error

	// ActiveTarget returns the current target, or nil before the first
	// successful SetTarget.
	ActiveTarget() *Target

	// Morph warps the active target onto the live landmarks and blends it
	// into the frame, returning a new frame. The input frame is never
	// mutated. On a fatal per-frame error (no target, cardinality
	// mismatch) the returned frame is an unmodified copy of the input.
	Morph(frame *image.NRGBA, live LandmarkSet, opts Options) (*image.NRGBA, error)
}

// Config holds Morpher tuning parameters.
type Config struct {
	// FeatherSigma is the Gaussian sigma for mask boundary feathering.
	// Zero disables feathering; negative means DefaultFeatherSigma.
	FeatherSigma float64
}

// Morpher is the piecewise-affine Engine implementation. The active target
// and its triangulation are swapped atomically under a mutex so frame
// processing never observes a target whose triangulation does not belong to
// it, and never races with a target change from another goroutine.
type Morpher struct {
	mu      sync.RWMutex
	feather float64
	target  *Target
}

// New creates a Morpher. No target is active until SetTarget succeeds.
func New(config Config) *Morpher {
	sigma := config.FeatherSigma
	if sigma < 0 {
		sigma = DefaultFeatherSigma
	}
	return &Morpher{feather: sigma}
}

// SetTarget triangulates the landmarks and installs the new target. A failed
// switch leaves the engine on the previous target so morphing always has a
// usable triangulation.
func (m *Morpher) SetTarget(name string, img image.Image, landmarks LandmarkSet) error {
	t, err := NewTarget(name, img, landmarks)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.target = t
	m.mu.Unlock()
	return nil
}

// SetFeatherSigma updates the mask feathering sigma for subsequent frames.
// Negative values select DefaultFeatherSigma; zero disables feathering. The
// active target and its triangulation are kept.
func (m *Morpher) SetFeatherSigma(sigma float64) {
	if sigma < 0 {
		sigma = DefaultFeatherSigma
	}
	m.mu.Lock()
	m.feather = sigma
	m.mu.Unlock()
}

// ClearTarget removes the active target. Subsequent Morph calls return the
// frame unchanged with ErrNoTarget until a new target is installed.
func (m *Morpher) ClearTarget() {
	m.mu.Lock()
	m.target = nil
	m.mu.Unlock()
}

// ActiveTarget returns the currently installed target.
func (m *Morpher) ActiveTarget() *Target {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.target
}

// Morph runs the full per-frame pipeline: per-triangle warp, mask build,
// composite. Individual triangle or region failures are logged and skipped;
// only a missing target or a landmark cardinality mismatch aborts the
// frame, in which case the original is returned unchanged.
func (m *Morpher) Morph(frame *image.NRGBA, live LandmarkSet, opts Options) (*image.NRGBA, error) {
	m.mu.RLock()
	target := m.target
	feather := m.feather
	m.mu.RUnlock()

	if target == nil {
		return imaging.Clone(frame), ErrNoTarget
	}
	if len(live) != len(target.Landmarks) {
		return imaging.Clone(frame), fmt.Errorf("target %q has %d landmarks, live face has %d: %w",
			target.Name, len(target.Landmarks), len(live), ErrLandmarkMismatch)
	}

	b := frame.Bounds()
	w := b.Dx()
	h := b.Dy()

	// Warp every triangle of the target onto the live geometry. Triangles
	// are disjoint in destination space, so iteration order is irrelevant.
	warped := image.NewNRGBA(b)
	for i, tri := range target.Triangles {
		srcTri := [3]Point{
			target.Landmarks[tri[0]],
			target.Landmarks[tri[1]],
			target.Landmarks[tri[2]],
		}
		dstTri := [3]Point{live[tri[0]], live[tri[1]], live[tri[2]]}
		if err := WarpTriangle(target.Image, warped, srcTri, dstTri); err != nil {
			log.Printf("morph: target %q triangle %d: %v", target.Name, i, err)
		}
	}

	face, err := FaceMask(live, w, h, feather)
	if err != nil {
		// Without a face mask there is nothing to blend into.
		return imaging.Clone(frame), fmt.Errorf("target %q: %w", target.Name, err)
	}

	effective := opts
	var eyes, mouth *Mask
	if opts.PreserveEyes {
		eyes, err = EyesMask(live, target.Scheme, w, h, feather/2)
		if err != nil {
			log.Printf("morph: target %q eyes mask: %v", target.Name, err)
			effective.PreserveEyes = false
		}
	}
	if opts.PreserveMouth {
		mouth, err = MouthMask(live, target.Scheme, w, h, feather/2)
		if err != nil {
			log.Printf("morph: target %q mouth mask: %v", target.Name, err)
			effective.PreserveMouth = false
		}
	}

	return Composite(frame, warped, face, eyes, mouth, effective), nil
}
