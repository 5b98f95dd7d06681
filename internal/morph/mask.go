package morph

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Region growth factors, mirroring the dilation the masks get so that
// preserved eyes/mouth fully cover eyelashes and lip edges.
const (
	eyeExpand   = 1.2
	mouthExpand = 1.1
)

// Mask is a single-channel weight image with values in [0,1]. Masks are
// built fresh from the live landmark set every frame and share the
// destination frame's dimensions.
type Mask struct {
	W, H int
	Pix  []float32
}

// NewMask returns an all-zero mask of the given size.
func NewMask(w, h int) *Mask {
	return &Mask{W: w, H: h, Pix: make([]float32, w*h)}
}

// At returns the weight at (x, y); coordinates outside the mask read as 0.
func (m *Mask) At(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return 0
	}
	return m.Pix[y*m.W+x]
}

// Set writes the weight at (x, y), ignoring out-of-range coordinates.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return
	}
	m.Pix[y*m.W+x] = v
}

// FaceMask builds the whole-face blend mask: the filled convex hull of all
// landmarks, feathered at the boundary when sigma > 0.
func FaceMask(landmarks LandmarkSet, w, h int, featherSigma float64) (*Mask, error) {
	if len(landmarks) < 3 {
		return nil, fmt.Errorf("%w: face hull needs at least 3 points, have %d",
			ErrInsufficientLandmarks, len(landmarks))
	}
	hull := convexHull(landmarks)
	m := fillPolygons(w, h, [][]Point{hull})
	if featherSigma > 0 {
		m = m.Feather(featherSigma)
	}
	return m, nil
}

// EyesMask builds the combined left+right eye mask from the scheme's eye
// contours, expanded slightly past the landmark outline. Used as a
// subtraction mask against the face mask, never as its own blend layer.
func EyesMask(landmarks LandmarkSet, scheme Scheme, w, h int, featherSigma float64) (*Mask, error) {
	if !covers(scheme.LeftEye, len(landmarks)) || !covers(scheme.RightEye, len(landmarks)) {
		return nil, fmt.Errorf("%w: scheme %q has no eye contours for %d landmarks",
			ErrInsufficientLandmarks, scheme.Name, len(landmarks))
	}
	left := expandAboutCentroid(convexHull(landmarks.Subset(scheme.LeftEye)), eyeExpand)
	right := expandAboutCentroid(convexHull(landmarks.Subset(scheme.RightEye)), eyeExpand)
	m := fillPolygons(w, h, [][]Point{left, right})
	if featherSigma > 0 {
		m = m.Feather(featherSigma)
	}
	return m, nil
}

// MouthMask builds the mouth/teeth mask from the scheme's lip contour.
func MouthMask(landmarks LandmarkSet, scheme Scheme, w, h int, featherSigma float64) (*Mask, error) {
	if !covers(scheme.Mouth, len(landmarks)) {
		return nil, fmt.Errorf("%w: scheme %q has no mouth contour for %d landmarks",
			ErrInsufficientLandmarks, scheme.Name, len(landmarks))
	}
	mouth := expandAboutCentroid(convexHull(landmarks.Subset(scheme.Mouth)), mouthExpand)
	m := fillPolygons(w, h, [][]Point{mouth})
	if featherSigma > 0 {
		m = m.Feather(featherSigma)
	}
	return m, nil
}

// Feather returns a Gaussian-blurred copy of the mask. Convolution of
// in-range weights stays in [0,1].
func (m *Mask) Feather(sigma float64) *Mask {
	gray := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for i, v := range m.Pix {
		gray.Pix[i] = uint8(v*255 + 0.5)
	}
	blurred := imaging.Blur(gray, sigma)
	out := NewMask(m.W, m.H)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			out.Pix[y*m.W+x] = float32(blurred.Pix[y*blurred.Stride+x*4]) / 255
		}
	}
	return out
}

// fillPolygons rasterizes the given polygons filled white on black and
// converts the result to a weight mask.
func fillPolygons(w, h int, polys [][]Point) *Mask {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	for _, poly := range polys {
		if len(poly) < 3 {
			continue
		}
		dc.NewSubPath()
		dc.MoveTo(poly[0].X, poly[0].Y)
		for _, p := range poly[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()
	}
	dc.Fill()

	img, ok := dc.Image().(*image.RGBA)
	m := NewMask(w, h)
	if !ok {
		return m
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.Pix[y*w+x] = float32(img.Pix[y*img.Stride+x*4]) / 255
		}
	}
	return m
}
