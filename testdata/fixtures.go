// Package testdata provides synthetic faces and target files for tests, so
// no binary assets or camera hardware are needed.
package testdata

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/ayusman/mukha/internal/morph"
	"github.com/ayusman/mukha/internal/target"
)

// Face68 builds a synthetic 68-point landmark set centered on (cx, cy):
// jaw 0-16, brows 17-26, nose 27-35, eyes 36-47, mouth 48-67.
func Face68(cx, cy, scale float64) morph.LandmarkSet {
	rx := 60 * scale
	ry := 80 * scale
	lms := make(morph.LandmarkSet, 68)

	for i := 0; i <= 16; i++ {
		t := math.Pi * float64(i) / 16
		lms[i] = morph.Point{X: cx - rx*math.Cos(t), Y: cy + ry*math.Sin(t)*0.95}
	}
	for i := 0; i < 5; i++ {
		f := float64(i) / 4
		lms[17+i] = morph.Point{X: cx - rx*(0.75-0.5*f), Y: cy - ry*0.45}
		lms[22+i] = morph.Point{X: cx + rx*(0.25+0.5*f), Y: cy - ry*0.45}
	}
	for i := 0; i < 4; i++ {
		lms[27+i] = morph.Point{X: cx, Y: cy - ry*0.3 + ry*0.15*float64(i)}
	}
	for i := 0; i < 5; i++ {
		lms[31+i] = morph.Point{X: cx + rx*(0.2*float64(i)-0.4)*0.5, Y: cy + ry*0.22}
	}
	for i := 0; i < 6; i++ {
		ang := 2 * math.Pi * float64(i) / 6
		ex := rx * 0.16 * math.Cos(ang)
		ey := ry * 0.08 * math.Sin(ang)
		lms[36+i] = morph.Point{X: cx - rx*0.45 + ex, Y: cy - ry*0.2 + ey}
		lms[42+i] = morph.Point{X: cx + rx*0.45 + ex, Y: cy - ry*0.2 + ey}
	}
	for i := 0; i < 12; i++ {
		ang := 2 * math.Pi * float64(i) / 12
		lms[48+i] = morph.Point{X: cx + rx*0.35*math.Cos(ang), Y: cy + ry*0.55 + ry*0.12*math.Sin(ang)}
	}
	for i := 0; i < 8; i++ {
		ang := 2 * math.Pi * float64(i) / 8
		lms[60+i] = morph.Point{X: cx + rx*0.22*math.Cos(ang), Y: cy + ry*0.55 + ry*0.06*math.Sin(ang)}
	}
	return lms
}

// GradientFrame builds a deterministic test frame whose pixel values encode
// their coordinates.
func GradientFrame(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

// WriteTargetPair writes a 200x200 PNG plus its landmark sidecar JSON into
// dir and returns both paths. The landmarks are a Face68 set centered in
// the image.
func WriteTargetPair(dir, name string) (imagePath, jsonPath string, err error) {
	imagePath = filepath.Join(dir, name+".png")
	jsonPath = filepath.Join(dir, name+".json")

	f, err := os.Create(imagePath)
	if err != nil {
		return "", "", err
	}
	if err := png.Encode(f, GradientFrame(200, 200)); err != nil {
		f.Close()
		return "", "", fmt.Errorf("encode %s: %w", imagePath, err)
	}
	if err := f.Close(); err != nil {
		return "", "", err
	}

	lms := Face68(100, 100, 1)
	rec := &target.Record{Width: 200, Height: 200, Points: make([][2]float64, len(lms))}
	for i, p := range lms {
		rec.Points[i] = [2]float64{p.X, p.Y}
	}
	if err := target.WriteRecord(jsonPath, rec); err != nil {
		return "", "", err
	}
	return imagePath, jsonPath, nil
}
