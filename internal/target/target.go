// Package target loads morph targets: an image file paired with a sidecar
// JSON landmark record. Targets are immutable after load and swapped
// wholesale when the user selects a different one.
package target

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/ayusman/mukha/internal/morph"
)

// DefaultIconSize is the side length of the circular UI icon.
const DefaultIconSize = 70

// ErrInvalidRecord is returned when a landmark sidecar file fails validation.
var ErrInvalidRecord = errors.New("invalid target record")

// Record is the persisted landmark sidecar format: an ordered point list
// plus the image dimensions the points were annotated against.
type Record struct {
	Points [][2]float64 `json:"points"`
	Width  int          `json:"width"`
	Height int          `json:"height"`
}

// Target is a loaded morph target. Image is resized to the dimensions the
// landmarks were annotated against, so every landmark resolves to a valid
// pixel coordinate.
type Target struct {
	Name          string
	ImagePath     string
	LandmarksPath string
	Width         int
	Height        int
	Image         *image.NRGBA
	Landmarks     morph.LandmarkSet
	Icon          *image.NRGBA
}

// Load reads an image plus its landmark sidecar and validates them against
// each other.
func Load(imagePath, jsonPath string, iconSize int) (*Target, error) {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("load target image %s: %w", imagePath, err)
	}

	rec, err := readRecord(jsonPath)
	if err != nil {
		return nil, err
	}

	landmarks := make(morph.LandmarkSet, len(rec.Points))
	for i, p := range rec.Points {
		if p[0] < 0 || p[1] < 0 || p[0] > float64(rec.Width) || p[1] > float64(rec.Height) {
			return nil, fmt.Errorf("%w: point %d (%.1f, %.1f) outside %dx%d in %s",
				ErrInvalidRecord, i, p[0], p[1], rec.Width, rec.Height, jsonPath)
		}
		landmarks[i] = morph.Point{X: p[0], Y: p[1]}
	}

	resized := imaging.Resize(img, rec.Width, rec.Height, imaging.Lanczos)

	name := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	if iconSize <= 0 {
		iconSize = DefaultIconSize
	}

	return &Target{
		Name:          name,
		ImagePath:     imagePath,
		LandmarksPath: jsonPath,
		Width:         rec.Width,
		Height:        rec.Height,
		Image:         resized,
		Landmarks:     landmarks,
		Icon:          circleIcon(resized, iconSize),
	}, nil
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read landmarks %s: %w", path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidRecord, path, err)
	}
	if rec.Width <= 0 || rec.Height <= 0 {
		return nil, fmt.Errorf("%w: bad dimensions %dx%d in %s", ErrInvalidRecord, rec.Width, rec.Height, path)
	}
	if len(rec.Points) < 3 {
		return nil, fmt.Errorf("%w: only %d points in %s", ErrInvalidRecord, len(rec.Points), path)
	}
	return &rec, nil
}

// WriteRecord persists a landmark record next to its image, for the
// landmark extraction workflow.
func WriteRecord(path string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SidecarPath returns the landmark JSON path for an image file.
func SidecarPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + ".json"
}

// circleIcon renders a circular thumbnail of the target for the icon bar.
func circleIcon(img image.Image, size int) *image.NRGBA {
	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(imaging.Resize(img, size, size, imaging.Lanczos), 0, 0)
	return imaging.Clone(dc.Image())
}
