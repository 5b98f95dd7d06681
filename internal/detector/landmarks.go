// Package detector provides face landmark detection interfaces and types.
package detector

import "github.com/ayusman/mukha/internal/morph"

// NumLandmarks is the point count of the MediaPipe Face Mesh.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const NumLandmarks = 468

// Point3D represents a detected landmark in normalized image space: x and y
// in [0,1] relative to frame width and height, z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks holds one detected face's landmarks in normalized
// coordinates, ordered by the provider's fixed indexing scheme.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// ToPixels projects the normalized landmarks onto a width x height frame,
// producing the 2D pixel-space landmark set the morph engine works with.
func (f *FaceLandmarks) ToPixels(width, height int) morph.LandmarkSet {
	lms := make(morph.LandmarkSet, len(f.Points))
	for i, p := range f.Points {
		lms[i] = morph.Point{
			X: p.X * float64(width),
			Y: p.Y * float64(height),
		}
	}
	return lms
}

// FromPixels converts a pixel-space landmark set to normalized coordinates.
// Used by the mock detector and the landmark extraction workflow.
func FromPixels(lms morph.LandmarkSet, width, height int) FaceLandmarks {
	f := FaceLandmarks{
		Points: make([]Point3D, len(lms)),
		Score:  1,
	}
	for i, p := range lms {
		f.Points[i] = Point3D{
			X: p.X / float64(width),
			Y: p.Y / float64(height),
		}
	}
	return f
}
