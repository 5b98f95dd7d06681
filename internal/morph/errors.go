package morph

import "errors"

var (
	// ErrDegenerateGeometry is returned when a landmark set cannot be
	// triangulated (fewer than 3 points, or all points collinear).
	ErrDegenerateGeometry = errors.New("degenerate geometry: triangulation undefined")

	// ErrSingularTransform is returned when a triangle warp's linear system
	// has no solution (zero-area source triangle).
	ErrSingularTransform = errors.New("singular affine transform")

	// ErrInsufficientLandmarks is returned when a mask region's landmark
	// indices are not available in the given landmark set.
	ErrInsufficientLandmarks = errors.New("insufficient landmarks for region")

	// ErrLandmarkMismatch is returned when live and target landmark sets
	// have different cardinality and cannot be matched triangle-by-triangle.
	ErrLandmarkMismatch = errors.New("landmark cardinality mismatch")

	// ErrNoTarget is returned when morphing is requested before any target
	// has been successfully set.
	ErrNoTarget = errors.New("no morph target set")
)
