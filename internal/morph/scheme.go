package morph

// Scheme describes which landmark indices outline the facial regions for a
// given landmark layout. Both landmark sets in a morph must follow the same
// scheme; the scheme is picked from the point count.
type Scheme struct {
	Name string
	// Points is the expected landmark count for this scheme.
	Points int
	// Region outlines. The whole-face mask uses the convex hull of all
	// points, so no face-oval subset is needed here.
	LeftEye  []int
	RightEye []int
	Mouth    []int
}

// FaceMesh is the MediaPipe Face Mesh layout with 468 landmarks.
// Eye contours and the inner-lip ring follow the canonical mesh indices.
var FaceMesh = Scheme{
	Name:   "facemesh",
	Points: 468,
	LeftEye: []int{
		33, 7, 163, 144, 145, 153, 154, 155, 133,
		173, 157, 158, 159, 160, 161, 246,
	},
	RightEye: []int{
		362, 382, 381, 380, 374, 373, 390, 249,
		263, 466, 388, 387, 386, 385, 384, 398,
	},
	Mouth: []int{
		78, 191, 80, 81, 82, 13, 312, 311, 310, 415, 308,
		95, 88, 178, 87, 14, 317, 402, 318, 324,
	},
}

// Classic68 is the 68-point layout used by dlib-style annotators:
// jaw 0-16, brows 17-26, nose 27-35, eyes 36-47, mouth 48-67.
var Classic68 = Scheme{
	Name:     "classic68",
	Points:   68,
	LeftEye:  []int{36, 37, 38, 39, 40, 41},
	RightEye: []int{42, 43, 44, 45, 46, 47},
	Mouth:    []int{48, 49, 50, 51, 52, 53, 54, 55, 56, 57, 58, 59, 60, 61, 62, 63, 64, 65, 66, 67},
}

var schemes = []Scheme{FaceMesh, Classic68}

// SchemeFor returns the scheme matching the given landmark count.
// Unknown counts get an anonymous scheme with no region subsets: the face
// hull still works, but eye/mouth preservation reports
// ErrInsufficientLandmarks.
func SchemeFor(points int) Scheme {
	for _, s := range schemes {
		if s.Points == points {
			return s
		}
	}
	return Scheme{Name: "custom", Points: points}
}

// covers reports whether every index in the subset resolves within a
// landmark set of n points. An empty subset covers nothing.
func covers(indices []int, n int) bool {
	if len(indices) == 0 {
		return false
	}
	for _, idx := range indices {
		if idx < 0 || idx >= n {
			return false
		}
	}
	return true
}
