package morph

import (
	"math"
	"sort"
)

// Point is a 2D point in pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkSet is an ordered sequence of 2D points describing a face.
// Index i refers to the same anatomical point across every landmark set
// that is compared against this one.
type LandmarkSet []Point

// Subset returns the points at the given indices.
// The caller must ensure the indices are in range.
func (l LandmarkSet) Subset(indices []int) []Point {
	pts := make([]Point, len(indices))
	for i, idx := range indices {
		pts[i] = l[idx]
	}
	return pts
}

// Bounds returns the min and max corners of the landmark set.
func (l LandmarkSet) Bounds() (min, max Point) {
	if len(l) == 0 {
		return Point{}, Point{}
	}
	min, max = l[0], l[0]
	for _, p := range l[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// Triangle is a set of exactly 3 landmark indices. The same index triple is
// applied against both the target and the live landmark set every frame.
type Triangle [3]int

// Triangulation is an ordered sequence of triangles computed once over a
// reference landmark set and reused by index for every subsequent frame.
type Triangulation []Triangle

// cross returns the z component of (b-a) x (c-a). Positive when a, b, c
// wind counter-clockwise, zero when collinear.
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// triangleArea returns the absolute area of the triangle a, b, c.
func triangleArea(a, b, c Point) float64 {
	return math.Abs(cross(a, b, c)) / 2
}

// convexHull computes the convex hull of pts using the monotone chain
// algorithm. The hull is returned in counter-clockwise order without the
// closing point repeated. Collinear input collapses to a 2-point "hull".
func convexHull(pts []Point) []Point {
	if len(pts) < 3 {
		hull := make([]Point, len(pts))
		copy(hull, pts)
		return hull
	}

	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	var lower []Point
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []Point
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// polygonArea returns the absolute area of a simple polygon.
func polygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// expandAboutCentroid scales pts away from their centroid by factor.
// Used to grow eye/mouth regions slightly past their landmark outline.
func expandAboutCentroid(pts []Point, factor float64) []Point {
	if len(pts) == 0 {
		return nil
	}
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pts))
	cy /= float64(len(pts))

	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{
			X: cx + (p.X-cx)*factor,
			Y: cy + (p.Y-cy)*factor,
		}
	}
	return out
}
