package morph

import (
	"fmt"
	"math"
	"sort"
)

const collinearEps = 1e-9

// Triangulate computes a Delaunay triangulation over the landmark set using
// the Bowyer-Watson incremental algorithm. The result is deterministic for a
// fixed input. Runs once per target, never per frame: only triangle
// coordinates change between frames, the index topology is reused.
func Triangulate(landmarks LandmarkSet) (Triangulation, error) {
	n := len(landmarks)
	if n < 3 {
		return nil, fmt.Errorf("%w: need at least 3 points, have %d", ErrDegenerateGeometry, n)
	}
	if allCollinear(landmarks) {
		return nil, fmt.Errorf("%w: all %d points are collinear", ErrDegenerateGeometry, n)
	}

	// Working point list: landmarks followed by 3 super-triangle vertices
	// enclosing the whole set.
	pts := make([]Point, n, n+3)
	copy(pts, landmarks)

	min, max := landmarks.Bounds()
	dx := max.X - min.X
	dy := max.Y - min.Y
	d := math.Max(dx, dy)
	if d == 0 {
		d = 1
	}
	midX := (min.X + max.X) / 2
	midY := (min.Y + max.Y) / 2
	pts = append(pts,
		Point{X: midX - 20*d, Y: midY - d},
		Point{X: midX, Y: midY + 20*d},
		Point{X: midX + 20*d, Y: midY - d},
	)

	tris := []Triangle{{n, n + 1, n + 2}}

	for i := 0; i < n; i++ {
		p := pts[i]

		// Triangles whose circumcircle contains p are invalidated.
		var bad []Triangle
		var keep []Triangle
		for _, t := range tris {
			if inCircumcircle(pts[t[0]], pts[t[1]], pts[t[2]], p) {
				bad = append(bad, t)
			} else {
				keep = append(keep, t)
			}
		}

		// Boundary of the hole: edges belonging to exactly one bad triangle.
		edgeCount := make(map[[2]int]int)
		for _, t := range bad {
			for _, e := range triangleEdges(t) {
				edgeCount[e]++
			}
		}

		tris = keep
		for e, c := range edgeCount {
			if c == 1 {
				tris = append(tris, Triangle{e[0], e[1], i})
			}
		}
	}

	// Strip triangles that touch the super-triangle vertices, then
	// canonicalize for determinism (map iteration above is unordered).
	var out Triangulation
	for _, t := range tris {
		if t[0] >= n || t[1] >= n || t[2] >= n {
			continue
		}
		sortTriangle(&t)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][2] < out[j][2]
	})

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no valid triangles produced", ErrDegenerateGeometry)
	}
	return out, nil
}

func allCollinear(pts LandmarkSet) bool {
	// Any triple with nonzero signed area proves the set is not collinear.
	// Anchor on the first two distinct points.
	var a, b Point
	a = pts[0]
	found := false
	for _, p := range pts[1:] {
		if p != a {
			b = p
			found = true
			break
		}
	}
	if !found {
		return true // all points coincide
	}
	for _, c := range pts {
		if math.Abs(cross(a, b, c)) > collinearEps {
			return false
		}
	}
	return true
}

// triangleEdges returns the triangle's edges with each vertex pair ordered
// low-to-high, so shared edges between neighboring triangles compare equal.
func triangleEdges(t Triangle) [3][2]int {
	e := [3][2]int{
		{t[0], t[1]},
		{t[1], t[2]},
		{t[2], t[0]},
	}
	for i := range e {
		if e[i][0] > e[i][1] {
			e[i][0], e[i][1] = e[i][1], e[i][0]
		}
	}
	return e
}

func sortTriangle(t *Triangle) {
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
}

// inCircumcircle reports whether p lies strictly inside the circumcircle of
// the triangle a, b, c.
func inCircumcircle(a, b, c, p Point) bool {
	// Ensure counter-clockwise winding so the determinant sign is stable.
	if cross(a, b, c) < 0 {
		b, c = c, b
	}

	ax := a.X - p.X
	ay := a.Y - p.Y
	bx := b.X - p.X
	by := b.Y - p.Y
	cx := c.X - p.X
	cy := c.Y - p.Y

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	return det > 0
}
