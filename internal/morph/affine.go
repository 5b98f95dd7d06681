package morph

import (
	"fmt"
	"math"
)

const singularEps = 1e-9

// Affine is a 2D affine transform stored as the top two rows of its 3x3
// matrix: x' = A*x + B*y + C, y' = D*x + E*y + F.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// AffineFromTriangles solves for the unique affine transform mapping the
// three src vertices onto the three dst vertices. The 3x3 system degenerates
// when src has zero area, which is reported as ErrSingularTransform.
func AffineFromTriangles(src, dst [3]Point) (Affine, error) {
	// Solve the linear system column-wise via Cramer's rule. The shared
	// determinant is twice the signed area of the source triangle.
	det := (src[1].X-src[0].X)*(src[2].Y-src[0].Y) -
		(src[2].X-src[0].X)*(src[1].Y-src[0].Y)
	if math.Abs(det) < singularEps {
		return Affine{}, fmt.Errorf("%w: source triangle has zero area", ErrSingularTransform)
	}
	inv := 1 / det

	u1 := src[1].X - src[0].X
	v1 := src[1].Y - src[0].Y
	u2 := src[2].X - src[0].X
	v2 := src[2].Y - src[0].Y

	t := Affine{}
	t.A = ((dst[1].X-dst[0].X)*v2 - (dst[2].X-dst[0].X)*v1) * inv
	t.B = ((dst[2].X-dst[0].X)*u1 - (dst[1].X-dst[0].X)*u2) * inv
	t.C = dst[0].X - t.A*src[0].X - t.B*src[0].Y
	t.D = ((dst[1].Y-dst[0].Y)*v2 - (dst[2].Y-dst[0].Y)*v1) * inv
	t.E = ((dst[2].Y-dst[0].Y)*u1 - (dst[1].Y-dst[0].Y)*u2) * inv
	t.F = dst[0].Y - t.D*src[0].X - t.E*src[0].Y
	return t, nil
}

// Invert returns the inverse transform, or ErrSingularTransform when the
// transform collapses the plane.
func (t Affine) Invert() (Affine, error) {
	det := t.A*t.E - t.B*t.D
	if math.Abs(det) < singularEps {
		return Affine{}, fmt.Errorf("%w: transform is not invertible", ErrSingularTransform)
	}
	inv := 1 / det
	out := Affine{
		A: t.E * inv,
		B: -t.B * inv,
		D: -t.D * inv,
		E: t.A * inv,
	}
	out.C = -(out.A*t.C + out.B*t.F)
	out.F = -(out.D*t.C + out.E*t.F)
	return out, nil
}

// Apply maps p through the transform.
func (t Affine) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.B*p.Y + t.C,
		Y: t.D*p.X + t.E*p.Y + t.F,
	}
}
