package morph

import (
	"image"
	"math"
)

// Barycentric slack at triangle edges. Shared edges between neighboring
// triangles would otherwise drop pixels that land exactly on the boundary.
const baryEps = 1e-3

// WarpTriangle resamples the source pixels under srcTri into the region of
// dst covered by dstTri. For every pixel inside dstTri's bounding box the
// inverse transform maps back into source space, the source is sampled with
// bilinear interpolation, and the pixel is written only when its barycentric
// coordinates w.r.t. dstTri are all within [0,1]. dst is mutated in place;
// src is read-only. Returns ErrSingularTransform when srcTri is degenerate.
func WarpTriangle(src, dst *image.NRGBA, srcTri, dstTri [3]Point) error {
	fwd, err := AffineFromTriangles(srcTri, dstTri)
	if err != nil {
		return err
	}
	inv, err := fwd.Invert()
	if err != nil {
		// Destination triangle has collapsed: nothing to draw this frame.
		return nil
	}

	b := dst.Bounds()
	minX := int(math.Floor(math.Min(dstTri[0].X, math.Min(dstTri[1].X, dstTri[2].X))))
	maxX := int(math.Ceil(math.Max(dstTri[0].X, math.Max(dstTri[1].X, dstTri[2].X))))
	minY := int(math.Floor(math.Min(dstTri[0].Y, math.Min(dstTri[1].Y, dstTri[2].Y))))
	maxY := int(math.Ceil(math.Max(dstTri[0].Y, math.Max(dstTri[1].Y, dstTri[2].Y))))
	if minX < b.Min.X {
		minX = b.Min.X
	}
	if minY < b.Min.Y {
		minY = b.Min.Y
	}
	if maxX > b.Max.X-1 {
		maxX = b.Max.X - 1
	}
	if maxY > b.Max.Y-1 {
		maxY = b.Max.Y - 1
	}
	if minX > maxX || minY > maxY {
		return nil
	}

	// Barycentric setup over the destination triangle.
	x0, y0 := dstTri[0].X, dstTri[0].Y
	x1, y1 := dstTri[1].X, dstTri[1].Y
	x2, y2 := dstTri[2].X, dstTri[2].Y
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -singularEps && det < singularEps {
		return nil
	}
	invDet := 1 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for y := minY; y <= maxY; y++ {
		dy := float64(y) - y2
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - x2
			w0 := (dy12*dx + dx21*dy) * invDet
			w1 := (dy20*dx + dx02*dy) * invDet
			w2 := 1 - w0 - w1
			if w0 < -baryEps || w1 < -baryEps || w2 < -baryEps ||
				w0 > 1+baryEps || w1 > 1+baryEps || w2 > 1+baryEps {
				continue
			}

			sp := inv.Apply(Point{X: float64(x), Y: float64(y)})
			r, g, bl, a := sampleBilinear(src, sp.X, sp.Y)

			i := dst.PixOffset(x, y)
			dst.Pix[i] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = bl
			dst.Pix[i+3] = a
		}
	}
	return nil
}

// sampleBilinear samples src at a fractional coordinate with bilinear
// filtering. Coordinates are clamped to the image bounds, so out-of-range
// reads resolve to the nearest edge pixel.
func sampleBilinear(src *image.NRGBA, x, y float64) (r, g, b, a uint8) {
	w := src.Rect.Dx()
	h := src.Rect.Dy()
	x -= float64(src.Rect.Min.X)
	y -= float64(src.Rect.Min.Y)

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > float64(w-1) {
		x = float64(w - 1)
	}
	if y > float64(h-1) {
		y = float64(h - 1)
	}

	x0 := int(x)
	y0 := int(y)
	x1 := x0 + 1
	y1 := y0 + 1
	if x1 > w-1 {
		x1 = w - 1
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	stride := src.Stride
	pix := src.Pix
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	fr := float64(pix[i00])*w00 + float64(pix[i10])*w10 + float64(pix[i01])*w01 + float64(pix[i11])*w11
	fg := float64(pix[i00+1])*w00 + float64(pix[i10+1])*w10 + float64(pix[i01+1])*w01 + float64(pix[i11+1])*w11
	fb := float64(pix[i00+2])*w00 + float64(pix[i10+2])*w10 + float64(pix[i01+2])*w01 + float64(pix[i11+2])*w11
	fa := float64(pix[i00+3])*w00 + float64(pix[i10+3])*w10 + float64(pix[i01+3])*w01 + float64(pix[i11+3])*w11

	return uint8(fr + 0.5), uint8(fg + 0.5), uint8(fb + 0.5), uint8(fa + 0.5)
}
