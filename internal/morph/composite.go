package morph

import "image"

// Options controls per-frame blending.
type Options struct {
	// Alpha is the blend factor: 0 leaves the original frame untouched,
	// 1 shows the fully warped target inside the blend mask.
	Alpha float64
	// PreserveEyes subtracts the eyes mask from the blend region so the
	// live eyes show through unmorphed.
	PreserveEyes bool
	// PreserveMouth does the same for the mouth/teeth region.
	PreserveMouth bool
}

// Composite alpha-blends the warped target onto the original frame.
//
// The effective per-pixel weight is faceMask x (1-eyes) x (1-mouth), with the
// eye/mouth terms applied only when the corresponding preserve flag is set
// (a nil mask counts as empty). Each output channel is
// original*(1-alpha*m) + warped*(alpha*m); the single formula covers both the
// intensity blend and the spatial blend. The original frame is never
// mutated; a new frame is returned. Alpha 0 reproduces the original exactly.
func Composite(original, warped *image.NRGBA, face, eyes, mouth *Mask, opts Options) *image.NRGBA {
	b := original.Bounds()
	out := image.NewNRGBA(b)

	alpha := opts.Alpha
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			mx := x - b.Min.X
			my := y - b.Min.Y

			m := float64(face.At(mx, my))
			if opts.PreserveEyes && eyes != nil {
				m *= 1 - float64(eyes.At(mx, my))
			}
			if opts.PreserveMouth && mouth != nil {
				m *= 1 - float64(mouth.At(mx, my))
			}
			if m < 0 {
				m = 0
			}
			if m > 1 {
				m = 1
			}

			w := alpha * m
			oi := original.PixOffset(x, y)
			wi := warped.PixOffset(x, y)
			ti := out.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				ov := float64(original.Pix[oi+c])
				wv := float64(warped.Pix[wi+c])
				out.Pix[ti+c] = uint8(ov*(1-w) + wv*w + 0.5)
			}
			// Only color blends. The warped layer is transparent outside
			// its triangles, so blending alpha would punch see-through
			// seams where the feathered mask overhangs them.
			out.Pix[ti+3] = original.Pix[oi+3]
		}
	}
	return out
}
