package cli

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/ayusman/mukha/internal/detector"
	"github.com/ayusman/mukha/internal/target"
)

var previewFlag string

var landmarksCmd = &cobra.Command{
	Use:   "landmarks <image>",
	Short: "Extract face landmarks from an image into a sidecar file",
	Long: `Landmarks runs face detection on a still image and writes the detected
landmark points to a .json sidecar next to it, producing the pair the
'targets import' command expects.`,
	Args: cobra.ExactArgs(1),
	RunE: runLandmarks,
}

func init() {
	landmarksCmd.Flags().StringVar(&previewFlag, "preview", "",
		"write a PNG with the landmarks drawn over the image")
	rootCmd.AddCommand(landmarksCmd)
}

func runLandmarks(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	mat := gocv.IMRead(imagePath, gocv.IMReadColor)
	if mat.Empty() {
		return fmt.Errorf("read image %s: empty or unsupported format", imagePath)
	}
	defer mat.Close()

	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxFaces:      1,
		MinConfidence: 0.5,
	})
	if err != nil {
		return fmt.Errorf("start detector: %w", err)
	}
	defer det.Close()

	faces, err := det.Detect(&mat)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	if len(faces) == 0 {
		return fmt.Errorf("no face found in %s", imagePath)
	}

	width, height := mat.Cols(), mat.Rows()
	landmarks := faces[0].ToPixels(width, height)

	rec := &target.Record{
		Points: make([][2]float64, len(landmarks)),
		Width:  width,
		Height: height,
	}
	for i, p := range landmarks {
		rec.Points[i] = [2]float64{p.X, p.Y}
	}

	sidecar := target.SidecarPath(imagePath)
	if err := target.WriteRecord(sidecar, rec); err != nil {
		return fmt.Errorf("write landmarks: %w", err)
	}
	fmt.Printf("Wrote %d landmarks to %s (score %.2f)\n", len(landmarks), sidecar, faces[0].Score)

	if previewFlag != "" {
		if err := writePreview(imagePath, rec, previewFlag); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		fmt.Printf("Wrote preview to %s\n", previewFlag)
	}
	return nil
}

// writePreview draws the landmark points over the source image.
func writePreview(imagePath string, rec *target.Record, outPath string) error {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return err
	}

	dc := gg.NewContext(rec.Width, rec.Height)
	dc.DrawImage(imaging.Resize(img, rec.Width, rec.Height, imaging.Lanczos), 0, 0)
	dc.SetRGB(0, 1, 0)
	for _, p := range rec.Points {
		dc.DrawCircle(p[0], p[1], 1.5)
		dc.Fill()
	}
	return dc.SavePNG(outPath)
}
