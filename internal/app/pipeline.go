package app

import (
	"errors"
	"image"
	"log"
	"time"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/ayusman/mukha/internal/detector"
	"github.com/ayusman/mukha/internal/morph"
)

// runPipeline is the main loop that processes frames from the camera.
// It manages the state transitions between idle and active modes based on
// motion detection.
//
// Pipeline logic:
// 1. Start in idle mode (idleFPS=5), publishing raw preview frames
// 2. On motion detected, switch to active mode (activeFPS=15)
// 3. Run face detection
// 4. Morph every detected face against the active target
// 5. Publish the composited frame for the stream and websocket handlers
// 6. Feed the composited frame to the recorder when a clip is open
// 7. After 2s no motion, switch back to idle mode
func (a *App) runPipeline() {
	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stopCh:
			return
		case <-ticker.C:
			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			// Step 1: Motion detection drives the frame rate.
			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to active mode")
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					a.Camera().SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
					log.Println("Switched to idle mode")
				}
			}

			// Idle or disabled: publish the raw preview and move on.
			if !activeMode || !a.IsEnabled() {
				a.publishMat(frame, nil)
				frame.Close()
				continue
			}

			// Step 2: Face detection.
			faces, err := a.Detector().Detect(frame)
			if err != nil {
				log.Printf("Error detecting faces: %v", err)
				a.publishMat(frame, nil)
				frame.Close()
				continue
			}

			// Step 3: Morph each face against the active target.
			out := a.morphFrame(frame, faces)
			if out == nil {
				a.publishMat(frame, faces)
				frame.Close()
				continue
			}
			frame.Close()

			// Step 4: Publish and record the composited frame.
			mat, err := nrgbaToBGR(out)
			if err != nil {
				log.Printf("Error converting frame: %v", err)
				continue
			}
			if a.recorder.IsRecording() {
				if err := a.recorder.Write(&mat); err != nil {
					log.Printf("Error recording frame: %v", err)
				}
			}
			a.publishMat(&mat, faces)
			mat.Close()
		}
	}
}

// morphFrame runs the morph engine over every detected face, chaining the
// output so multiple faces all end up composited into one frame.
func (a *App) morphFrame(frame *gocv.Mat, faces []detector.FaceLandmarks) *image.NRGBA {
	img, err := matToNRGBA(frame)
	if err != nil {
		log.Printf("Error decoding frame: %v", err)
		return nil
	}
	if len(faces) == 0 {
		return img
	}

	b := img.Bounds()
	opts := a.Options()
	current := img
	for i := range faces {
		live := faces[i].ToPixels(b.Dx(), b.Dy())
		out, err := a.morpher.Morph(current, live, opts)
		if err != nil {
			if !errors.Is(err, morph.ErrNoTarget) {
				log.Printf("Morph face %d: %v", i, err)
			}
			continue
		}
		current = out
	}
	return current
}

// publishMat encodes a frame as JPEG and publishes it with the faces
// detected in it.
func (a *App) publishMat(mat *gocv.Mat, faces []detector.FaceLandmarks) {
	buf, err := gocv.IMEncode(".jpg", *mat)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return
	}
	defer buf.Close()

	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())
	a.publishFrame(jpeg, faces)
}

// matToNRGBA converts a BGR camera frame to the NRGBA format the morph
// engine works in.
func matToNRGBA(mat *gocv.Mat) (*image.NRGBA, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

// nrgbaToBGR converts a composited frame back to a BGR Mat for encoding
// and recording.
func nrgbaToBGR(img *image.NRGBA) (gocv.Mat, error) {
	rgba, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}
