package cli

import (
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ayusman/mukha/internal/app"
	"github.com/ayusman/mukha/internal/server"
	"github.com/ayusman/mukha/internal/store"
	"github.com/ayusman/mukha/internal/tray"
)

var (
	addrFlag     string
	cameraFlag   int
	headlessFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the morphing pipeline, web server, and tray icon",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&addrFlag, "addr", ":8080", "HTTP listen address")
	runCmd.Flags().IntVar(&cameraFlag, "camera", 0, "camera device ID")
	runCmd.Flags().BoolVar(&headlessFlag, "headless", false, "run without the system tray")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	dir, err := dataDir()
	if err != nil {
		return err
	}

	st, err := store.New(filepath.Join(dir, "mukha.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:     st,
		TargetDir: filepath.Join(dir, "targets"),
		ClipDir:   filepath.Join(dir, "clips"),
		CameraID:  cameraFlag,
	})

	if err := a.ImportTargets(); err != nil {
		log.Printf("import targets: %v", err)
	}
	if err := a.LoadTargets(); err != nil {
		return fmt.Errorf("load targets: %w", err)
	}
	a.LoadSettings()

	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer a.Stop()

	srv := server.New(server.Config{
		StaticDir: findWebDir(dir),
		Store:     st,
		Control:   a,
		Frames:    a,
	})
	log.Printf("Control panel on http://localhost%s", addrFlag)

	if headlessFlag {
		return srv.ListenAndServe(addrFlag)
	}

	go func() {
		if err := srv.ListenAndServe(addrFlag); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnRecord(func(recording bool) {
		if recording {
			if err := a.StartRecording(); err != nil {
				log.Printf("start recording: %v", err)
			}
			return
		}
		path, err := a.StopRecording()
		if err != nil {
			log.Printf("stop recording: %v", err)
			return
		}
		log.Printf("Saved clip %s", path)
	})
	t.OnOpenUI(func() {
		openBrowser("http://localhost" + addrFlag)
	})
	t.OnQuit(a.Stop)

	if id := a.ActiveTargetID(); id != "" {
		if tgt, ok := a.LoadedTarget(id); ok {
			t.SetTargetName(tgt.Name)
		}
	}

	// Blocks until the tray quits. Must run on the main thread.
	t.Run()
	return nil
}

func openBrowser(url string) {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		c = exec.Command("xdg-open", url)
	}
	if err := c.Start(); err != nil {
		log.Printf("open browser: %v", err)
	}
}
