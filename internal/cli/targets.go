package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ayusman/mukha/internal/store"
	"github.com/ayusman/mukha/internal/target"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Manage morph targets",
}

var targetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered morph targets",
	RunE:  runTargetsList,
}

var targetsImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import image + landmark pairs from a directory",
	Long: `Import copies every image with a matching .json landmark sidecar from
the given directory into the data directory and registers it in the
database. Already-registered names are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runTargetsImport,
}

func init() {
	targetsCmd.AddCommand(targetsListCmd)
	targetsCmd.AddCommand(targetsImportCmd)
	rootCmd.AddCommand(targetsCmd)
}

func openStore() (*store.Store, string, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, "", err
	}
	st, err := store.New(filepath.Join(dir, "mukha.db"))
	if err != nil {
		return nil, "", fmt.Errorf("open store: %w", err)
	}
	return st, dir, nil
}

func runTargetsList(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	targets, err := st.Targets().List()
	if err != nil {
		return fmt.Errorf("list targets: %w", err)
	}
	if len(targets) == 0 {
		fmt.Println("No targets registered. Use 'mukha targets import' to add some.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSIZE\tLANDMARKS\tACTIVE\tCREATED")
	for _, t := range targets {
		active := ""
		if t.Active {
			active = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%d\t%s\t%s\n",
			t.ID, t.Name, t.Width, t.Height, t.LandmarkCount, active,
			t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runTargetsImport(cmd *cobra.Command, args []string) error {
	st, dir, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	srcDir := args[0]
	targetDir := filepath.Join(dir, "targets")
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return fmt.Errorf("create target directory: %w", err)
	}

	pairs, err := findTargetPairs(srcDir)
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		fmt.Printf("No image + .json pairs found in %s\n", srcDir)
		return nil
	}

	bar := progressbar.NewOptions(len(pairs),
		progressbar.OptionSetDescription("Importing targets"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	imported := 0
	for _, imagePath := range pairs {
		bar.Add(1)

		dstImage := filepath.Join(targetDir, filepath.Base(imagePath))
		dstJSON := target.SidecarPath(dstImage)
		if err := copyFile(imagePath, dstImage); err != nil {
			return err
		}
		if err := copyFile(target.SidecarPath(imagePath), dstJSON); err != nil {
			return err
		}

		tgt, err := target.Load(dstImage, dstJSON, target.DefaultIconSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\nskipping %s: %v\n", filepath.Base(imagePath), err)
			continue
		}

		if _, err := st.Targets().GetByName(tgt.Name); err == nil {
			continue // already registered
		}

		rec := &store.Target{
			ID:            uuid.New().String(),
			Name:          tgt.Name,
			ImagePath:     dstImage,
			LandmarksPath: dstJSON,
			Width:         tgt.Width,
			Height:        tgt.Height,
			LandmarkCount: len(tgt.Landmarks),
		}
		if err := st.Targets().Create(rec); err != nil {
			return fmt.Errorf("register target %q: %w", tgt.Name, err)
		}
		imported++
	}

	fmt.Printf("\nImported %d of %d targets into %s\n", imported, len(pairs), targetDir)
	return nil
}

// findTargetPairs returns image paths in dir that have a .json sidecar.
func findTargetPairs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var pairs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			continue
		}
		imagePath := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(target.SidecarPath(imagePath)); err == nil {
			pairs = append(pairs, imagePath)
		}
	}
	return pairs, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return out.Close()
}
