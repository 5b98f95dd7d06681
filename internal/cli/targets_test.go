package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindTargetPairs(t *testing.T) {
	dir := t.TempDir()

	files := map[string]bool{
		"anand.png":   true,  // has sidecar
		"meera.jpg":   true,  // has sidecar
		"orphan.png":  false, // no sidecar
		"notes.txt":   false,
		"stray.json":  false,
	}
	for name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"anand.json", "meera.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	pairs, err := findTargetPairs(dir)
	if err != nil {
		t.Fatalf("findTargetPairs() error = %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("found %d pairs, want 2: %v", len(pairs), pairs)
	}
	for _, p := range pairs {
		base := filepath.Base(p)
		if base != "anand.png" && base != "meera.jpg" {
			t.Errorf("unexpected pair %s", base)
		}
	}
}

func TestFindTargetPairs_MissingDir(t *testing.T) {
	if _, err := findTargetPairs("/nonexistent/path"); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")

	if err := os.WriteFile(src, []byte("pixels"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := copyFile(src, dst); err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pixels" {
		t.Errorf("copied content = %q", got)
	}
}

func TestFindWebDir_HomeFallback(t *testing.T) {
	base := t.TempDir()
	if got := findWebDir(base); got != "" {
		t.Errorf("findWebDir() = %q, want empty", got)
	}

	webDir := filepath.Join(base, "web")
	if err := os.MkdirAll(webDir, 0755); err != nil {
		t.Fatal(err)
	}
	if got := findWebDir(base); got != webDir {
		t.Errorf("findWebDir() = %q, want %q", got, webDir)
	}
}
