package target

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// LoadDir loads every image+JSON pair in a folder, sorted by name. Pairs
// that fail to load are logged and skipped so one broken target cannot take
// down the rest.
func LoadDir(dir string, iconSize int) ([]*Target, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read target dir %s: %w", dir, err)
	}

	var targets []*Target
	for _, entry := range entries {
		if entry.IsDir() || !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		imagePath := filepath.Join(dir, entry.Name())
		jsonPath := SidecarPath(imagePath)
		if _, err := os.Stat(jsonPath); err != nil {
			log.Printf("target: no landmark file for %s, skipping", entry.Name())
			continue
		}

		t, err := Load(imagePath, jsonPath, iconSize)
		if err != nil {
			log.Printf("target: load %s: %v", entry.Name(), err)
			continue
		}
		targets = append(targets, t)
		log.Printf("target: loaded %q (%d landmarks)", t.Name, len(t.Landmarks))
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets, nil
}
