package delivery

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/geovetas/alteration-mapper-cli/internal/pipeline"
	"github.com/geovetas/alteration-mapper-cli/internal/utils"
	"github.com/gocarina/gocsv"
)

type ManifestEntry struct {
	Artifact  string    `csv:"artifact"`
	Path      string    `csv:"path"`
	CreatedAt time.Time `csv:"created_at"`
}

// writeManifest records every artifact a run produced, so downstream GIS work
// can pick up the products without scanning the output folder.
func writeManifest(outputDir, base string, result pipeline.Result) (string, error) {
	now := time.Now()
	entries := make([]*ManifestEntry, 0, len(result))
	for _, name := range utils.GetSortedKeys(result) {
		entries = append(entries, &ManifestEntry{
			Artifact:  name,
			Path:      result[name],
			CreatedAt: now,
		})
	}

	path := filepath.Join(outputDir, fmt.Sprintf("%s_manifest_%s.csv", base, now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating manifest %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&entries, f); err != nil {
		return "", fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return path, nil
}
