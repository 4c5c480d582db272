package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/dayline/internal/source"
	"github.com/theirongolddev/dayline/internal/store"
)

// ImportIncremental is Import that skips files whose mtime and size match
// what the store recorded on the previous run.
func ImportIncremental(ctx context.Context, dir string, sink Sink, log logrus.FieldLogger, progressFn ProgressFunc) (*ImportResult, error) {
	return runImport(ctx, dir, sink, log, progressFn, true)
}

func changedFiles(files []source.DiscoveredFile, tracked map[string]store.FileInfo) []source.DiscoveredFile {
	var changed []source.DiscoveredFile
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		prev, ok := tracked[f.Path]
		if ok && prev.MtimeNs == info.ModTime().UnixNano() && prev.SizeBytes == info.Size() {
			continue
		}
		changed = append(changed, f)
	}
	return changed
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "dayline")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dayline")
}

// DBPath returns the default path of the record database.
func DBPath() string {
	return filepath.Join(DataDir(), "dayline.db")
}
