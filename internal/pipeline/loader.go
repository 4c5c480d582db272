// Package pipeline imports record exports into the store and aggregates
// timeline events into day and window summaries.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/source"
	"github.com/theirongolddev/dayline/internal/store"
)

// Sink receives parsed batches.
// Implementations: store.Store
type Sink interface {
	SaveBatch(ctx context.Context, filePath string, b model.Batch, fi store.FileInfo) error
	GetTrackedFiles(ctx context.Context) (map[string]store.FileInfo, error)
}

// ImportResult holds the outcome of an import run.
type ImportResult struct {
	TotalFiles  int
	ParsedFiles int
	Skipped     int // unchanged since the last import
	Records     int
	ParseErrors int
	FileErrors  int
	SaveErrors  int
	UserCount   int
}

// ProgressFunc is called during import to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Import discovers every export under dir, parses them with a bounded worker
// pool and saves each file's records in its own transaction.
func Import(ctx context.Context, dir string, sink Sink, log logrus.FieldLogger, progressFn ProgressFunc) (*ImportResult, error) {
	return runImport(ctx, dir, sink, log, progressFn, false)
}

func runImport(ctx context.Context, dir string, sink Sink, log logrus.FieldLogger, progressFn ProgressFunc, incremental bool) (*ImportResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &ImportResult{
		TotalFiles: len(files),
		UserCount:  source.CountUsers(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	toParse := files
	if incremental {
		tracked, err := sink.GetTrackedFiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading file tracker: %w", err)
		}
		toParse = changedFiles(files, tracked)
		result.Skipped = len(files) - len(toParse)
	}
	if len(toParse) == 0 {
		return result, nil
	}

	results := parseAll(toParse, func(n int) {
		if progressFn != nil {
			progressFn(n+result.Skipped, result.TotalFiles)
		}
	})

	for _, pr := range results {
		entry := log.WithField("file", pr.File.Path)
		if pr.Err != nil {
			result.FileErrors++
			entry.WithError(pr.Err).Warn("skipping unreadable export")
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		if pr.ParseErrors > 0 {
			entry.WithField("bad_lines", pr.ParseErrors).Warn("export has malformed lines")
		}

		info, err := os.Stat(pr.File.Path)
		if err != nil {
			result.FileErrors++
			continue
		}
		fi := store.FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		if err := sink.SaveBatch(ctx, pr.File.Path, pr.Batch, fi); err != nil {
			result.SaveErrors++
			entry.WithError(err).Error("saving export records")
			continue
		}
		result.Records += pr.Batch.Len()
		entry.WithFields(logrus.Fields{"kind": pr.File.Kind, "records": pr.Batch.Len()}).Debug("imported export")
	}

	return result, nil
}

// parseAll parses files in parallel. Results keep the order of files.
func parseAll(files []source.DiscoveredFile, onDone func(n int)) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				onDone(int(processed.Add(1)))
			}
		}()
	}
	wg.Wait()

	return results
}
