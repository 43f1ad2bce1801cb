// Package pipeline orchestrates a full archiving run: list the account
// timeline, download every video into a staging directory, and bundle the
// results into a zip archive.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"thirdcoast.systems/reeler/internal/archive"
	"thirdcoast.systems/reeler/internal/config"
	"thirdcoast.systems/reeler/internal/extract"
)

// downloadRetryDelay separates the two attempts of a failed download.
var downloadRetryDelay = 2 * time.Second

// LookupError reports that the account timeline could not be turned into
// downloadable videos.
type LookupError struct {
	Handle string
	Err    error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("lookup %s: %v", e.Handle, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// Failure records one video that could not be archived.
type Failure struct {
	Item extract.VideoItem
	Err  error
}

// Summary describes a finished run.
type Summary struct {
	Handle       string
	Listed       int
	Archived     int
	Failures     []Failure
	ArchivePath  string
	ArchiveBytes int64
	Elapsed      time.Duration

	// KeptDir is the staging directory left on disk when the final archive
	// could not be written. Empty otherwise.
	KeptDir string
}

// Run archives the timeline of cfg.Account into cfg.Output. Individual
// download failures do not abort the run; they are reported on the summary.
// When an error is returned alongside a non nil summary, the summary still
// describes everything that happened before the failure.
func Run(ctx context.Context, cfg *config.Config, ex extract.Extractor) (*Summary, error) {
	start := time.Now()
	summary, err := run(ctx, cfg, ex)
	if summary != nil {
		summary.Elapsed = time.Since(start)
	}
	return summary, err
}

func run(ctx context.Context, cfg *config.Config, ex extract.Extractor) (*Summary, error) {
	handle := cfg.Account
	if cfg.Output == "" {
		return nil, fmt.Errorf("no output path")
	}

	items, err := ex.ListVideos(ctx, handle, cfg.Limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &LookupError{Handle: handle, Err: err}
	}
	if len(items) == 0 {
		return nil, &LookupError{Handle: handle, Err: extract.ErrNoVideos}
	}
	if cfg.Limit > 0 && len(items) > cfg.Limit {
		items = items[:cfg.Limit]
	}

	slog.Info("listed timeline videos", "account", handle, "count", len(items))

	stageDir, err := os.MkdirTemp("", fmt.Sprintf("reeler-%s-", handle))
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	results := downloadAll(ctx, ex, items, stageDir, cfg.Concurrency)

	if ctx.Err() != nil {
		os.RemoveAll(stageDir)
		return nil, ctx.Err()
	}

	summary := &Summary{Handle: handle, Listed: len(items)}
	entries := make([]archive.Entry, 0, len(items))
	for i, item := range items {
		if results[i].err != nil {
			summary.Failures = append(summary.Failures, Failure{Item: item, Err: results[i].err})
			continue
		}
		name := fmt.Sprintf("%s_%s%s", handle, item.ID, strings.ToLower(filepath.Ext(results[i].path)))
		entries = append(entries, archive.Entry{Path: results[i].path, Name: name})
	}
	summary.Archived = len(entries)

	if len(entries) == 0 {
		os.RemoveAll(stageDir)
		return summary, &LookupError{Handle: handle, Err: errors.New("no videos downloaded")}
	}

	size, err := archive.Write(cfg.Output, entries)
	if err != nil {
		summary.KeptDir = stageDir
		slog.Warn("archive write failed, keeping staged downloads", "dir", stageDir, "error", err)
		return summary, err
	}
	os.RemoveAll(stageDir)

	summary.ArchivePath = cfg.Output
	summary.ArchiveBytes = size
	return summary, nil
}

type downloadResult struct {
	path string
	err  error
}

// downloadAll fetches every item into stageDir using a bounded worker pool.
// Results land in per item slots so the caller sees them in listing order no
// matter which download finishes first.
func downloadAll(ctx context.Context, ex extract.Extractor, items []extract.VideoItem, stageDir string, workers int) []downloadResult {
	results := make([]downloadResult, len(items))
	jobs := make(chan int)

	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path, err := downloadWithRetry(ctx, ex, items[i], stageDir)
				results[i] = downloadResult{path: path, err: err}
				if err == nil {
					slog.Info("downloaded video", "video_id", items[i].ID, "path", path)
				}
			}
		}()
	}

feed:
	for i := range items {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// downloadWithRetry fetches one video, retrying once after a short delay.
func downloadWithRetry(ctx context.Context, ex extract.Extractor, item extract.VideoItem, destDir string) (string, error) {
	path, err := ex.DownloadVideo(ctx, item, destDir)
	if err == nil || ctx.Err() != nil {
		return path, err
	}

	slog.Warn("download failed, retrying", "video_id", item.ID, "error", err)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(downloadRetryDelay):
	}

	return ex.DownloadVideo(ctx, item, destDir)
}
