// Package extract discovers and fetches the videos of an account timeline
// through an external yt-dlp binary.
package extract

import "context"

// VideoItem is one video discovered on an account timeline.
type VideoItem struct {
	ID    string
	URL   string
	Title string
}

// Extractor defines the interface for timeline extraction.
type Extractor interface {
	// ListVideos returns the videos of the account timeline, newest first,
	// with duplicate IDs removed. A positive limit caps the result.
	ListVideos(ctx context.Context, handle string, limit int) ([]VideoItem, error)

	// DownloadVideo fetches one video into destDir and returns the path of
	// the produced media file.
	DownloadVideo(ctx context.Context, item VideoItem, destDir string) (string, error)
}
