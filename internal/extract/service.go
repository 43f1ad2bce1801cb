package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gabriel-vasile/mimetype"

	"thirdcoast.systems/reeler/internal/account"
	"thirdcoast.systems/reeler/pkg/ytdlp"
)

// bestFormat is the selector behind the "best" preset. It prefers a download
// that is already an mp4 and needs no remux before falling back to whatever
// the platform still serves.
const bestFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"

// allowedExtensions are the media containers accepted into an archive.
var allowedExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
}

// timelineClient is the part of ytdlp.Client the service uses.
type timelineClient interface {
	ListFlat(ctx context.Context, url string, limit int) ([]ytdlp.FlatEntry, error)
	DownloadInto(ctx context.Context, url string, destDir string, stem string, opts ytdlp.DownloadOptions) (string, error)
}

// Service extracts timeline videos through a yt-dlp client.
type Service struct {
	client      timelineClient
	quality     string
	maxFilesize string
}

// NewService creates an extraction service on top of client. quality is the
// "best" preset or a raw yt-dlp format selector passed through verbatim;
// maxFilesize is an optional per video size cap such as "500m".
func NewService(client *ytdlp.Client, quality string, maxFilesize string) *Service {
	return &Service{
		client:      client,
		quality:     quality,
		maxFilesize: maxFilesize,
	}
}

// ListVideos lists the media timeline of handle. The x.com timeline is tried
// first, then the twitter.com alias; the first candidate that yields entries
// wins and later ones are never touched.
func (s *Service) ListVideos(ctx context.Context, handle string, limit int) ([]VideoItem, error) {
	var lastErr error
	for _, timelineURL := range account.MediaTimelineURLs(handle) {
		entries, err := s.client.ListFlat(ctx, timelineURL, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if len(entries) == 0 {
			continue
		}
		return collectItems(entries, limit), nil
	}

	if lastErr != nil {
		return nil, classify(lastErr)
	}
	return nil, ErrNoVideos
}

// collectItems converts flat entries to items, dropping duplicate IDs while
// preserving timeline order.
func collectItems(entries []ytdlp.FlatEntry, limit int) []VideoItem {
	seen := mapset.NewSet[string]()
	items := make([]VideoItem, 0, len(entries))

	for _, entry := range entries {
		if !seen.Add(entry.ID) {
			continue
		}
		items = append(items, VideoItem{ID: entry.ID, URL: entry.URL, Title: entry.Title})
		if limit > 0 && len(items) == limit {
			break
		}
	}

	return items
}

// DownloadVideo fetches item into destDir under a deterministic stem derived
// from the video ID and verifies the produced container is one we archive.
func (s *Service) DownloadVideo(ctx context.Context, item VideoItem, destDir string) (string, error) {
	if item.URL == "" {
		return "", fmt.Errorf("video %s has no url", item.ID)
	}

	stem := account.VideoUUID(item.ID).String()
	path, err := s.client.DownloadInto(ctx, item.URL, destDir, stem, ytdlp.DownloadOptions{
		Format:      s.formatSelector(),
		MergeFormat: "mp4",
		MaxFilesize: s.maxFilesize,
	})
	if err != nil {
		return "", classify(err)
	}

	if ext := strings.ToLower(filepath.Ext(path)); !allowedExtensions[ext] {
		return "", fmt.Errorf("unsupported media container %q for video %s", ext, item.ID)
	}

	// The extension allowlist is the contract; the sniff only flags files
	// whose content disagrees with their name.
	if mtype, err := mimetype.DetectFile(path); err == nil && !strings.HasPrefix(mtype.String(), "video/") {
		slog.Warn("downloaded file does not look like a video", "video_id", item.ID, "mime", mtype.String())
	}

	return path, nil
}

// formatSelector resolves the configured quality to a yt-dlp format selector.
func (s *Service) formatSelector() string {
	if s.quality == "" || s.quality == "best" {
		return bestFormat
	}
	return s.quality
}
