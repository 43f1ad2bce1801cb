package ytdlp

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FlatEntry is one row of a flat playlist listing.
type FlatEntry struct {
	ID    string
	URL   string
	Title string
}

// printTemplate is the per-entry output format used by ListFlat. Fields that
// yt-dlp cannot resolve are printed as "NA".
const printTemplate = "%(id)s\t%(url)s\t%(title)s"

// ListFlat enumerates the entries of a playlist-style URL (a profile media
// timeline, a channel, a playlist) without downloading anything. When limit
// is positive, only the first limit entries are requested from yt-dlp via
// --playlist-items.
func (c *Client) ListFlat(ctx context.Context, url string, limit int) ([]FlatEntry, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}

	args := []string{
		"--flat-playlist",
		"--skip-download",
		"--ignore-errors",
		"--no-warnings",
		"--print", printTemplate,
	}
	if limit > 0 {
		args = append(args, "--playlist-items", fmt.Sprintf("1:%d", limit))
	}
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	return parseFlatEntries(stdout), nil
}

func parseFlatEntries(stdout []byte) []FlatEntry {
	var entries []FlatEntry

	sc := bufio.NewScanner(strings.NewReader(string(stdout)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.SplitN(line, "\t", 3)
		if len(fields) < 2 {
			continue
		}

		entry := FlatEntry{
			ID:  naToEmpty(fields[0]),
			URL: naToEmpty(fields[1]),
		}
		if len(fields) == 3 {
			entry.Title = naToEmpty(fields[2])
		}

		// Entries without an ID or URL (deleted or withheld posts) are
		// not actionable.
		if entry.ID == "" || entry.URL == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

func naToEmpty(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}

// DownloadOptions controls a single DownloadInto invocation.
type DownloadOptions struct {
	// Format is the yt-dlp format selector, passed through verbatim.
	Format string

	// MergeFormat asks yt-dlp to merge split streams into this container.
	MergeFormat string

	// MaxFilesize is a yt-dlp size string (e.g. "500m"); larger media is
	// skipped, which surfaces as a missing-output error here.
	MaxFilesize string
}

// DownloadInto downloads a single video into destDir as <stem>.<ext> and
// returns the path of the produced file. The extension is chosen by yt-dlp,
// so the final name is discovered from the subprocess via
// --print after_move:filepath rather than guessed.
func (c *Client) DownloadInto(ctx context.Context, url string, destDir string, stem string, opts DownloadOptions) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("ytdlp: url is required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", fmt.Errorf("ytdlp: destDir is required")
	}
	if strings.TrimSpace(stem) == "" {
		return "", fmt.Errorf("ytdlp: stem is required")
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	tmpl := filepath.Join(destDir, stem+".%(ext)s")

	// --print implies --skip-download, hence the explicit --no-simulate.
	args := []string{
		"-o", tmpl,
		"--no-playlist",
		"--no-progress",
		"--no-colors",
		"--newline",
		"--no-simulate",
		"--print", "after_move:filepath",
	}
	if opts.Format != "" {
		args = append(args, "--format", opts.Format)
	}
	if opts.MergeFormat != "" {
		args = append(args, "--merge-output-format", opts.MergeFormat)
	}
	if opts.MaxFilesize != "" {
		args = append(args, "--max-filesize", opts.MaxFilesize)
	}
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	path := lastNonEmptyLine(stdout)
	if path == "" {
		return "", fmt.Errorf("ytdlp: no output file reported for %s", url)
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("ytdlp: reported file missing: %w", err)
	}

	return path, nil
}

func lastNonEmptyLine(out []byte) string {
	lines := strings.Split(string(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(strings.TrimRight(lines[i], "\r")); line != "" {
			return line
		}
	}
	return ""
}
