// Package archive assembles downloaded media files into a zip archive.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"thirdcoast.systems/reeler/pkg/utils/filename"
)

// Entry is one file to place into an archive.
type Entry struct {
	// Path is the source file on disk.
	Path string
	// Name is the name the file gets inside the archive.
	Name string
}

// WriteError reports a failed archive write.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write archive %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Write assembles entries into a zip archive at path and returns its size.
// The archive is built in a temporary sibling file and only renamed into
// place once fully flushed, so path never holds a half written archive.
// Entries keep their given order; colliding names get a numeric suffix.
func Write(path string, entries []Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, &WriteError{Path: path, Err: fmt.Errorf("no entries")}
	}

	partial := path + ".partial"
	if err := writePartial(partial, entries); err != nil {
		os.Remove(partial)
		return 0, &WriteError{Path: path, Err: err}
	}

	if err := os.Rename(partial, path); err != nil {
		os.Remove(partial)
		return 0, &WriteError{Path: path, Err: err}
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, &WriteError{Path: path, Err: err}
	}

	return info.Size(), nil
}

func writePartial(partial string, entries []Entry) error {
	f, err := os.Create(partial)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	used := make(map[string]int, len(entries))

	for _, entry := range entries {
		if err := addEntry(zw, entry, used); err != nil {
			return fmt.Errorf("add %s: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return f.Close()
}

func addEntry(zw *zip.Writer, entry Entry, used map[string]int) error {
	src, err := os.Open(entry.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     uniqueName(safeName(entry.Name), used),
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	})
	if err != nil {
		return err
	}

	_, err = io.Copy(w, src)
	return err
}

// safeName strips anything from an entry name that could escape the archive
// root or upset a filesystem on extraction.
func safeName(name string) string {
	ext := filepath.Ext(name)
	stem := filename.Sanitize(strings.TrimSuffix(name, ext))
	if stem == "" {
		stem = "video"
	}
	return stem + strings.ToLower(ext)
}

// uniqueName disambiguates colliding entry names with a numeric suffix before
// the extension: nasa_10.mp4, nasa_10-2.mp4, nasa_10-3.mp4.
func uniqueName(name string, used map[string]int) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}

	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n+1, ext)
}
