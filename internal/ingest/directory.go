package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrPathNotFound = errors.New("path does not exist")
	ErrNotPDF       = errors.New("not a PDF file")
	ErrNoPDFs       = errors.New("no PDF files found")
)

// Options controls Discover.
type Options struct {
	Recursive  bool // descend into sub-directories
	SkipHidden bool // ignore dot-files and dot-directories
}

// DefaultOptions lists the top-level directory only and skips hidden entries.
var DefaultOptions = Options{SkipHidden: true}

// Discover resolves path to the ordered list of PDFs to process.
// A file must carry a .pdf extension. A directory yields its PDFs sorted
// lexicographically; an empty result is ErrNoPDFs.
func Discover(path string, opts Options) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		if !AllowedExt(filepath.Ext(path)) {
			return nil, fmt.Errorf("%w: %s", ErrNotPDF, path)
		}
		return []string{path}, nil
	}

	var files []string
	if opts.Recursive {
		files, err = walk(path, opts)
	} else {
		files, err = list(path, opts)
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoPDFs, path)
	}
	sort.Strings(files)
	return files, nil
}

func list(dir string, opts Options) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || (opts.SkipHidden && IsHidden(e.Name())) {
			continue
		}
		if AllowedExt(filepath.Ext(e.Name())) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

func walk(root string, opts Options) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		// skip hidden dirs/files if requested
		if opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	return out, nil
}
