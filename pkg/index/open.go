package index

import (
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/arc-language/devshell/pkg/nix"
)

// ErrNoIndex is returned when no index file exists for a system.
var ErrNoIndex = errors.New("no synced index")

// compressedExts lists the index spellings in lookup order.
var compressedExts = []string{"", ".zst", ".xz", ".bz2"}

// readCloser pairs a decompressor with the file underneath it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenIndex opens an index file, decompressing by extension.
func OpenIndex(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, ".xz"):
		zr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz %s: %w", path, err)
		}
		return &readCloser{Reader: zr, closers: []func() error{f.Close}}, nil

	case strings.HasSuffix(path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		zr := dec.IOReadCloser()
		return &readCloser{Reader: zr, closers: []func() error{zr.Close, f.Close}}, nil

	case strings.HasSuffix(path, ".bz2"):
		return &readCloser{Reader: bzip2.NewReader(f), closers: []func() error{f.Close}}, nil
	}

	return f, nil
}

// FindIndex returns the synced index file for system under cacheDir,
// preferring the uncompressed copy.
func FindIndex(cacheDir string, system nix.Platform) (string, error) {
	base := filepath.Join(cacheDir, "index", system.IndexFileName())
	for _, ext := range compressedExts {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, nil
		}
	}
	return "", fmt.Errorf("%w for %s in %s", ErrNoIndex, system, cacheDir)
}

// Load finds, opens and decodes the index for system.
func Load(cacheDir string, system nix.Platform) (*nix.Index, error) {
	path, err := FindIndex(cacheDir, system)
	if err != nil {
		return nil, err
	}

	rc, err := OpenIndex(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	records, err := nix.LoadIndex(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nix.NewIndex(records), nil
}
