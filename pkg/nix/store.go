// store.go
package nix

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"

	nixpath "zombiezen.com/go/nix"

	"github.com/arc-language/devshell/pkg/descriptor"
)

// Store resolves packages against the objects already present in a local
// Nix store directory.
type Store struct {
	dir    string
	logger *slog.Logger

	once    sync.Once
	objects []nixpath.StorePath
	scanErr error
}

// NewStore creates a resolver over dir (DefaultStoreDir when empty).
func NewStore(dir string, logger *slog.Logger) *Store {
	if dir == "" {
		dir = DefaultStoreDir
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{dir: dir, logger: logger}
}

// scan lists the store once per resolver; entries that do not parse as
// store paths (.links, lock files) are skipped.
func (s *Store) scan() ([]nixpath.StorePath, error) {
	s.once.Do(func() {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			s.scanErr = fmt.Errorf("reading store %s: %w", s.dir, err)
			return
		}
		for _, entry := range entries {
			sp, err := nixpath.ParseStorePath(filepath.Join(s.dir, entry.Name()))
			if err != nil || strings.HasSuffix(sp.Name(), ".drv") {
				continue
			}
			s.objects = append(s.objects, sp)
		}
		s.logger.Debug("scanned nix store", "dir", s.dir, "objects", len(s.objects))
	})
	return s.objects, s.scanErr
}

type candidate struct {
	path   nixpath.StorePath
	name   objectName
	libDir string
}

// Resolve implements descriptor.Resolver. The attribute's last segment is
// matched against store object names; candidates with a library directory
// win, then the lib output, then the default output, then the highest
// version.
func (s *Store) Resolve(ctx context.Context, ref descriptor.Reference) (descriptor.Resolution, error) {
	objects, err := s.scan()
	if err != nil {
		return descriptor.Resolution{}, err
	}

	pname := attrPackageName(ref.Name)
	var candidates []candidate
	for _, sp := range objects {
		name, ok := parseObjectName(sp.Name(), pname)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{
			path:   sp,
			name:   name,
			libDir: libDirOf(string(sp)),
		})
	}

	if len(candidates) == 0 {
		return descriptor.Resolution{}, fmt.Errorf("%w: no %s object in %s", descriptor.ErrPackageNotFound, pname, s.dir)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if (a.libDir != "") != (b.libDir != "") {
			return a.libDir != ""
		}
		if ra, rb := rankOutput(a.name.output), rankOutput(b.name.output); ra != rb {
			return ra < rb
		}
		return compareVersions(a.name.version, b.name.version) > 0
	})

	best := candidates[0]
	return descriptor.Resolution{
		Name:      ref.Name,
		StorePath: string(best.path),
		LibDir:    best.libDir,
		Source:    descriptor.SourceStore,
	}, nil
}

// attrPackageName maps an attribute path to the package name used in store
// object names: "xorg.libX11" -> "libX11".
func attrPackageName(attr string) string {
	if i := strings.LastIndexByte(attr, '.'); i >= 0 {
		return attr[i+1:]
	}
	return attr
}

// parseObjectName splits name ("<pname>-<version>[-<output>]") when it
// belongs to pname. The version must start with a digit, so "wayland" does
// not match "wayland-protocols-1.33".
func parseObjectName(name, pname string) (objectName, bool) {
	rest, ok := strings.CutPrefix(name, pname+"-")
	if !ok || rest == "" || !unicode.IsDigit(rune(rest[0])) {
		return objectName{}, false
	}

	on := objectName{pname: pname, version: rest, output: "out"}
	if i := strings.LastIndexByte(rest, '-'); i >= 0 && isOutputName(rest[i+1:]) {
		on.version = rest[:i]
		on.output = rest[i+1:]
	}
	return on, true
}

// isOutputName accepts the known output names and any other purely
// alphabetic suffix ("drivers", "python").
func isOutputName(s string) bool {
	if knownOutputs[s] {
		return true
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func rankOutput(output string) int {
	if r, ok := outputRank[output]; ok {
		return r
	}
	return len(outputRank)
}

// libDirOf returns the first library directory of a store object.
func libDirOf(storePath string) string {
	for _, rel := range []string{"lib", "lib64"} {
		dir := filepath.Join(storePath, rel)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// compareVersions compares dotted versions component by component,
// numerically where both components are numbers.
func compareVersions(a, b string) int {
	split := func(v string) []string {
		return strings.FieldsFunc(v, func(r rune) bool { return r == '.' || r == '-' || r == '_' })
	}
	pa, pb := split(a), split(b)

	for i := 0; i < len(pa) && i < len(pb); i++ {
		na, errA := strconv.Atoi(pa[i])
		nb, errB := strconv.Atoi(pb[i])
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		case pa[i] != pb[i]:
			return strings.Compare(pa[i], pb[i])
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	}
	return 0
}
