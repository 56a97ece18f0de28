// verify.go
package devshell

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/arc-language/devshell/pkg/descriptor"
	"github.com/arc-language/devshell/pkg/nix"
)

// VerifyReport is the outcome of verifying one declared package.
type VerifyReport struct {
	Package descriptor.Package
	Result  *nix.VerifyResult
	Err     error
	Skipped bool // Not a store object, nothing to compare
}

// Verify compares every package resolved into the Nix store against the
// NarHash advertised by the binary cache. Packages outside the store are
// reported as skipped.
func (s *Shell) Verify(ctx context.Context, set *PackageSet, cacheURL string) []VerifyReport {
	if cacheURL == "" {
		cacheURL = s.config.Nix.CacheURL
	}
	cache := nix.NewCacheClient(cacheURL, s.config.Nix.Timeout, s.logger)

	reports := make([]VerifyReport, 0, set.Len())
	for _, p := range set.Packages() {
		report := VerifyReport{Package: p}
		if !s.inStore(p.Resolution.StorePath) {
			report.Skipped = true
			reports = append(reports, report)
			continue
		}

		report.Result, report.Err = cache.Verify(ctx, p.Resolution.StorePath)
		reports = append(reports, report)
	}
	return reports
}

func (s *Shell) inStore(path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(s.config.StoreDir, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..") && !strings.ContainsRune(rel, filepath.Separator)
}
