package index

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/arc-language/devshell/pkg/nix"
)

const (
	RepoURL    = "https://github.com/arc-language/upkg"
	RepoBranch = "main"
)

// Result describes what a sync placed in the cache.
type Result struct {
	IndexFiles []string
	DepsDir    string
	Revision   string
}

// Sync shallow-clones the registry repository and installs its attribute
// index for system and its deps/ registry into cacheDir.
func Sync(ctx context.Context, cacheDir, repoURL, branch string, system nix.Platform, progress io.Writer) (*Result, error) {
	if repoURL == "" {
		repoURL = RepoURL
	}
	if branch == "" {
		branch = RepoBranch
	}

	tempDir, err := os.MkdirTemp("", "devshell-clone-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	repo, err := git.PlainCloneContext(ctx, tempDir, false, &git.CloneOptions{
		URL:           repoURL,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Depth:         1,
		Progress:      progress,
	})
	if err != nil {
		return nil, fmt.Errorf("git clone %s: %w", repoURL, err)
	}

	result, err := Install(tempDir, cacheDir, system)
	if err != nil {
		return nil, err
	}

	if head, err := repo.Head(); err == nil {
		result.Revision = head.Hash().String()
	}
	return result, nil
}

// Install copies packages/nix/<system>.json* and deps/ from a checked-out
// registry tree at srcDir into cacheDir. Both are staged under cacheDir
// first, so a failed copy leaves the previous index and deps/ in place.
// Index spellings the repository no longer ships are removed.
func Install(srcDir, cacheDir string, system nix.Platform) (*Result, error) {
	name := system.IndexFileName()

	var shipped []string
	for _, ext := range compressedExts {
		src := filepath.Join(srcDir, "packages", "nix", name+ext)
		if _, err := os.Stat(src); err == nil {
			shipped = append(shipped, src)
		}
	}
	if len(shipped) == 0 {
		return nil, fmt.Errorf("no nix index for %s in repository", system)
	}

	srcDeps := filepath.Join(srcDir, "deps")
	if info, err := os.Stat(srcDeps); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("no deps registry in repository")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	staging, err := os.MkdirTemp(cacheDir, ".sync-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	stagedIndex := filepath.Join(staging, "index")
	if err := os.MkdirAll(stagedIndex, 0755); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}
	for _, src := range shipped {
		if err := copyFile(src, filepath.Join(stagedIndex, filepath.Base(src))); err != nil {
			return nil, fmt.Errorf("nix index: %w", err)
		}
	}
	stagedDeps := filepath.Join(staging, "deps")
	if err := copyDir(srcDeps, stagedDeps); err != nil {
		return nil, fmt.Errorf("deps registry: %w", err)
	}

	indexDir := filepath.Join(cacheDir, "index")
	if err := os.MkdirAll(indexDir, 0755); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}
	for _, ext := range compressedExts {
		if err := os.Remove(filepath.Join(indexDir, name+ext)); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing old index: %w", err)
		}
	}

	result := &Result{}
	for _, src := range shipped {
		base := filepath.Base(src)
		dst := filepath.Join(indexDir, base)
		if err := os.Rename(filepath.Join(stagedIndex, base), dst); err != nil {
			return nil, fmt.Errorf("nix index: %w", err)
		}
		result.IndexFiles = append(result.IndexFiles, dst)
	}

	depsDir := filepath.Join(cacheDir, "deps")
	previous := filepath.Join(staging, "deps.old")
	if err := os.Rename(depsDir, previous); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("replacing deps registry: %w", err)
	}
	if err := os.Rename(stagedDeps, depsDir); err != nil {
		os.Rename(previous, depsDir)
		return nil, fmt.Errorf("replacing deps registry: %w", err)
	}
	result.DepsDir = depsDir

	return result, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}
