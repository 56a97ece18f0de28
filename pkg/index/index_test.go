package index

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/arc-language/devshell/pkg/nix"
)

const sampleIndex = `[{"Attribute": "wayland", "NameVersion": "wayland-1.22.0", "StorePath": "/nix/store/0123456789abcdfghijklmnpqrsvwxyz-wayland-1.22.0"}]`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

func xzBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestOpenIndex(t *testing.T) {
	dir := t.TempDir()

	files := map[string][]byte{
		"plain.json":      []byte(sampleIndex),
		"packed.json.xz":  xzBytes(t, sampleIndex),
		"packed.json.zst": zstdBytes(t, sampleIndex),
	}

	for name, data := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeFile(t, path, data)

			rc, err := OpenIndex(path)
			require.NoError(t, err)
			defer rc.Close()

			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, sampleIndex, string(got))
		})
	}
}

func TestOpenIndex_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json.xz")
	writeFile(t, path, []byte("not xz"))

	_, err := OpenIndex(path)
	assert.Error(t, err)
}

func TestFindIndex(t *testing.T) {
	cache := t.TempDir()

	_, err := FindIndex(cache, nix.PlatformX8664Linux)
	assert.True(t, errors.Is(err, ErrNoIndex))

	writeFile(t, filepath.Join(cache, "index", "x86_64_linux.json.xz"), xzBytes(t, sampleIndex))
	path, err := FindIndex(cache, nix.PlatformX8664Linux)
	require.NoError(t, err)
	assert.Equal(t, "x86_64_linux.json.xz", filepath.Base(path))

	writeFile(t, filepath.Join(cache, "index", "x86_64_linux.json"), []byte(sampleIndex))
	path, err = FindIndex(cache, nix.PlatformX8664Linux)
	require.NoError(t, err)
	assert.Equal(t, "x86_64_linux.json", filepath.Base(path))
}

func TestLoad(t *testing.T) {
	cache := t.TempDir()
	writeFile(t, filepath.Join(cache, "index", "aarch64_linux.json.zst"), zstdBytes(t, sampleIndex))

	idx, err := Load(cache, nix.PlatformAarch64Linux)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	p, ok := idx.Lookup("wayland")
	require.True(t, ok)
	assert.Equal(t, "wayland-1.22.0", p.NameVersion)
}

func TestInstall(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "packages", "nix", "x86_64_linux.json"), []byte(sampleIndex))
	writeFile(t, filepath.Join(src, "packages", "nix", "x86_64_linux.json.xz"), xzBytes(t, sampleIndex))
	writeFile(t, filepath.Join(src, "packages", "nix", "x86_64_linux.json.sha256"), []byte("ignored"))
	writeFile(t, filepath.Join(src, "packages", "nix", "aarch64_linux.json"), []byte(sampleIndex))
	writeFile(t, filepath.Join(src, "deps", "libx11", "index.toml"), []byte("name = \"libx11\"\n"))

	cache := t.TempDir()
	writeFile(t, filepath.Join(cache, "deps", "stale", "index.toml"), []byte("name = \"stale\"\n"))

	result, err := Install(src, cache, nix.PlatformX8664Linux)
	require.NoError(t, err)

	assert.Len(t, result.IndexFiles, 2)
	assert.FileExists(t, filepath.Join(cache, "index", "x86_64_linux.json"))
	assert.FileExists(t, filepath.Join(cache, "index", "x86_64_linux.json.xz"))
	assert.NoFileExists(t, filepath.Join(cache, "index", "x86_64_linux.json.sha256"))
	assert.NoFileExists(t, filepath.Join(cache, "index", "aarch64_linux.json"))

	assert.FileExists(t, filepath.Join(cache, "deps", "libx11", "index.toml"))
	assert.NoDirExists(t, filepath.Join(cache, "deps", "stale"))
}

func TestInstall_RemovesShippedNoLonger(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "packages", "nix", "x86_64_linux.json.zst"), zstdBytes(t, sampleIndex))
	writeFile(t, filepath.Join(src, "deps", "libx11", "index.toml"), []byte("name = \"libx11\"\n"))

	cache := t.TempDir()
	writeFile(t, filepath.Join(cache, "index", "x86_64_linux.json"), []byte("[]"))
	writeFile(t, filepath.Join(cache, "index", "aarch64_linux.json"), []byte("[]"))

	_, err := Install(src, cache, nix.PlatformX8664Linux)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(cache, "index", "x86_64_linux.json"))
	assert.FileExists(t, filepath.Join(cache, "index", "aarch64_linux.json"), "other systems are untouched")

	path, err := FindIndex(cache, nix.PlatformX8664Linux)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cache, "index", "x86_64_linux.json.zst"), path)

	idx, err := Load(cache, nix.PlatformX8664Linux)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	entries, err := os.ReadDir(cache)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"index", "deps"}, names, "staging dir is cleaned up")
}

func TestInstall_MissingDepsKeepsCache(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "packages", "nix", "x86_64_linux.json"), []byte(sampleIndex))

	cache := t.TempDir()
	writeFile(t, filepath.Join(cache, "index", "x86_64_linux.json"), []byte("[]"))
	writeFile(t, filepath.Join(cache, "deps", "libx11", "index.toml"), []byte("name = \"libx11\"\n"))

	_, err := Install(src, cache, nix.PlatformX8664Linux)
	require.Error(t, err)

	assert.FileExists(t, filepath.Join(cache, "deps", "libx11", "index.toml"))
	data, err := os.ReadFile(filepath.Join(cache, "index", "x86_64_linux.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

// seedRegistry creates a local git repository laid out like the registry.
func seedRegistry(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "packages", "nix", "x86_64_linux.json"), []byte(sampleIndex))
	writeFile(t, filepath.Join(dir, "deps", "libx11", "index.toml"), []byte("name = \"libx11\"\n"))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.AddWithOptions(&git.AddOptions{All: true}))
	_, err = wt.Commit("seed registry", &git.CommitOptions{
		Author: &object.Signature{Name: "devshell", Email: "devshell@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestSync(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("local clones need git-upload-pack")
	}
	repoDir := seedRegistry(t)
	cache := t.TempDir()

	result, err := Sync(context.Background(), cache, repoDir, "", nix.PlatformX8664Linux, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(cache, "index", "x86_64_linux.json")}, result.IndexFiles)
	assert.Equal(t, filepath.Join(cache, "deps"), result.DepsDir)
	assert.Len(t, result.Revision, 40)
	assert.FileExists(t, filepath.Join(cache, "deps", "libx11", "index.toml"))

	idx, err := Load(cache, nix.PlatformX8664Linux)
	require.NoError(t, err)
	_, ok := idx.Lookup("wayland")
	assert.True(t, ok)
}

func TestSync_UnknownBranch(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("local clones need git-upload-pack")
	}
	repoDir := seedRegistry(t)

	_, err := Sync(context.Background(), t.TempDir(), repoDir, "release", nix.PlatformX8664Linux, nil)
	assert.Error(t, err)
}

func TestInstall_MissingIndex(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "deps", "libx11", "index.toml"), nil)

	_, err := Install(src, t.TempDir(), nix.PlatformAarch64Darwin)
	assert.Error(t, err)
}
