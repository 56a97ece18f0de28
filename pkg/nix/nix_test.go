package nix

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	nixpath "zombiezen.com/go/nix"
	"zombiezen.com/go/nix/nar"

	"github.com/arc-language/devshell/pkg/descriptor"
)

// testDigest is a syntactically valid store path digest.
const testDigest = "0123456789abcdfghijklmnpqrsvwxyz"

func digest(n int) string {
	return string(testDigest[n%32]) + testDigest[1:]
}

func storeObject(t *testing.T, store string, n int, name string, withLib bool) string {
	t.Helper()
	path := filepath.Join(store, digest(n)+"-"+name)
	require.NoError(t, os.MkdirAll(path, 0755))
	if withLib {
		require.NoError(t, os.MkdirAll(filepath.Join(path, "lib"), 0755))
	}
	return path
}

func ref(name string) descriptor.Reference {
	return descriptor.Reference{Name: name}
}

func TestParseObjectName(t *testing.T) {
	tests := []struct {
		name   string
		pname  string
		want   objectName
		wantOK bool
	}{
		{name: "libX11-1.8.7", pname: "libX11", want: objectName{"libX11", "1.8.7", "out"}, wantOK: true},
		{name: "libX11-1.8.7-dev", pname: "libX11", want: objectName{"libX11", "1.8.7", "dev"}, wantOK: true},
		{name: "mesa-24.0.7-drivers", pname: "mesa", want: objectName{"mesa", "24.0.7", "drivers"}, wantOK: true},
		{name: "python3-3.11.9", pname: "python3", want: objectName{"python3", "3.11.9", "out"}, wantOK: true},
		{name: "wayland-protocols-1.33", pname: "wayland"},
		{name: "wayland", pname: "wayland"},
		{name: "libGLU-9.0.3", pname: "libGL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseObjectName(tt.name, tt.pname)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 1, compareVersions("1.10.0", "1.9.2"))
	assert.Equal(t, -1, compareVersions("1.8", "1.8.1"))
	assert.Equal(t, 0, compareVersions("24.0.7", "24.0.7"))
	assert.Equal(t, 1, compareVersions("1.0.b", "1.0.a"))
}

func TestAttrPackageName(t *testing.T) {
	assert.Equal(t, "libX11", attrPackageName("xorg.libX11"))
	assert.Equal(t, "wayland", attrPackageName("wayland"))
}

func TestStore_Resolve(t *testing.T) {
	store := t.TempDir()
	storeObject(t, store, 1, "libX11-1.8.6", true)
	newest := storeObject(t, store, 2, "libX11-1.8.7", true)
	storeObject(t, store, 3, "libX11-1.8.7-dev", false)
	wlLib := storeObject(t, store, 4, "wayland-1.22.0-lib", true)
	storeObject(t, store, 5, "wayland-1.22.0", true)
	storeObject(t, store, 6, "wayland-protocols-1.33", false)
	cargo := storeObject(t, store, 7, "cargo-1.77.2", false)
	require.NoError(t, os.WriteFile(filepath.Join(store, digest(8)+"-libX11-1.8.7.drv"), nil, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(store, ".links"), 0755))

	s := NewStore(store, nil)

	res, err := s.Resolve(context.Background(), ref("xorg.libX11"))
	require.NoError(t, err)
	assert.Equal(t, newest, res.StorePath)
	assert.Equal(t, filepath.Join(newest, "lib"), res.LibDir)
	assert.Equal(t, descriptor.SourceStore, res.Source)
	assert.Equal(t, "xorg.libX11", res.Name)

	res, err = s.Resolve(context.Background(), ref("wayland"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wlLib, "lib"), res.LibDir, "lib output preferred")

	res, err = s.Resolve(context.Background(), ref("cargo"))
	require.NoError(t, err)
	assert.Equal(t, cargo, res.StorePath)
	assert.False(t, res.HasLibDir())

	_, err = s.Resolve(context.Background(), ref("mesa"))
	assert.ErrorIs(t, err, descriptor.ErrPackageNotFound)
}

func TestStore_MissingDir(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent"), nil)

	_, err := s.Resolve(context.Background(), ref("wayland"))
	require.Error(t, err)
	assert.False(t, descriptor.IsNotFound(err), "an unreadable store is not a missing package")
}

func TestIndex_Resolve(t *testing.T) {
	store := t.TempDir()
	realized := storeObject(t, store, 1, "libxkbcommon-1.7.0", true)

	records, err := LoadIndex(strings.NewReader(`[
		{"Attribute": "libxkbcommon", "NameVersion": "libxkbcommon-1.7.0", "StorePath": "` + realized + `"},
		{"Attribute": "mesa", "NameVersion": "mesa-24.0.7", "StorePath": "` + filepath.Join(store, digest(2)+"-mesa-24.0.7") + `"}
	]`))
	require.NoError(t, err)

	idx := NewIndex(records)
	assert.Equal(t, 2, idx.Len())

	res, err := idx.Resolve(context.Background(), ref("libxkbcommon"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realized, "lib"), res.LibDir)
	assert.Equal(t, descriptor.SourceIndex, res.Source)

	_, err = idx.Resolve(context.Background(), ref("mesa"))
	assert.ErrorIs(t, err, descriptor.ErrPackageNotFound, "unrealized paths fall through")

	_, err = idx.Resolve(context.Background(), ref("wayland"))
	assert.ErrorIs(t, err, descriptor.ErrPackageNotFound)
}

func TestLoadIndex_Invalid(t *testing.T) {
	_, err := LoadIndex(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}

func TestCLI_Resolve(t *testing.T) {
	store := t.TempDir()
	out := storeObject(t, store, 1, "wayland-1.22.0", true)
	lib := storeObject(t, store, 2, "wayland-1.22.0-lib", true)
	bin := storeObject(t, store, 3, "wayland-1.22.0-bin", false)

	var gotArgs []string
	c := NewCLI("", nil)
	c.run = func(ctx context.Context, args ...string) (string, error) {
		gotArgs = args
		return bin + "\n" + out + "\n" + lib + "\n", nil
	}

	res, err := c.Resolve(context.Background(), ref("wayland"))
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "--no-link", "--print-out-paths", "nixpkgs#wayland^*"}, gotArgs)
	assert.Equal(t, lib, res.StorePath)
	assert.Equal(t, filepath.Join(lib, "lib"), res.LibDir)
	assert.Equal(t, descriptor.SourceNix, res.Source)
}

func TestCLI_ResolveWithoutLibDir(t *testing.T) {
	store := t.TempDir()
	tool := storeObject(t, store, 1, "pkg-config-0.29.2", false)

	c := NewCLI("github:NixOS/nixpkgs/nixos-24.05", nil)
	c.run = func(ctx context.Context, args ...string) (string, error) {
		return tool + "\n", nil
	}

	res, err := c.Resolve(context.Background(), ref("pkg-config"))
	require.NoError(t, err)
	assert.Equal(t, tool, res.StorePath)
	assert.False(t, res.HasLibDir())
}

func TestCLI_ResolveErrors(t *testing.T) {
	c := NewCLI("", nil)

	c.run = func(ctx context.Context, args ...string) (string, error) {
		return "", errors.New("nix build: error: flake 'flake:nixpkgs' does not provide attribute 'packages.x86_64-linux.nope'")
	}
	_, err := c.Resolve(context.Background(), ref("nope"))
	assert.ErrorIs(t, err, descriptor.ErrPackageNotFound)

	c.run = func(ctx context.Context, args ...string) (string, error) {
		return "", errors.New("nix build: error: cannot connect to daemon")
	}
	_, err = c.Resolve(context.Background(), ref("wayland"))
	require.Error(t, err)
	assert.False(t, descriptor.IsNotFound(err))

	c.run = func(ctx context.Context, args ...string) (string, error) {
		return "\n", nil
	}
	_, err = c.Resolve(context.Background(), ref("wayland"))
	assert.Error(t, err)
}

func TestFindBinary_NonexistentBinary(t *testing.T) {
	_, err := FindBinary("nix-definitely-does-not-exist-abcxyz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found on PATH")
}

func TestFormatError(t *testing.T) {
	stderr := bytes.NewBufferString("  error: attribute missing \n")
	err := formatError("nix", []string{"build", "x"}, stderr, errors.New("exit status 1"))
	assert.EqualError(t, err, "nix build x: error: attribute missing")

	err = formatError("nix", []string{"eval"}, &bytes.Buffer{}, errors.New("exit status 1"))
	assert.EqualError(t, err, "nix eval: exit status 1")
}

func narHashOf(t *testing.T, path string) nixpath.Hash {
	t.Helper()
	h := nixpath.NewHasher(nixpath.SHA256)
	require.NoError(t, nar.DumpPath(h, path))
	return h.SumHash()
}

func narinfoFor(storePath string, narHash string) string {
	return "StorePath: " + storePath + "\n" +
		"URL: nar/" + testDigest + ".nar.xz\n" +
		"Compression: xz\n" +
		"FileHash: " + narHash + "\n" +
		"FileSize: 120\n" +
		"NarHash: " + narHash + "\n" +
		"NarSize: 200\n" +
		"References: " + filepath.Base(storePath) + "\n"
}

func cacheServing(t *testing.T, digest string, body func() string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/"+digest+".narinfo" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body()))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCacheClient_Verify(t *testing.T) {
	store := t.TempDir()
	obj := storeObject(t, store, 1, "libxkbcommon-1.7.0", true)
	require.NoError(t, os.WriteFile(filepath.Join(obj, "lib", "libxkbcommon.so.0"), []byte("ELF"), 0644))

	narHash := narHashOf(t, obj)
	srv := cacheServing(t, digest(1), func() string { return narinfoFor(obj, narHash.Base32()) })

	c := NewCacheClient(srv.URL+"/", 0, nil)

	res, err := c.Verify(context.Background(), obj)
	require.NoError(t, err)
	assert.True(t, narHash.Equal(res.Actual))
	assert.True(t, narHash.Equal(res.Expected))
	assert.Equal(t, int64(200), res.NarSize)

	// Tamper with the local copy.
	require.NoError(t, os.WriteFile(filepath.Join(obj, "lib", "libxkbcommon.so.0"), []byte("patched"), 0644))
	res, err = c.Verify(context.Background(), obj)
	require.ErrorIs(t, err, ErrHashMismatch)
	assert.False(t, res.Expected.Equal(res.Actual))
}

func TestCacheClient_VerifyHashSpellings(t *testing.T) {
	store := t.TempDir()
	obj := storeObject(t, store, 2, "wayland-1.22.0", true)
	require.NoError(t, os.WriteFile(filepath.Join(obj, "lib", "libwayland-client.so.0"), []byte("ELF"), 0644))
	narHash := narHashOf(t, obj)

	spellings := map[string]string{
		"sri":    narHash.SRI(),
		"base32": narHash.Base32(),
		"base16": narHash.Base16(),
		"base64": narHash.Base64(),
	}
	for name, spelled := range spellings {
		t.Run(name, func(t *testing.T) {
			srv := cacheServing(t, digest(2), func() string { return narinfoFor(obj, spelled) })
			res, err := NewCacheClient(srv.URL, 0, nil).Verify(context.Background(), obj)
			require.NoError(t, err)
			assert.True(t, narHash.Equal(res.Expected))
		})
	}
}

func TestCacheClient_GetNARInfo(t *testing.T) {
	storePath := "/nix/store/" + testDigest + "-wayland-1.22.0"
	srv := cacheServing(t, testDigest, func() string {
		// Some caches omit the final newline.
		return strings.TrimSuffix(narinfoFor(storePath, "sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="), "\n")
	})

	info, err := NewCacheClient(srv.URL, 0, nil).GetNARInfo(context.Background(), testDigest)
	require.NoError(t, err)

	empty, err := nixpath.ParseHash("sha256:0mdqa9w1p6cmli6976v4wi0sw9r4p5prkj7lzfd1877wk11c9c73")
	require.NoError(t, err)
	assert.Equal(t, storePath, string(info.StorePath))
	assert.True(t, empty.Equal(info.NARHash))
	assert.Equal(t, int64(200), info.NARSize)
	assert.Len(t, info.References, 1)
}

func TestCacheClient_GetNARInfoInvalid(t *testing.T) {
	tests := map[string]string{
		"missing nar hash": "StorePath: /nix/store/" + testDigest + "-x\nURL: nar/x.nar\nNarSize: 1\n",
		"bad nar size":     "StorePath: /nix/store/" + testDigest + "-x\nURL: nar/x.nar\nNarHash: sha256-47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=\nNarSize: many\n",
		"short hash":       "StorePath: /nix/store/" + testDigest + "-x\nURL: nar/x.nar\nNarHash: sha256:abc\nNarSize: 1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			srv := cacheServing(t, testDigest, func() string { return content })
			_, err := NewCacheClient(srv.URL, 0, nil).GetNARInfo(context.Background(), testDigest)
			assert.Error(t, err)
		})
	}
}

func TestCacheClient_VerifyNotInCache(t *testing.T) {
	store := t.TempDir()
	obj := storeObject(t, store, 1, "mesa-24.0.7", true)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewCacheClient(srv.URL, 0, nil).Verify(context.Background(), obj)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestCacheClient_VerifyRejectsNonStorePath(t *testing.T) {
	_, err := NewCacheClient("", 0, nil).Verify(context.Background(), "relative/path")
	assert.Error(t, err)
}

func TestPlatformFor(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         Platform
		wantErr      bool
	}{
		{goos: "linux", goarch: "amd64", want: PlatformX8664Linux},
		{goos: "linux", goarch: "arm64", want: PlatformAarch64Linux},
		{goos: "linux", goarch: "386", want: PlatformI686Linux},
		{goos: "darwin", goarch: "arm64", want: PlatformAarch64Darwin},
		{goos: "darwin", goarch: "386", wantErr: true},
		{goos: "linux", goarch: "riscv64", wantErr: true},
		{goos: "windows", goarch: "amd64", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := PlatformFor(tt.goos, tt.goarch)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "x86_64_linux.json", PlatformX8664Linux.IndexFileName())
}
