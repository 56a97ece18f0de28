package env

import (
	"path/filepath"
	"runtime"
)

// Variables exported alongside the library search path.
const (
	NameVar        = "DEVSHELL_NAME"
	FingerprintVar = "DEVSHELL_FINGERPRINT"
)

// GetPackageLayout returns the typical directory structure for packages from each backend
// These are RELATIVE paths within the extracted package, not absolute system paths
func GetPackageLayout(backend string) PackageLayout {
	switch backend {
	case "apt", "dpkg":
		return getDebianLayout()
	case "dnf", "yum", "zypper":
		return getFedoraLayout()
	case "brew":
		return getBrewLayout()
	case "pacman", "apk":
		return getArchLayout()
	case "choco":
		return getChocoLayout()
	case "nix":
		return getNixLayout()
	default:
		return getDefaultLayout()
	}
}

// Debian/Ubuntu packages extract with full /usr hierarchy
func getDebianLayout() PackageLayout {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "arm64":
		arch = "aarch64"
	}

	return PackageLayout{
		// .deb packages contain: usr/lib/x86_64-linux-gnu/libwayland-client.so.0
		Libraries: []string{
			filepath.Join("usr", "lib", arch+"-linux-gnu"),
			filepath.Join("usr", "lib"),
			filepath.Join("lib", arch+"-linux-gnu"),
			filepath.Join("lib"),
		},
	}
}

// Fedora/RHEL and openSUSE use lib64 for 64-bit
func getFedoraLayout() PackageLayout {
	return PackageLayout{
		Libraries: []string{
			filepath.Join("usr", "lib64"),
			filepath.Join("usr", "lib"),
			filepath.Join("lib64"),
			filepath.Join("lib"),
		},
	}
}

// Homebrew bottles keep libraries in lib/
func getBrewLayout() PackageLayout {
	return PackageLayout{
		Libraries: []string{"lib"},
	}
}

// Arch and Alpine packages use a plain /usr structure
func getArchLayout() PackageLayout {
	return PackageLayout{
		Libraries: []string{
			filepath.Join("usr", "lib"),
			filepath.Join("lib"),
		},
	}
}

// Chocolatey packages are inconsistent, use common patterns
func getChocoLayout() PackageLayout {
	return PackageLayout{
		Libraries: []string{
			"lib",
			filepath.Join("tools", "lib"),
			"bin", // DLLs often in bin/
		},
	}
}

// Nix store paths are flat: lib/ and sometimes lib64/
func getNixLayout() PackageLayout {
	return PackageLayout{
		Libraries: []string{"lib", "lib64"},
	}
}

// Default layout for unknown backends (FHS-like)
func getDefaultLayout() PackageLayout {
	return PackageLayout{
		Libraries: []string{
			filepath.Join("usr", "lib"),
			filepath.Join("lib"),
		},
	}
}

// GetLibraryExtensions returns file extensions to look for based on OS
func GetLibraryExtensions() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{".dylib", ".a"}
	case "windows":
		return []string{".dll", ".lib"}
	default:
		return []string{".so", ".a"}
	}
}

// GetSharedLibraryExtensions returns only shared library extensions
func GetSharedLibraryExtensions() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{".dylib"}
	case "windows":
		return []string{".dll"}
	default:
		return []string{".so"}
	}
}

func isStaticExt(ext string) bool {
	return ext == ".a" || ext == ".lib"
}
