// platform.go
package nix

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform represents a Nix system double such as "x86_64-linux"
type Platform string

const (
	PlatformX8664Linux    Platform = "x86_64-linux"
	PlatformI686Linux     Platform = "i686-linux"
	PlatformAarch64Linux  Platform = "aarch64-linux"
	PlatformArmv7lLinux   Platform = "armv7l-linux"
	PlatformX8664Darwin   Platform = "x86_64-darwin"
	PlatformAarch64Darwin Platform = "aarch64-darwin"
)

// DetectPlatform returns the Nix system of the running host
func DetectPlatform() (Platform, error) {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}

// PlatformFor maps a GOOS/GOARCH pair to its Nix system
func PlatformFor(goos, goarch string) (Platform, error) {
	arch := map[string]string{
		"amd64": "x86_64",
		"386":   "i686",
		"arm64": "aarch64",
		"arm":   "armv7l",
	}[goarch]

	switch goos {
	case "linux":
		if arch == "" {
			return "", fmt.Errorf("unsupported Linux architecture: %s", goarch)
		}
	case "darwin":
		if goarch != "amd64" && goarch != "arm64" {
			return "", fmt.Errorf("unsupported Darwin architecture: %s", goarch)
		}
	default:
		return "", fmt.Errorf("unsupported operating system: %s", goos)
	}

	return Platform(arch + "-" + goos), nil
}

// String returns the string representation of the platform
func (p Platform) String() string {
	return string(p)
}

// IndexFileName is the base name of the attribute index for this system
// in the registry repository, e.g. "x86_64_linux.json".
func (p Platform) IndexFileName() string {
	return strings.ReplaceAll(string(p), "-", "_") + ".json"
}
