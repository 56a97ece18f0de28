package platform

import (
	"fmt"
	"runtime"
)

// Platform represents the detected system platform
type Platform struct {
	OS        string   // linux, darwin, windows
	Arch      string   // amd64, arm64, 386, arm
	Available []string // Package registries reachable from this host
	Preferred string   // Registry backend used for name aliasing
}

// Detect detects the current platform and the package registries available on it
func Detect() (*Platform, error) {
	p := &Platform{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Available: []string{},
	}

	if commandExists("nix") || commandExists("nix-build") || dirExists("/nix/store") {
		p.Available = append(p.Available, "nix")
	}
	if commandExists("brew") {
		p.Available = append(p.Available, "brew")
	}
	if commandExists("dpkg") {
		p.Available = append(p.Available, "apt")
	}

	switch p.OS {
	case "darwin":
		if contains(p.Available, "nix") {
			p.Preferred = "nix"
		} else if contains(p.Available, "brew") {
			p.Preferred = "brew"
		}
	case "linux", "windows":
		if contains(p.Available, "nix") {
			p.Preferred = "nix"
		}
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", p.OS)
	}

	if p.Preferred == "" && len(p.Available) > 0 {
		p.Preferred = p.Available[0]
	}

	return p, nil
}

// LibraryPathVar returns the variable the dynamic loader reads on this OS
func (p *Platform) LibraryPathVar() string {
	return LibraryPathVar(p.OS)
}

// String returns a string representation of the platform
func (p *Platform) String() string {
	return fmt.Sprintf("%s/%s (available: %v, preferred: %s)",
		p.OS, p.Arch, p.Available, p.Preferred)
}
