package env

import (
	"os"
	"path/filepath"
	"strings"
)

// FindLibrary searches for a specific library by name
// Returns the first match found in the library directories, in order
func (e *Environment) FindLibrary(name string) *Library {
	return e.find(name, GetLibraryExtensions())
}

// FindSharedLibrary searches specifically for shared libraries (.so, .dylib, .dll)
func (e *Environment) FindSharedLibrary(name string) *Library {
	return e.find(name, GetSharedLibraryExtensions())
}

func (e *Environment) find(name string, extensions []string) *Library {
	for _, dir := range e.libDirs {
		for _, ext := range extensions {
			// Try lib{name}{ext} pattern (e.g., libEGL.so)
			filename := "lib" + name + ext
			fullPath := filepath.Join(dir, filename)

			if fileExists(fullPath) {
				return &Library{
					Name:     name,
					Path:     fullPath,
					Type:     ext,
					IsStatic: isStaticExt(ext),
				}
			}

			// Try versioned: lib{name}{ext}.* (e.g., libEGL.so.1)
			matches, _ := filepath.Glob(filepath.Join(dir, filename+".*"))
			if len(matches) > 0 {
				return &Library{
					Name:     name,
					Path:     matches[0],
					Type:     ext,
					IsStatic: isStaticExt(ext),
				}
			}
		}
	}

	return nil
}

// FindAllLibraries returns all libraries in the environment
func (e *Environment) FindAllLibraries() []*Library {
	var libraries []*Library
	extensions := GetLibraryExtensions()

	seen := make(map[string]bool)

	for _, dir := range e.libDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name := entry.Name()
			for _, ext := range extensions {
				if !strings.HasSuffix(name, ext) && !strings.Contains(name, ext+".") {
					continue
				}
				fullPath := filepath.Join(dir, name)
				if seen[fullPath] {
					break
				}
				seen[fullPath] = true

				libraries = append(libraries, &Library{
					Name:     libraryName(name, ext),
					Path:     fullPath,
					Type:     ext,
					IsStatic: isStaticExt(ext),
				})
				break
			}
		}
	}

	return libraries
}

// libraryName strips the lib prefix and everything from the extension on:
// libwayland-client.so.0.22.0 -> wayland-client
func libraryName(filename, ext string) string {
	name := strings.TrimPrefix(filename, "lib")
	if i := strings.Index(name, ext); i >= 0 {
		name = name[:i]
	}
	return name
}

// Missing returns the names that FindSharedLibrary cannot locate, in input order.
func (e *Environment) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		if e.FindSharedLibrary(name) == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
