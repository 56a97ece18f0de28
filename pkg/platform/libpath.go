package platform

import "runtime"

// Loader search path variables per OS.
const (
	LinuxLibraryPathVar   = "LD_LIBRARY_PATH"
	DarwinLibraryPathVar  = "DYLD_LIBRARY_PATH"
	WindowsLibraryPathVar = "PATH"
)

// LibraryPathVar maps a GOOS value to its dynamic loader search path
// variable. Windows has no dedicated variable; DLLs are found through PATH.
func LibraryPathVar(goos string) string {
	switch goos {
	case "darwin":
		return DarwinLibraryPathVar
	case "windows":
		return WindowsLibraryPathVar
	default:
		return LinuxLibraryPathVar
	}
}

// HostLibraryPathVar is LibraryPathVar for the running OS.
func HostLibraryPathVar() string {
	return LibraryPathVar(runtime.GOOS)
}

// ListSeparator returns the path-list separator used by goos.
func ListSeparator(goos string) rune {
	if goos == "windows" {
		return ';'
	}
	return ':'
}
