package env

// PackageLayout lists where shared libraries land within an installed package
type PackageLayout struct {
	Libraries []string // Relative paths to library directories
}

// Library represents a found library file
type Library struct {
	Name     string // Library name (e.g., "wayland-client")
	Path     string // Absolute path to library file
	Type     string // Extension: ".so", ".a", ".dylib", ".dll", ".lib"
	IsStatic bool   // True for .a files
}

// Variable is one exported name/value pair.
type Variable struct {
	Name  string
	Value string
}

// String renders the variable in NAME=value form.
func (v Variable) String() string {
	return v.Name + "=" + v.Value
}

// Options configures New.
type Options struct {
	LibraryVar  string            // Loader variable; defaults to the host's
	Separator   rune              // Path-list separator; defaults to os.PathListSeparator
	Name        string            // Exported as DEVSHELL_NAME when set
	Fingerprint string            // Exported as DEVSHELL_FINGERPRINT when set
	Static      map[string]string // Extra variables copied verbatim
}
