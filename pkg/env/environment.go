package env

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/arc-language/devshell/pkg/descriptor"
	"github.com/arc-language/devshell/pkg/platform"
)

// ErrUnsupportedShell indicates an activation script was requested for an unknown shell
var ErrUnsupportedShell = errors.New("unsupported shell")

// Environment is the immutable set of variables derived from a package set.
type Environment struct {
	vars       []Variable
	libraryVar string
	separator  rune
	libDirs    []string
}

// New derives the environment for set. The library path variable is always
// first and always present, even when no package exposes a library
// directory.
func New(set *descriptor.PackageSet, opts Options) *Environment {
	if opts.LibraryVar == "" {
		opts.LibraryVar = platform.HostLibraryPathVar()
	}
	if opts.Separator == 0 {
		opts.Separator = os.PathListSeparator
	}

	libDirs := set.LibraryDirs()
	e := &Environment{
		libraryVar: opts.LibraryVar,
		separator:  opts.Separator,
		libDirs:    libDirs,
	}

	e.vars = append(e.vars, Variable{
		Name:  opts.LibraryVar,
		Value: descriptor.JoinLibraryPath(libDirs, opts.Separator),
	})

	names := make([]string, 0, len(opts.Static))
	for name := range opts.Static {
		if name == opts.LibraryVar {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.vars = append(e.vars, Variable{Name: name, Value: opts.Static[name]})
	}

	if opts.Name != "" {
		e.vars = append(e.vars, Variable{Name: NameVar, Value: opts.Name})
	}
	if opts.Fingerprint != "" {
		e.vars = append(e.vars, Variable{Name: FingerprintVar, Value: opts.Fingerprint})
	}

	return e
}

// Variables returns a copy of the variables in export order.
func (e *Environment) Variables() []Variable {
	out := make([]Variable, len(e.vars))
	copy(out, e.vars)
	return out
}

// LibraryVar returns the name of the loader search path variable.
func (e *Environment) LibraryVar() string {
	return e.libraryVar
}

// LibraryPath returns the derived library search path.
func (e *Environment) LibraryPath() string {
	return e.vars[0].Value
}

// LibraryDirs returns the library directories in declaration order.
func (e *Environment) LibraryDirs() []string {
	out := make([]string, len(e.libDirs))
	copy(out, e.libDirs)
	return out
}

// Lookup returns the value of a devshell variable.
func (e *Environment) Lookup(name string) (string, bool) {
	for _, v := range e.vars {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

// prepends reports whether the variable is merged in front of an inherited
// value instead of replacing it. PATH carries the library path on Windows,
// and replacing it would hide every executable.
func (e *Environment) prepends(name string) bool {
	return name == "PATH"
}

// foldNames makes variable names case-insensitive, as they are on Windows.
var foldNames = runtime.GOOS == "windows"

// envKey returns the lookup key for the NAME=value entry kv. A leading '='
// belongs to the name, as in the Windows per-drive entry "=C:=C:\\".
func envKey(kv string) string {
	start := 0
	if strings.HasPrefix(kv, "=") {
		start = 1
	}
	name := kv
	if i := strings.IndexByte(kv[start:], '='); i >= 0 {
		name = kv[:start+i]
	}
	if foldNames {
		return strings.ToUpper(name)
	}
	return name
}

// Environ merges the environment over base, a list in os.Environ() form.
// Existing entries are replaced in place, new ones are appended. base is
// not modified.
func (e *Environment) Environ(base []string) []string {
	out := make([]string, 0, len(base)+len(e.vars))
	index := make(map[string]int, len(base))

	for _, kv := range base {
		key := envKey(kv)
		if j, ok := index[key]; ok {
			out[j] = kv
			continue
		}
		index[key] = len(out)
		out = append(out, kv)
	}

	for _, v := range e.vars {
		value := v.Value
		key := envKey(v.Name)
		j, exists := index[key]

		if exists && e.prepends(v.Name) {
			_, inherited, _ := strings.Cut(out[j], "=")
			switch {
			case value == "":
				value = inherited
			case inherited != "":
				value = value + string(e.separator) + inherited
			}
		}

		if exists {
			out[j] = v.Name + "=" + value
			continue
		}
		index[key] = len(out)
		out = append(out, v.Name+"="+value)
	}

	return out
}

// ActivateScript renders shell code that exports the environment when
// evaluated, e.g. eval "$(devshell env --shell bash)".
func (e *Environment) ActivateScript(shell string) (string, error) {
	var b strings.Builder

	switch shell {
	case "bash", "zsh", "sh":
		b.WriteString("# devshell environment\n")
		for _, v := range e.vars {
			if e.prepends(v.Name) {
				fmt.Fprintf(&b, "export %s=%s\"${%s:+%c$%s}\"\n", v.Name, quotePOSIX(v.Value), v.Name, e.separator, v.Name)
				continue
			}
			fmt.Fprintf(&b, "export %s=%s\n", v.Name, quotePOSIX(v.Value))
		}
	case "fish":
		b.WriteString("# devshell environment\n")
		for _, v := range e.vars {
			if e.prepends(v.Name) {
				fmt.Fprintf(&b, "set -gx %s %s $%s\n", v.Name, quoteFish(v.Value), v.Name)
				continue
			}
			fmt.Fprintf(&b, "set -gx %s %s\n", v.Name, quoteFish(v.Value))
		}
	default:
		return "", fmt.Errorf("%w: %s (supported: bash, zsh, sh, fish)", ErrUnsupportedShell, shell)
	}

	return b.String(), nil
}

// quotePOSIX single-quotes s for sh-compatible shells.
func quotePOSIX(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// quoteFish single-quotes s for fish, where only \ and ' are special.
func quoteFish(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}
