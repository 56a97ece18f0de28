// descriptor.go
package devshell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/arc-language/devshell/pkg/descriptor"
)

// LoadDescriptor reads the descriptor at path. With an empty path it reads
// devshell.yaml from the working directory and falls back to the built-in
// descriptor when there is none.
func LoadDescriptor(path string) (*Descriptor, error) {
	if path != "" {
		return descriptor.Load(path)
	}

	d, err := descriptor.Load(descriptor.DefaultFileName)
	if errors.Is(err, fs.ErrNotExist) {
		return descriptor.Default(), nil
	}
	return d, err
}

// WriteTemplate writes the built-in descriptor to path as YAML. An existing
// file is only replaced when force is set.
func WriteTemplate(path string, force bool) error {
	if path == "" {
		path = descriptor.DefaultFileName
	}
	format, err := descriptor.FormatFromPath(path)
	if err != nil {
		return err
	}
	if format != descriptor.FormatYAML {
		return fmt.Errorf("%w: templates are written as YAML, not %s", ErrUnsupportedFormat, format)
	}

	data, err := descriptor.Template()
	if err != nil {
		return err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
