// cli.go
package nix

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	nixpath "zombiezen.com/go/nix"

	"github.com/arc-language/devshell/pkg/descriptor"
)

// FindBinary resolves a Nix binary by name, checking PATH first and then
// the Determinate Nix profile directory.
func FindBinary(name string) (string, error) {
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	determinatePath := filepath.Join(determinateProfileBin, name)
	if _, err := os.Stat(determinatePath); err == nil {
		return determinatePath, nil
	}

	return "", fmt.Errorf("%s not found on PATH or at %s", name, determinatePath)
}

// runFunc executes the nix binary with args and returns stdout.
type runFunc func(ctx context.Context, args ...string) (string, error)

// runNix resolves the nix binary, runs it and returns stdout. Stderr is
// captured for error messages.
func runNix(ctx context.Context, args ...string) (string, error) {
	binaryPath, err := FindBinary("nix")
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, binaryPath, args...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", formatError("nix", args, &stderr, err)
	}
	return stdout.String(), nil
}

// formatError prefers the nix diagnostic on stderr over the exec error.
func formatError(binaryName string, args []string, stderr *bytes.Buffer, err error) error {
	commandString := binaryName + " " + strings.Join(args, " ")
	stderrText := strings.TrimSpace(stderr.String())
	if stderrText != "" {
		return fmt.Errorf("%s: %s", commandString, stderrText)
	}
	return fmt.Errorf("%s: %w", commandString, err)
}

// CLI resolves packages by asking the nix command to realize every output
// of <flake>#<attribute>. Building and fetching stay with Nix; devshell only
// reads the printed store paths.
type CLI struct {
	flake  string
	logger *slog.Logger
	run    runFunc
}

// NewCLI creates a resolver for attributes of flake (DefaultFlake when empty).
func NewCLI(flake string, logger *slog.Logger) *CLI {
	if flake == "" {
		flake = DefaultFlake
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CLI{flake: flake, logger: logger, run: runNix}
}

// Available reports whether a nix binary can be found.
func (c *CLI) Available() bool {
	_, err := FindBinary("nix")
	return err == nil
}

// Resolve implements descriptor.Resolver.
func (c *CLI) Resolve(ctx context.Context, ref descriptor.Reference) (descriptor.Resolution, error) {
	installable := fmt.Sprintf("%s#%s^*", c.flake, ref.Name)
	c.logger.Debug("realizing package outputs", "installable", installable)

	out, err := c.run(ctx, "build", "--no-link", "--print-out-paths", installable)
	if err != nil {
		if isMissingAttribute(err) {
			return descriptor.Resolution{}, fmt.Errorf("%w: %s", descriptor.ErrPackageNotFound, installable)
		}
		return descriptor.Resolution{}, err
	}

	paths := strings.Fields(out)
	if len(paths) == 0 {
		return descriptor.Resolution{}, fmt.Errorf("nix build %s printed no store paths", installable)
	}

	return pickOutput(ref.Name, paths), nil
}

func isMissingAttribute(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "does not provide attribute") ||
		strings.Contains(msg, "cannot find flake attribute")
}

// pickOutput chooses among the realized outputs of one package: the lib
// output when it has a library directory, then any output with one, then
// the first path.
func pickOutput(name string, paths []string) descriptor.Resolution {
	res := descriptor.Resolution{Name: name, StorePath: paths[0], Source: descriptor.SourceNix}

	bestRank := -1
	for _, p := range paths {
		libDir := libDirOf(p)
		if libDir == "" {
			continue
		}
		rank := rankOutput(outputOf(p))
		if bestRank == -1 || rank < bestRank {
			bestRank = rank
			res.StorePath = p
			res.LibDir = libDir
		}
	}
	return res
}

// outputOf guesses the output name of a realized store path from its suffix.
func outputOf(p string) string {
	sp, err := nixpath.ParseStorePath(p)
	if err != nil {
		return "out"
	}
	name := sp.Name()
	if i := strings.LastIndexByte(name, '-'); i >= 0 && knownOutputs[name[i+1:]] {
		return name[i+1:]
	}
	return "out"
}
