// internal/cli/exec.go
package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
)

// ExitError carries a child's exit status out of Execute.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// runChild runs cmd in the foreground. Interrupts reach the child through
// the terminal's process group; devshell itself waits for it to exit.
func runChild(cmd *exec.Cmd) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			code = 1
		}
		return &ExitError{Code: code}
	}
	return err
}
