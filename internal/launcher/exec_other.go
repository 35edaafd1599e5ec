//go:build !unix

package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Exec runs the target command and forwards its exit code. Platforms without
// a process-image replacement primitive get spawn-and-wait semantics: the
// launcher stays in the process tree until the child exits.
func Exec(t Target) error {
	if len(t.Argv) == 0 {
		return fmt.Errorf("empty launch target")
	}

	cmd := exec.Command(t.Program(), t.Args()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("run %s: %w", t.Program(), err)
	}
	os.Exit(0)
	return nil
}
