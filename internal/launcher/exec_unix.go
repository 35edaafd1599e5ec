//go:build unix

package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Exec replaces the current process image with the target command. It only
// returns on failure; startup failures of the target itself are the exec
// mechanism's to report.
func Exec(t Target) error {
	if len(t.Argv) == 0 {
		return fmt.Errorf("empty launch target")
	}

	path, err := exec.LookPath(t.Program())
	if err != nil {
		return fmt.Errorf("locate %s: %w", t.Program(), err)
	}

	if err := syscall.Exec(path, t.Argv, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
