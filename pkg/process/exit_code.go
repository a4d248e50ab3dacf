package process

import (
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// ExitCodeForProcessState extracts the process exit code from a process'
// post-exit state.
func ExitCodeForProcessState(state *os.ProcessState) (int, error) {
	waitStatus, ok := state.Sys().(syscall.WaitStatus)
	if !ok {
		return 0, errors.New("unable to access wait status")
	}
	return waitStatus.ExitStatus(), nil
}
