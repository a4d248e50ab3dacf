package process

import (
	"bytes"
	"context"
	"io"
	"os/exec"

	"github.com/flowforge/flowforge/pkg/logging"
	"github.com/pkg/errors"
)

// Options configures a child process invocation, the async-signature exec
// surface processors reach for instead of os/exec directly.
type Options struct {
	// Dir is the working directory for the command. Empty means the
	// caller's current directory.
	Dir string
	// Env, if non-nil, replaces the process environment entirely (as with
	// os/exec.Cmd.Env); nil inherits the caller's environment.
	Env []string
	// Stdin, if set, is written to the process' standard input before the
	// command runs to completion.
	Stdin []byte
	// Logger receives each line of standard output/error as it arrives,
	// rather than the caller having to multiplex it separately.
	Logger *logging.Logger
}

// Result is delivered to Exec's callback on completion.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Exec runs command asynchronously (on its own goroutine) and delivers the
// result to cb. Failure to even start the process is reported as err, with a
// Result holding whatever output was captured; a nonzero exit is reported via Result.ExitCode with a nil err,
// matching os/exec's own convention for *exec.ExitError.
func Exec(ctx context.Context, name string, args []string, opts Options, cb func(*Result, error)) {
	go func() {
		result, err := ExecSync(ctx, name, args, opts)
		cb(result, err)
	}()
}

// ExecSync is the synchronous equivalent of Exec, used by callers already
// running off the main pipeline goroutine (e.g. a barrier async
// continuation, or a whole-list processor's own serial loop).
func ExecSync(ctx context.Context, name string, args []string, opts Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env
	if len(opts.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(opts.Stdin)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, logger.Sublogger("stdout").Writer())
	cmd.Stderr = io.MultiWriter(&stderr, logger.Sublogger("stderr").Writer())

	runErr := cmd.Run()
	result := &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if runErr == nil {
		return result, nil
	}
	if cmd.ProcessState != nil {
		if code, codeErr := ExitCodeForProcessState(cmd.ProcessState); codeErr == nil {
			result.ExitCode = code
			return result, nil
		}
	}
	if commandNotFound(name, stderr.String()) {
		return result, errors.Errorf("command not found: %s", name)
	}
	if msg := ExtractExitErrorMessage(runErr); msg != "" {
		return result, errors.Errorf("exec %s: %s", name, msg)
	}
	return result, errors.Wrapf(runErr, "exec %s", name)
}

// commandNotFound classifies a failed launch using the shell-output
// fragments that differ between Windows and POSIX shells, used when the
// process never produced a process state to extract an exit code from (the
// command itself could not be located or started).
func commandNotFound(name, stderr string) bool {
	return OutputIsPOSIXCommandNotFound(stderr) ||
		OutputIsWindowsCommandNotFound(stderr) ||
		OutputIsWindowsInvalidCommand(stderr)
}
