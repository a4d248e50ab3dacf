package process

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestExecSyncCapturesStdout(t *testing.T) {
	name, args := echoCommand("hello")
	result, err := ExecSync(context.Background(), name, args, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(result.Stdout), "hello") {
		t.Fatalf("stdout = %q, want it to contain %q", result.Stdout, "hello")
	}
	if result.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0", result.ExitCode)
	}
}

func TestExecDeliversResultAsynchronously(t *testing.T) {
	name, args := echoCommand("async")
	done := make(chan *Result, 1)
	Exec(context.Background(), name, args, Options{}, func(r *Result, err error) {
		if err != nil {
			t.Error(err)
		}
		done <- r
	})
	result := <-done
	if !strings.Contains(string(result.Stdout), "async") {
		t.Fatalf("stdout = %q, want it to contain %q", result.Stdout, "async")
	}
}

func TestExecSyncReportsNonzeroExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exit code probe uses a POSIX shell builtin")
	}
	result, err := ExecSync(context.Background(), "/bin/sh", []string{"-c", "exit 3"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", result.ExitCode)
	}
}

func echoCommand(text string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/c", "echo", text}
	}
	return "echo", []string{text}
}
