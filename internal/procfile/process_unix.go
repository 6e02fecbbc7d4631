//go:build unix

package procfile

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// Alive reports whether a process with the given PID exists. Signal 0
// performs the existence check without delivering anything; EPERM still
// means the process is there.
func Alive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

// Spawn starts the named binary with args as a detached session leader so
// it survives the parent's terminal closing. Stdio is discarded; output
// goes to the log file the worker configures for itself. Returns the child
// PID.
func Spawn(binary string, args ...string) (int, error) {
	cmd := exec.Command(binary, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	// Release so the child is not reaped by this process exiting.
	_ = cmd.Process.Release()
	return pid, nil
}
