// Package procfile manages the PID file that tracks a detached background
// agent, and the process operations built on it.
package procfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrNotRunning reports that no live background process is tracked: either
// the PID file is missing or the recorded process is gone.
var ErrNotRunning = errors.New("no background agent is running")

// Write records pid in the file at path, replacing any previous content.
func Write(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o644)
}

// Read returns the PID recorded at path. A missing file maps to
// ErrNotRunning; a malformed file is an error.
func Read(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotRunning
		}
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("malformed pid file %s: %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// Remove deletes the PID file. A missing file is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Status reports the PID of the live background process recorded at path.
// A stale file, one naming a process that no longer exists, is removed and
// reported as ErrNotRunning.
func Status(path string) (int, error) {
	pid, err := Read(path)
	if err != nil {
		return 0, err
	}
	if !Alive(pid) {
		_ = Remove(path)
		return 0, ErrNotRunning
	}
	return pid, nil
}

// Stop terminates the background process recorded at path and removes the
// file. Stopping an already-dead process still cleans up the file.
func Stop(path string) (int, error) {
	pid, err := Read(path)
	if err != nil {
		return 0, err
	}
	if !Alive(pid) {
		_ = Remove(path)
		return 0, ErrNotRunning
	}
	if err := terminate(pid); err != nil {
		return pid, fmt.Errorf("stop pid %d: %w", pid, err)
	}
	if err := Remove(path); err != nil {
		return pid, err
	}
	return pid, nil
}
