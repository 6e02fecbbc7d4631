//go:build !unix

package procfile

import "errors"

var errUnsupported = errors.New("background process management requires a unix platform")

func Alive(pid int) bool { return false }

func terminate(pid int) error { return errUnsupported }

// Spawn is unavailable off unix; background mode needs session-leader
// detachment.
func Spawn(binary string, args ...string) (int, error) {
	return 0, errUnsupported
}
