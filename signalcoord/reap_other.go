//go:build !unix

package signalcoord

import "errors"

// PollReapable is unavailable off unix; the self-check hook it backs is
// skipped on such platforms.
func PollReapable() (pid int, exited bool, err error) {
	return 0, false, errors.New("signalcoord: PollReapable unsupported on this platform")
}
