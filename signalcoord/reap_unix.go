//go:build unix

package signalcoord

import "golang.org/x/sys/unix"

// PollReapable performs a single non-blocking wait4(-1, WNOHANG), reporting
// whether an already-exited child is sitting unreaped. It exists for the
// descriptor/zombie self-check hook used by tests (§8's end-to-end
// scenarios): a test that spawns and waits on its own children can call
// this afterward to confirm nothing was left as a zombie.
//
// It must never be called from the production evaluation path: os/exec
// reaps a specific child by PID, and a concurrent wait4(-1, ...) here could
// steal that reap out from under it and turn a normal exit into a
// spurious ECHILD.
func PollReapable() (pid int, exited bool, err error) {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
	if err != nil {
		return 0, false, err
	}
	return wpid, wpid > 0, nil
}
