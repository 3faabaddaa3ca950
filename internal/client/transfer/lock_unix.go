//go:build !windows

package transfer

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

var errSourceLocked = errors.New("source file is locked by another process")

// lockShared takes a non-blocking advisory shared lock on f so the file is
// not rewritten under a cooperating writer while it streams. Filesystems
// without flock support upload unlocked.
func lockShared(f *os.File) (func(), error) {
	fd := int(f.Fd())
	err := unix.Flock(fd, unix.LOCK_SH|unix.LOCK_NB)
	switch {
	case err == nil:
		return func() { _ = unix.Flock(fd, unix.LOCK_UN) }, nil
	case errors.Is(err, unix.EWOULDBLOCK):
		return nil, fmt.Errorf("%w: %w", errSourceLocked, err)
	default:
		return func() {}, nil
	}
}
