package file

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Advisory whole-file locks. flock blocks until the lock is granted; there
// is no wait timeout, so a stalled holder stalls other workers on the same
// file.

func lockShared(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_SH); err != nil {
		return fmt.Errorf("lock %s (shared): %w", f.Name(), err)
	}
	return nil
}

func lockExclusive(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("lock %s (exclusive): %w", f.Name(), err)
	}
	return nil
}

func unlock(f *os.File) {
	// Errors here are unrecoverable and the lock dies with the fd anyway.
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
