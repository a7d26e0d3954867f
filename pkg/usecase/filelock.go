package usecase

import (
	"github.com/gofrs/flock"
)

// withFileLock runs fn while holding the advisory lock file next to path.
// Readers share the lock, writers hold it exclusively.
func withFileLock(path string, exclusive bool, fn func() error) error {
	lock := flock.New(path + ".lock")

	var err error
	if exclusive {
		err = lock.Lock()
	} else {
		err = lock.RLock()
	}
	if err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
