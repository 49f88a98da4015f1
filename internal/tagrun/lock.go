package tagrun

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"tagres/internal/faults"
)

// ErrOutputLocked reports that another run holds the output directory.
var ErrOutputLocked = errors.New("output directory is locked by another run")

// OutputLock guards an output directory against concurrent runs.
type OutputLock struct {
	lock *flock.Flock
}

// LockPath returns the lock file used for dir. It sits beside the directory,
// so cleaning the output does not drop a held lock. Runs skip it when the
// output lives inside a resource directory.
func LockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// LockOutput acquires the lock for dir without blocking.
func LockOutput(dir string) (*OutputLock, error) {
	path := LockPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, faults.Wrap(faults.ErrIO, "tagrun", "lock", filepath.Dir(path), err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrIO, "tagrun", "lock", path, err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrIO, "tagrun", "lock", path, ErrOutputLocked)
	}
	return &OutputLock{lock: lock}, nil
}

// Path returns the lock file location.
func (l *OutputLock) Path() string {
	return l.lock.Path()
}

// Release unlocks the output directory. The lock file is left in place.
func (l *OutputLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release %s: %w", l.lock.Path(), err)
	}
	return nil
}
