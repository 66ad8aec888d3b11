// Package runlock keeps periodic invocations from overlapping.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another invocation holds the lock.
var ErrLocked = errors.New("another finbrief run is in progress")

type Lock struct {
	path string
	lock *flock.Flock
}

// DefaultPath is the lock file used when none is configured.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), "finbrief", "finbrief.lock")
}

// Acquire takes the lock at path without blocking.
func Acquire(path string) (*Lock, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}
	return &Lock{path: path, lock: l}, nil
}

func (l *Lock) Path() string { return l.path }

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
