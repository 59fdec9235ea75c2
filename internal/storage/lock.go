package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// LockFileName guards read-modify-write cycles on a task directory.
const LockFileName = ".lock"

// FileLock is a cross-process advisory lock based on flock(2).
type FileLock struct {
	file *os.File
	path string
}

// NewFileLock creates a lock on path. The file is created on first use.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

func (l *FileLock) open() (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	return f, nil
}

// TryLock attempts to take the lock without blocking. It returns false when
// another holder has it.
func (l *FileLock) TryLock() (bool, error) {
	f, err := l.open()
	if err != nil {
		return false, err
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return false, nil
		}
		return false, fmt.Errorf("try lock: %w", err)
	}

	l.file = f
	return true, nil
}

// Lock polls TryLock with backoff until it succeeds or ctx is done.
func (l *FileLock) Lock(ctx context.Context) error {
	interval := 10 * time.Millisecond

	for {
		acquired, err := l.TryLock()
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("acquire lock %s: %w", l.path, ctx.Err())
		case <-time.After(interval):
		}
		if interval < 200*time.Millisecond {
			interval *= 2
		}
	}
}

// Unlock releases the lock. Unlocking twice is a no-op.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close lock file: %w", err)
	}

	l.file = nil
	return nil
}

// WithLock runs fn while holding the lock at lockPath.
func WithLock(ctx context.Context, lockPath string, fn func() error) error {
	lock := NewFileLock(lockPath)
	if err := lock.Lock(ctx); err != nil {
		return err
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
