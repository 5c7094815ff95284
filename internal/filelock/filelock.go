// Package filelock provides flock-guarded atomic writes for output
// artifacts, so concurrent singlefile invocations targeting the same
// artifact can never interleave partial writes.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ArtifactLock wraps a flock file lock coordinating access to one artifact.
type ArtifactLock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock for the given lock-file path.
func New(path string) *ArtifactLock {
	return &ArtifactLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (al *ArtifactLock) Lock() error {
	if err := al.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", al.path, err)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking. Returns true if
// acquired, false if another process holds it.
func (al *ArtifactLock) TryLock() (bool, error) {
	acquired, err := al.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to try lock on %s: %w", al.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (al *ArtifactLock) Unlock() error {
	if err := al.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", al.path, err)
	}
	return nil
}

// AtomicWrite writes data to path via a temp file and rename, so readers
// never observe a partially written artifact. The temp file is created in
// the target's directory to keep the rename on one filesystem.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Rename succeeded; disarm the cleanup.
	tempFile = nil

	return nil
}

// LockAndWrite acquires an exclusive lock on "<path>.lock", atomically
// writes the artifact, and releases the lock. This is the write path every
// output plugin goes through.
func LockAndWrite(path string, data []byte) error {
	lock := New(path + ".lock")

	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	return AtomicWrite(path, data)
}
