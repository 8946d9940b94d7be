package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 250 * time.Millisecond

// DBLock is an advisory lock on <db>.lock, held by commands that write the state database.
type DBLock struct {
	lock *flock.Flock
	path string
}

func NewDBLock(dbPath string) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolving db path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, err
	}
	path := absPath + ".lock"
	return &DBLock{lock: flock.New(path), path: path}, nil
}

// Lock blocks until the lock is held or ctx is done.
func (l *DBLock) Lock(ctx context.Context) error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.path, err)
	}
	if ok {
		return nil
	}

	Log.Warnf("%s is held by another animesync command, retrying every %s", l.path, lockRetryDelay)
	ok, err = l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("locking %s: gave up", l.path)
	}
	return nil
}

func (l *DBLock) Unlock() error {
	err := l.lock.Unlock()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlocking %s: %w", l.path, err)
	}
	return nil
}

// GetAbsDBPath resolves dbPath, or ~/.config/animesync/animesync.sqlite when empty.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath != "" {
		return filepath.Abs(dbPath)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "animesync", "animesync.sqlite"), nil
}
