package filestore

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/gardners/surveysystem-sub000/pkg/survey/validate"
)

// DefaultMaxLocks bounds how many session locks a single process may hold
// at once. A request touches one session, so the bound is generous.
const DefaultMaxLocks = 16

type heldLock struct {
	path string
	file *os.File
}

// LockManager is the per-process registry of exclusive advisory session
// locks. A lock is acquired at most once per session per process lifetime
// (repeated acquisition is a no-op) and the whole set is released in bulk
// at the end of a request or command. The OS drops the locks automatically
// if the process dies, which is the safety net for abnormal termination.
//
// LockManager is not safe for concurrent use: the scheduling model is one
// process per request.
type LockManager struct {
	paths Paths
	max   int
	held  []heldLock
}

func NewLockManager(paths Paths) *LockManager {
	return &LockManager{paths: paths, max: DefaultMaxLocks}
}

// NewLockManagerWithLimit overrides the held-lock bound, mainly for tests.
func NewLockManagerWithLimit(paths Paths, max int) *LockManager {
	return &LockManager{paths: paths, max: max}
}

// LockSession takes the exclusive advisory lock for the session, blocking
// until it is granted. If this process already holds the lock the call
// returns immediately. An audit line with timestamp and pid is appended to
// the lock file on acquisition.
func (lm *LockManager) LockSession(sessionID string) error {
	if err := validate.SessionID(sessionID); err != nil {
		return err
	}

	lockDir, err := lm.paths.LockDir(sessionID)
	if err != nil {
		return err
	}
	lockPath, err := lm.paths.LockFile(sessionID)
	if err != nil {
		return err
	}

	for _, l := range lm.held {
		if l.path == lockPath {
			// Already held by this process, nothing to do.
			return nil
		}
	}

	if len(lm.held) >= lm.max {
		return fmt.Errorf("%w: %d locks held", ErrTooManyLocks, len(lm.held))
	}

	if err := os.MkdirAll(lockDir, 0o750); err != nil {
		return fmt.Errorf("%w: creating lock directory: %s", ErrLockFailed, err.Error())
	}

	f, err := os.OpenFile(lockPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("%w: opening '%s': %s", ErrLockFailed, lockPath, err.Error())
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("%w: flock('%s'): %s", ErrLockFailed, lockPath, err.Error())
	}

	fmt.Fprintf(f, "%s:Lock acquired by pid %d.\n", time.Now().Format("2006/01/02.15:04:05.000000"), os.Getpid())

	lm.held = append(lm.held, heldLock{path: lockPath, file: f})
	return nil
}

// ReleaseAll unlocks and closes every held lock and clears the registry.
// Callers run this at the end of every request or command, success or not.
func (lm *LockManager) ReleaseAll() {
	for _, l := range lm.held {
		if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
			slog.Error("could not release session lock", slog.String("path", l.path), slog.String("error", err.Error()))
		}
		if err := l.file.Close(); err != nil {
			slog.Error("could not close lock file", slog.String("path", l.path), slog.String("error", err.Error()))
		}
	}
	lm.held = lm.held[:0]
}

// HeldCount reports how many locks this process currently holds.
func (lm *LockManager) HeldCount() int {
	return len(lm.held)
}
