package filestore

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func TestLockManager(t *testing.T) {
	paths := Paths{Root: t.TempDir()}
	sessionA := "408b0123-3e0c-4dcd-b95c-d09d0c35c1de"
	sessionB := "508b0123-3e0c-4dcd-b95c-d09d0c35c1de"

	t.Run("lock acquisition appends an audit line", func(t *testing.T) {
		lm := NewLockManager(paths)
		defer lm.ReleaseAll()
		if err := lm.LockSession(sessionA); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lockPath, _ := paths.LockFile(sessionA)
		content, err := os.ReadFile(lockPath)
		if err != nil {
			t.Fatalf("reading lock file: %v", err)
		}
		if !strings.Contains(string(content), "Lock acquired by pid") {
			t.Errorf("missing audit line: %q", string(content))
		}
	})

	t.Run("repeated acquisition is a no-op", func(t *testing.T) {
		lm := NewLockManager(paths)
		defer lm.ReleaseAll()
		if err := lm.LockSession(sessionA); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := lm.LockSession(sessionA); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lm.HeldCount() != 1 {
			t.Errorf("expected 1 held lock, got %d", lm.HeldCount())
		}
	})

	t.Run("held lock bound enforced", func(t *testing.T) {
		lm := NewLockManagerWithLimit(paths, 1)
		defer lm.ReleaseAll()
		if err := lm.LockSession(sessionA); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := lm.LockSession(sessionB); !errors.Is(err, ErrTooManyLocks) {
			t.Errorf("expected ErrTooManyLocks, got %v", err)
		}
	})

	t.Run("release clears the registry", func(t *testing.T) {
		lm := NewLockManager(paths)
		if err := lm.LockSession(sessionA); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := lm.LockSession(sessionB); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lm.ReleaseAll()
		if lm.HeldCount() != 0 {
			t.Errorf("expected 0 held locks, got %d", lm.HeldCount())
		}
		// Lock again after release, the file still exists.
		if err := lm.LockSession(sessionA); err != nil {
			t.Errorf("relock after release failed: %v", err)
		}
		lm.ReleaseAll()
	})

	t.Run("invalid session id rejected", func(t *testing.T) {
		lm := NewLockManager(paths)
		defer lm.ReleaseAll()
		if err := lm.LockSession("../../etc/passwd"); err == nil {
			t.Error("should produce error")
		}
		if lm.HeldCount() != 0 {
			t.Errorf("expected 0 held locks, got %d", lm.HeldCount())
		}
	})

	t.Run("unset root rejected", func(t *testing.T) {
		lm := NewLockManager(Paths{})
		if err := lm.LockSession(sessionA); !errors.Is(err, ErrRootNotSet) {
			t.Errorf("expected ErrRootNotSet, got %v", err)
		}
	})
}
