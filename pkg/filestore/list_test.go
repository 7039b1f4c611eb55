package filestore

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestListSessionIDs(t *testing.T) {
	st := newTestStore(t)

	t.Run("empty store", func(t *testing.T) {
		ids, err := st.ListSessionIDs()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("expected no ids, got %v", ids)
		}
	})

	t.Run("lists sessions across shards, sorted", func(t *testing.T) {
		created := []string{}
		for i := 0; i < 3; i++ {
			ses := newTestSession(t, st)
			created = append(created, ses.SessionID)
		}
		sort.Strings(created)

		ids, err := st.ListSessionIDs()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(ids) != len(created) {
			t.Fatalf("expected %d ids, got %d", len(created), len(ids))
		}
		for i := range created {
			if ids[i] != created[i] {
				t.Errorf("id %d: expected %s, got %s", i, created[i], ids[i])
			}
		}
	})

	t.Run("temp and stray files skipped", func(t *testing.T) {
		ses := newTestSession(t, st)
		dir, _ := st.Paths.SessionDir(ses.SessionID)
		for _, name := range []string{"write." + ses.SessionID, "notes.txt"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o640); err != nil {
				t.Fatalf("writing stray file: %v", err)
			}
		}

		ids, err := st.ListSessionIDs()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, id := range ids {
			if id == "notes.txt" || id == "write."+ses.SessionID {
				t.Errorf("stray file listed: %s", id)
			}
		}
	})
}
