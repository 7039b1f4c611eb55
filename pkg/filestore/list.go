package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gardners/surveysystem-sub000/pkg/survey/validate"
)

// ListSessionIDs walks the sharded session directories and returns every
// session id found, sorted. Temp files from interrupted saves and anything
// that does not look like a session id are skipped.
func (st *Store) ListSessionIDs() ([]string, error) {
	root, err := st.Paths.Resolve("sessions")
	if err != nil {
		return nil, err
	}

	shards, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: reading sessions directory: %s", ErrStorage, err.Error())
	}

	ids := []string{}
	for _, shard := range shards {
		if !shard.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, shard.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: reading shard '%s': %s", ErrStorage, shard.Name(), err.Error())
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, "write.") {
				continue
			}
			if validate.SessionID(name) != nil {
				continue
			}
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
