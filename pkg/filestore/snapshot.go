package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gardners/surveysystem-sub000/pkg/hashing"
)

// CreateSurveySnapshot hashes the survey's current definition file and, if
// no snapshot for that hash exists yet, copies the definition byte for byte
// into place. The copy goes through a temp file named with pid, timestamp
// and hash, then a rename; a reader can never observe a partially written
// snapshot. Returns the content hash.
//
// This pins a session's survey definition at creation time: later edits to
// the current definition produce a different hash and leave existing
// snapshots untouched.
func (p Paths) CreateSurveySnapshot(surveyName string) (string, error) {
	currentPath, err := p.SurveyCurrentFile(surveyName)
	if err != nil {
		return "", err
	}

	hash, err := hashing.HashFile(currentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: '%s'", ErrSurveyNotFound, surveyName)
		}
		return "", fmt.Errorf("%w: hashing survey definition: %s", ErrStorage, err.Error())
	}

	snapshotPath, err := p.SurveySnapshotFile(surveyName, hash)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(snapshotPath); err == nil {
		// Snapshot for this content already pinned.
		return hash, nil
	}

	tempPath := filepath.Join(filepath.Dir(snapshotPath),
		fmt.Sprintf("snapshot.%d.%d.%s", os.Getpid(), time.Now().UnixNano(), hash))

	if err := copyFile(currentPath, tempPath); err != nil {
		return "", fmt.Errorf("%w: writing snapshot temp file: %s", ErrStorage, err.Error())
	}
	if err := os.Rename(tempPath, snapshotPath); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("%w: renaming snapshot into place: %s", ErrStorage, err.Error())
	}
	return hash, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
