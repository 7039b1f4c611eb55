package filestore

import (
	"fmt"
	"path/filepath"
)

// Paths maps survey and session identifiers to on-disk locations below a
// single root data directory:
//
//	surveys/<name>/current           live survey definition
//	surveys/<name>/<sha1>            immutable snapshot
//	sessions/<p4>/<session id>       session file
//	sessions/<p4>/write.<session id> atomic-save temp file
//	locks/<p4>/lock.<session id>     advisory lock file
//
// where <p4> is the first four characters of the session id, sharding the
// directories so no single directory accumulates every session.
type Paths struct {
	Root string
}

const sessionPrefixLen = 4

// Resolve joins the root directory with a relative suffix. It fails when
// the root is unset.
func (p Paths) Resolve(rel string) (string, error) {
	if p.Root == "" {
		return "", ErrRootNotSet
	}
	return filepath.Join(p.Root, rel), nil
}

func sessionPrefix(sessionID string) string {
	return sessionID[:sessionPrefixLen]
}

func (p Paths) SurveyDir(surveyName string) (string, error) {
	return p.Resolve(filepath.Join("surveys", surveyName))
}

// SurveyCurrentFile is the live, editable survey definition.
func (p Paths) SurveyCurrentFile(surveyName string) (string, error) {
	return p.Resolve(filepath.Join("surveys", surveyName, "current"))
}

// SurveySnapshotFile is the content-addressed pinned copy of a definition.
func (p Paths) SurveySnapshotFile(surveyName, hash string) (string, error) {
	return p.Resolve(filepath.Join("surveys", surveyName, hash))
}

func (p Paths) SessionDir(sessionID string) (string, error) {
	return p.Resolve(filepath.Join("sessions", sessionPrefix(sessionID)))
}

func (p Paths) SessionFile(sessionID string) (string, error) {
	return p.Resolve(filepath.Join("sessions", sessionPrefix(sessionID), sessionID))
}

// SessionWriteFile is the temp file a save writes before renaming it over
// the canonical session file.
func (p Paths) SessionWriteFile(sessionID string) (string, error) {
	return p.Resolve(filepath.Join("sessions", sessionPrefix(sessionID), fmt.Sprintf("write.%s", sessionID)))
}

func (p Paths) LockDir(sessionID string) (string, error) {
	return p.Resolve(filepath.Join("locks", sessionPrefix(sessionID)))
}

func (p Paths) LockFile(sessionID string) (string, error) {
	return p.Resolve(filepath.Join("locks", sessionPrefix(sessionID), fmt.Sprintf("lock.%s", sessionID)))
}
