package filestore

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gardners/surveysystem-sub000/pkg/hashing"
	"github.com/gardners/surveysystem-sub000/pkg/survey/serialize"
	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
	"github.com/gardners/surveysystem-sub000/pkg/survey/validate"
)

// SessionMeta carries the identity information written into the header
// records of a new session. The core only stores and compares these values,
// authentication itself happens outside.
type SessionMeta struct {
	User      string
	Group     string
	Provider  types.AuthorityProvider
	Authority string
}

// Store is the session store: creation, loading, mutation and atomic
// persistence of session answer logs. A Store holds no per-session state;
// the in-memory Session during a request is exclusively owned by that
// request's call stack, and cross-process exclusion is the LockManager's
// job.
type Store struct {
	Paths Paths
}

func NewStore(root string) *Store {
	return &Store{Paths: Paths{Root: root}}
}

// NewSessionID generates a fresh 36-character lowercase session id.
func NewSessionID() string {
	return uuid.NewString()
}

// Create snapshots the survey, writes the four header records and persists
// the new session in state NEW.
func (st *Store) Create(surveyName, sessionID string, meta SessionMeta) (*types.Session, error) {
	if err := validate.SurveyID(surveyName); err != nil {
		return nil, err
	}
	if err := validate.SessionID(sessionID); err != nil {
		return nil, err
	}

	sessionPath, err := st.Paths.SessionFile(sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(sessionPath); err == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrSessionExists, sessionID)
	}

	hash, err := st.Paths.CreateSurveySnapshot(surveyName)
	if err != nil {
		return nil, err
	}
	surveyID := fmt.Sprintf("%s/%s", surveyName, hash)

	def, err := st.Paths.LoadSurveySnapshot(surveyID)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	ses := &types.Session{
		SurveyID:           surveyID,
		SurveyDescription:  def.Description,
		SessionID:          sessionID,
		NextQuestionsFlags: def.NextQuestionsFlags,
		Questions:          def.Questions,
		State:              types.StateNew,
	}
	ses.Answers = []*types.Answer{
		{UID: types.HeaderUser, Type: types.QTypeMeta, Text: meta.User, Stored: now},
		{UID: types.HeaderGroup, Type: types.QTypeMeta, Text: meta.Group, Stored: now},
		{UID: types.HeaderAuthority, Type: types.QTypeMeta, Value: int64(meta.Provider), Text: meta.Authority, Stored: now},
		{UID: types.HeaderState, Type: types.QTypeMeta, Value: int64(types.StateNew), TimeBegin: now, Stored: now},
	}
	ses.AnswerOffset = len(ses.Answers)

	if err := st.Save(ses); err != nil {
		return nil, err
	}
	return ses, nil
}

// Load reads a session file and reconstructs the full in-memory session:
// pinned questions, the complete answer log, the derived counters, the
// state from the @state header and a freshly computed consistency hash.
func (st *Store) Load(sessionID string) (*types.Session, error) {
	if err := validate.SessionID(sessionID); err != nil {
		return nil, err
	}

	path, err := st.Paths.SessionFile(sessionID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: '%s'", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("%w: opening session file: %s", ErrStorage, err.Error())
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		return nil, fmt.Errorf("%w: session file is empty", ErrStorage)
	}
	surveyID := strings.TrimSpace(scanner.Text())

	def, err := st.Paths.LoadSurveySnapshot(surveyID)
	if err != nil {
		return nil, err
	}

	ses := &types.Session{
		SurveyID:           surveyID,
		SurveyDescription:  def.Description,
		SessionID:          sessionID,
		NextQuestionsFlags: def.NextQuestionsFlags,
		Questions:          def.Questions,
	}

	inHeader := true
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		a, err := serialize.DeserializeAnswer(line, serialize.ScopeFull)
		if err != nil {
			return nil, fmt.Errorf("session '%s': %w", sessionID, err)
		}
		if inHeader && !a.IsHeader() {
			inHeader = false
		}
		if inHeader {
			ses.AnswerOffset++
		}
		if a.IsGiven() {
			ses.GivenAnswerCount++
		}
		ses.Answers = append(ses.Answers, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading session file: %s", ErrStorage, err.Error())
	}

	stateHeader := ses.HeaderAnswer(types.HeaderState)
	if stateHeader == nil {
		return nil, fmt.Errorf("%w: session '%s'", ErrMissingStateHeader, sessionID)
	}
	state := types.SessionState(stateHeader.Value)
	if !state.IsValid() || state == types.StateNone {
		return nil, fmt.Errorf("%w: session '%s' has invalid state %d", ErrMissingStateHeader, sessionID, stateHeader.Value)
	}
	ses.State = state

	ses.ConsistencyHash = GenerateConsistencyHash(ses)
	return ses, nil
}

// Save reconciles the @state header with the session's current state, then
// writes the whole session to a temp file and renames it over the canonical
// file. The rename is the sole atomicity guarantee: a concurrent reader
// either sees the previous complete file or the new one, never a partial
// write. The consistency hash is recomputed after the rename succeeds.
func (st *Store) Save(ses *types.Session) error {
	if ses == nil {
		return fmt.Errorf("%w: nil session", ErrStorage)
	}
	if err := validate.SessionID(ses.SessionID); err != nil {
		return err
	}

	stateHeader := ses.HeaderAnswer(types.HeaderState)
	if stateHeader == nil {
		return fmt.Errorf("%w: session '%s'", ErrMissingStateHeader, ses.SessionID)
	}
	if types.SessionState(stateHeader.Value) != ses.State {
		now := time.Now().Unix()
		stateHeader.Value = int64(ses.State)
		stateHeader.Stored = now
		if ses.State == types.StateClosed {
			stateHeader.TimeEnd = now
		}
	}

	dir, err := st.Paths.SessionDir(ses.SessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("%w: creating session directory: %s", ErrStorage, err.Error())
	}

	tempPath, err := st.Paths.SessionWriteFile(ses.SessionID)
	if err != nil {
		return err
	}
	finalPath, err := st.Paths.SessionFile(ses.SessionID)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("%w: opening temp file: %s", ErrStorage, err.Error())
	}
	w := bufio.NewWriter(f)

	fmt.Fprintln(w, ses.SurveyID)
	for _, a := range ses.Answers {
		fmt.Fprintln(w, serialize.SerializeAnswer(a, serialize.ScopeFull))
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("%w: writing session file: %s", ErrStorage, err.Error())
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: closing temp file: %s", ErrStorage, err.Error())
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("%w: renaming session file into place: %s", ErrStorage, err.Error())
	}

	ses.ConsistencyHash = GenerateConsistencyHash(ses)
	return nil
}

// Delete removes the session file. The answer log needs no tombstone, the
// file itself disappears. The action-legality guard does not apply here:
// only the admin CLI reaches this path.
func (st *Store) Delete(sessionID string) error {
	if err := validate.SessionID(sessionID); err != nil {
		return err
	}
	path, err := st.Paths.SessionFile(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: '%s'", ErrSessionNotFound, sessionID)
		}
		return fmt.Errorf("%w: removing session file: %s", ErrStorage, err.Error())
	}
	return nil
}

// AddAnswer inserts the answer into the session's log. Type and unit are
// copied from the matching question, never trusted from the caller. If a
// live answer for the uid exists the call fails; a tombstoned one is
// replaced in its original slot (undelete-by-replace) so the log does not
// grow. On success the session moves to OPEN. Returns the number of
// inserted/replaced answers, always 1 on success.
func (st *Store) AddAnswer(ses *types.Session, ans *types.Answer) (int, error) {
	if ses == nil || ans == nil {
		return 0, fmt.Errorf("%w: nil session or answer", ErrStorage)
	}
	if strings.HasPrefix(ans.UID, types.HeaderPrefix) {
		return 0, fmt.Errorf("%w: '%s'", ErrHeaderAnswer, ans.UID)
	}
	q := ses.QuestionByUID(ans.UID)
	if q == nil {
		return 0, fmt.Errorf("%w: '%s'", ErrNoSuchQuestion, ans.UID)
	}

	// Backend-derived fields, regardless of what the caller supplied.
	ans.Type = q.Type
	ans.Unit = q.Unit
	ans.Flags = 0
	ans.Stored = time.Now().Unix()

	if q.Type == types.QTypeSHA1Hash {
		// Stored answers only ever hold the hash of the supplied text.
		ans.Text = hashing.HashStrings(ans.Text)
	}

	if existing := ses.AnswerByUID(ans.UID); existing != nil {
		if !existing.IsDeleted() {
			return 0, fmt.Errorf("%w: '%s'", ErrAlreadyAnswered, ans.UID)
		}
		// Undelete by replacing the tombstoned record in place.
		*existing = *ans
	} else {
		ses.Answers = append(ses.Answers, ans)
	}

	ses.GivenAnswerCount++
	ses.State = types.StateOpen
	return 1, nil
}

// DeleteAnswer tombstones the answer for uid and cascades: every answer at
// a later log index is tombstoned too, because adaptive next-question logic
// may depend on answer order. Deleting a nonexistent or already tombstoned
// uid is a no-op returning 0. Returns the number of answers newly
// tombstoned.
func (st *Store) DeleteAnswer(ses *types.Session, uid string) (int, error) {
	if ses == nil {
		return 0, fmt.Errorf("%w: nil session", ErrStorage)
	}
	if strings.HasPrefix(uid, types.HeaderPrefix) {
		return 0, fmt.Errorf("%w: '%s'", ErrHeaderAnswer, uid)
	}

	target := -1
	for i := ses.AnswerOffset; i < len(ses.Answers); i++ {
		if ses.Answers[i].UID == uid {
			target = i
			break
		}
	}
	if target < 0 {
		return 0, nil
	}
	if ses.Answers[target].IsDeleted() {
		return 0, nil
	}

	now := time.Now().Unix()
	affected := 0
	for i := target; i < len(ses.Answers); i++ {
		a := ses.Answers[i]
		if a.IsDeleted() {
			continue
		}
		a.Flags |= types.AnswerDeleted
		a.Stored = now
		affected++
	}
	ses.GivenAnswerCount -= affected
	return affected, nil
}

// GenerateConsistencyHash computes the SHA1 fingerprint of where the
// session currently stands: session id, state, and the checksum-scope
// serialization of the last given answer if any. The stored timestamp is
// excluded by the checksum scope, so re-saving an unchanged session keeps
// the hash stable. Callers expose it as an ETag-style precondition token.
func GenerateConsistencyHash(ses *types.Session) string {
	parts := []string{ses.SessionID, strconv.Itoa(int(ses.State))}
	if last := ses.LastGivenAnswer(); last != nil {
		parts = append(parts, serialize.SerializeAnswer(last, serialize.ScopeChecksum))
	}
	return hashing.HashStrings(parts...)
}
