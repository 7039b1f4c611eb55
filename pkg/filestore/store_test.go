package filestore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gardners/surveysystem-sub000/pkg/hashing"
	"github.com/gardners/surveysystem-sub000/pkg/survey/serialize"
	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

func writeSurveyFile(t *testing.T, root, name string, lines []string) {
	t.Helper()
	dir := filepath.Join(root, "surveys", name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("creating survey dir: %v", err)
	}
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "current"), []byte(content), 0o640); err != nil {
		t.Fatalf("writing survey file: %v", err)
	}
}

func demoSurveyLines() []string {
	questions := []*types.Question{
		{UID: "name", QuestionText: "What is your name?", Type: types.QTypeText},
		{UID: "age", QuestionText: "How old are you?", Type: types.QTypeInt, MinValue: 0, MaxValue: 120, Unit: "years"},
		{UID: "home", QuestionText: "Where do you live?", Type: types.QTypeLatLon},
		{UID: "secret", QuestionText: "Pick a passphrase", Type: types.QTypeSHA1Hash},
		{UID: "email", QuestionText: "Your email?", Type: types.QTypeEmail},
	}
	lines := []string{"version 1", "A small demo survey"}
	for _, q := range questions {
		lines = append(lines, serialize.SerializeQuestion(q))
	}
	return lines
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	writeSurveyFile(t, root, "demo", demoSurveyLines())
	return NewStore(root)
}

func newTestSession(t *testing.T, st *Store) *types.Session {
	t.Helper()
	ses, err := st.Create("demo", NewSessionID(), SessionMeta{
		User:      "tester",
		Group:     "testers",
		Provider:  types.AuthorityHTTPPublic,
		Authority: "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return ses
}

func mustAddAnswer(t *testing.T, st *Store, ses *types.Session, a *types.Answer) {
	t.Helper()
	if _, err := st.AddAnswer(ses, a); err != nil {
		t.Fatalf("adding answer '%s': %v", a.UID, err)
	}
}

func TestCreateSession(t *testing.T) {
	st := newTestStore(t)

	t.Run("new session has header records and state NEW", func(t *testing.T) {
		ses := newTestSession(t, st)
		if ses.State != types.StateNew {
			t.Errorf("expected NEW, got %s", ses.State)
		}
		if ses.AnswerOffset != 4 || len(ses.Answers) != 4 {
			t.Errorf("expected 4 header records, got offset %d, len %d", ses.AnswerOffset, len(ses.Answers))
		}
		for i, uid := range []string{types.HeaderUser, types.HeaderGroup, types.HeaderAuthority, types.HeaderState} {
			if ses.Answers[i].UID != uid {
				t.Errorf("header %d: expected %s, got %s", i, uid, ses.Answers[i].UID)
			}
			if ses.Answers[i].Type != types.QTypeMeta {
				t.Errorf("header %s: expected META type, got %s", uid, ses.Answers[i].Type)
			}
		}
		if ses.HeaderAnswer(types.HeaderUser).Text != "tester" {
			t.Errorf("unexpected @user: %+v", ses.HeaderAnswer(types.HeaderUser))
		}
		auth := ses.HeaderAnswer(types.HeaderAuthority)
		if auth.Value != int64(types.AuthorityHTTPPublic) || auth.Text != "127.0.0.1" {
			t.Errorf("unexpected @authority: %+v", auth)
		}
		if !strings.HasPrefix(ses.SurveyID, "demo/") || !hashing.IsHexHash(strings.TrimPrefix(ses.SurveyID, "demo/")) {
			t.Errorf("unexpected survey id: %s", ses.SurveyID)
		}
		if len(ses.Questions) != 5 {
			t.Errorf("expected 5 pinned questions, got %d", len(ses.Questions))
		}
	})

	t.Run("session files shard by id prefix", func(t *testing.T) {
		ses := newTestSession(t, st)
		path, err := st.Paths.SessionFile(ses.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(path, filepath.Join("sessions", ses.SessionID[:4], ses.SessionID)) {
			t.Errorf("unexpected session path: %s", path)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("session file missing: %v", err)
		}
	})

	t.Run("duplicate session id rejected", func(t *testing.T) {
		ses := newTestSession(t, st)
		_, err := st.Create("demo", ses.SessionID, SessionMeta{})
		if !errors.Is(err, ErrSessionExists) {
			t.Errorf("expected ErrSessionExists, got %v", err)
		}
	})

	t.Run("unknown survey rejected", func(t *testing.T) {
		_, err := st.Create("no-such-survey", NewSessionID(), SessionMeta{})
		if !errors.Is(err, ErrSurveyNotFound) {
			t.Errorf("expected ErrSurveyNotFound, got %v", err)
		}
	})

	t.Run("malformed ids rejected", func(t *testing.T) {
		if _, err := st.Create("demo", "short", SessionMeta{}); err == nil {
			t.Error("should produce error")
		}
		if _, err := st.Create("../evil", NewSessionID(), SessionMeta{}); err == nil {
			t.Error("should produce error")
		}
	})
}

func TestLoadSession(t *testing.T) {
	st := newTestStore(t)

	t.Run("load reconstructs what create wrote", func(t *testing.T) {
		created := newTestSession(t, st)
		loaded, err := st.Load(created.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.SurveyID != created.SurveyID {
			t.Errorf("survey id changed: %s vs %s", loaded.SurveyID, created.SurveyID)
		}
		if loaded.State != types.StateNew {
			t.Errorf("expected NEW, got %s", loaded.State)
		}
		if loaded.AnswerOffset != 4 || loaded.GivenAnswerCount != 0 {
			t.Errorf("unexpected counters: offset %d, given %d", loaded.AnswerOffset, loaded.GivenAnswerCount)
		}
		if loaded.ConsistencyHash != created.ConsistencyHash {
			t.Errorf("hash changed across load: %s vs %s", loaded.ConsistencyHash, created.ConsistencyHash)
		}
		if loaded.SurveyDescription != "A small demo survey" {
			t.Errorf("unexpected description: %s", loaded.SurveyDescription)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		_, err := st.Load("00000000-0000-0000-0000-000000000000")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("session without state header rejected", func(t *testing.T) {
		ses := newTestSession(t, st)
		path, _ := st.Paths.SessionFile(ses.SessionID)
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading session file: %v", err)
		}
		var kept []string
		for _, line := range strings.Split(string(content), "\n") {
			if strings.HasPrefix(line, "@state:") {
				continue
			}
			kept = append(kept, line)
		}
		if err := os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o640); err != nil {
			t.Fatalf("rewriting session file: %v", err)
		}
		if _, err := st.Load(ses.SessionID); !errors.Is(err, ErrMissingStateHeader) {
			t.Errorf("expected ErrMissingStateHeader, got %v", err)
		}
	})

	t.Run("corrupt answer line rejected", func(t *testing.T) {
		ses := newTestSession(t, st)
		path, _ := st.Paths.SessionFile(ses.SessionID)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			t.Fatalf("opening session file: %v", err)
		}
		f.WriteString("name:TEXT:too:few\n")
		f.Close()
		if _, err := st.Load(ses.SessionID); !errors.Is(err, serialize.ErrFieldCount) {
			t.Errorf("expected field count error, got %v", err)
		}
	})
}

func TestAddAnswer(t *testing.T) {
	st := newTestStore(t)

	t.Run("answer fields derived from the question", func(t *testing.T) {
		ses := newTestSession(t, st)
		ans := &types.Answer{UID: "age", Value: 30, Type: types.QTypeText, Unit: "spoofed", Flags: types.AnswerDeleted}
		n, err := st.AddAnswer(ses, ans)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 affected, got %d", n)
		}
		stored := ses.AnswerByUID("age")
		if stored.Type != types.QTypeInt || stored.Unit != "years" {
			t.Errorf("caller-supplied type/unit not overridden: %+v", stored)
		}
		if stored.Flags != 0 {
			t.Errorf("caller-supplied flags not cleared: %d", stored.Flags)
		}
		if stored.Stored == 0 {
			t.Error("stored timestamp not set")
		}
		if ses.State != types.StateOpen {
			t.Errorf("expected OPEN, got %s", ses.State)
		}
		if ses.GivenAnswerCount != 1 {
			t.Errorf("expected 1 given answer, got %d", ses.GivenAnswerCount)
		}
	})

	t.Run("sha1 question stores only the digest", func(t *testing.T) {
		ses := newTestSession(t, st)
		mustAddAnswer(t, st, ses, &types.Answer{UID: "secret", Text: "hunter2"})
		stored := ses.AnswerByUID("secret")
		if stored.Text == "hunter2" {
			t.Error("plaintext survived")
		}
		if stored.Text != hashing.HashStrings("hunter2") {
			t.Errorf("unexpected digest: %s", stored.Text)
		}
		if !hashing.IsHexHash(stored.Text) {
			t.Errorf("digest is not 40 hex chars: %s", stored.Text)
		}
	})

	t.Run("live answer cannot be answered again", func(t *testing.T) {
		ses := newTestSession(t, st)
		mustAddAnswer(t, st, ses, &types.Answer{UID: "name", Text: "first"})
		_, err := st.AddAnswer(ses, &types.Answer{UID: "name", Text: "second"})
		if !errors.Is(err, ErrAlreadyAnswered) {
			t.Errorf("expected ErrAlreadyAnswered, got %v", err)
		}
		if ses.AnswerByUID("name").Text != "first" {
			t.Error("rejected answer overwrote the live one")
		}
	})

	t.Run("tombstoned answer replaced in its original slot", func(t *testing.T) {
		ses := newTestSession(t, st)
		mustAddAnswer(t, st, ses, &types.Answer{UID: "name", Text: "first"})
		mustAddAnswer(t, st, ses, &types.Answer{UID: "age", Value: 30})
		logLen := len(ses.Answers)

		if _, err := st.DeleteAnswer(ses, "name"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		mustAddAnswer(t, st, ses, &types.Answer{UID: "name", Text: "second"})

		if len(ses.Answers) != logLen {
			t.Errorf("log grew from %d to %d", logLen, len(ses.Answers))
		}
		replaced := ses.Answers[ses.AnswerOffset]
		if replaced.UID != "name" || replaced.Text != "second" || replaced.IsDeleted() {
			t.Errorf("slot not replaced: %+v", replaced)
		}
	})

	t.Run("unknown question rejected", func(t *testing.T) {
		ses := newTestSession(t, st)
		_, err := st.AddAnswer(ses, &types.Answer{UID: "nope", Text: "x"})
		if !errors.Is(err, ErrNoSuchQuestion) {
			t.Errorf("expected ErrNoSuchQuestion, got %v", err)
		}
	})

	t.Run("header uid rejected", func(t *testing.T) {
		ses := newTestSession(t, st)
		_, err := st.AddAnswer(ses, &types.Answer{UID: "@state", Value: 4})
		if !errors.Is(err, ErrHeaderAnswer) {
			t.Errorf("expected ErrHeaderAnswer, got %v", err)
		}
	})
}

func TestDeleteAnswer(t *testing.T) {
	st := newTestStore(t)

	fillSession := func(t *testing.T) *types.Session {
		ses := newTestSession(t, st)
		mustAddAnswer(t, st, ses, &types.Answer{UID: "name", Text: "n"})
		mustAddAnswer(t, st, ses, &types.Answer{UID: "age", Value: 1})
		mustAddAnswer(t, st, ses, &types.Answer{UID: "home", Lat: 1, Lon: 2})
		mustAddAnswer(t, st, ses, &types.Answer{UID: "secret", Text: "s"})
		mustAddAnswer(t, st, ses, &types.Answer{UID: "email", Text: "a@b.example"})
		return ses
	}

	t.Run("deletion cascades to later answers", func(t *testing.T) {
		ses := fillSession(t)
		affected, err := st.DeleteAnswer(ses, "age")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if affected != 4 {
			t.Errorf("expected 4 affected, got %d", affected)
		}
		if !ses.AnswerByUID("age").IsDeleted() || !ses.AnswerByUID("email").IsDeleted() {
			t.Error("cascade did not reach later answers")
		}
		if ses.AnswerByUID("name").IsDeleted() {
			t.Error("cascade touched an earlier answer")
		}
		if ses.GivenAnswerCount != 1 {
			t.Errorf("expected 1 given answer left, got %d", ses.GivenAnswerCount)
		}
	})

	t.Run("deleting the last answer affects only it", func(t *testing.T) {
		ses := fillSession(t)
		affected, err := st.DeleteAnswer(ses, "email")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if affected != 1 {
			t.Errorf("expected 1 affected, got %d", affected)
		}
		if ses.GivenAnswerCount != 4 {
			t.Errorf("expected 4 given answers left, got %d", ses.GivenAnswerCount)
		}
	})

	t.Run("missing and tombstoned uids are no-ops", func(t *testing.T) {
		ses := fillSession(t)
		if affected, err := st.DeleteAnswer(ses, "never-answered"); err != nil || affected != 0 {
			t.Errorf("expected 0 affected, got %d, %v", affected, err)
		}
		if _, err := st.DeleteAnswer(ses, "age"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if affected, err := st.DeleteAnswer(ses, "age"); err != nil || affected != 0 {
			t.Errorf("repeated deletion: expected 0 affected, got %d, %v", affected, err)
		}
		if affected, err := st.DeleteAnswer(ses, "email"); err != nil || affected != 0 {
			t.Errorf("cascaded uid: expected 0 affected, got %d, %v", affected, err)
		}
	})

	t.Run("header records cannot be deleted", func(t *testing.T) {
		ses := fillSession(t)
		if _, err := st.DeleteAnswer(ses, "@user"); !errors.Is(err, ErrHeaderAnswer) {
			t.Errorf("expected ErrHeaderAnswer, got %v", err)
		}
	})

	t.Run("deleted answers survive a save-load cycle", func(t *testing.T) {
		ses := fillSession(t)
		if _, err := st.DeleteAnswer(ses, "home"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := st.Save(ses); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		loaded, err := st.Load(ses.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.GivenAnswerCount != 2 {
			t.Errorf("expected 2 given answers, got %d", loaded.GivenAnswerCount)
		}
		if !loaded.AnswerByUID("home").IsDeleted() {
			t.Error("tombstone lost")
		}
		if len(loaded.Answers) != len(ses.Answers) {
			t.Errorf("log length changed: %d vs %d", len(loaded.Answers), len(ses.Answers))
		}
	})
}

func TestSaveSession(t *testing.T) {
	st := newTestStore(t)

	t.Run("state header reconciled on save", func(t *testing.T) {
		ses := newTestSession(t, st)
		mustAddAnswer(t, st, ses, &types.Answer{UID: "name", Text: "n"})
		if err := st.Save(ses); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		loaded, err := st.Load(ses.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.State != types.StateOpen {
			t.Errorf("expected OPEN, got %s", loaded.State)
		}
	})

	t.Run("closing stamps the state header end time", func(t *testing.T) {
		ses := newTestSession(t, st)
		ses.State = types.StateClosed
		if err := st.Save(ses); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		loaded, err := st.Load(ses.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.State != types.StateClosed {
			t.Errorf("expected CLOSED, got %s", loaded.State)
		}
		if loaded.HeaderAnswer(types.HeaderState).TimeEnd == 0 {
			t.Error("@state end time not stamped")
		}
	})

	t.Run("no temp file left behind", func(t *testing.T) {
		ses := newTestSession(t, st)
		if err := st.Save(ses); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tempPath, _ := st.Paths.SessionWriteFile(ses.SessionID)
		if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
			t.Errorf("temp file still present: %v", err)
		}
	})

	t.Run("stale temp file does not affect loading", func(t *testing.T) {
		ses := newTestSession(t, st)
		tempPath, _ := st.Paths.SessionWriteFile(ses.SessionID)
		if err := os.WriteFile(tempPath, []byte("partial garbage"), 0o640); err != nil {
			t.Fatalf("writing stale temp file: %v", err)
		}
		loaded, err := st.Load(ses.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.State != types.StateNew {
			t.Errorf("expected NEW, got %s", loaded.State)
		}
	})
}

func TestDeleteSession(t *testing.T) {
	st := newTestStore(t)

	t.Run("removes the session file", func(t *testing.T) {
		ses := newTestSession(t, st)
		if err := st.Delete(ses.SessionID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := st.Load(ses.SessionID); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("missing session", func(t *testing.T) {
		if err := st.Delete("00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestConsistencyHash(t *testing.T) {
	st := newTestStore(t)

	t.Run("40 hex characters", func(t *testing.T) {
		ses := newTestSession(t, st)
		if !hashing.IsHexHash(ses.ConsistencyHash) {
			t.Errorf("unexpected hash: %s", ses.ConsistencyHash)
		}
	})

	t.Run("stable across loads and re-saves", func(t *testing.T) {
		ses := newTestSession(t, st)
		mustAddAnswer(t, st, ses, &types.Answer{UID: "name", Text: "n"})
		if err := st.Save(ses); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		first := ses.ConsistencyHash

		loaded, err := st.Load(ses.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.ConsistencyHash != first {
			t.Errorf("hash changed on load: %s vs %s", loaded.ConsistencyHash, first)
		}
		if err := st.Save(loaded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loaded.ConsistencyHash != first {
			t.Errorf("hash changed on idle re-save: %s vs %s", loaded.ConsistencyHash, first)
		}
	})

	t.Run("changes with each answer", func(t *testing.T) {
		ses := newTestSession(t, st)
		seen := map[string]bool{ses.ConsistencyHash: true}
		for _, a := range []*types.Answer{
			{UID: "name", Text: "n"},
			{UID: "age", Value: 1},
			{UID: "home", Lat: 1, Lon: 2},
		} {
			mustAddAnswer(t, st, ses, a)
			if err := st.Save(ses); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen[ses.ConsistencyHash] {
				t.Errorf("hash repeated after answering '%s'", a.UID)
			}
			seen[ses.ConsistencyHash] = true
		}
	})

	t.Run("changes when the state changes", func(t *testing.T) {
		ses := newTestSession(t, st)
		before := GenerateConsistencyHash(ses)
		ses.State = types.StateFinished
		if after := GenerateConsistencyHash(ses); after == before {
			t.Error("state change did not move the hash")
		}
	})

	t.Run("distinct sessions never share a hash", func(t *testing.T) {
		a := newTestSession(t, st)
		b := newTestSession(t, st)
		if a.ConsistencyHash == b.ConsistencyHash {
			t.Error("two sessions share a consistency hash")
		}
	})
}

func TestSurveySnapshotPinning(t *testing.T) {
	root := t.TempDir()
	writeSurveyFile(t, root, "demo", demoSurveyLines())
	st := NewStore(root)

	ses := newTestSession(t, st)
	originalCount := len(ses.Questions)

	// Grow the live definition after the session pinned its snapshot.
	extra := serialize.SerializeQuestion(&types.Question{UID: "extra", QuestionText: "New question", Type: types.QTypeText})
	writeSurveyFile(t, root, "demo", append(demoSurveyLines(), extra))

	t.Run("existing session keeps its pinned questions", func(t *testing.T) {
		loaded, err := st.Load(ses.SessionID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(loaded.Questions) != originalCount {
			t.Errorf("expected %d questions, got %d", originalCount, len(loaded.Questions))
		}
		if loaded.QuestionByUID("extra") != nil {
			t.Error("pinned session sees the edited definition")
		}
	})

	t.Run("new session pins the new definition", func(t *testing.T) {
		fresh := newTestSession(t, st)
		if len(fresh.Questions) != originalCount+1 {
			t.Errorf("expected %d questions, got %d", originalCount+1, len(fresh.Questions))
		}
		if fresh.SurveyID == ses.SurveyID {
			t.Error("edited definition reused the old snapshot hash")
		}
	})
}
