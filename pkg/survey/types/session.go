package types

// Session is the aggregate root: the pinned question list plus the ordered,
// append-mostly answer log of one respondent's run through a survey.
type Session struct {
	// SurveyID has the form "<survey name>/<sha1 of survey snapshot>".
	SurveyID          string
	SurveyDescription string
	SessionID         string
	// ConsistencyHash is the 40 hex char SHA1 fingerprint of the session's
	// current standing, recomputed on every load and save.
	ConsistencyHash string
	// NextQuestionsFlags is set once from the survey file header.
	NextQuestionsFlags int

	// Questions is loaded from the survey snapshot and fixed for the
	// session's lifetime.
	Questions []*Question
	// Answers is the ordered answer log, header records first. Ordering is
	// significant: it is the audit trail the adaptive logic depends on.
	Answers []*Answer
	// AnswerOffset is the index of the first non-header answer.
	AnswerOffset int
	// GivenAnswerCount counts non-header, non-deleted answers.
	GivenAnswerCount int

	State SessionState
}

// QuestionByUID returns the question with the given uid, or nil.
func (s *Session) QuestionByUID(uid string) *Question {
	for _, q := range s.Questions {
		if q.UID == uid {
			return q
		}
	}
	return nil
}

// AnswerByUID returns the answer record for the given uid (deleted or not),
// or nil if the uid has never been answered.
func (s *Session) AnswerByUID(uid string) *Answer {
	for _, a := range s.Answers {
		if a.UID == uid {
			return a
		}
	}
	return nil
}

// HeaderAnswer returns the header record with the given uid, or nil. Only
// indices below AnswerOffset are considered.
func (s *Session) HeaderAnswer(uid string) *Answer {
	for i := 0; i < s.AnswerOffset && i < len(s.Answers); i++ {
		if s.Answers[i].UID == uid {
			return s.Answers[i]
		}
	}
	return nil
}

// LastGivenAnswer returns the last live respondent answer in log order, or
// nil if none exists.
func (s *Session) LastGivenAnswer() *Answer {
	for i := len(s.Answers) - 1; i >= s.AnswerOffset; i-- {
		if s.Answers[i].IsGiven() {
			return s.Answers[i]
		}
	}
	return nil
}

// GivenAnswers returns the live respondent answers in log order.
func (s *Session) GivenAnswers() []*Answer {
	answers := []*Answer{}
	for i := s.AnswerOffset; i < len(s.Answers); i++ {
		if s.Answers[i].IsGiven() {
			answers = append(answers, s.Answers[i])
		}
	}
	return answers
}
