package nextquestion

import (
	"fmt"
	"math"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
	"github.com/gardners/surveysystem-sub000/pkg/survey/validate"
)

const (
	hookPathNextQuestions = "/nextquestions"
	hookPathAnalysis      = "/analysis"
)

// hookAnswerRecord is one given answer as the hook service sees it: the
// answer fields plus the matching question's metadata with a "_" prefix.
type hookAnswerRecord struct {
	UID           string `json:"uid"`
	Type          string `json:"type"`
	Text          string `json:"text"`
	Value         int64  `json:"value"`
	Latitude      int64  `json:"latitude"`
	Longitude     int64  `json:"longitude"`
	TimeBegin     int64  `json:"time_begin"`
	TimeEnd       int64  `json:"time_end"`
	TimeZoneDelta int    `json:"time_zone_delta"`
	DSTDelta      int    `json:"dst_delta"`
	Unit          string `json:"unit"`
	Flags         int    `json:"flags"`
	Stored        int64  `json:"stored"`

	QFlags        int    `json:"_flags"`
	QDefaultValue string `json:"_default_value"`
	QMinValue     int64  `json:"_min_value"`
	QMaxValue     int64  `json:"_max_value"`
	QChoices      string `json:"_choices"`
	QUnit         string `json:"_unit"`
}

type hookContext struct {
	SurveyID      string `json:"survey_id"`
	SessionID     string `json:"session_id"`
	Action        string `json:"action"`
	AffectedCount int    `json:"affected_count"`
}

type hookPayload struct {
	Questions []string           `json:"questions"`
	Answers   []hookAnswerRecord `json:"answers"`
	Context   hookContext        `json:"context"`
}

func buildHookPayload(ses *types.Session, action validate.Action, affectedCount int) hookPayload {
	payload := hookPayload{
		Questions: make([]string, 0, len(ses.Questions)),
		Answers:   []hookAnswerRecord{},
		Context: hookContext{
			SurveyID:      ses.SurveyID,
			SessionID:     ses.SessionID,
			Action:        action.String(),
			AffectedCount: affectedCount,
		},
	}
	for _, q := range ses.Questions {
		payload.Questions = append(payload.Questions, q.UID)
	}
	for _, a := range ses.GivenAnswers() {
		rec := hookAnswerRecord{
			UID:           a.UID,
			Type:          a.Type.String(),
			Text:          a.Text,
			Value:         a.Value,
			Latitude:      a.Lat,
			Longitude:     a.Lon,
			TimeBegin:     a.TimeBegin,
			TimeEnd:       a.TimeEnd,
			TimeZoneDelta: a.TimeZoneDelta,
			DSTDelta:      a.DSTDelta,
			Unit:          a.Unit,
			Flags:         a.Flags,
			Stored:        a.Stored,
		}
		if q := ses.QuestionByUID(a.UID); q != nil {
			rec.QFlags = q.Flags
			rec.QDefaultValue = q.DefaultValue
			rec.QMinValue = q.MinValue
			rec.QMaxValue = q.MaxValue
			rec.QChoices = q.Choices
			rec.QUnit = q.Unit
		}
		payload.Answers = append(payload.Answers, rec)
	}
	return payload
}

// getNextQuestionsFromHook delegates selection to the configured hook
// service and validates the reply shape strictly: integer status, string
// message, a two-element integer progress list, and a list of question
// uids that must all resolve within the session.
func (d *Dispatcher) getNextQuestionsFromHook(ses *types.Session, action validate.Action, affectedCount int) (*NextQuestions, error) {
	if d.hook == nil {
		return nil, ErrHookNotConfigured
	}

	reply, err := d.hook.RunHTTPcall(hookPathNextQuestions, buildHookPayload(ses, action, affectedCount))
	if err != nil {
		return nil, fmt.Errorf("next-question hook call failed: %w", err)
	}
	return parseHookReply(ses, reply)
}

func parseHookReply(ses *types.Session, reply map[string]interface{}) (*NextQuestions, error) {
	nq := &NextQuestions{}

	status, err := intMember(reply, "status")
	if err != nil {
		return nil, err
	}
	nq.Status = status

	rawMessage, ok := reply["message"]
	if !ok {
		return nil, fmt.Errorf("%w: missing member 'message'", ErrHookReply)
	}
	message, ok := rawMessage.(string)
	if !ok {
		return nil, fmt.Errorf("%w: member 'message' is not a string", ErrHookReply)
	}
	nq.Message = message

	rawProgress, ok := reply["progress"]
	if !ok {
		return nil, fmt.Errorf("%w: missing member 'progress'", ErrHookReply)
	}
	progressList, ok := rawProgress.([]interface{})
	if !ok || len(progressList) != 2 {
		return nil, fmt.Errorf("%w: member 'progress' must be a list of exactly 2 integers", ErrHookReply)
	}
	for i, item := range progressList {
		v, ok := toInt(item)
		if !ok {
			return nil, fmt.Errorf("%w: progress[%d] is not an integer", ErrHookReply, i)
		}
		nq.Progress[i] = v
	}

	rawNext, ok := reply["next_questions"]
	if !ok {
		return nil, fmt.Errorf("%w: missing member 'next_questions'", ErrHookReply)
	}
	nextList, ok := rawNext.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: member 'next_questions' is not a list", ErrHookReply)
	}
	for _, item := range nextList {
		uid, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: next_questions entries must be strings", ErrHookReply)
		}
		q := ses.QuestionByUID(uid)
		if q == nil {
			return nil, fmt.Errorf("%w: '%s'", ErrHookUnknownQuestion, uid)
		}
		nq.Next = append(nq.Next, q)
	}

	if len(nq.Next) == 0 {
		if ses.State < types.StateFinished {
			ses.State = types.StateFinished
		}
	} else if ses.State == types.StateFinished {
		ses.State = types.StateOpen
	}

	return nq, nil
}

func intMember(reply map[string]interface{}, key string) (int, error) {
	raw, ok := reply[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing member '%s'", ErrHookReply, key)
	}
	v, ok := toInt(raw)
	if !ok {
		return 0, fmt.Errorf("%w: member '%s' is not an integer", ErrHookReply, key)
	}
	return v, nil
}

// toInt accepts the integer encodings a decoded JSON reply may contain.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}
