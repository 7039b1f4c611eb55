package nextquestion

import (
	"fmt"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
	"github.com/gardners/surveysystem-sub000/pkg/survey/validate"
)

// GetNextQuestions computes which question(s) to ask next. Surveys flagged
// for scripted selection always go through the hook service; a configured
// but failing hook is a hard error, never a silent fall back to the generic
// selector. The session's state may move to FINISHED (or back to OPEN) as a
// side effect; persisting that is the caller's job.
func (d *Dispatcher) GetNextQuestions(ses *types.Session, action validate.Action, affectedCount int) (*NextQuestions, error) {
	if ses == nil {
		return nil, fmt.Errorf("nil session")
	}

	if ses.NextQuestionsFlags&types.NextQuestionsPython != 0 {
		return d.getNextQuestionsFromHook(ses, action, affectedCount)
	}
	return getNextQuestionsGeneric(ses)
}

// GetAnalysis delegates analysis to the hook service. There is no generic
// analysis: a survey without a configured hook has nothing to analyse with.
func (d *Dispatcher) GetAnalysis(ses *types.Session) (map[string]interface{}, error) {
	if ses == nil {
		return nil, fmt.Errorf("nil session")
	}
	if d.hook == nil {
		return nil, ErrHookNotConfigured
	}

	reply, err := d.hook.RunHTTPcall(hookPathAnalysis, buildHookPayload(ses, validate.ActionAnalysis, 0))
	if err != nil {
		return nil, fmt.Errorf("analysis hook call failed: %w", err)
	}
	if reply == nil {
		return nil, fmt.Errorf("%w: empty analysis reply", ErrHookReply)
	}
	return reply, nil
}
