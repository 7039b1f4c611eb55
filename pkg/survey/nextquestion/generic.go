package nextquestion

import (
	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

// getNextQuestionsGeneric selects the single first question, in survey file
// order, lacking a live answer. Intentionally one question at a time.
// When no question remains the session moves to FINISHED; when questions
// remain again after deletions, a finished session moves back to OPEN.
func getNextQuestionsGeneric(ses *types.Session) (*NextQuestions, error) {
	nq := &NextQuestions{
		Progress: [2]int{ses.GivenAnswerCount, len(ses.Questions)},
	}

	for _, q := range ses.Questions {
		a := ses.AnswerByUID(q.UID)
		if a != nil && !a.IsDeleted() {
			continue
		}
		nq.Next = append(nq.Next, q)
		break
	}

	if len(nq.Next) == 0 {
		if ses.State < types.StateFinished {
			ses.State = types.StateFinished
		}
	} else if ses.State == types.StateFinished {
		// Deletions reopened the question list.
		ses.State = types.StateOpen
	}

	return nq, nil
}
