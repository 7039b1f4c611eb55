package validate

import (
	"errors"
	"fmt"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

// Action identifies a session operation for legality checks against the
// session state machine.
type Action int

const (
	ActionNextQuestions Action = iota
	ActionAddAnswer
	ActionDeleteAnswer
	ActionAnalysis
	ActionDeleteSession
)

var actionNames = map[Action]string{
	ActionNextQuestions: "ACTION_SESSION_NEXTQUESTIONS",
	ActionAddAnswer:     "ACTION_SESSION_ADDANSWER",
	ActionDeleteAnswer:  "ACTION_SESSION_DELETEANSWER",
	ActionAnalysis:      "ACTION_SESSION_ANALYSIS",
	ActionDeleteSession: "ACTION_SESSION_DELETE",
}

func (a Action) String() string {
	name, ok := actionNames[a]
	if !ok {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return name
}

// ErrIllegalAction indicates an action that is not legal for the session's
// current state.
var ErrIllegalAction = errors.New("illegal session action")

// SessionAction checks whether the given action is legal for a session in
// the given state. The deletion action is always rejected here: there is no
// deletion policy on the request path, only the admin CLI removes sessions.
func SessionAction(action Action, state types.SessionState) error {
	switch action {
	case ActionNextQuestions:
		if state < types.StateNew {
			return fmt.Errorf("%w: %s requires an initialised session, state is %s", ErrIllegalAction, action, state)
		}
		return nil

	case ActionAddAnswer:
		if state != types.StateNew && state != types.StateOpen {
			return fmt.Errorf("%w: %s requires state NEW or OPEN, state is %s", ErrIllegalAction, action, state)
		}
		return nil

	case ActionDeleteAnswer:
		if state < types.StateOpen {
			return fmt.Errorf("%w: %s requires at least state OPEN, state is %s", ErrIllegalAction, action, state)
		}
		if state == types.StateClosed {
			return fmt.Errorf("%w: %s not allowed on a closed session", ErrIllegalAction, action)
		}
		return nil

	case ActionAnalysis:
		if state < types.StateFinished {
			return fmt.Errorf("%w: %s requires at least state FINISHED, state is %s", ErrIllegalAction, action, state)
		}
		return nil

	case ActionDeleteSession:
		return fmt.Errorf("%w: session cannot be deleted", ErrIllegalAction)

	default:
		return fmt.Errorf("%w: unknown action %s", ErrIllegalAction, action)
	}
}
