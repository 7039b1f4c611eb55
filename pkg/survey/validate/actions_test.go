package validate

import (
	"errors"
	"testing"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

func TestSessionAction(t *testing.T) {
	allStates := []types.SessionState{
		types.StateNone,
		types.StateNew,
		types.StateOpen,
		types.StateFinished,
		types.StateClosed,
	}

	tests := []struct {
		action  Action
		allowed map[types.SessionState]bool
	}{
		{
			action: ActionNextQuestions,
			allowed: map[types.SessionState]bool{
				types.StateNew:      true,
				types.StateOpen:     true,
				types.StateFinished: true,
				types.StateClosed:   true,
			},
		},
		{
			action: ActionAddAnswer,
			allowed: map[types.SessionState]bool{
				types.StateNew:  true,
				types.StateOpen: true,
			},
		},
		{
			action: ActionDeleteAnswer,
			allowed: map[types.SessionState]bool{
				types.StateOpen:     true,
				types.StateFinished: true,
			},
		},
		{
			action: ActionAnalysis,
			allowed: map[types.SessionState]bool{
				types.StateFinished: true,
				types.StateClosed:   true,
			},
		},
		{
			action:  ActionDeleteSession,
			allowed: map[types.SessionState]bool{},
		},
	}

	for _, test := range tests {
		for _, state := range allStates {
			t.Run(test.action.String()+" in "+state.String(), func(t *testing.T) {
				err := SessionAction(test.action, state)
				if test.allowed[state] {
					if err != nil {
						t.Errorf("expected %s to be legal in %s, got %v", test.action, state, err)
					}
					return
				}
				if !errors.Is(err, ErrIllegalAction) {
					t.Errorf("expected ErrIllegalAction for %s in %s, got %v", test.action, state, err)
				}
			})
		}
	}
}

func TestSessionActionUnknown(t *testing.T) {
	if err := SessionAction(Action(99), types.StateOpen); !errors.Is(err, ErrIllegalAction) {
		t.Errorf("expected ErrIllegalAction for unknown action, got %v", err)
	}
}
