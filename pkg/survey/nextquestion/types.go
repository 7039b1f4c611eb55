package nextquestion

import (
	"errors"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

var (
	// ErrHookNotConfigured: the survey demands scripted selection but no
	// hook service is configured. The generic selector is deliberately not
	// used as a fallback, that could leak adaptive question sets the
	// scripted logic exists to hide.
	ErrHookNotConfigured = errors.New("survey requires a scripted next-question hook but none is configured")
	// ErrHookReply: the hook returned a reply that does not match the
	// required shape.
	ErrHookReply = errors.New("malformed reply from next-question hook")
	// ErrHookUnknownQuestion: the hook named a question uid that does not
	// exist in the session's pinned survey.
	ErrHookUnknownQuestion = errors.New("next-question hook returned an unknown question uid")
)

// HookCaller is the transport used to reach the scripted hook service.
// Satisfied by httpclient.ClientConfig.
type HookCaller interface {
	RunHTTPcall(pathname string, payload interface{}) (map[string]interface{}, error)
}

// HookServiceConfig describes the external hook service in config files.
type HookServiceConfig struct {
	Name    string `json:"name" yaml:"name"`
	URL     string `json:"url" yaml:"url"`
	APIKey  string `json:"api_key" yaml:"api_key"`
	Timeout int    `json:"timeout" yaml:"timeout"`
}

// NextQuestions is the validated result of a next-question dispatch.
type NextQuestions struct {
	Status   int
	Message  string
	Progress [2]int
	Next     []*types.Question
}

// Dispatcher chooses between the generic built-in selector and the
// delegated scripted hook, based on the survey's next-questions flags.
type Dispatcher struct {
	hook HookCaller
}

// NewDispatcher creates a dispatcher. hook may be nil when no scripted
// service is configured; surveys flagged for scripted selection then fail
// hard instead of silently falling back.
func NewDispatcher(hook HookCaller) *Dispatcher {
	return &Dispatcher{hook: hook}
}
