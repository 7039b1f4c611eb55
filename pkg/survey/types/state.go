package types

import "fmt"

// SessionState is the session lifecycle state. Transitions are monotonic:
// None -> New -> Open -> Finished -> Closed, except where an operation
// explicitly governs a transition (e.g. deleting all answers reopens a
// finished session via the next-questions dispatch).
type SessionState int

const (
	StateNone SessionState = iota
	StateNew
	StateOpen
	StateFinished
	StateClosed
)

var sessionStateNames = map[SessionState]string{
	StateNone:     "NONE",
	StateNew:      "NEW",
	StateOpen:     "OPEN",
	StateFinished: "FINISHED",
	StateClosed:   "CLOSED",
}

func (s SessionState) String() string {
	name, ok := sessionStateNames[s]
	if !ok {
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
	return name
}

func (s SessionState) IsValid() bool {
	_, ok := sessionStateNames[s]
	return ok
}

// AuthorityProvider identifies how the identity stored in the @authority
// header record was established. Authentication itself happens outside the
// core, the provider and origin string are only stored and compared.
type AuthorityProvider int

const (
	AuthorityUnknown AuthorityProvider = iota
	AuthorityCLI
	AuthorityHTTPPublic
	AuthorityHTTPBasic
	AuthorityHTTPDigest
	AuthorityHTTPTrusted
)

// Next-question selection modes, set once from the survey file header.
const (
	NextQuestionsGeneric = 1 << iota
	NextQuestionsPython
)
