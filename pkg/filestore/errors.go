package filestore

import "errors"

// Validation errors: bad input, rejected before any mutation.
var (
	ErrHeaderAnswer    = errors.New("answers to header records are not allowed")
	ErrNoSuchQuestion  = errors.New("no question defined for this answer")
	ErrAlreadyAnswered = errors.New("question already answered, delete the existing answer first")
	ErrEmptySurvey     = errors.New("survey snapshot contains no questions")
	ErrBadSurveyFile   = errors.New("malformed survey definition file")
)

// Consistency errors: fatal to the operation, never auto-resolved.
var (
	ErrMissingStateHeader  = errors.New("session file is missing the @state header record")
	ErrConsistencyMismatch = errors.New("consistency hash does not match session state")
)

// Storage errors: filesystem access problems, an operational category
// distinct from bad input.
var (
	ErrStorage         = errors.New("session storage failure")
	ErrRootNotSet      = errors.New("survey data root directory is not set")
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
	ErrSurveyNotFound  = errors.New("survey not found")
)

// Lock errors: abort before any session I/O.
var (
	ErrLockFailed   = errors.New("could not acquire session lock")
	ErrTooManyLocks = errors.New("too many file locks held by this process")
)
