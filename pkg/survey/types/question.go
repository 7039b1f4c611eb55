package types

// Question rendering / behaviour flags.
const (
	QFlagSec  = 1 << iota // render integer value as seconds
	QFlagMin              // render integer value as minutes
	QFlagHour             // render integer value as hours
	QFlagDay              // render integer value as days
	QFlagAutoPopulate
	QFlagHidden
	QFlagRandomInitialValue
	QFlagMandatory
)

// Question is an immutable per-survey definition. Instances are loaded from
// the survey snapshot pinned to a session and are never mutated afterwards.
type Question struct {
	UID           string
	QuestionText  string
	QuestionHTML  string
	Type          QuestionType
	Flags         int
	DefaultValue  string
	MinValue      int64
	MaxValue      int64
	DecimalPlaces int
	NumChoices    int
	// Comma separated list of choices for choice/select questions.
	Choices string
	Unit    string
}

// Clone returns an independent copy.
func (q *Question) Clone() *Question {
	if q == nil {
		return nil
	}
	c := *q
	return &c
}
