package types

import "strings"

// Answer flags.
const (
	AnswerDeleted = 1
)

// Header answer uids. Header answers occupy the leading slots of a session's
// answer log and are the only records ever rewritten in place.
const (
	HeaderUser      = "@user"
	HeaderGroup     = "@group"
	HeaderAuthority = "@authority"
	HeaderState     = "@state"

	HeaderPrefix = "@"
)

// Answer is a single response or system record in a session's answer log.
// Type and Unit are always derived from the matching Question, never taken
// from external input.
type Answer struct {
	UID  string
	Type QuestionType
	Text string
	// Integer or fixed point response, also used for choice indices.
	Value int64
	// Fixed point latitude/longitude.
	Lat int64
	Lon int64
	// Time/date values, two for ranges.
	TimeBegin int64
	TimeEnd   int64
	// Timezone offset relative to GMT, in minutes.
	TimeZoneDelta int
	// Daylight savings delta in force at answer time, in minutes.
	DSTDelta int
	Unit     string
	Flags    int
	// Insertion/mutation timestamp (unix seconds).
	Stored int64
}

// Clone returns an independent copy.
func (a *Answer) Clone() *Answer {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// IsHeader reports whether the answer is a @-prefixed system record.
func (a *Answer) IsHeader() bool {
	return strings.HasPrefix(a.UID, HeaderPrefix)
}

// IsDeleted reports whether the answer carries a tombstone.
func (a *Answer) IsDeleted() bool {
	return a.Flags&AnswerDeleted != 0
}

// IsGiven reports whether the answer is a live respondent answer, i.e.
// neither a header record nor tombstoned.
func (a *Answer) IsGiven() bool {
	return !a.IsHeader() && !a.IsDeleted()
}
