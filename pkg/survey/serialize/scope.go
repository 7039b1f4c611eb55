package serialize

import (
	"fmt"
	"strconv"
	"strings"
)

// AnswerScope selects which answer fields are present in a serialized line.
type AnswerScope int

const (
	// ScopePublic is the client-facing write path: no type, unit, flags or
	// stored timestamp, those are backend derived.
	ScopePublic AnswerScope = iota
	// ScopeChecksum feeds the consistency hash: public fields plus type,
	// unit and flags, but no stored timestamp so that the hash is stable
	// across re-saves.
	ScopeChecksum
	// ScopeFull is the on-disk format: every field including the stored
	// timestamp.
	ScopeFull
)

const (
	publicFieldCount   = 9
	checksumFieldCount = 12
	fullFieldCount     = 13

	questionFieldCount = 12
)

func (s AnswerScope) String() string {
	switch s {
	case ScopePublic:
		return "public"
	case ScopeChecksum:
		return "checksum"
	case ScopeFull:
		return "full"
	}
	return fmt.Sprintf("AnswerScope(%d)", int(s))
}

// FieldCount returns the exact number of fields a serialized answer line
// must contain in this scope.
func (s AnswerScope) FieldCount() int {
	switch s {
	case ScopePublic:
		return publicFieldCount
	case ScopeChecksum:
		return checksumFieldCount
	default:
		return fullFieldCount
	}
}

// parseInt64Field parses a serialized integer field. An empty field is the
// explicit absent value 0. Only digits with at most one leading minus sign
// are accepted.
func parseInt64Field(raw string) (int64, error) {
	s, err := Unescape(raw)
	if err != nil {
		return 0, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	digits := s
	if digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidInteger, s)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: '%s'", ErrInvalidInteger, s)
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidInteger, s)
	}
	return v, nil
}

func parseIntField(raw string) (int, error) {
	v, err := parseInt64Field(raw)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseStringField(raw string) (string, error) {
	return Unescape(raw)
}
