package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

var (
	ErrInvalidValue = errors.New("invalid answer value")
	ErrOutOfRange   = errors.New("answer value out of range")
)

// parseStrictInt64 accepts digits with at most one leading minus sign.
func parseStrictInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty numeric value", ErrInvalidValue)
	}
	digits := s
	if digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidValue, s)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("%w: '%s' is not an integer", ErrInvalidValue, s)
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: '%s'", ErrInvalidValue, s)
	}
	return v, nil
}

// ParseValue parses a raw textual value into the answer fields appropriate
// for the question's type. Compound types require an exact part count:
// LATLON is "lat,lon", TIMERANGE is "begin,end".
func ParseValue(q *types.Question, raw string) (*types.Answer, error) {
	a := &types.Answer{UID: q.UID}

	switch q.Type {
	case types.QTypeInt, types.QTypeFixedPoint, types.QTypeDuration24:
		v, err := parseStrictInt64(raw)
		if err != nil {
			return nil, err
		}
		a.Value = v

	case types.QTypeDateTime, types.QTypeDayTime:
		v, err := parseStrictInt64(raw)
		if err != nil {
			return nil, err
		}
		a.TimeBegin = v

	case types.QTypeLatLon:
		parts := strings.Split(raw, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: LATLON requires exactly 2 parts, got %d", ErrInvalidValue, len(parts))
		}
		lat, err := parseStrictInt64(parts[0])
		if err != nil {
			return nil, err
		}
		lon, err := parseStrictInt64(parts[1])
		if err != nil {
			return nil, err
		}
		a.Lat, a.Lon = lat, lon

	case types.QTypeTimeRange:
		parts := strings.Split(raw, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: TIMERANGE requires exactly 2 parts, got %d", ErrInvalidValue, len(parts))
		}
		begin, err := parseStrictInt64(parts[0])
		if err != nil {
			return nil, err
		}
		end, err := parseStrictInt64(parts[1])
		if err != nil {
			return nil, err
		}
		a.TimeBegin, a.TimeEnd = begin, end

	default:
		// Text family, choice types (comma joined), UUID, uploads etc. keep
		// the raw string.
		a.Text = raw
	}

	return a, nil
}

// AnswerStructure enforces the type-specific structural rules applied when
// an answer is added to a session. The question's MinValue/MaxValue bound
// numeric answers when a range is configured (MinValue < MaxValue).
func AnswerStructure(q *types.Question, a *types.Answer) error {
	switch q.Type {
	case types.QTypeInt, types.QTypeFixedPoint, types.QTypeDuration24:
		if q.MinValue < q.MaxValue {
			if a.Value < q.MinValue || a.Value > q.MaxValue {
				return fmt.Errorf("%w: value %d outside [%d, %d] for question '%s'",
					ErrOutOfRange, a.Value, q.MinValue, q.MaxValue, q.UID)
			}
		}

	case types.QTypeTimeRange:
		if a.TimeEnd < a.TimeBegin {
			return fmt.Errorf("%w: time range end %d before begin %d for question '%s'",
				ErrInvalidValue, a.TimeEnd, a.TimeBegin, q.UID)
		}

	case types.QTypeUUID:
		if err := SessionID(a.Text); err != nil {
			return fmt.Errorf("%w: UUID answer for question '%s': %s", ErrInvalidValue, q.UID, err.Error())
		}

	case types.QTypeEmail:
		at := strings.IndexByte(a.Text, '@')
		if at < 1 || at == len(a.Text)-1 {
			return fmt.Errorf("%w: '%s' is not an email address", ErrInvalidValue, a.Text)
		}
	}
	return nil
}
