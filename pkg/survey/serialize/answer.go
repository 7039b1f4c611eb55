package serialize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

// SerializeAnswer renders a single-line representation of the answer in the
// given scope.
//
// Field orders:
//
//	public:   uid, text, value, lat, lon, time_begin, time_end, tz_delta, dst_delta
//	checksum: uid, type, text, value, lat, lon, time_begin, time_end, tz_delta, dst_delta, unit, flags
//	full:     checksum fields plus stored
func SerializeAnswer(a *types.Answer, scope AnswerScope) string {
	fields := make([]string, 0, scope.FieldCount())

	fields = append(fields, Escape(a.UID))
	if scope != ScopePublic {
		fields = append(fields, Escape(a.Type.String()))
	}
	fields = append(fields,
		Escape(a.Text),
		strconv.FormatInt(a.Value, 10),
		strconv.FormatInt(a.Lat, 10),
		strconv.FormatInt(a.Lon, 10),
		strconv.FormatInt(a.TimeBegin, 10),
		strconv.FormatInt(a.TimeEnd, 10),
		strconv.Itoa(a.TimeZoneDelta),
		strconv.Itoa(a.DSTDelta),
	)
	if scope != ScopePublic {
		fields = append(fields,
			Escape(a.Unit),
			strconv.Itoa(a.Flags),
		)
	}
	if scope == ScopeFull {
		fields = append(fields, strconv.FormatInt(a.Stored, 10))
	}

	return strings.Join(fields, string(Separator))
}

// DeserializeAnswer parses a serialized answer line in the given scope.
// The field count is validated before any field is parsed, so a malformed
// line never yields a partially populated answer.
func DeserializeAnswer(line string, scope AnswerScope) (*types.Answer, error) {
	fields, err := SplitFields(line)
	if err != nil {
		return nil, err
	}
	if len(fields) != scope.FieldCount() {
		return nil, fmt.Errorf("%w: scope %s expects %d fields, got %d",
			ErrFieldCount, scope, scope.FieldCount(), len(fields))
	}

	a := &types.Answer{}
	idx := 0
	next := func() string {
		f := fields[idx]
		idx++
		return f
	}

	if a.UID, err = parseStringField(next()); err != nil {
		return nil, fmt.Errorf("uid: %w", err)
	}
	if scope != ScopePublic {
		name, err := parseStringField(next())
		if err != nil {
			return nil, fmt.Errorf("type: %w", err)
		}
		if name != "" {
			if a.Type, err = types.ParseQuestionType(name); err != nil {
				return nil, err
			}
		}
	}
	if a.Text, err = parseStringField(next()); err != nil {
		return nil, fmt.Errorf("text: %w", err)
	}
	if a.Value, err = parseInt64Field(next()); err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	if a.Lat, err = parseInt64Field(next()); err != nil {
		return nil, fmt.Errorf("lat: %w", err)
	}
	if a.Lon, err = parseInt64Field(next()); err != nil {
		return nil, fmt.Errorf("lon: %w", err)
	}
	if a.TimeBegin, err = parseInt64Field(next()); err != nil {
		return nil, fmt.Errorf("time_begin: %w", err)
	}
	if a.TimeEnd, err = parseInt64Field(next()); err != nil {
		return nil, fmt.Errorf("time_end: %w", err)
	}
	if a.TimeZoneDelta, err = parseIntField(next()); err != nil {
		return nil, fmt.Errorf("time_zone_delta: %w", err)
	}
	if a.DSTDelta, err = parseIntField(next()); err != nil {
		return nil, fmt.Errorf("dst_delta: %w", err)
	}
	if scope != ScopePublic {
		if a.Unit, err = parseStringField(next()); err != nil {
			return nil, fmt.Errorf("unit: %w", err)
		}
		if a.Flags, err = parseIntField(next()); err != nil {
			return nil, fmt.Errorf("flags: %w", err)
		}
	}
	if scope == ScopeFull {
		if a.Stored, err = parseInt64Field(next()); err != nil {
			return nil, fmt.Errorf("stored: %w", err)
		}
	}

	return a, nil
}
