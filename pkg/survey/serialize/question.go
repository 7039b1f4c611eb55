package serialize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

// SerializeQuestion renders the fixed single-line question representation:
// uid, question_text, question_html, type name, flags, default_value,
// min_value, max_value, decimal_places, num_choices, choices, unit.
// The question type is written as its symbolic name so the format survives
// enum reordering.
func SerializeQuestion(q *types.Question) string {
	fields := []string{
		Escape(q.UID),
		Escape(q.QuestionText),
		Escape(q.QuestionHTML),
		Escape(q.Type.String()),
		strconv.Itoa(q.Flags),
		Escape(q.DefaultValue),
		strconv.FormatInt(q.MinValue, 10),
		strconv.FormatInt(q.MaxValue, 10),
		strconv.Itoa(q.DecimalPlaces),
		strconv.Itoa(q.NumChoices),
		Escape(q.Choices),
		Escape(q.Unit),
	}
	return strings.Join(fields, string(Separator))
}

// DeserializeQuestion parses a serialized question line. Field count is
// validated before parsing.
func DeserializeQuestion(line string) (*types.Question, error) {
	fields, err := SplitFields(line)
	if err != nil {
		return nil, err
	}
	if len(fields) != questionFieldCount {
		return nil, fmt.Errorf("%w: question expects %d fields, got %d",
			ErrFieldCount, questionFieldCount, len(fields))
	}

	q := &types.Question{}
	if q.UID, err = parseStringField(fields[0]); err != nil {
		return nil, fmt.Errorf("uid: %w", err)
	}
	if q.QuestionText, err = parseStringField(fields[1]); err != nil {
		return nil, fmt.Errorf("question_text: %w", err)
	}
	if q.QuestionHTML, err = parseStringField(fields[2]); err != nil {
		return nil, fmt.Errorf("question_html: %w", err)
	}
	typeName, err := parseStringField(fields[3])
	if err != nil {
		return nil, fmt.Errorf("type: %w", err)
	}
	if q.Type, err = types.ParseQuestionType(typeName); err != nil {
		return nil, err
	}
	if q.Flags, err = parseIntField(fields[4]); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if q.DefaultValue, err = parseStringField(fields[5]); err != nil {
		return nil, fmt.Errorf("default_value: %w", err)
	}
	if q.MinValue, err = parseInt64Field(fields[6]); err != nil {
		return nil, fmt.Errorf("min_value: %w", err)
	}
	if q.MaxValue, err = parseInt64Field(fields[7]); err != nil {
		return nil, fmt.Errorf("max_value: %w", err)
	}
	if q.DecimalPlaces, err = parseIntField(fields[8]); err != nil {
		return nil, fmt.Errorf("decimal_places: %w", err)
	}
	if q.NumChoices, err = parseIntField(fields[9]); err != nil {
		return nil, fmt.Errorf("num_choices: %w", err)
	}
	if q.Choices, err = parseStringField(fields[10]); err != nil {
		return nil, fmt.Errorf("choices: %w", err)
	}
	if q.Unit, err = parseStringField(fields[11]); err != nil {
		return nil, fmt.Errorf("unit: %w", err)
	}
	return q, nil
}
