package types

import "fmt"

// QuestionType enumerates the supported question kinds. The on-disk and
// wire formats always carry the symbolic name, never the numeric value.
type QuestionType int

const (
	QTypeUnknown QuestionType = iota
	QTypeInt
	QTypeFixedPoint
	QTypeMultiChoice
	QTypeMultiSelect
	QTypeLatLon
	QTypeDateTime
	QTypeDayTime
	QTypeTimeRange
	QTypeUpload
	QTypeText
	QTypeCheckbox
	QTypeHidden
	QTypeTextArea
	QTypeEmail
	QTypePassword
	QTypeSingleChoice
	QTypeSingleSelect
	QTypeFixedPointSequence
	QTypeDayTimeSequence
	QTypeDateTimeSequence
	QTypeDuration24
	QTypeDialogDataCrawler
	QTypeUUID
	QTypeMeta
	QTypeSHA1Hash
)

var questionTypeNames = map[QuestionType]string{
	QTypeInt:                "INT",
	QTypeFixedPoint:         "FIXEDPOINT",
	QTypeMultiChoice:        "MULTICHOICE",
	QTypeMultiSelect:        "MULTISELECT",
	QTypeLatLon:             "LATLON",
	QTypeDateTime:           "DATETIME",
	QTypeDayTime:            "DAYTIME",
	QTypeTimeRange:          "TIMERANGE",
	QTypeUpload:             "UPLOAD",
	QTypeText:               "TEXT",
	QTypeCheckbox:           "CHECKBOX",
	QTypeHidden:             "HIDDEN",
	QTypeTextArea:           "TEXTAREA",
	QTypeEmail:              "EMAIL",
	QTypePassword:           "PASSWORD",
	QTypeSingleChoice:       "SINGLECHOICE",
	QTypeSingleSelect:       "SINGLESELECT",
	QTypeFixedPointSequence: "FIXEDPOINT_SEQUENCE",
	QTypeDayTimeSequence:    "DAYTIME_SEQUENCE",
	QTypeDateTimeSequence:   "DATETIME_SEQUENCE",
	QTypeDuration24:         "DURATION24",
	QTypeDialogDataCrawler:  "DIALOG_DATA_CRAWLER",
	QTypeUUID:               "UUID",
	QTypeMeta:               "META",
	QTypeSHA1Hash:           "SHA1_HASH",
}

var questionTypesByName = func() map[string]QuestionType {
	m := make(map[string]QuestionType, len(questionTypeNames))
	for t, name := range questionTypeNames {
		m[name] = t
	}
	return m
}()

func (t QuestionType) String() string {
	name, ok := questionTypeNames[t]
	if !ok {
		return fmt.Sprintf("QuestionType(%d)", int(t))
	}
	return name
}

func (t QuestionType) IsValid() bool {
	_, ok := questionTypeNames[t]
	return ok
}

func ParseQuestionType(name string) (QuestionType, error) {
	t, ok := questionTypesByName[name]
	if !ok {
		return QTypeUnknown, fmt.Errorf("unknown question type: '%s'", name)
	}
	return t, nil
}
