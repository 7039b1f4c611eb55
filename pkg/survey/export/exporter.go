package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gardners/surveysystem-sub000/pkg/survey/types"
)

// Export formats. "wide" is one row per session with a column per question,
// "long" is one row per answer record, "json" is a stream of flat session
// objects.
const (
	FormatWide = "wide"
	FormatLong = "long"
	FormatJSON = "json"
)

var longColumns = []string{
	"session_id", "state", "question", "type", "text", "value",
	"lat", "lon", "time_begin", "time_end", "unit", "stored", "deleted",
}

// SessionExporter streams sessions of one survey into a writer. The column
// set is fixed at construction from the survey's pinned question list, so
// every exported row has the same shape regardless of how far the
// individual session got.
type SessionExporter struct {
	writer       io.Writer
	csvWriter    *csv.Writer
	format       string
	questionUIDs []string
	counter      int
}

func NewSessionExporter(questions []*types.Question, writer io.Writer, format string) (*SessionExporter, error) {
	se := &SessionExporter{
		writer: writer,
		format: format,
	}
	for _, q := range questions {
		se.questionUIDs = append(se.questionUIDs, q.UID)
	}

	if err := se.init(); err != nil {
		return nil, err
	}
	return se, nil
}

func (se *SessionExporter) init() error {
	var err error
	switch se.format {
	case FormatWide:
		se.csvWriter = csv.NewWriter(se.writer)
		record := []string{"session_id", "state"}
		record = append(record, se.questionUIDs...)
		err = se.csvWriter.Write(record)
	case FormatLong:
		se.csvWriter = csv.NewWriter(se.writer)
		err = se.csvWriter.Write(longColumns)
	case FormatJSON:
		_, err = se.writer.Write([]byte("{ \"sessions\": ["))
	default:
		return fmt.Errorf("unsupported format: %s", se.format)
	}
	return err
}

// WriteSession appends one session to the export.
func (se *SessionExporter) WriteSession(ses *types.Session) error {
	if se.writer == nil {
		return fmt.Errorf("writer not initialized")
	}

	switch se.format {
	case FormatWide:
		record := []string{ses.SessionID, ses.State.String()}
		for _, uid := range se.questionUIDs {
			record = append(record, displayValue(ses.AnswerByUID(uid)))
		}
		return se.csvWriter.Write(record)

	case FormatLong:
		for i := ses.AnswerOffset; i < len(ses.Answers); i++ {
			a := ses.Answers[i]
			record := []string{
				ses.SessionID,
				ses.State.String(),
				a.UID,
				a.Type.String(),
				a.Text,
				strconv.FormatInt(a.Value, 10),
				strconv.FormatInt(a.Lat, 10),
				strconv.FormatInt(a.Lon, 10),
				strconv.FormatInt(a.TimeBegin, 10),
				strconv.FormatInt(a.TimeEnd, 10),
				a.Unit,
				strconv.FormatInt(a.Stored, 10),
				strconv.FormatBool(a.IsDeleted()),
			}
			if err := se.csvWriter.Write(record); err != nil {
				return err
			}
		}
		return nil

	case FormatJSON:
		obj := map[string]interface{}{
			"session_id": ses.SessionID,
			"survey_id":  ses.SurveyID,
			"state":      ses.State.String(),
		}
		for _, a := range ses.GivenAnswers() {
			obj[a.UID] = displayValue(a)
		}
		encoded, err := json.Marshal(obj)
		if err != nil {
			return err
		}
		if se.counter > 0 {
			if _, err := se.writer.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := se.writer.Write(encoded); err != nil {
			return err
		}
		se.counter++
		return nil
	}
	return fmt.Errorf("unsupported format: %s", se.format)
}

// Finish flushes buffered output and closes the JSON document.
func (se *SessionExporter) Finish() error {
	switch se.format {
	case FormatWide, FormatLong:
		se.csvWriter.Flush()
		return se.csvWriter.Error()
	case FormatJSON:
		_, err := se.writer.Write([]byte("] }"))
		return err
	}
	return nil
}

// displayValue renders the answer field(s) the question type actually uses.
func displayValue(a *types.Answer) string {
	if a == nil || a.IsDeleted() {
		return ""
	}
	switch a.Type {
	case types.QTypeInt, types.QTypeFixedPoint, types.QTypeDuration24:
		return strconv.FormatInt(a.Value, 10)
	case types.QTypeLatLon:
		return fmt.Sprintf("%d,%d", a.Lat, a.Lon)
	case types.QTypeDateTime, types.QTypeDayTime:
		return strconv.FormatInt(a.TimeBegin, 10)
	case types.QTypeTimeRange:
		return fmt.Sprintf("%d,%d", a.TimeBegin, a.TimeEnd)
	}
	return a.Text
}
