package validate

import (
	"errors"
	"fmt"
)

// SessionIDLength is the fixed length of a session id (UUID shaped).
const SessionIDLength = 36

var (
	ErrInvalidSessionID = errors.New("invalid session id")
	ErrInvalidSurveyID  = errors.New("invalid survey id")
)

// SessionID verifies that a session id is exactly 36 characters of
// lowercase hex and dashes and does not begin with a dash. The main
// objective is to keep colons, slashes and uppercase out of file names and
// serialized lines.
func SessionID(sessionID string) error {
	if len(sessionID) != SessionIDLength {
		return fmt.Errorf("%w: '%s' must be exactly %d characters long", ErrInvalidSessionID, sessionID, SessionIDLength)
	}
	if sessionID[0] == '-' {
		return fmt.Errorf("%w: '%s' may not begin with a dash", ErrInvalidSessionID, sessionID)
	}
	for i := 0; i < len(sessionID); i++ {
		c := sessionID[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c == '-':
		case c >= 'A' && c <= 'F':
			return fmt.Errorf("%w: '%s' must be lower case", ErrInvalidSessionID, sessionID)
		default:
			return fmt.Errorf("%w: illegal character 0x%02x in '%s'", ErrInvalidSessionID, c, sessionID)
		}
	}
	return nil
}

// SurveyID verifies that a survey id contains only alphanumeric characters
// plus space, period, dash and underscore, allowing some freedom for the
// symbolic name of a form while keeping path and format metacharacters out.
func SurveyID(surveyID string) error {
	if surveyID == "" {
		return fmt.Errorf("%w: empty", ErrInvalidSurveyID)
	}
	for i := 0; i < len(surveyID); i++ {
		c := surveyID[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c == ' ' || c == '.' || c == '-' || c == '_':
		default:
			return fmt.Errorf("%w: illegal character 0x%02x in '%s'", ErrInvalidSurveyID, c, surveyID)
		}
	}
	return nil
}
