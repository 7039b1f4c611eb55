package serialize

import (
	"errors"
	"fmt"
	"strings"
)

// Separator between fields of a serialized line.
const Separator = ':'

var (
	// ErrFieldCount indicates a serialized line whose unescaped field count
	// does not match the expected count for its scope.
	ErrFieldCount = errors.New("unexpected number of fields in serialized line")
	// ErrRawNewline indicates a raw CR or LF inside a serialized line. One
	// record is one physical line, embedded newlines must be escaped.
	ErrRawNewline = errors.New("unescaped newline in serialized line")
	// ErrInvalidEscape indicates a backslash followed by an unsupported
	// character, or a trailing backslash.
	ErrInvalidEscape = errors.New("invalid escape sequence")
	// ErrInvalidInteger indicates a numeric field containing non-digit
	// characters.
	ErrInvalidInteger = errors.New("invalid integer field")
)

var escapeReplacer = strings.NewReplacer(
	"\\", "\\\\",
	":", "\\:",
	"\r", "\\r",
	"\n", "\\n",
	"\t", "\\t",
	"\b", "\\b",
)

// Escape renders s safe for embedding as a single field of a serialized
// line: the separator, backslash, CR, LF, TAB and BS are backslash escaped.
func Escape(s string) string {
	return escapeReplacer.Replace(s)
}

// Unescape reverses Escape. Any other escape sequence, a trailing
// backslash, or a raw newline is an error.
func Unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\r', '\n':
			return "", ErrRawNewline
		case '\\':
			i++
			if i >= len(s) {
				return "", fmt.Errorf("%w: trailing backslash", ErrInvalidEscape)
			}
			switch s[i] {
			case '\\':
				b.WriteByte('\\')
			case ':':
				b.WriteByte(':')
			case 'r':
				b.WriteByte('\r')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			default:
				return "", fmt.Errorf("%w: \\%c", ErrInvalidEscape, s[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// SplitFields splits a serialized line on unescaped separators without
// unescaping the fields. Raw newlines anywhere in the line are rejected.
func SplitFields(line string) ([]string, error) {
	fields := []string{}
	start := 0
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\r' || c == '\n' {
			return nil, ErrRawNewline
		}
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case Separator:
			fields = append(fields, line[start:i])
			start = i + 1
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: trailing backslash", ErrInvalidEscape)
	}
	fields = append(fields, line[start:])
	return fields, nil
}
