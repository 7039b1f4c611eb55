package errtrace

import (
	"fmt"
	"time"
)

const defaultMaxEntries = 200

// Trace is a request-scoped rolling buffer of human readable diagnostic
// strings. A handler owns one trace per request, clears it at request start
// and may include its contents in error responses. It is not safe for
// concurrent use; a request's call stack is its only owner.
type Trace struct {
	entries []string
	max     int
}

func New() *Trace {
	return &Trace{max: defaultMaxEntries}
}

// Addf appends a formatted entry, discarding the oldest entry once the
// buffer is full.
func (t *Trace) Addf(format string, args ...interface{}) {
	entry := fmt.Sprintf("%s %s", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	if len(t.entries) >= t.max {
		copy(t.entries, t.entries[1:])
		t.entries[len(t.entries)-1] = entry
		return
	}
	t.entries = append(t.entries, entry)
}

// AddError appends err's message under the given operation label.
func (t *Trace) AddError(op string, err error) {
	if err == nil {
		return
	}
	t.Addf("%s: %s", op, err.Error())
}

// Entries returns a copy of the accumulated entries, oldest first.
func (t *Trace) Entries() []string {
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// Clear discards all entries, typically at request start.
func (t *Trace) Clear() {
	t.entries = t.entries[:0]
}

func (t *Trace) Len() int {
	return len(t.entries)
}
