// Package audit keeps a bounded in-memory record of payment and
// registration events for operator inspection.
package audit

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry types. The tag names every consumer sees, keep them stable.
const (
	TypePaymentVerified    = "payment_verified"
	TypePaymentVerifyFail  = "payment_verify_fail"
	TypePaymentVerifyError = "payment_verify_error"
	TypeTokenCreated       = "token_created"
)

// Entry is a single audit event. Fields carry event-specific context
// and are flattened into the top-level JSON object.
type Entry struct {
	ID        string
	Type      string
	Timestamp time.Time
	Fields    map[string]interface{}
}

// MarshalJSON flattens Fields alongside the fixed keys so consumers see
// one flat object per entry.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Fields)+3)
	for k, v := range e.Fields {
		out[k] = v
	}
	out["id"] = e.ID
	out["type"] = e.Type
	out["timestamp"] = e.Timestamp.UTC().Format(time.RFC3339)
	return json.Marshal(out)
}

// Log is a fixed-capacity ring of audit entries, newest first.
// When full, recording a new entry drops the oldest.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
	clock   func() time.Time
}

// NewLog creates an audit log holding at most capacity entries.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = 500
	}
	return &Log{
		entries: make([]Entry, 0, capacity),
		cap:     capacity,
		clock:   time.Now,
	}
}

// WithClock overrides the time source for tests.
func (l *Log) WithClock(clock func() time.Time) *Log {
	l.clock = clock
	return l
}

// Record appends an event and returns the stored entry.
func (l *Log) Record(entryType string, fields map[string]interface{}) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Type:      entryType,
		Timestamp: l.clock(),
		Fields:    fields,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Newest first; trim the tail when over capacity.
	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > l.cap {
		l.entries = l.entries[:l.cap]
	}

	return entry
}

// Recent returns up to limit entries, newest first. A non-positive
// limit returns everything held.
func (l *Log) Recent(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]Entry, limit)
	copy(out, l.entries[:limit])
	return out
}

// Len returns the number of held entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
