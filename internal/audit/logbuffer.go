// Package audit keeps the most recent log lines in memory so operator actions
// can be reviewed from the dashboard.
package audit

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one captured log line
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Action    string    `json:"action,omitempty"`
	AlertID   string    `json:"alert_id,omitempty"`
	Raw       string    `json:"raw"`
}

// LogBuffer is a thread-safe ring buffer of zerolog JSON lines
type LogBuffer struct {
	entries []Entry
	size    int
	head    int
	count   int
	now     func() time.Time
	mu      sync.RWMutex
}

// NewLogBuffer creates a buffer that keeps the last size entries
func NewLogBuffer(size int) *LogBuffer {
	if size < 1 {
		size = 1
	}
	return &LogBuffer{
		entries: make([]Entry, size),
		size:    size,
		now:     time.Now,
	}
}

// Write implements io.Writer. Each call is expected to carry one zerolog event.
func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	entry := parseLine(string(p))
	if entry.Timestamp.IsZero() {
		entry.Timestamp = lb.now()
	}

	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.entries[lb.head] = entry
	lb.head = (lb.head + 1) % lb.size
	if lb.count < lb.size {
		lb.count++
	}

	return len(p), nil
}

// Entries returns all entries in chronological order
func (lb *LogBuffer) Entries() []Entry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	result := make([]Entry, lb.count)
	if lb.count == 0 {
		return result
	}

	start := 0
	if lb.count == lb.size {
		start = lb.head
	}

	for i := 0; i < lb.count; i++ {
		result[i] = lb.entries[(start+i)%lb.size]
	}

	return result
}

// Actions returns the most recent n entries that record an operator action
func (lb *LogBuffer) Actions(n int) []Entry {
	entries := lb.Entries()
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Action != "" {
			out = append(out, e)
		}
	}
	if n >= 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

// parseLine extracts the well-known fields of a zerolog JSON line. Lines that
// are not JSON (console writer output) are kept raw at info level.
func parseLine(raw string) Entry {
	entry := Entry{Raw: strings.TrimRight(raw, "\n"), Level: zerolog.InfoLevel.String()}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		entry.Message = entry.Raw
		return entry
	}

	if v, ok := fields[zerolog.LevelFieldName].(string); ok {
		entry.Level = v
	}
	if v, ok := fields[zerolog.MessageFieldName].(string); ok {
		entry.Message = v
	}
	if v, ok := fields["action"].(string); ok {
		entry.Action = v
	}
	if v, ok := fields["alert_id"].(string); ok {
		entry.AlertID = v
	}
	switch v := fields[zerolog.TimestampFieldName].(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			entry.Timestamp = ts
		}
	case float64:
		entry.Timestamp = time.Unix(int64(v), 0)
	}
	return entry
}
