// Package debuglog writes structured debug events as JSON lines.
package debuglog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// DefaultPath is the file used by the --debug flag.
const DefaultPath = "timetable-debug.log"

// Logger writes one JSON object per event. A nil *Logger is valid and
// discards everything.
type Logger struct {
	mu  sync.Mutex
	w   io.Writer
	c   io.Closer
	seq int
	now func() time.Time
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	l := &Logger{w: w, now: time.Now}
	if c, ok := w.(io.Closer); ok {
		l.c = c
	}
	return l
}

// Open creates (or truncates) the log file at path.
func Open(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating debug log: %w", err)
	}
	l := New(f)
	l.Log("DEBUG_START", map[string]any{
		"log_file": path,
		"time":     l.now().Format(time.RFC3339),
	})
	return l, nil
}

// Close writes the closing event and closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.Log("DEBUG_END", map[string]any{
		"time": l.now().Format(time.RFC3339),
	})
	if l.c == nil {
		return nil
	}
	return l.c.Close()
}

// Log writes an event with its data. The seq, ts and event keys are set by
// the logger and take precedence over the same keys in data.
func (l *Logger) Log(event string, data map[string]any) {
	if l == nil || l.w == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	entry := make(map[string]any, len(data)+3)
	for k, v := range data {
		entry[k] = v
	}
	entry["seq"] = l.seq
	entry["ts"] = l.now().Format("15:04:05.000")
	entry["event"] = event

	b, err := json.Marshal(entry)
	if err != nil {
		b, _ = json.Marshal(map[string]any{"seq": l.seq, "event": "ERROR", "error": err.Error()})
	}
	_, _ = fmt.Fprintf(l.w, "%s\n", b)
}

// Error logs err under the ERROR event.
func (l *Logger) Error(context string, err error) {
	if err == nil {
		return
	}
	l.Log("ERROR", map[string]any{
		"context": context,
		"error":   err.Error(),
	})
}
