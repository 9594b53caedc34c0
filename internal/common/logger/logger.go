package logger

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Logger writes one JSON object per line: timestamp, level, component,
// action and free-form fields. The till is an interactive program, so log
// output goes to stderr by default.
type Logger struct {
	component string
	mu        sync.Mutex
	out       io.Writer
}

func New(component string) *Logger {
	return &Logger{component: component, out: os.Stderr}
}

// NewWithWriter is used by tests to capture output.
func NewWithWriter(component string, out io.Writer) *Logger {
	return &Logger{component: component, out: out}
}

func (l *Logger) log(level, action string, fields map[string]any, err error) {
	entry := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"component": l.component,
		"action":    action,
	}
	for k, v := range fields {
		entry[k] = v
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = json.NewEncoder(l.out).Encode(entry)
}

func (l *Logger) Info(action string, fields map[string]any)  { l.log("INFO", action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log("DEBUG", action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any)  { l.log("WARN", action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log("ERROR", action, fields, err)
}
