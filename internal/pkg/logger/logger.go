package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger emits structured JSON log lines. Subscriber emails are PII, so
// redaction is on by default for every field value.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	redactPII bool
}

var defaultLogger = &Logger{out: os.Stderr, level: INFO, redactPII: true}

// SetLevel sets the minimum level for the default logger.
func SetLevel(l Level) { defaultLogger.level = l }

// SetRedactPII enables or disables email redaction for the default logger.
func SetRedactPII(r bool) { defaultLogger.redactPII = r }

// SetOutput redirects the default logger. Used by tests.
func SetOutput(w io.Writer) { defaultLogger.out = w }

// Debug emits a DEBUG-level entry.
func Debug(msg string, fields ...any) { defaultLogger.log(DEBUG, msg, fields...) }

// Info emits an INFO-level entry.
func Info(msg string, fields ...any) { defaultLogger.log(INFO, msg, fields...) }

// Warn emits a WARN-level entry.
func Warn(msg string, fields ...any) { defaultLogger.log(WARN, msg, fields...) }

// Error emits an ERROR-level entry.
func Error(msg string, fields ...any) { defaultLogger.log(ERROR, msg, fields...) }

func (l *Logger) log(level Level, msg string, fields ...any) {
	if level < l.level {
		return
	}

	entry := map[string]string{
		"time":  time.Now().UTC().Format(time.RFC3339),
		"level": levelNames[level],
		"msg":   msg,
	}

	// Fields arrive as alternating key/value pairs.
	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redactPII {
			val = redactValue(key, val)
		}
		entry[key] = val
	}

	data, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(l.out, string(data))
	l.mu.Unlock()
}
