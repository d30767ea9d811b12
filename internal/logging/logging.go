package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultLogFile = "mqtt-analyzer.log"

var (
	traceMu      sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	sink         io.Writer
)

// Error writes errors to the shared log file.
func Error(err error) {
	if err == nil {
		return
	}
	write(func(l zerolog.Logger) {
		l.Error().Err(err).Msg("error")
	})
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	traceMu.Lock()
	traceEnabled = enabled
	traceMu.Unlock()
}

// TraceEnabled reports whether trace entries are currently emitted.
func TraceEnabled() bool {
	traceMu.Lock()
	defer traceMu.Unlock()
	return traceEnabled
}

// Trace appends a structured JSON entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}
	write(func(l zerolog.Logger) {
		ev := l.Debug().Str("event", event)
		if payload != nil {
			ev = ev.Interface("payload", payload)
		}
		ev.Send()
	})
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing.
func Configure(path string) {
	traceMu.Lock()
	defer traceMu.Unlock()
	sink = nil
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// SetOutput redirects log entries to w instead of the log file. Passing nil
// restores file output. Tests use it to capture entries.
func SetOutput(w io.Writer) {
	traceMu.Lock()
	sink = w
	traceMu.Unlock()
}

func write(emit func(zerolog.Logger)) {
	traceMu.Lock()
	w := sink
	path := logPath
	traceMu.Unlock()

	if w != nil {
		emit(newLogger(w))
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging failed: %v\n", err)
		return
	}
	defer f.Close()
	emit(newLogger(f))
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
}
