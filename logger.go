// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with domain-specific methods
type Logger struct {
	*slog.Logger
}

// NewLogger creates a text-formatted logger
func NewLogger(debug bool) *Logger {
	return newLogger(os.Stderr, debug, false)
}

// NewJSONLogger creates a JSON-formatted logger
func NewJSONLogger(debug bool) *Logger {
	return newLogger(os.Stderr, debug, true)
}

// NewDiscardLogger creates a logger that drops everything
func NewDiscardLogger() *Logger {
	return newLogger(io.Discard, false, false)
}

func newLogger(w io.Writer, debug, asJSON bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if asJSON {
		return &Logger{slog.New(slog.NewJSONHandler(w, opts))}
	}
	return &Logger{slog.New(slog.NewTextHandler(w, opts))}
}

// WithComponent adds a component field to the logger
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{l.With("component", component)}
}

// LogEstimationStage logs estimation stage completion
func (l *Logger) LogEstimationStage(stage string, args ...any) {
	l.Debug("Estimation stage completed", append([]any{"stage", stage}, args...)...)
}

// LogDiagnostic logs a diagnostic raised during ingestion or estimation.
// Interpolated slots are routine on meter exports and only show at debug level.
func (l *Logger) LogDiagnostic(d Diagnostic) {
	attrs := []any{"kind", string(d.Kind)}
	if d.Provider != "" {
		attrs = append(attrs, "provider", d.Provider)
	}
	if d.Timestamp != "" {
		attrs = append(attrs, "timestamp", d.Timestamp)
	}
	if d.TimeOfDay != "" {
		attrs = append(attrs, "time_of_day", d.TimeOfDay)
	}
	if d.Kind == DiagnosticInterpolatedSlot || d.Kind == DiagnosticEmptySlot {
		attrs = append(attrs, "value", d.Value)
	}

	switch d.Kind {
	case DiagnosticInterpolatedSlot:
		l.Debug(d.Message, attrs...)
	default:
		l.Warn(d.Message, attrs...)
	}
}

// LogStorageOperation logs storage operations
func (l *Logger) LogStorageOperation(operation, path string) {
	l.Debug("Storage operation",
		"operation", operation,
		"path", path,
	)
}

// UserMessage outputs a message directly to stderr (bypassing structured
// logging) so it never mixes with a report written to stdout
func (l *Logger) UserMessage(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
