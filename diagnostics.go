// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

// DiagnosticKind classifies a non-fatal event raised while estimating
type DiagnosticKind string

const (
	DiagnosticInterpolatedSlot DiagnosticKind = "interpolated_slot"
	DiagnosticEmptySlot        DiagnosticKind = "empty_slot"
	DiagnosticUnmatchedRate    DiagnosticKind = "unmatched_rate"
	DiagnosticMissingProvider  DiagnosticKind = "missing_provider"
	DiagnosticMissingBands     DiagnosticKind = "missing_time_bands"
	DiagnosticSkippedRow       DiagnosticKind = "skipped_row"
)

// Diagnostic is an observability event. It never changes control flow.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	Provider  string         `json:"provider,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
	TimeOfDay string         `json:"timeOfDay,omitempty"`
	Value     float64        `json:"value,omitempty"`
	Message   string         `json:"message"`
}

// DiagnosticHook receives every diagnostic as it is raised
type DiagnosticHook func(Diagnostic)

// diagnostics collects the events of one estimation call
type diagnostics struct {
	logger *Logger
	hook   DiagnosticHook
	events []Diagnostic
	seen   map[string]bool
}

func newDiagnostics(logger *Logger, hook DiagnosticHook) *diagnostics {
	return &diagnostics{
		logger: logger,
		hook:   hook,
		seen:   make(map[string]bool),
	}
}

func (d *diagnostics) report(event Diagnostic) {
	if d == nil {
		return
	}
	d.events = append(d.events, event)
	if d.logger != nil {
		d.logger.LogDiagnostic(event)
	}
	if d.hook != nil {
		d.hook(event)
	}
}

// reportOnce drops repeats of the same key, used for per-slot rate misses
// which would otherwise repeat for every provider pass
func (d *diagnostics) reportOnce(key string, event Diagnostic) {
	if d == nil || d.seen[key] {
		return
	}
	d.seen[key] = true
	d.report(event)
}

func (d *diagnostics) list() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.events
}

// count returns the number of collected events of the given kind
func (d *diagnostics) count(kind DiagnosticKind) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, event := range d.events {
		if event.Kind == kind {
			n++
		}
	}
	return n
}
