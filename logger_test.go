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

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogDiagnosticLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, true)

	logger.LogDiagnostic(Diagnostic{Kind: DiagnosticInterpolatedSlot, Timestamp: "10-11-2023 00:00", Message: "filled"})
	assert.Empty(t, buf.String())

	logger.LogDiagnostic(Diagnostic{Kind: DiagnosticUnmatchedRate, Provider: "Flat", TimeOfDay: "12:00", Message: "No import price found"})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "unmatched_rate", entry["kind"])
	assert.Equal(t, "Flat", entry["provider"])
	assert.Equal(t, "12:00", entry["time_of_day"])
}

func TestLogDiagnosticDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, true, false).WithComponent("estimator")

	logger.LogDiagnostic(Diagnostic{Kind: DiagnosticInterpolatedSlot, Timestamp: "10-11-2023 00:00", Value: 1.5, Message: "filled"})
	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, "component=estimator")
	assert.Contains(t, output, "value=1.5")
}

func TestDiagnosticsCollector(t *testing.T) {
	var hooked []Diagnostic
	diag := newDiagnostics(NewDiscardLogger(), func(d Diagnostic) { hooked = append(hooked, d) })

	diag.report(Diagnostic{Kind: DiagnosticEmptySlot})
	diag.reportOnce("a", Diagnostic{Kind: DiagnosticUnmatchedRate})
	diag.reportOnce("a", Diagnostic{Kind: DiagnosticUnmatchedRate})
	diag.reportOnce("b", Diagnostic{Kind: DiagnosticUnmatchedRate})

	assert.Len(t, diag.list(), 3)
	assert.Equal(t, diag.list(), hooked)
	assert.Equal(t, 2, diag.count(DiagnosticUnmatchedRate))
	assert.Zero(t, diag.count(DiagnosticSkippedRow))

	var none *diagnostics
	none.report(Diagnostic{Kind: DiagnosticEmptySlot})
	assert.Nil(t, none.list())
	assert.Zero(t, none.count(DiagnosticEmptySlot))
}
