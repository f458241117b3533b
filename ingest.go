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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Column names and read type tags of the HDF (harmonised data file) export
const (
	ColumnReadValue = "Read Value"
	ColumnReadType  = "Read Type"
	ColumnReadDate  = "Read Date and End Time"

	ReadTypeImport = "Active Import Interval (kW)"
	ReadTypeExport = "Active Export Interval (kW)"
)

// Reading is a single interval reading. Timestamp is the end of the interval
// exactly as it appeared in the source row.
type Reading struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"` // kW averaged over the half hour
}

// ReadingSeries keeps source row order, expected latest first
type ReadingSeries []Reading

// IngestReadings splits HDF rows into import and export series.
// Rows with other read types are ignored. Rows whose value is not a finite
// number are skipped and reported to hook.
func IngestReadings(r io.Reader, hook DiagnosticHook) (ReadingSeries, ReadingSeries, error) {
	return ingestReadings(r, newDiagnostics(nil, hook))
}

func ingestReadings(r io.Reader, diag *diagnostics) (ReadingSeries, ReadingSeries, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, &DataError{DataType: "consumption", Message: "file is empty", Err: ErrMissingConsumptionData}
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{ColumnReadValue, ColumnReadType, ColumnReadDate} {
		if _, ok := columns[required]; !ok {
			return nil, nil, &DataError{
				DataType: "consumption",
				Message:  fmt.Sprintf("missing column %q", required),
			}
		}
	}
	valueCol := columns[ColumnReadValue]
	typeCol := columns[ColumnReadType]
	dateCol := columns[ColumnReadDate]

	var imports, exports ReadingSeries
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read consumption row: %w", err)
		}
		if typeCol >= len(record) || valueCol >= len(record) || dateCol >= len(record) {
			continue
		}

		var target *ReadingSeries
		switch record[typeCol] {
		case ReadTypeImport:
			target = &imports
		case ReadTypeExport:
			target = &exports
		default:
			continue
		}

		timestamp := strings.TrimSpace(record[dateCol])
		value, err := strconv.ParseFloat(strings.TrimSpace(record[valueCol]), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			line, _ := reader.FieldPos(valueCol)
			diag.report(Diagnostic{
				Kind:      DiagnosticSkippedRow,
				Timestamp: timestamp,
				Message:   fmt.Sprintf("Skipping row %d with invalid read value %q", line, record[valueCol]),
			})
			continue
		}

		*target = append(*target, Reading{Timestamp: timestamp, Value: value})
	}

	return imports, exports, nil
}
