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
	"fmt"
	"time"
)

const (
	// SlotDuration is the meter interval length
	SlotDuration = 30 * time.Minute

	// DefaultInterpolationWindowDays is how many days either side of a missing
	// slot are searched for the same time of day
	DefaultInterpolationWindowDays = 14
)

// ReadingsMap maps a canonical "DD-MM-YYYY HH:MM" key to a kW reading
type ReadingsMap map[string]float64

// BuildReadingsMap indexes a series by canonical timestamp key.
// Later duplicates overwrite earlier ones.
func BuildReadingsMap(series ReadingSeries) (ReadingsMap, error) {
	readings := make(ReadingsMap, len(series))
	for _, reading := range series {
		key, err := CanonicalTimestamp(reading.Timestamp)
		if err != nil {
			return nil, err
		}
		readings[key] = reading.Value
	}
	return readings, nil
}

// InterpolateSlots returns one reading for every 30-minute slot from earliest
// to latest inclusive, ascending. A slot missing from readings takes the mean
// of the same time of day up to windowDays days either side, or 0 when none exist.
func InterpolateSlots(readings ReadingsMap, earliest, latest time.Time, windowDays int, hook DiagnosticHook) []Reading {
	return interpolateSlots(readings, earliest, latest, windowDays, newDiagnostics(nil, hook))
}

func interpolateSlots(readings ReadingsMap, earliest, latest time.Time, windowDays int, diag *diagnostics) []Reading {
	if latest.Before(earliest) {
		return nil
	}

	dense := make([]Reading, 0, int(latest.Sub(earliest)/SlotDuration)+1)
	for slot := earliest; !slot.After(latest); slot = slot.Add(SlotDuration) {
		key := FormatTimestamp(slot)
		if value, ok := readings[key]; ok {
			dense = append(dense, Reading{Timestamp: key, Value: value})
			continue
		}

		value, samples := sameTimeOfDayMean(readings, slot, windowDays)
		if samples > 0 {
			diag.report(Diagnostic{
				Kind:      DiagnosticInterpolatedSlot,
				Timestamp: key,
				Value:     value,
				Message:   fmt.Sprintf("Timestamp missing, interpolated from %d readings", samples),
			})
		} else {
			diag.report(Diagnostic{
				Kind:      DiagnosticEmptySlot,
				Timestamp: key,
				Message:   "Timestamp missing and no readings for the same time of day, using 0",
			})
		}
		dense = append(dense, Reading{Timestamp: key, Value: value})
	}

	return dense
}

// sameTimeOfDayMean averages the readings found at slot's time of day on the
// windowDays days before and after it
func sameTimeOfDayMean(readings ReadingsMap, slot time.Time, windowDays int) (float64, int) {
	sum := 0.0
	samples := 0
	for offset := -windowDays; offset <= windowDays; offset++ {
		if offset == 0 {
			continue
		}
		if value, ok := readings[FormatTimestamp(slot.AddDate(0, 0, offset))]; ok {
			sum += value
			samples++
		}
	}
	if samples == 0 {
		return 0, 0
	}
	return sum / float64(samples), samples
}
