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
	"strconv"
	"strings"
	"time"
)

// Meter timestamps are naive wall-clock values. They are held in UTC so that
// slot arithmetic never crosses a DST transition.

// FormatTimestamp renders t as "DD-MM-YYYY HH:MM"
func FormatTimestamp(t time.Time) string {
	year, month, day := t.Date()
	buf := make([]byte, 0, 16)
	buf = appendTwoDigits(buf, day)
	buf = append(buf, '-')
	buf = appendTwoDigits(buf, int(month))
	buf = append(buf, '-')
	buf = appendYear(buf, year)
	buf = append(buf, ' ')
	buf = appendTwoDigits(buf, t.Hour())
	buf = append(buf, ':')
	buf = appendTwoDigits(buf, t.Minute())
	return string(buf)
}

// FormatTimeOfDay renders t as "HH:MM"
func FormatTimeOfDay(t time.Time) string {
	buf := make([]byte, 0, 5)
	buf = appendTwoDigits(buf, t.Hour())
	buf = append(buf, ':')
	buf = appendTwoDigits(buf, t.Minute())
	return string(buf)
}

// ParseTimestamp parses "DD-MM-YYYY HH:MM" or "DD/MM/YYYY HH:MM".
// The delimiter may differ between rows of the same dataset.
// Calendar dates that do not exist, such as 31-02-2023, are rejected.
func ParseTimestamp(value string) (time.Time, error) {
	datePart, timePart, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok {
		return time.Time{}, &FormatError{Value: value, Reason: "missing time of day"}
	}

	var delimiter string
	switch {
	case strings.Contains(datePart, "-"):
		delimiter = "-"
	case strings.Contains(datePart, "/"):
		delimiter = "/"
	default:
		return time.Time{}, &FormatError{Value: value}
	}

	dateFields := strings.Split(datePart, delimiter)
	if len(dateFields) != 3 {
		return time.Time{}, &FormatError{Value: value, Reason: "expected day, month and year"}
	}
	day, errDay := strconv.Atoi(dateFields[0])
	month, errMonth := strconv.Atoi(dateFields[1])
	year, errYear := strconv.Atoi(dateFields[2])
	if errDay != nil || errMonth != nil || errYear != nil {
		return time.Time{}, &FormatError{Value: value, Reason: "non-numeric date field"}
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, &FormatError{Value: value, Reason: "date field out of range"}
	}

	hour, minute, err := parseClock(strings.TrimSpace(timePart))
	if err != nil {
		return time.Time{}, &FormatError{Value: value, Reason: err.Error()}
	}
	if hour > 23 {
		return time.Time{}, &FormatError{Value: value, Reason: "hour out of range"}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, &FormatError{Value: value, Reason: "day does not exist in month"}
	}
	return t, nil
}

// CanonicalTimestamp rewrites either accepted input form into "DD-MM-YYYY HH:MM"
func CanonicalTimestamp(value string) (string, error) {
	t, err := ParseTimestamp(value)
	if err != nil {
		return "", err
	}
	return FormatTimestamp(t), nil
}

// parseClock parses "H:MM" or "HH:MM". Hour 24 is accepted for band ends.
func parseClock(value string) (int, int, error) {
	hourPart, minutePart, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, &ValidationError{Field: "time", Value: value, Message: "expected HH:MM"}
	}
	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour > 24 {
		return 0, 0, &ValidationError{Field: "hour", Value: value, Message: "expected 0-24"}
	}
	minute, err := strconv.Atoi(minutePart)
	if err != nil || len(minutePart) != 2 || minute < 0 || minute > 59 {
		return 0, 0, &ValidationError{Field: "minute", Value: value, Message: "expected 00-59"}
	}
	if hour == 24 && minute != 0 {
		return 0, 0, &ValidationError{Field: "time", Value: value, Message: "24:00 is the latest time of day"}
	}
	return hour, minute, nil
}

// normalizeClock returns value as zero-padded "HH:MM"
func normalizeClock(value string) (string, error) {
	hour, minute, err := parseClock(strings.TrimSpace(value))
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, 5)
	buf = appendTwoDigits(buf, hour)
	buf = append(buf, ':')
	buf = appendTwoDigits(buf, minute)
	return string(buf), nil
}

func appendTwoDigits(buf []byte, n int) []byte {
	if n < 10 {
		buf = append(buf, '0')
	}
	return strconv.AppendInt(buf, int64(n), 10)
}

func appendYear(buf []byte, year int) []byte {
	for div := 1000; div > 1 && year < div; div /= 10 {
		buf = append(buf, '0')
	}
	return strconv.AppendInt(buf, int64(year), 10)
}
