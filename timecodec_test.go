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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		expect time.Time
	}{
		{
			name:   "dash delimited",
			value:  "10-11-2023 00:30",
			expect: time.Date(2023, 11, 10, 0, 30, 0, 0, time.UTC),
		},
		{
			name:   "slash delimited",
			value:  "10/11/2023 23:30",
			expect: time.Date(2023, 11, 10, 23, 30, 0, 0, time.UTC),
		},
		{
			name:   "unpadded fields",
			value:  "1-2-2023 7:05",
			expect: time.Date(2023, 2, 1, 7, 5, 0, 0, time.UTC),
		},
		{
			name:   "surrounding whitespace",
			value:  "  31-12-2023 12:00 ",
			expect: time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC),
		},
		{
			name:   "leap day",
			value:  "29-02-2024 23:30",
			expect: time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestParseTimestampRejects(t *testing.T) {
	for _, value := range []string{
		"2023.11.10 00:00",
		"10-11-2023",
		"10-11 00:00",
		"aa-11-2023 00:00",
		"32-11-2023 00:00",
		"10-13-2023 00:00",
		"31-02-2023 00:00",
		"29/02/2023 12:00",
		"31-04-2024 00:00",
		"10-11-2023 24:00",
		"10-11-2023 12:5",
		"10-11-2023 12:60",
		"",
	} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseTimestamp(value)
			assert.ErrorIs(t, err, ErrUnrecognizedFormat)
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	at := time.Date(2023, 1, 5, 7, 30, 0, 0, time.UTC)
	assert.Equal(t, "05-01-2023 07:30", FormatTimestamp(at))
	assert.Equal(t, "07:30", FormatTimeOfDay(at))
	assert.Equal(t, "01-01-0999 00:00", FormatTimestamp(time.Date(999, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCanonicalTimestamp(t *testing.T) {
	for _, value := range []string{"10/11/2023 00:00", "10-11-2023 00:00", "10/11/2023 0:00"} {
		got, err := CanonicalTimestamp(value)
		require.NoError(t, err)
		assert.Equal(t, "10-11-2023 00:00", got)
	}

	// round trip through the canonical form is stable
	parsed, err := ParseTimestamp("09/11/2023 13:30")
	require.NoError(t, err)
	again, err := ParseTimestamp(FormatTimestamp(parsed))
	require.NoError(t, err)
	assert.Equal(t, parsed, again)
}

func TestNormalizeClock(t *testing.T) {
	tests := []struct {
		value  string
		expect string
		ok     bool
	}{
		{"8:00", "08:00", true},
		{"23:30", "23:30", true},
		{"24:00", "24:00", true},
		{"24:30", "", false},
		{"25:00", "", false},
		{"noon", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := normalizeClock(tt.value)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}
