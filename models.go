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
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Fixed2 is a value rendered with exactly two decimal places, e.g. "876.00"
type Fixed2 float64

func (f Fixed2) String() string {
	value := float64(f)
	if math.Abs(value) < 0.005 {
		value = 0
	}
	return strconv.FormatFloat(value, 'f', 2, 64)
}

// Float64 returns the unrounded value
func (f Fixed2) Float64() float64 {
	return float64(f)
}

func (f Fixed2) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(f.String())), nil
}

func (f *Fixed2) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		var number float64
		if err := json.Unmarshal(data, &number); err != nil {
			return fmt.Errorf("invalid fixed-point value %s", data)
		}
		*f = Fixed2(number)
		return nil
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("invalid fixed-point value %q: %w", text, err)
	}
	*f = Fixed2(value)
	return nil
}

// RateConsumption is the annual consumption billed at one price
type RateConsumption struct {
	Consumption Fixed2     `json:"consumption"` // kWh per year
	Percentage  Fixed2     `json:"percentage"`  // share of annual consumption
	Bands       []TimeBand `json:"bands,omitempty"`
}

// BillBreakdown is the projected annual bill for one provider
type BillBreakdown struct {
	Total               Fixed2                     `json:"total"`
	ConsumptionCharge   Fixed2                     `json:"consumptionCharge"`
	StandingCharge      Fixed2                     `json:"standingCharge"`
	ExportReduction     Fixed2                     `json:"exportReduction"`
	UnpricedConsumption Fixed2                     `json:"unpricedConsumption,omitempty"` // kWh per year with no matching band
	Breakdown           map[string]RateConsumption `json:"breakdown"`
}

// PriceKeys returns the breakdown keys ordered by price
func (b *BillBreakdown) PriceKeys() []string {
	keys := make([]string, 0, len(b.Breakdown))
	for key := range b.Breakdown {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseFloat(keys[i], 64)
		c, _ := strconv.ParseFloat(keys[j], 64)
		return a < c
	})
	return keys
}

// Estimation holds the output of one estimation call
type Estimation struct {
	GeneratedAt          time.Time                 `json:"generatedAt"`
	PeriodStart          time.Time                 `json:"periodStart"`
	PeriodEnd            time.Time                 `json:"periodEnd"`
	PeriodDays           float64                   `json:"periodDays"`
	AnnualisationRatio   float64                   `json:"annualisationRatio"`
	ConsumptionKWh       float64                   `json:"consumptionKwh"`       // import over the period
	AnnualConsumptionKWh float64                   `json:"annualConsumptionKwh"` // import scaled to a year
	ExportKWh            float64                   `json:"exportKwh"`            // export over the period
	Interpolated         bool                      `json:"interpolated"`
	InterpolatedSlots    int                       `json:"interpolatedSlots"`
	Providers            []string                  `json:"providers"`
	Bills                map[string]*BillBreakdown `json:"bills"`
	Diagnostics          []Diagnostic              `json:"diagnostics,omitempty"`
}

// Ranking returns provider names from cheapest to most expensive total
func (e *Estimation) Ranking() []string {
	names := make([]string, 0, len(e.Bills))
	for _, name := range e.Providers {
		if _, ok := e.Bills[name]; ok {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := e.Bills[names[i]].Total, e.Bills[names[j]].Total
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
	return names
}

// Cheapest returns the provider with the lowest total
func (e *Estimation) Cheapest() (string, *BillBreakdown, bool) {
	ranking := e.Ranking()
	if len(ranking) == 0 {
		return "", nil, false
	}
	return ranking[0], e.Bills[ranking[0]], true
}
