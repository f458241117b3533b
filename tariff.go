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
	"math"
	"strconv"
)

// Direction selects the import or export rate list of a plan
type Direction string

const (
	Import Direction = "import"
	Export Direction = "export"
)

// TimeBand is a start/end pair billed at a given price
type TimeBand struct {
	Start string `json:"startTime"`
	End   string `json:"endTime"`
}

// rates returns the band list for the given direction
func (p *ProviderPlan) rates(direction Direction) []RateBand {
	if direction == Export {
		return p.ExportRates
	}
	return p.ImportRates
}

// PriceAt returns the price per kWh at timeOfDay ("HH:MM").
// A plan with no bands for the direction prices everything at 0.
// Otherwise the first matching band wins; ok is false if none matches.
func PriceAt(plan *ProviderPlan, timeOfDay string, direction Direction) (price float64, ok bool) {
	bands := plan.rates(direction)
	if len(bands) == 0 {
		return 0, true
	}

	band := findActiveBand(timeOfDay, bands)
	if band == nil {
		return 0, false
	}
	return band.Price, true
}

// findActiveBand finds the first band containing timeOfDay
func findActiveBand(timeOfDay string, bands []RateBand) *RateBand {
	for i := range bands {
		if bands[i].Contains(timeOfDay) {
			return &bands[i]
		}
	}
	return nil
}

// priceAt resolves a price and reports a miss once per provider, direction and time of day
func priceAt(plan *ProviderPlan, timeOfDay string, direction Direction, diag *diagnostics) (float64, bool) {
	price, ok := PriceAt(plan, timeOfDay, direction)
	if !ok {
		diag.reportOnce(fmt.Sprintf("%s|%s|%s", plan.Name, direction, timeOfDay), Diagnostic{
			Kind:      DiagnosticUnmatchedRate,
			Provider:  plan.Name,
			TimeOfDay: timeOfDay,
			Message:   fmt.Sprintf("No %s price found", direction),
		})
	}
	return price, ok
}

// PriceKey renders a price as a breakdown key. Prices are rounded to six
// decimal places so float noise does not split a bucket.
func PriceKey(price float64) string {
	return strconv.FormatFloat(math.Round(price*1e6)/1e6, 'f', -1, 64)
}

// TimeBandsForRate returns the import bands of plan billed at price
func TimeBandsForRate(plan *ProviderPlan, price float64) []TimeBand {
	key := PriceKey(price)
	var bands []TimeBand
	for _, band := range plan.ImportRates {
		if PriceKey(band.Price) == key {
			bands = append(bands, TimeBand{Start: band.Start, End: band.End})
		}
	}
	return bands
}
