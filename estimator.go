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
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"
)

// daysPerYear is the annualisation target
const daysPerYear = 365.0

// Estimator projects annual bills for every provider in a pricing catalog
// from half-hourly meter readings.
//
// The catalog is read-only, so EstimateFromSeries may be called concurrently.
// WithConsumption mutates the estimator and must not race with Estimate.
type Estimator struct {
	catalog     *PricingCatalog
	logger      *Logger
	hook        DiagnosticHook
	windowDays  int
	interpolate bool
	now         func() time.Time

	imports           ReadingSeries
	exports           ReadingSeries
	hasConsumption    bool
	consumptionErr    error
	ingestDiagnostics []Diagnostic
}

// Option configures an Estimator
type Option func(*Estimator)

// WithLogger sets the logger used for diagnostics and stage logging
func WithLogger(logger *Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDiagnosticHook registers a callback for every diagnostic
func WithDiagnosticHook(hook DiagnosticHook) Option {
	return func(e *Estimator) {
		e.hook = hook
	}
}

// WithInterpolationWindow sets how many days either side of a missing slot are searched
func WithInterpolationWindow(days int) Option {
	return func(e *Estimator) {
		if days > 0 {
			e.windowDays = days
		}
	}
}

// WithInterpolation enables or disables gap filling
func WithInterpolation(enabled bool) Option {
	return func(e *Estimator) {
		e.interpolate = enabled
	}
}

// WithClock overrides the clock used to stamp estimations
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEstimator creates an estimator from a pricing document.
// An empty document selects DefaultPricingDocument.
func NewEstimator(pricingDocument []byte, opts ...Option) (*Estimator, error) {
	if len(bytes.TrimSpace(pricingDocument)) == 0 {
		pricingDocument = []byte(DefaultPricingDocument)
	}

	catalog, err := LoadPricingCatalog(pricingDocument)
	if err != nil {
		return nil, err
	}

	return NewEstimatorFromCatalog(catalog, opts...), nil
}

// NewEstimatorFromCatalog creates an estimator over an already loaded catalog
func NewEstimatorFromCatalog(catalog *PricingCatalog, opts ...Option) *Estimator {
	e := &Estimator{
		catalog:     catalog,
		logger:      NewDiscardLogger(),
		windowDays:  DefaultInterpolationWindowDays,
		interpolate: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("estimator")
	return e
}

// Catalog returns the pricing catalog
func (e *Estimator) Catalog() *PricingCatalog {
	return e.catalog
}

// WithConsumption attaches HDF consumption data and returns the same estimator.
// Read failures are reported by the next call to Estimate.
func (e *Estimator) WithConsumption(r io.Reader) *Estimator {
	diag := newDiagnostics(e.logger, e.hook)
	imports, exports, err := ingestReadings(r, diag)

	e.hasConsumption = true
	e.consumptionErr = err
	e.imports = imports
	e.exports = exports
	e.ingestDiagnostics = diag.list()

	if err == nil {
		e.logger.LogEstimationStage("ingest",
			"imports", len(imports),
			"exports", len(exports),
			"skipped", diag.count(DiagnosticSkippedRow),
		)
	}
	return e
}

// WithReadings attaches already parsed series and returns the same estimator
func (e *Estimator) WithReadings(imports, exports ReadingSeries) *Estimator {
	e.hasConsumption = true
	e.consumptionErr = nil
	e.imports = imports
	e.exports = exports
	e.ingestDiagnostics = nil
	return e
}

// Estimate returns the projected annual bill per provider
func (e *Estimator) Estimate() (map[string]*BillBreakdown, error) {
	estimation, err := e.EstimateDetailed()
	if err != nil {
		return nil, err
	}
	return estimation.Bills, nil
}

// EstimateDetailed is Estimate with period metadata and diagnostics
func (e *Estimator) EstimateDetailed() (*Estimation, error) {
	if !e.hasConsumption {
		return nil, &DataError{
			DataType: "consumption",
			Message:  "use WithConsumption before calling Estimate",
			Err:      ErrMissingConsumptionData,
		}
	}
	if e.consumptionErr != nil {
		return nil, fmt.Errorf("failed to read consumption data: %w", e.consumptionErr)
	}

	estimation, err := e.EstimateFromSeries(e.imports, e.exports, e.interpolate)
	if err != nil {
		return nil, err
	}
	if len(e.ingestDiagnostics) > 0 {
		estimation.Diagnostics = append(append([]Diagnostic{}, e.ingestDiagnostics...), estimation.Diagnostics...)
	}
	return estimation, nil
}

// EstimateFromSeries runs the estimation over import and export series
// supplied latest first.
func (e *Estimator) EstimateFromSeries(imports, exports ReadingSeries, interpolate bool) (*Estimation, error) {
	if len(imports) == 0 {
		return nil, &DataError{
			DataType: "consumption",
			Message:  "no import interval readings",
			Err:      ErrMissingConsumptionData,
		}
	}

	diag := newDiagnostics(e.logger, e.hook)

	latest, err := ParseTimestamp(imports[0].Timestamp)
	if err != nil {
		return nil, err
	}
	oldest, err := ParseTimestamp(imports[len(imports)-1].Timestamp)
	if err != nil {
		return nil, err
	}
	if oldest.After(latest) {
		return nil, &OrderingError{Latest: latest, Oldest: oldest}
	}

	readings, err := BuildReadingsMap(imports)
	if err != nil {
		return nil, err
	}

	var dense []Reading
	if interpolate {
		dense = interpolateSlots(readings, oldest, latest, e.windowDays, diag)
	} else {
		dense = readingsInOrder(readings)
	}
	e.logger.LogEstimationStage("interpolation",
		"slots", len(dense),
		"interpolated", diag.count(DiagnosticInterpolatedSlot)+diag.count(DiagnosticEmptySlot),
	)

	// The oldest timestamp closes its own interval, so the window opens one slot earlier.
	// A single reading therefore spans one slot, which also floors the span.
	windowStart := oldest.Add(-SlotDuration)
	span := latest.Sub(windowStart)
	if span < SlotDuration {
		span = SlotDuration
	}
	periodDays := span.Hours() / 24
	ratio := daysPerYear / periodDays

	profile, totalKWh, err := consumptionProfile(dense)
	if err != nil {
		return nil, err
	}
	timeslots := make([]string, 0, len(profile))
	for timeslot := range profile {
		timeslots = append(timeslots, timeslot)
	}
	sort.Strings(timeslots)

	exportSlots, exportKWh, err := exportTimeslots(exports)
	if err != nil {
		return nil, err
	}

	annualKWh := totalKWh * ratio
	estimation := &Estimation{
		GeneratedAt:          e.now(),
		PeriodStart:          windowStart,
		PeriodEnd:            latest,
		PeriodDays:           periodDays,
		AnnualisationRatio:   ratio,
		ConsumptionKWh:       totalKWh,
		AnnualConsumptionKWh: annualKWh,
		ExportKWh:            exportKWh,
		Interpolated:         interpolate,
		Providers:            e.catalog.Providers(),
		Bills:                make(map[string]*BillBreakdown, e.catalog.Len()),
	}

	for _, name := range estimation.Providers {
		plan, _ := e.catalog.Plan(name)
		estimation.Bills[name] = e.billProvider(plan, timeslots, profile, totalKWh, ratio, exportSlots, diag)
	}

	estimation.InterpolatedSlots = diag.count(DiagnosticInterpolatedSlot) + diag.count(DiagnosticEmptySlot)
	estimation.Diagnostics = diag.list()

	e.logger.LogEstimationStage("billing",
		"providers", len(estimation.Bills),
		"period_days", periodDays,
		"ratio", ratio,
	)

	return estimation, nil
}

// billProvider prices the consumption profile against one plan
func (e *Estimator) billProvider(plan *ProviderPlan, timeslots []string, profile map[string]float64, totalKWh, ratio float64, exports []exportSlot, diag *diagnostics) *BillBreakdown {
	type bucket struct {
		price       float64
		consumption float64
	}
	buckets := make(map[string]*bucket)
	consumptionCharge := 0.0
	unpriced := 0.0

	for _, timeslot := range timeslots {
		consumption := profile[timeslot] * totalKWh * ratio
		price, ok := priceAt(plan, timeslot, Import, diag)
		if !ok {
			unpriced += consumption
			continue
		}
		consumptionCharge += price * consumption

		key := PriceKey(price)
		b, exists := buckets[key]
		if !exists {
			b = &bucket{price: price}
			buckets[key] = b
		}
		b.consumption += consumption
	}

	exportReduction := 0.0
	for _, slot := range exports {
		price, _ := priceAt(plan, slot.timeOfDay, Export, diag)
		exportReduction += price * slot.value / 2
	}
	exportReduction *= ratio

	annualKWh := totalKWh * ratio
	breakdown := make(map[string]RateConsumption, len(buckets))
	for key, b := range buckets {
		percentage := 0.0
		if annualKWh > 0 {
			percentage = b.consumption / annualKWh * 100
		}
		breakdown[key] = RateConsumption{
			Consumption: Fixed2(b.consumption),
			Percentage:  Fixed2(percentage),
			Bands:       TimeBandsForRate(plan, b.price),
		}
	}

	return &BillBreakdown{
		Total:               Fixed2(consumptionCharge + plan.StandingCharge - exportReduction),
		ConsumptionCharge:   Fixed2(consumptionCharge),
		StandingCharge:      Fixed2(plan.StandingCharge),
		ExportReduction:     Fixed2(exportReduction),
		UnpricedConsumption: Fixed2(unpriced),
		Breakdown:           breakdown,
	}
}

// TimeBandsForRate returns the import bands a provider bills at price.
// An unknown provider yields an empty result and a diagnostic.
func (e *Estimator) TimeBandsForRate(provider string, price float64) []TimeBand {
	diag := newDiagnostics(e.logger, e.hook)

	plan, ok := e.catalog.Plan(provider)
	if !ok {
		diag.report(Diagnostic{
			Kind:     DiagnosticMissingProvider,
			Provider: provider,
			Message:  fmt.Sprintf("Provider %q not found", provider),
		})
		return []TimeBand{}
	}

	bands := TimeBandsForRate(plan, price)
	if len(bands) == 0 {
		diag.report(Diagnostic{
			Kind:     DiagnosticMissingBands,
			Provider: provider,
			Message:  fmt.Sprintf("No time periods found for rate %s", PriceKey(price)),
		})
		return []TimeBand{}
	}
	return bands
}

// consumptionProfile sums each reading into the time of day its interval
// starts at and normalises the sums into shares of the total kWh
func consumptionProfile(dense []Reading) (map[string]float64, float64, error) {
	perTimeslot := make(map[string]float64, 48)
	total := 0.0

	for _, reading := range dense {
		t, err := ParseTimestamp(reading.Timestamp)
		if err != nil {
			return nil, 0, err
		}
		kwh := reading.Value / 2
		total += kwh
		perTimeslot[FormatTimeOfDay(t.Add(-SlotDuration))] += kwh
	}

	for timeslot, kwh := range perTimeslot {
		if total == 0 {
			perTimeslot[timeslot] = 0
			continue
		}
		perTimeslot[timeslot] = kwh / total
	}

	return perTimeslot, total, nil
}

type exportSlot struct {
	timeOfDay string
	value     float64
}

// exportTimeslots resolves the time of day of each export reading once for all providers
func exportTimeslots(exports ReadingSeries) ([]exportSlot, float64, error) {
	slots := make([]exportSlot, 0, len(exports))
	kwh := 0.0
	for _, reading := range exports {
		t, err := ParseTimestamp(reading.Timestamp)
		if err != nil {
			return nil, 0, err
		}
		slots = append(slots, exportSlot{timeOfDay: FormatTimeOfDay(t), value: reading.Value})
		kwh += reading.Value / 2
	}
	return slots, kwh, nil
}

// readingsInOrder flattens a readings map into ascending timestamp order
func readingsInOrder(readings ReadingsMap) []Reading {
	type timed struct {
		at      time.Time
		reading Reading
	}
	ordered := make([]timed, 0, len(readings))
	for key, value := range readings {
		at, err := ParseTimestamp(key)
		if err != nil {
			continue
		}
		ordered = append(ordered, timed{at: at, reading: Reading{Timestamp: key, Value: value}})
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].at.Before(ordered[j].at)
	})

	dense := make([]Reading, len(ordered))
	for i, item := range ordered {
		dense[i] = item.reading
	}
	return dense
}
