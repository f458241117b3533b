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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEstimation() *Estimation {
	return &Estimation{
		GeneratedAt:          time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		PeriodStart:          time.Date(2023, 11, 9, 0, 0, 0, 0, time.UTC),
		PeriodEnd:            time.Date(2023, 11, 10, 0, 0, 0, 0, time.UTC),
		PeriodDays:           1,
		AnnualisationRatio:   365,
		ConsumptionKWh:       24,
		AnnualConsumptionKWh: 8760,
		Interpolated:         true,
		Providers:            []string{"Flat", "Pricey"},
		Bills: map[string]*BillBreakdown{
			"Flat": {
				Total:             976,
				ConsumptionCharge: 876,
				StandingCharge:    100,
				Breakdown: map[string]RateConsumption{
					"0.1": {Consumption: 8760, Percentage: 100, Bands: []TimeBand{{Start: "00:00", End: "24:00"}}},
				},
			},
			"Pricey": {
				Total:             1852,
				ConsumptionCharge: 1752,
				StandingCharge:    100,
				Breakdown: map[string]RateConsumption{
					"0.2": {Consumption: 8760, Percentage: 100},
				},
			},
		},
	}
}

func TestCacheSetGet(t *testing.T) {
	cache, err := NewCache(t.TempDir(), NewDiscardLogger())
	require.NoError(t, err)

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	require.NoError(t, cache.Set("key", sampleEstimation(), time.Hour))
	got, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, "976.00", got.Bills["Flat"].Total.String())

	require.NoError(t, cache.Clear())
	_, ok = cache.Get("key")
	assert.False(t, ok)
}

func TestCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	cache, err := NewCache(dir, NewDiscardLogger())
	require.NoError(t, err)
	require.NoError(t, cache.Set("key", sampleEstimation(), time.Hour))
	require.FileExists(t, filepath.Join(dir, cacheFileName))

	reopened, err := NewCache(dir, NewDiscardLogger())
	require.NoError(t, err)
	got, ok := reopened.Get("key")
	require.True(t, ok)
	assert.Equal(t, []string{"Flat", "Pricey"}, got.Ranking())
	assert.Equal(t, sampleEstimation().PeriodEnd, got.PeriodEnd)
	assert.InDelta(t, 8760, got.Bills["Pricey"].Breakdown["0.2"].Consumption.Float64(), 1e-9)
}

func TestCacheExpiry(t *testing.T) {
	cache, err := NewCache(t.TempDir(), NewDiscardLogger())
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set("short", sampleEstimation(), time.Minute))
	require.NoError(t, cache.Set("long", sampleEstimation(), time.Hour))

	now = now.Add(10 * time.Minute)
	_, ok := cache.Get("short")
	assert.False(t, ok)
	_, ok = cache.Get("long")
	assert.True(t, ok)

	total, expired := cache.Stats()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, expired)

	require.NoError(t, cache.CleanExpired())
	total, expired = cache.Stats()
	assert.Equal(t, 1, total)
	assert.Zero(t, expired)

	require.NoError(t, cache.Clear())
	total, _ = cache.Stats()
	assert.Zero(t, total)
}

func TestCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{not json"), 0644))

	cache, err := NewCache(dir, NewDiscardLogger())
	require.NoError(t, err)
	total, _ := cache.Stats()
	assert.Zero(t, total)
}

func TestEstimationCacheKey(t *testing.T) {
	base := EstimationCacheKey([]byte("hdf"), []byte("pricing"), true, 14)
	assert.Len(t, base, 64)
	assert.Equal(t, base, EstimationCacheKey([]byte("hdf"), []byte("pricing"), true, 14))

	assert.NotEqual(t, base, EstimationCacheKey([]byte("hdf"), []byte("pricing"), false, 14))
	assert.NotEqual(t, base, EstimationCacheKey([]byte("hdf"), []byte("pricing"), true, 7))
	assert.NotEqual(t, base, EstimationCacheKey([]byte("hdfp"), []byte("ricing"), true, 14))
	assert.NotEqual(t, base, EstimationCacheKey([]byte("hdf"), nil, true, 14))
}
