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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPricingCatalog(t *testing.T) {
	document := `
providers:
  - name: Alpha
    pricings:
      - start_date: "2024-01-01"
        end_date: null
        standing_charge: 250.5
        import_rates:
          - start_time: "8:00"
            end_time: "23:00"
            price_per_kwh: 0.15  // day rate
          - start_time: "23:00"
            end_time: "08:00"
            price_per_kwh: "0.08"
      - start_date: "2023-01-01"
        end_date: "2023-12-31"
        standing_charge: 1
        import_rates: []
  - name: Beta
    pricings:
      - standing_charge: 10
        import_rates:
          - start_time: "00:00"
            end_time: "24:00"
            price_per_kwh: 0.2
        export_rates:
          - start_time: "00:00"
            end_time: "24:00"
            price_per_kwh: 0.05
`

	catalog, err := LoadPricingCatalog([]byte(document))
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
	assert.Equal(t, []string{"Alpha", "Beta"}, catalog.Providers())

	alpha, ok := catalog.Plan("Alpha")
	require.True(t, ok)
	assert.Equal(t, 250.5, alpha.StandingCharge)
	assert.Equal(t, []RateBand{
		{Start: "08:00", End: "23:00", Price: 0.15},
		{Start: "23:00", End: "08:00", Price: 0.08},
	}, alpha.ImportRates)
	assert.Empty(t, alpha.ExportRates)
	assert.True(t, alpha.ImportRates[1].Wraps())

	beta, ok := catalog.Plan("Beta")
	require.True(t, ok)
	assert.Equal(t, 0.05, beta.ExportRates[0].Price)

	_, ok = catalog.Plan("Gamma")
	assert.False(t, ok)
}

func TestLoadPricingCatalogDuplicateProvider(t *testing.T) {
	document := `
providers:
  - name: A
    pricings:
      - standing_charge: 100
        import_rates: []
  - name: B
    pricings:
      - standing_charge: 150
        import_rates: []
  - name: A
    pricings:
      - standing_charge: 200
        import_rates: []
`
	catalog, err := LoadPricingCatalog([]byte(document))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, catalog.Providers())

	plan, ok := catalog.Plan("A")
	require.True(t, ok)
	assert.Equal(t, 200.0, plan.StandingCharge)
}

func TestLoadPricingCatalogInvalid(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{
			name:     "no providers",
			document: "providers: []",
		},
		{
			name: "provider without name",
			document: `
providers:
  - pricings:
      - standing_charge: 1
`,
		},
		{
			name: "provider without pricings",
			document: `
providers:
  - name: Empty
`,
		},
		{
			name: "time of day out of range",
			document: `
providers:
  - name: Late
    pricings:
      - standing_charge: 1
        import_rates:
          - start_time: "25:00"
            end_time: "08:00"
            price_per_kwh: 0.1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPricingCatalog([]byte(tt.document))
			require.Error(t, err)
			var validationErr *ValidationError
			assert.True(t, errors.As(err, &validationErr))
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadPricingCatalog([]byte("providers: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("price is not a number", func(t *testing.T) {
		_, err := LoadPricingCatalog([]byte(`
providers:
  - name: Bad
    pricings:
      - standing_charge: cheap
`))
		assert.Error(t, err)
	})
}

func TestDefaultPricingDocument(t *testing.T) {
	catalog, err := LoadPricingCatalog([]byte(DefaultPricingDocument))
	require.NoError(t, err)
	assert.Equal(t, 5, catalog.Len())

	nightBoost, ok := catalog.Plan("Electric Ireland Home Electric+ Night Boost")
	require.True(t, ok)
	assert.True(t, nightBoost.ImportRates[0].Wraps())

	bordGais, ok := catalog.Plan("Bord Gais Energy Free Time Saturday")
	require.True(t, ok)
	assert.Empty(t, bordGais.ExportRates)
}

func TestRateBandContains(t *testing.T) {
	wrapping := RateBand{Start: "23:00", End: "02:00"}
	for _, tod := range []string{"23:00", "23:30", "00:15", "01:59"} {
		assert.True(t, wrapping.Contains(tod), tod)
	}
	for _, tod := range []string{"02:00", "12:00", "22:59"} {
		assert.False(t, wrapping.Contains(tod), tod)
	}

	allDay := RateBand{Start: "00:00", End: "24:00"}
	assert.False(t, allDay.Wraps())
	assert.True(t, allDay.Contains("00:00"))
	assert.True(t, allDay.Contains("23:30"))
}
