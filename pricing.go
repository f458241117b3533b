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
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// RateBand is a time-of-day price. Start > End means the band wraps past midnight.
type RateBand struct {
	Start string  `json:"startTime"`
	End   string  `json:"endTime"`
	Price float64 `json:"pricePerKwh"`
}

// Wraps reports whether the band crosses midnight
func (b RateBand) Wraps() bool {
	return b.Start > b.End
}

// Contains reports whether timeOfDay ("HH:MM") falls inside the band.
// Start is inclusive, end is exclusive.
func (b RateBand) Contains(timeOfDay string) bool {
	if b.Wraps() {
		return b.Start <= timeOfDay || timeOfDay < b.End
	}
	return b.Start <= timeOfDay && timeOfDay < b.End
}

// ProviderPlan holds the pricing for a single provider
type ProviderPlan struct {
	Name           string     `json:"name"`
	StandingCharge float64    `json:"standingCharge"`
	ImportRates    []RateBand `json:"importRates"`
	ExportRates    []RateBand `json:"exportRates"`
}

// PricingCatalog is the set of provider plans loaded from a pricing document.
// It is read-only once loaded and safe to share between estimations.
type PricingCatalog struct {
	plans map[string]*ProviderPlan
	order []string
}

// Plan returns the plan for the named provider
func (c *PricingCatalog) Plan(name string) (*ProviderPlan, bool) {
	plan, ok := c.plans[name]
	return plan, ok
}

// Providers returns provider names in document order
func (c *PricingCatalog) Providers() []string {
	names := make([]string, len(c.order))
	copy(names, c.order)
	return names
}

// Len returns the number of providers
func (c *PricingCatalog) Len() int {
	return len(c.order)
}

// pricingDocument mirrors the YAML pricing document
type pricingDocument struct {
	Providers []struct {
		Name     string `yaml:"name"`
		Pricings []struct {
			StartDate      string         `yaml:"start_date"`
			EndDate        string         `yaml:"end_date"`
			StandingCharge decimal        `yaml:"standing_charge"`
			ImportRates    []rateDocument `yaml:"import_rates"`
			ExportRates    []rateDocument `yaml:"export_rates"`
		} `yaml:"pricings"`
	} `yaml:"providers"`
}

type rateDocument struct {
	StartTime   string  `yaml:"start_time"`
	EndTime     string  `yaml:"end_time"`
	PricePerKWh decimal `yaml:"price_per_kwh"`
}

// decimal accepts YAML numbers as well as strings with a leading number,
// e.g. "0.15  // peak"
type decimal float64

func (d *decimal) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	fields := strings.Fields(node.Value)
	if len(fields) == 0 {
		return fmt.Errorf("line %d: empty number", node.Line)
	}
	value, err := strconv.ParseFloat(strings.Trim(fields[0], `"'`), 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q", node.Line, node.Value)
	}
	*d = decimal(value)
	return nil
}

// LoadPricingCatalog parses a pricing document. Only the first pricing entry
// of each provider is used; a repeated provider name replaces the earlier plan.
func LoadPricingCatalog(document []byte) (*PricingCatalog, error) {
	var doc pricingDocument
	if err := yaml.Unmarshal(document, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pricing document: %w", err)
	}

	if len(doc.Providers) == 0 {
		return nil, &ValidationError{Field: "providers", Message: "at least one provider is required"}
	}

	catalog := &PricingCatalog{
		plans: make(map[string]*ProviderPlan, len(doc.Providers)),
	}

	for i, provider := range doc.Providers {
		if provider.Name == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("providers[%d].name", i), Message: "name is required"}
		}
		if len(provider.Pricings) == 0 {
			return nil, &ValidationError{Field: "pricings", Value: provider.Name, Message: "at least one pricing entry is required"}
		}

		pricing := provider.Pricings[0]
		importRates, err := convertRates(provider.Name, "import_rates", pricing.ImportRates)
		if err != nil {
			return nil, err
		}
		exportRates, err := convertRates(provider.Name, "export_rates", pricing.ExportRates)
		if err != nil {
			return nil, err
		}

		if _, exists := catalog.plans[provider.Name]; !exists {
			catalog.order = append(catalog.order, provider.Name)
		}
		catalog.plans[provider.Name] = &ProviderPlan{
			Name:           provider.Name,
			StandingCharge: float64(pricing.StandingCharge),
			ImportRates:    importRates,
			ExportRates:    exportRates,
		}
	}

	return catalog, nil
}

func convertRates(provider, field string, rates []rateDocument) ([]RateBand, error) {
	bands := make([]RateBand, 0, len(rates))
	for i, rate := range rates {
		start, err := normalizeClock(rate.StartTime)
		if err != nil {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("%s[%d].start_time", field, i),
				Value:   provider,
				Message: err.Error(),
			}
		}
		end, err := normalizeClock(rate.EndTime)
		if err != nil {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("%s[%d].end_time", field, i),
				Value:   provider,
				Message: err.Error(),
			}
		}
		bands = append(bands, RateBand{Start: start, End: end, Price: float64(rate.PricePerKWh)})
	}
	return bands, nil
}

// DefaultPricingDocument is the catalog used when no pricing document is supplied.
// Prices are in euro per kWh, standing charges in euro per year.
const DefaultPricingDocument = `
providers:
  - name: Electric Ireland Home Electric+
    pricings:
      - start_date: null
        end_date: null
        standing_charge: 272.61
        import_rates:
          - start_time: "00:00"
            end_time: "24:00"
            price_per_kwh: 0.3592
        export_rates:
          - start_time: "00:00"
            end_time: "24:00"
            price_per_kwh: 0.185
  - name: Electric Ireland Home Electric+ Night Boost
    pricings:
      - start_date: null
        end_date: null
        standing_charge: 298.45
        import_rates:
          - start_time: "08:00"
            end_time: "02:00"
            price_per_kwh: 0.3854
          - start_time: "02:00"
            end_time: "04:00"
            price_per_kwh: 0.1281
          - start_time: "04:00"
            end_time: "08:00"
            price_per_kwh: 0.2166
        export_rates:
          - start_time: "00:00"
            end_time: "24:00"
            price_per_kwh: 0.185
  - name: Energia Smart Data
    pricings:
      - start_date: null
        end_date: null
        standing_charge: 262.10
        import_rates:
          - start_time: "08:00"
            end_time: "17:00"
            price_per_kwh: 0.3306
          - start_time: "17:00"
            end_time: "19:00"
            price_per_kwh: 0.3621
          - start_time: "19:00"
            end_time: "23:00"
            price_per_kwh: 0.3306
          - start_time: "23:00"
            end_time: "08:00"
            price_per_kwh: 0.2014
        export_rates:
          - start_time: "00:00"
            end_time: "24:00"
            price_per_kwh: 0.195
  - name: Bord Gais Energy Free Time Saturday
    pricings:
      - start_date: null
        end_date: null
        standing_charge: 251.93
        import_rates:
          - start_time: "08:00"
            end_time: "23:00"
            price_per_kwh: 0.3728
          - start_time: "23:00"
            end_time: "08:00"
            price_per_kwh: 0.2251
  - name: SSE Airtricity Smart EV
    pricings:
      - start_date: null
        end_date: null
        standing_charge: 279.51
        import_rates:
          - start_time: "08:00"
            end_time: "17:00"
            price_per_kwh: 0.3667
          - start_time: "17:00"
            end_time: "19:00"
            price_per_kwh: 0.4213
          - start_time: "19:00"
            end_time: "02:00"
            price_per_kwh: 0.3667
          - start_time: "02:00"
            end_time: "05:00"
            price_per_kwh: 0.0894
          - start_time: "05:00"
            end_time: "08:00"
            price_per_kwh: 0.2274
        export_rates:
          - start_time: "00:00"
            end_time: "24:00"
            price_per_kwh: 0.21
`
