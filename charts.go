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
	"encoding/base64"
	"fmt"

	charts "github.com/vicanso/go-charts/v2"
)

// ChartGenerator handles chart generation
type ChartGenerator struct {
	theme    string
	currency string
}

// NewChartGenerator creates a new chart generator
func NewChartGenerator(theme, currency string) *ChartGenerator {
	if theme == "" {
		theme = "dark"
	}
	return &ChartGenerator{
		theme:    theme,
		currency: currency,
	}
}

// GenerateBillComparisonChart creates a bar chart of annual totals, cheapest first
func (cg *ChartGenerator) GenerateBillComparisonChart(estimation *Estimation) (string, error) {
	ranking := estimation.Ranking()
	if len(ranking) == 0 {
		return "", fmt.Errorf("no provider bills available")
	}

	totals := make([]float64, 0, len(ranking))
	for _, name := range ranking {
		totals = append(totals, estimation.Bills[name].Total.Float64())
	}

	p, err := charts.BarRender(
		[][]float64{totals},
		charts.TitleTextOptionFunc("Projected Annual Bill"),
		charts.XAxisDataOptionFunc(ranking),
		charts.LegendLabelsOptionFunc([]string{fmt.Sprintf("Total (%s)", cg.currency)}, charts.PositionRight),
		charts.ThemeOptionFunc(cg.theme),
		charts.WidthOptionFunc(1200),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render bill chart: %w", err)
	}

	return encodeChart(p)
}

// GenerateRateShareChart creates a pie chart of annual consumption per price for one provider
func (cg *ChartGenerator) GenerateRateShareChart(estimation *Estimation, provider string) (string, error) {
	bill, ok := estimation.Bills[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingProvider, provider)
	}

	var values []float64
	var labels []string
	for _, key := range bill.PriceKeys() {
		consumption := bill.Breakdown[key].Consumption.Float64()
		if consumption <= 0 {
			continue
		}
		values = append(values, consumption)
		labels = append(labels, fmt.Sprintf("%s%s/kWh", cg.currency, key))
	}
	if len(values) == 0 {
		return "", fmt.Errorf("no priced consumption for %s", provider)
	}

	p, err := charts.PieRender(
		values,
		charts.TitleTextOptionFunc("Consumption by Rate", provider),
		charts.LegendLabelsOptionFunc(labels, charts.PositionRight),
		charts.ThemeOptionFunc(cg.theme),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(400),
		charts.PaddingOptionFunc(charts.Box{
			Top:    20,
			Right:  20,
			Bottom: 20,
			Left:   20,
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render rate chart: %w", err)
	}

	return encodeChart(p)
}

// encodeChart converts a rendered chart to base64 for embedding in HTML
func encodeChart(p *charts.Painter) (string, error) {
	buf, err := p.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
