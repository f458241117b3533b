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
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G'}

func TestBillComparisonChart(t *testing.T) {
	encoded, err := NewChartGenerator("", "€").GenerateBillComparisonChart(sampleEstimation())
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))
}

func TestRateShareChart(t *testing.T) {
	generator := NewChartGenerator("light", "€")

	encoded, err := generator.GenerateRateShareChart(sampleEstimation(), "Flat")
	require.NoError(t, err)
	data, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngSignature))

	_, err = generator.GenerateRateShareChart(sampleEstimation(), "Nobody")
	assert.ErrorIs(t, err, ErrMissingProvider)
}

func TestChartsWithoutData(t *testing.T) {
	generator := NewChartGenerator("dark", "€")

	_, err := generator.GenerateBillComparisonChart(&Estimation{})
	assert.Error(t, err)

	empty := sampleEstimation()
	empty.Bills["Flat"].Breakdown = map[string]RateConsumption{}
	_, err = generator.GenerateRateShareChart(empty, "Flat")
	assert.Error(t, err)
}

func TestHTMLReportEmbedsCharts(t *testing.T) {
	var buf bytes.Buffer
	NewHTMLReporter(NewDiscardLogger(), "€", NewChartGenerator("dark", "€")).WriteHTMLReport(&buf, sampleEstimation())
	assert.Contains(t, buf.String(), `<img class="chart" src="data:image/png;base64,`)
}
