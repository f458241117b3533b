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
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// Reporter generates markdown reports from estimations
type Reporter struct {
	logger   *Logger
	currency string
}

// NewReporter creates a new report generator
func NewReporter(logger *Logger, currency string) *Reporter {
	return &Reporter{
		logger:   logger,
		currency: currency,
	}
}

// GenerateReport writes a markdown report to outputPath, or stdout when empty
func (r *Reporter) GenerateReport(estimation *Estimation, outputPath string) error {
	r.logger.Info("Generating report")

	return writeOutput(outputPath, func(w io.Writer) error {
		r.WriteReport(w, estimation)
		return nil
	}, r.logger)
}

// WriteReport renders the markdown report
func (r *Reporter) WriteReport(w io.Writer, estimation *Estimation) {
	r.writeHeader(w, estimation)
	r.writeSummary(w, estimation)
	r.writeComparison(w, estimation)
	r.writeBreakdowns(w, estimation)
	r.writeDiagnostics(w, estimation)
	r.writeFooter(w)
}

// writeHeader writes the report header
func (r *Reporter) writeHeader(w io.Writer, estimation *Estimation) {
	fmt.Fprintf(w, "# Electricity Bill Estimate\n\n")
	fmt.Fprintf(w, "**Generated:** %s\n\n", estimation.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "**Readings:** %s to %s (%.2f days)\n\n",
		FormatTimestamp(estimation.PeriodStart),
		FormatTimestamp(estimation.PeriodEnd),
		estimation.PeriodDays,
	)
	fmt.Fprintf(w, "**billestimator version:** %s\n\n", GetVersion())
	fmt.Fprintf(w, "---\n\n")
}

// writeSummary writes the summary section
func (r *Reporter) writeSummary(w io.Writer, estimation *Estimation) {
	fmt.Fprintf(w, "## 📊 Summary\n\n")
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| ⚡ Import over period | %s |\n", FormatKWh(estimation.ConsumptionKWh))
	fmt.Fprintf(w, "| 📅 Projected annual import | %s |\n", FormatKWh(estimation.AnnualConsumptionKWh))
	if estimation.ExportKWh > 0 {
		fmt.Fprintf(w, "| ☀️ Export over period | %s |\n", FormatKWh(estimation.ExportKWh))
	}
	fmt.Fprintf(w, "| 🔁 Annualisation ratio | %.2f |\n", estimation.AnnualisationRatio)
	if estimation.Interpolated {
		fmt.Fprintf(w, "| 🧩 Interpolated slots | %d |\n", estimation.InterpolatedSlots)
	}
	fmt.Fprintf(w, "\n")

	if name, bill, ok := estimation.Cheapest(); ok {
		fmt.Fprintf(w, "> **💰 Cheapest plan:** %s at %s per year\n\n", name, FormatCurrency(r.currency, bill.Total.Float64()))
	}
}

// writeComparison writes the ranked provider table
func (r *Reporter) writeComparison(w io.Writer, estimation *Estimation) {
	ranking := estimation.Ranking()
	if len(ranking) == 0 {
		return
	}

	fmt.Fprintf(w, "## 🏷️ Plan Comparison\n\n")
	fmt.Fprintf(w, "| # | Provider | Consumption | Standing | Export Credit | Total | vs Cheapest |\n")
	fmt.Fprintf(w, "|---|----------|-------------|----------|---------------|-------|-------------|\n")

	cheapest := estimation.Bills[ranking[0]].Total.Float64()
	for i, name := range ranking {
		bill := estimation.Bills[name]
		difference := "-"
		if i > 0 {
			difference = "+" + FormatCurrency(r.currency, bill.Total.Float64()-cheapest)
		}
		fmt.Fprintf(w, "| %d | %s | %s | %s | %s | **%s** | %s |\n",
			i+1,
			escapeMarkdown(name),
			FormatCurrency(r.currency, bill.ConsumptionCharge.Float64()),
			FormatCurrency(r.currency, bill.StandingCharge.Float64()),
			FormatCurrency(r.currency, bill.ExportReduction.Float64()),
			FormatCurrency(r.currency, bill.Total.Float64()),
			difference,
		)
	}
	fmt.Fprintf(w, "\n")
}

// writeBreakdowns writes the per-rate breakdown of every provider
func (r *Reporter) writeBreakdowns(w io.Writer, estimation *Estimation) {
	fmt.Fprintf(w, "## 🔍 Rate Breakdown\n\n")

	for _, name := range estimation.Ranking() {
		bill := estimation.Bills[name]
		fmt.Fprintf(w, "### %s\n\n", escapeMarkdown(name))
		fmt.Fprintf(w, "| Price | Time Bands | Consumption | Share |\n")
		fmt.Fprintf(w, "|-------|------------|-------------|-------|\n")
		for _, key := range bill.PriceKeys() {
			rate := bill.Breakdown[key]
			fmt.Fprintf(w, "| %s%s/kWh | %s | %s | %s%% |\n",
				r.currency, key,
				formatBands(rate.Bands),
				FormatKWh(rate.Consumption.Float64()),
				rate.Percentage,
			)
		}
		if bill.UnpricedConsumption > 0 {
			fmt.Fprintf(w, "\n⚠️ %s per year fell outside every import band and was not billed.\n",
				FormatKWh(bill.UnpricedConsumption.Float64()))
		}
		fmt.Fprintf(w, "\n")
	}
}

// writeDiagnostics summarises diagnostics by kind
func (r *Reporter) writeDiagnostics(w io.Writer, estimation *Estimation) {
	if len(estimation.Diagnostics) == 0 {
		return
	}

	counts := make(map[DiagnosticKind]int)
	for _, d := range estimation.Diagnostics {
		counts[d.Kind]++
	}
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	fmt.Fprintf(w, "## 🩺 Data Quality\n\n")
	fmt.Fprintf(w, "| Diagnostic | Count |\n")
	fmt.Fprintf(w, "|------------|-------|\n")
	for _, kind := range kinds {
		fmt.Fprintf(w, "| %s | %d |\n", kind, counts[DiagnosticKind(kind)])
	}
	fmt.Fprintf(w, "\n")
}

// writeFooter writes the report footer
func (r *Reporter) writeFooter(w io.Writer) {
	fmt.Fprintf(w, "---\n\n")
	fmt.Fprintf(w, "*Estimates scale the supplied readings to a full year and assume the same daily usage pattern all year round. Seasonal changes and tariff revisions are not modelled.*\n\n")
	fmt.Fprintf(w, "*Generated by [billestimator](https://github.com/matthewgall/billestimator)*\n")
}

// JSONReporter writes the estimation as indented JSON
type JSONReporter struct {
	logger *Logger
}

// NewJSONReporter creates a JSON report generator
func NewJSONReporter(logger *Logger) *JSONReporter {
	return &JSONReporter{logger: logger}
}

// GenerateJSONReport writes the estimation to outputPath, or stdout when empty
func (r *JSONReporter) GenerateJSONReport(estimation *Estimation, outputPath string) error {
	return writeOutput(outputPath, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(estimation)
	}, r.logger)
}

// writeOutput runs render against outputPath, or stdout when empty
func writeOutput(outputPath string, render func(io.Writer) error, logger *Logger) error {
	if outputPath == "" {
		return render(os.Stdout)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	if err := render(file); err != nil {
		return err
	}

	logger.Info("Report saved", "path", outputPath)
	return nil
}

// FormatCurrency formats a value as currency with thousands separators
func FormatCurrency(symbol string, value float64) string {
	if value < 0 && value > -0.005 {
		value = 0
	}
	if value < 0 {
		return "-" + symbol + humanize.FormatFloat("#,###.##", -value)
	}
	return symbol + humanize.FormatFloat("#,###.##", value)
}

// FormatKWh formats an energy value with thousands separators
func FormatKWh(value float64) string {
	return humanize.FormatFloat("#,###.##", value) + " kWh"
}

func formatBands(bands []TimeBand) string {
	if len(bands) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(bands))
	for _, band := range bands {
		parts = append(parts, band.Start+"–"+band.End)
	}
	return strings.Join(parts, ", ")
}

func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
