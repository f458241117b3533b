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
	"html"
	"io"
)

// HTMLReporter generates HTML reports from estimations
type HTMLReporter struct {
	logger   *Logger
	currency string
	charts   *ChartGenerator
}

// NewHTMLReporter creates a new HTML report generator. A nil chart generator
// produces a report without charts.
func NewHTMLReporter(logger *Logger, currency string, charts *ChartGenerator) *HTMLReporter {
	return &HTMLReporter{
		logger:   logger,
		currency: currency,
		charts:   charts,
	}
}

// GenerateHTMLReport generates an HTML report
func (r *HTMLReporter) GenerateHTMLReport(estimation *Estimation, outputPath string) error {
	r.logger.Info("Generating HTML report")

	return writeOutput(outputPath, func(w io.Writer) error {
		r.WriteHTMLReport(w, estimation)
		return nil
	}, r.logger)
}

// WriteHTMLReport renders the HTML report
func (r *HTMLReporter) WriteHTMLReport(w io.Writer, estimation *Estimation) {
	r.writeHTMLHeader(w, estimation)
	r.writeHTMLSummary(w, estimation)
	r.writeHTMLComparison(w, estimation)
	r.writeHTMLBreakdowns(w, estimation)
	r.writeHTMLDiagnostics(w, estimation)
	r.writeHTMLFooter(w)
}

func (r *HTMLReporter) writeHTMLHeader(w io.Writer, estimation *Estimation) {
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Electricity Bill Estimate</title>
    <style>
        :root {
            --primary-color: #FF006E;
            --secondary-color: #00C896;
            --warning-color: #FFB800;
            --bg-color: #0A0F1E;
            --card-bg: #1A2332;
            --text-color: #E8EAF6;
            --text-muted: #9FA8DA;
            --border-color: #2A3550;
        }

        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: var(--bg-color);
            color: var(--text-color);
            line-height: 1.6;
            padding: 20px;
        }

        .container {
            max-width: 1200px;
            margin: 0 auto;
        }

        header {
            background: linear-gradient(135deg, var(--primary-color), var(--secondary-color));
            padding: 40px;
            border-radius: 16px;
            margin-bottom: 30px;
        }

        h1 {
            font-size: 2.5em;
            margin-bottom: 10px;
        }

        .subtitle {
            color: rgba(255, 255, 255, 0.9);
        }

        .card {
            background: var(--card-bg);
            border-radius: 12px;
            padding: 30px;
            margin-bottom: 30px;
            border: 1px solid var(--border-color);
        }

        h2 {
            color: var(--primary-color);
            margin-bottom: 20px;
            border-bottom: 2px solid var(--border-color);
            padding-bottom: 10px;
        }

        h3 {
            color: var(--secondary-color);
            margin: 25px 0 15px 0;
        }

        table {
            width: 100%%;
            border-collapse: collapse;
            margin: 20px 0;
        }

        th, td {
            padding: 12px;
            text-align: left;
            border-bottom: 1px solid var(--border-color);
        }

        th {
            background: rgba(255, 0, 110, 0.1);
            color: var(--primary-color);
        }

        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
        }

        .metric-card {
            background: rgba(255, 0, 110, 0.05);
            border: 1px solid var(--border-color);
            border-radius: 8px;
            padding: 20px;
            text-align: center;
        }

        .metric-value {
            font-size: 2em;
            font-weight: bold;
            color: var(--secondary-color);
        }

        .metric-label {
            color: var(--text-muted);
        }

        .badge-success {
            background: var(--secondary-color);
            color: white;
            padding: 4px 10px;
            border-radius: 20px;
        }

        .warning {
            border-left: 4px solid var(--warning-color);
            background: rgba(255, 184, 0, 0.05);
            padding: 10px;
            margin: 10px 0;
        }

        img.chart {
            width: 100%%;
            border-radius: 8px;
        }

        footer {
            text-align: center;
            padding: 30px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
            margin-top: 40px;
        }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>⚡ Electricity Bill Estimate</h1>
            <div class="subtitle">Readings %s to %s &middot; generated %s &middot; billestimator %s</div>
        </header>
`,
		FormatTimestamp(estimation.PeriodStart),
		FormatTimestamp(estimation.PeriodEnd),
		estimation.GeneratedAt.Format("2006-01-02 15:04"),
		html.EscapeString(GetVersion()),
	)
}

func (r *HTMLReporter) writeHTMLSummary(w io.Writer, estimation *Estimation) {
	fmt.Fprintf(w, `
        <div class="card">
            <h2>📊 Summary</h2>
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-label">Days of readings</div>
                    <div class="metric-value">%.1f</div>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Projected annual import</div>
                    <div class="metric-value">%s</div>
                </div>
                <div class="metric-card">
                    <div class="metric-label">Interpolated slots</div>
                    <div class="metric-value">%d</div>
                </div>
`,
		estimation.PeriodDays,
		FormatKWh(estimation.AnnualConsumptionKWh),
		estimation.InterpolatedSlots,
	)

	if name, bill, ok := estimation.Cheapest(); ok {
		fmt.Fprintf(w, `                <div class="metric-card">
                    <div class="metric-label">Cheapest: %s</div>
                    <div class="metric-value">%s</div>
                </div>
`,
			html.EscapeString(name),
			html.EscapeString(FormatCurrency(r.currency, bill.Total.Float64())),
		)
	}

	fmt.Fprintf(w, `            </div>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLComparison(w io.Writer, estimation *Estimation) {
	ranking := estimation.Ranking()
	if len(ranking) == 0 {
		return
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>🏷️ Plan Comparison</h2>
`)

	if r.charts != nil {
		if chart, err := r.charts.GenerateBillComparisonChart(estimation); err != nil {
			r.logger.Warn("Failed to generate bill chart", "error", err)
		} else {
			fmt.Fprintf(w, `            <img class="chart" src="data:image/png;base64,%s" alt="Projected annual bill">
`, chart)
		}
	}

	fmt.Fprintf(w, `            <table>
                <tr><th>#</th><th>Provider</th><th>Consumption</th><th>Standing</th><th>Export Credit</th><th>Total</th></tr>
`)
	for i, name := range ranking {
		bill := estimation.Bills[name]
		badge := ""
		if i == 0 {
			badge = ` <span class="badge-success">cheapest</span>`
		}
		fmt.Fprintf(w, `                <tr><td>%d</td><td>%s%s</td><td>%s</td><td>%s</td><td>%s</td><td><strong>%s</strong></td></tr>
`,
			i+1,
			html.EscapeString(name), badge,
			html.EscapeString(FormatCurrency(r.currency, bill.ConsumptionCharge.Float64())),
			html.EscapeString(FormatCurrency(r.currency, bill.StandingCharge.Float64())),
			html.EscapeString(FormatCurrency(r.currency, bill.ExportReduction.Float64())),
			html.EscapeString(FormatCurrency(r.currency, bill.Total.Float64())),
		)
	}
	fmt.Fprintf(w, `            </table>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLBreakdowns(w io.Writer, estimation *Estimation) {
	fmt.Fprintf(w, `
        <div class="card">
            <h2>🔍 Rate Breakdown</h2>
`)

	for _, name := range estimation.Ranking() {
		bill := estimation.Bills[name]
		fmt.Fprintf(w, `            <h3>%s</h3>
`, html.EscapeString(name))

		if r.charts != nil {
			if chart, err := r.charts.GenerateRateShareChart(estimation, name); err == nil {
				fmt.Fprintf(w, `            <img class="chart" src="data:image/png;base64,%s" alt="Consumption by rate for %s">
`, chart, html.EscapeString(name))
			} else {
				r.logger.Debug("Skipping rate chart", "provider", name, "error", err)
			}
		}

		fmt.Fprintf(w, `            <table>
                <tr><th>Price</th><th>Time Bands</th><th>Consumption</th><th>Share</th></tr>
`)
		for _, key := range bill.PriceKeys() {
			rate := bill.Breakdown[key]
			fmt.Fprintf(w, `                <tr><td>%s%s/kWh</td><td>%s</td><td>%s</td><td>%s%%</td></tr>
`,
				html.EscapeString(r.currency), key,
				html.EscapeString(formatBands(rate.Bands)),
				FormatKWh(rate.Consumption.Float64()),
				rate.Percentage,
			)
		}
		fmt.Fprintf(w, `            </table>
`)

		if bill.UnpricedConsumption > 0 {
			fmt.Fprintf(w, `            <div class="warning">⚠️ %s per year fell outside every import band and was not billed.</div>
`, FormatKWh(bill.UnpricedConsumption.Float64()))
		}
	}

	fmt.Fprintf(w, `        </div>
`)
}

// writeHTMLDiagnostics lists every diagnostic except interpolated slots,
// which are already counted in the summary
func (r *HTMLReporter) writeHTMLDiagnostics(w io.Writer, estimation *Estimation) {
	var notable []Diagnostic
	for _, d := range estimation.Diagnostics {
		if d.Kind != DiagnosticInterpolatedSlot {
			notable = append(notable, d)
		}
	}
	if len(notable) == 0 {
		return
	}

	fmt.Fprintf(w, `
        <div class="card">
            <h2>🩺 Data Quality</h2>
            <table>
                <tr><th>Kind</th><th>Provider</th><th>Time</th><th>Detail</th></tr>
`)
	for _, d := range notable {
		when := d.Timestamp
		if when == "" {
			when = d.TimeOfDay
		}
		fmt.Fprintf(w, `                <tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>
`,
			html.EscapeString(string(d.Kind)),
			html.EscapeString(d.Provider),
			html.EscapeString(when),
			html.EscapeString(d.Message),
		)
	}
	fmt.Fprintf(w, `            </table>
        </div>
`)
}

func (r *HTMLReporter) writeHTMLFooter(w io.Writer) {
	fmt.Fprintf(w, `
        <footer>
            <p><em>Estimates scale the supplied readings to a full year and assume the same daily usage pattern all year round. Seasonal changes and tariff revisions are not modelled.</em></p>
            <p style="margin-top: 10px;">Generated by <a href="https://github.com/matthewgall/billestimator" style="color: var(--primary-color); text-decoration: none;">billestimator</a></p>
        </footer>
    </div>
</body>
</html>
`)
}
