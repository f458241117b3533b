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
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func main() {
	// Define command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	consumptionPath := flag.String("consumption", "", "ESB HDF consumption CSV (overrides config)")
	pricingPath := flag.String("pricing", "", "Provider pricing YAML (overrides config, default: built-in Irish plans)")
	outputPath := flag.String("output", "", "Output file for report (default: stdout)")
	htmlOutput := flag.Bool("html", false, "Generate HTML report instead of Markdown")
	jsonOutput := flag.Bool("json", false, "Write the estimation as JSON instead of Markdown")
	noInterpolate := flag.Bool("no-interpolate", false, "Treat missing half-hour slots as zero instead of filling them")
	noCache := flag.Bool("no-cache", false, "Ignore and do not update the estimation cache")
	clearCache := flag.Bool("clear-cache", false, "Remove every cached estimation before running")
	bandsQuery := flag.String("bands", "", "Print the time bands billed at a price, as PROVIDER=PRICE, and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("billestimator %s\n", GetVersion())
		os.Exit(0)
	}

	// Load configuration
	config, err := LoadConfig(*configPath)
	if err != nil {
		NewLogger(*debug).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Override with command-line flags
	if *consumptionPath != "" {
		config.ConsumptionPath = *consumptionPath
	}
	if *pricingPath != "" {
		config.PricingPath = *pricingPath
	}
	if *noInterpolate {
		config.Interpolate = false
	}
	if *debug {
		config.Debug = true
	}

	logger := NewLoggerFromConfig(config)
	logger.Info("Starting billestimator", "version", GetVersion())

	// Check for updates (non-blocking)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go CheckForUpdates(ctx, logger)

	pricing, err := readPricing(config.PricingPath)
	if err != nil {
		logger.Error("Failed to read pricing", "error", err)
		os.Exit(1)
	}

	if *bandsQuery != "" {
		if err := printBands(pricing, *bandsQuery, logger); err != nil {
			logger.Error("Failed to look up time bands", "error", err)
			os.Exit(1)
		}
		return
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	consumption, err := os.ReadFile(config.ConsumptionPath)
	if err != nil {
		logger.Error("Failed to read consumption data", "path", config.ConsumptionPath, "error", err)
		os.Exit(1)
	}

	// Initialize storage
	logger.Info("Initializing storage", "path", config.StoragePath)
	storage, err := NewStorage(config.StoragePath, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	if err := prepareCache(storage, *clearCache, logger); err != nil {
		logger.Error("Failed to clear cache", "error", err)
		os.Exit(1)
	}

	useCache := !*noCache && config.CacheTTLHours > 0
	cacheKey := EstimationCacheKey(consumption, pricing, config.Interpolate, config.InterpolationWindowDays)

	var estimation *Estimation
	if useCache {
		if cached, ok := storage.LoadCachedEstimation(cacheKey); ok {
			logger.Info("Using cached estimation", "generated_at", cached.GeneratedAt)
			estimation = cached
		}
	}

	if estimation == nil {
		estimator, err := NewEstimator(pricing,
			WithLogger(logger),
			WithInterpolation(config.Interpolate),
			WithInterpolationWindow(config.InterpolationWindowDays),
		)
		if err != nil {
			logger.Error("Failed to load pricing", "error", err)
			os.Exit(1)
		}

		logger.Info("Estimating annual bills", "providers", estimator.Catalog().Len())
		estimation, err = estimator.WithConsumption(bytes.NewReader(consumption)).EstimateDetailed()
		if err != nil {
			logger.Error("Failed to estimate bills", "error", err)
			os.Exit(1)
		}

		if path, err := storage.SaveEstimation(estimation); err != nil {
			logger.Warn("Failed to save estimation", "error", err)
		} else {
			logger.Debug("Estimation saved", "path", path)
		}

		if useCache {
			ttl := time.Duration(config.CacheTTLHours) * time.Hour
			if err := storage.SaveCachedEstimation(cacheKey, estimation, ttl); err != nil {
				logger.Warn("Failed to cache estimation", "error", err)
			}
		}
	}

	// Generate report (JSON, HTML or Markdown)
	switch {
	case *jsonOutput:
		logger.Info("Generating JSON report")
		if err := NewJSONReporter(logger).GenerateJSONReport(estimation, *outputPath); err != nil {
			logger.Error("Failed to generate JSON report", "error", err)
			os.Exit(1)
		}
	case *htmlOutput:
		charts := NewChartGenerator(config.ChartTheme, config.CurrencySymbol)
		htmlReporter := NewHTMLReporter(logger, config.CurrencySymbol, charts)
		if err := htmlReporter.GenerateHTMLReport(estimation, *outputPath); err != nil {
			logger.Error("Failed to generate HTML report", "error", err)
			os.Exit(1)
		}
	default:
		reporter := NewReporter(logger, config.CurrencySymbol)
		if err := reporter.GenerateReport(estimation, *outputPath); err != nil {
			logger.Error("Failed to generate report", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("Estimation completed successfully")
}

// readPricing returns the pricing document at path, or nil for the built-in plans
func readPricing(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	return os.ReadFile(path)
}

// parseBandsQuery splits PROVIDER=PRICE. The provider may itself contain '='.
func parseBandsQuery(query string) (string, float64, error) {
	i := strings.LastIndex(query, "=")
	if i <= 0 || i == len(query)-1 {
		return "", 0, &ValidationError{Field: "bands", Value: query, Message: "expected PROVIDER=PRICE"}
	}

	provider := strings.TrimSpace(query[:i])
	price, err := strconv.ParseFloat(strings.TrimSpace(query[i+1:]), 64)
	if err != nil {
		return "", 0, &ValidationError{Field: "bands", Value: query, Message: "price is not a number"}
	}
	return provider, price, nil
}

func printBands(pricing []byte, query string, logger *Logger) error {
	provider, price, err := parseBandsQuery(query)
	if err != nil {
		return err
	}

	estimator, err := NewEstimator(pricing, WithLogger(logger))
	if err != nil {
		return err
	}

	bands := estimator.TimeBandsForRate(provider, price)
	if len(bands) == 0 {
		return fmt.Errorf("no time bands for %s at %s", provider, PriceKey(price))
	}
	for _, band := range bands {
		fmt.Printf("%s-%s\n", band.Start, band.End)
	}
	return nil
}

// prepareCache optionally empties the estimate cache and logs its state
func prepareCache(storage *Storage, reset bool, logger *Logger) error {
	if reset {
		if err := storage.ClearCache(); err != nil {
			return err
		}
	}

	total, expired := storage.CacheStats()
	logger.Debug("Estimate cache", "entries", total, "expired", expired)
	return nil
}
