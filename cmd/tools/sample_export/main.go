package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soltixdb/probacast/internal/analytics/forecast"
	"github.com/soltixdb/probacast/internal/compression"
	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/export"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/services"
)

func main() {
	// Command line flags
	input := flag.String("input", "", "Series file (.json array of {time, value} or .csv time,value)")
	method := flag.String("method", "", "Forecast method (default from config)")
	horizon := flag.Int("horizon", 0, "Forecast horizon in steps (default from config)")
	interval := flag.String("interval", "", "Step between forecasts, e.g. 1h or 1d (default inferred)")
	mode := flag.String("mode", "quantiles", "Export mode (quantiles, samples)")
	samples := flag.Int("n", 100, "Number of sample paths in samples mode")
	quantiles := flag.String("quantiles", "", "Comma-separated quantile levels (default from config)")
	seed := flag.Uint64("seed", 0, "Random seed for sample paths (0 uses config)")
	format := flag.String("format", "csv", "Output format (csv, binary)")
	compress := flag.String("compress", "none", "Output compression (none, snappy)")
	output := flag.String("output", "", "Output file (default stdout)")
	configPath := flag.String("config", "", "Path to configuration file")

	flag.Parse()

	if *input == "" {
		log.Fatal("Error: -input parameter is required")
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v\n", err)
		}
		cfg = loaded
	}
	if *samples > cfg.Forecast.MaxSamples {
		cfg.Forecast.MaxSamples = *samples
	}
	if *horizon > cfg.Forecast.MaxHorizon {
		cfg.Forecast.MaxHorizon = *horizon
	}

	algo, err := compression.ParseAlgorithm(*compress)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	levels, err := parseLevels(*quantiles)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	series, err := readSeries(*input)
	if err != nil {
		log.Fatalf("Error reading series: %v\n", err)
	}
	fmt.Fprintf(os.Stderr, "Read %d data points from %s\n", len(series), *input)

	req := &services.ForecastRequest{
		Series:    series,
		Method:    *method,
		Horizon:   *horizon,
		Interval:  *interval,
		Quantiles: levels,
		Seed:      *seed,
	}
	if export.Mode(*mode) == export.ModeSamples {
		req.Samples = *samples
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			log.Fatalf("Error creating output file: %v\n", err)
		}
		defer func() { _ = file.Close() }()
		out = file
	}

	svc := services.NewForecastService(logging.NewNop(), cfg.Forecast, cfg.Sampling)
	opts := export.Options{
		Mode:        export.Mode(*mode),
		Format:      export.Format(*format),
		Compression: algo,
	}
	if err := export.Run(context.Background(), svc, req, opts, out); err != nil {
		log.Fatalf("Error exporting: %v\n", err)
	}

	if *output != "" {
		fmt.Fprintf(os.Stderr, "Successfully exported to: %s\n", *output)
	}
}

func readSeries(path string) ([]forecast.DataPoint, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		format = "json"
	}
	return export.ReadSeries(file, format)
}

func parseLevels(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	levels := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantile %q", p)
		}
		levels[i] = v
	}
	return levels, nil
}
