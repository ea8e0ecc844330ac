// Package export writes predictive quantiles or sample paths of a forecast
// to CSV or to the compressed float block format.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/soltixdb/probacast/internal/analytics/forecast"
	"github.com/soltixdb/probacast/internal/compression"
	"github.com/soltixdb/probacast/internal/services"
)

// Mode selects what is exported.
type Mode string

const (
	ModeQuantiles Mode = "quantiles"
	ModeSamples   Mode = "samples"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatBinary Format = "binary"
)

var (
	ErrUnknownMode   = errors.New("unknown export mode")
	ErrUnknownFormat = errors.New("unknown export format")
	ErrNoSamples     = errors.New("samples mode needs at least one draw")
)

// Options controls a single export run.
type Options struct {
	Mode        Mode
	Format      Format
	Compression compression.Algorithm
}

// Validate checks the mode/format combination.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeQuantiles, ModeSamples:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, o.Mode)
	}
	switch o.Format {
	case FormatCSV:
	case FormatBinary:
		if o.Mode != ModeSamples {
			return fmt.Errorf("%w: binary output only carries samples", ErrUnknownFormat)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, o.Format)
	}
	return nil
}

// Run forecasts req with svc and writes the requested view to w.
func Run(ctx context.Context, svc *services.ForecastService, req *services.ForecastRequest, opts Options, w io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Mode == ModeSamples && req.Samples <= 0 {
		return ErrNoSamples
	}
	if opts.Mode == ModeQuantiles {
		req.Samples = 0
		if req.Quantiles == nil {
			req.Quantiles = svc.Defaults().Quantiles
		}
	}

	resp, err := svc.Execute(ctx, req)
	if err != nil {
		return err
	}

	out, err := compression.NewWriter(w, opts.Compression)
	if err != nil {
		return err
	}

	switch {
	case opts.Mode == ModeQuantiles:
		err = WriteQuantilesCSV(out, resp, req.Quantiles)
	case opts.Format == FormatBinary:
		err = WriteSamplesBinary(out, resp)
	default:
		err = WriteSamplesCSV(out, resp)
	}
	if err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// WriteQuantilesCSV writes one row per horizon step:
// time, mean, std_dev, then one column per quantile level.
func WriteQuantilesCSV(w io.Writer, resp *services.ForecastResponse, levels []float64) error {
	if resp.Result == nil {
		return errors.New("forecast response carries no distribution")
	}
	frame, err := resp.Result.PredictQuantiles(levels)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{"time", "mean", "std_dev"}
	for j := 0; j < frame.Columns().Len(); j++ {
		header = append(header, fmt.Sprint(frame.Columns().At(j)))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range resp.Predictions {
		row := []string{p.Time, formatFloat(p.Value), formatFloat(p.StdDev)}
		for j := range levels {
			row = append(row, formatFloat(frame.At(i, j)))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSamplesCSV writes stacked sample paths as draw, time, value rows.
func WriteSamplesCSV(w io.Writer, resp *services.ForecastResponse) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"draw", "time", resp.Field}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for k, path := range resp.Samples {
		if len(path) != len(resp.Predictions) {
			return fmt.Errorf("draw %d has %d steps, want %d", k, len(path), len(resp.Predictions))
		}
		for i, v := range path {
			row := []string{strconv.Itoa(k), resp.Predictions[i].Time, formatFloat(v)}
			if err := writer.Write(row); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteSamplesBinary writes one compressed float block per draw.
func WriteSamplesBinary(w io.Writer, resp *services.ForecastResponse) error {
	for k, path := range resp.Samples {
		if err := compression.WriteBlock(w, path); err != nil {
			return fmt.Errorf("write draw %d: %w", k, err)
		}
	}
	return nil
}

// ReadSamplesBinary reads back every draw written by WriteSamplesBinary.
func ReadSamplesBinary(r io.Reader) ([][]float64, error) {
	reader := compression.NewBlockReader(r)
	var draws [][]float64
	for {
		values, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return draws, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read draw %d: %w", len(draws), err)
		}
		draws = append(draws, values)
	}
}

// ReadSeries reads a series as a JSON array of {time, value} objects or as
// CSV with time,value rows. CSV times are RFC3339 or unix seconds and a
// non-numeric first row is treated as a header.
func ReadSeries(r io.Reader, format string) ([]forecast.DataPoint, error) {
	switch strings.ToLower(format) {
	case "json":
		var points []forecast.DataPoint
		if err := json.NewDecoder(r).Decode(&points); err != nil {
			return nil, fmt.Errorf("failed to decode series: %w", err)
		}
		return points, nil
	case "csv":
		return readSeriesCSV(r)
	default:
		return nil, fmt.Errorf("unsupported series format: %q", format)
	}
}

func readSeriesCSV(r io.Reader) ([]forecast.DataPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read series: %w", err)
	}

	points := make([]forecast.DataPoint, 0, len(records))
	for line, record := range records {
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			if line == 0 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid value %q", line+1, record[1])
		}
		ts, err := parseTime(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		points = append(points, forecast.DataPoint{Time: ts, Value: value})
	}
	return points, nil
}

func parseTime(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", s)
	}
	return ts, nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
