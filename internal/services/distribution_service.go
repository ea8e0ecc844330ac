package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/proba"
)

// DistributionService builds distribution tables from request parameters
// and evaluates them.
type DistributionService struct {
	logger   *logging.Logger
	cfg      config.ForecastConfig
	sampling config.SamplingConfig
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(logger *logging.Logger, cfg config.ForecastConfig, sampling config.SamplingConfig) *DistributionService {
	return &DistributionService{
		logger:   logger,
		cfg:      cfg,
		sampling: sampling,
	}
}

// EvaluateRequest describes a table and the queries to run on it. Each
// parameter is a JSON number, array, or array of arrays. Rows and Cols
// select by position before evaluation; an absent selector keeps the axis.
type EvaluateRequest struct {
	Params   map[string]json.RawMessage `json:"params"`
	Index    []string                   `json:"index,omitempty"`
	Columns  []string                   `json:"columns,omitempty"`
	Rows     []int                      `json:"rows,omitempty"`
	Cols     []int                      `json:"cols,omitempty"`
	At       [][]float64                `json:"at,omitempty"`
	Probs    [][]float64                `json:"probs,omitempty"`
	Samples  int                        `json:"samples,omitempty"`
	Seed     uint64                     `json:"seed,omitempty"`
	Validate bool                       `json:"validate,omitempty"`
}

// EvaluateResponse holds the evaluated statistics of the selected table.
type EvaluateResponse struct {
	Family     string        `json:"family"`
	Shape      [2]int        `json:"shape"`
	Index      []proba.Label `json:"index"`
	Columns    []proba.Label `json:"columns"`
	Mean       [][]float64   `json:"mean"`
	Var        [][]float64   `json:"var"`
	SelfEnergy []float64     `json:"self_energy"`
	PDF        [][]float64   `json:"pdf,omitempty"`
	LogPDF     [][]float64   `json:"log_pdf,omitempty"`
	CDF        [][]float64   `json:"cdf,omitempty"`
	Energy     []float64     `json:"energy,omitempty"`
	PPF        [][]float64   `json:"ppf,omitempty"`
	Samples    [][][]float64 `json:"samples,omitempty"` // [draw][row][col]
}

// Families returns the names of the supported families, sorted.
func (s *DistributionService) Families() []string {
	names := make([]string, 0, len(proba.Families))
	for name := range proba.Families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate builds a table of the named family and answers every query the
// request carries.
func (s *DistributionService) Evaluate(ctx context.Context, familyName string, req *EvaluateRequest) (*EvaluateResponse, error) {
	family, err := proba.FamilyByName(familyName)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidDistribution, err.Error(), map[string]interface{}{
			"available_families": s.Families(),
		})
	}
	if req.Samples < 0 || req.Samples > s.cfg.MaxSamples {
		return nil, NewServiceError(CodeInvalidSamples, fmt.Sprintf("samples must be between 0 and %d", s.cfg.MaxSamples))
	}

	table, err := s.build(family, req)
	if err != nil {
		return nil, err
	}
	if table, err = table.AtPositions(req.Rows, req.Cols); err != nil {
		return nil, distributionError(err)
	}

	rows, cols := table.Shape()
	resp := &EvaluateResponse{
		Family:     family.Name(),
		Shape:      [2]int{rows, cols},
		Index:      table.Index().Labels(),
		Columns:    table.Columns().Labels(),
		Mean:       table.Mean().Values(),
		Var:        table.Var().Values(),
		SelfEnergy: table.SelfEnergy().Col(0),
	}

	if req.At != nil {
		x, err := proba.NewFrame(req.At, table.Index(), table.Columns())
		if err != nil {
			return nil, distributionError(err)
		}
		if resp.PDF, err = values(table.PDF(x)); err != nil {
			return nil, distributionError(err)
		}
		if resp.LogPDF, err = values(table.LogPDF(x)); err != nil {
			return nil, distributionError(err)
		}
		if resp.CDF, err = values(table.CDF(x)); err != nil {
			return nil, distributionError(err)
		}
		energy, err := table.Energy(x)
		if err != nil {
			return nil, distributionError(err)
		}
		resp.Energy = energy.Col(0)
	}

	if req.Probs != nil {
		for _, row := range req.Probs {
			for _, q := range row {
				if !(q > 0 && q < 1) {
					return nil, NewServiceError(CodeInvalidProbability, fmt.Sprintf("probs must be in (0, 1), got %v", q))
				}
			}
		}
		p, err := proba.NewFrame(req.Probs, table.Index(), table.Columns())
		if err != nil {
			return nil, distributionError(err)
		}
		if resp.PPF, err = values(table.PPF(p)); err != nil {
			return nil, distributionError(err)
		}
	}

	if req.Samples > 0 {
		set, err := table.SampleN(req.Samples)
		if err != nil {
			return nil, distributionError(err)
		}
		resp.Samples = make([][][]float64, set.Len())
		for k, d := range set.Draws() {
			resp.Samples[k] = d.Values()
		}
	}

	if err := resp.checkFinite(); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Debug("Distribution evaluated",
		"family", family.Name(), "rows", rows, "cols", cols, "samples", req.Samples)
	return resp, nil
}

func (s *DistributionService) build(family proba.Family, req *EvaluateRequest) (*proba.Table, error) {
	values := make(map[string]any, len(req.Params))
	for name, raw := range req.Params {
		v, err := decodeParam(raw)
		if err != nil {
			return nil, NewServiceError(CodeInvalidParameter, fmt.Sprintf("parameter %q: %v", name, err))
		}
		values[name] = v
	}

	opts := proba.Options{ValidateArgs: req.Validate}
	if req.Seed != 0 {
		opts.Source = config.SamplingConfig{Seed: req.Seed}.Source()
	} else {
		opts.Source = s.sampling.Source()
	}
	if req.Index != nil {
		index, err := proba.StringIndex(req.Index...)
		if err != nil {
			return nil, distributionError(err)
		}
		opts.Index = index
	}
	if req.Columns != nil {
		columns, err := proba.StringIndex(req.Columns...)
		if err != nil {
			return nil, distributionError(err)
		}
		opts.Columns = columns
	}

	table, err := proba.New(family, values, opts)
	if err != nil {
		return nil, distributionError(err)
	}
	return table, nil
}

// decodeParam accepts a scalar, a 1-D array or a 2-D array.
func decodeParam(raw json.RawMessage) (any, error) {
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return scalar, nil
	}
	var vector []float64
	if err := json.Unmarshal(raw, &vector); err == nil {
		return vector, nil
	}
	var grid [][]float64
	if err := json.Unmarshal(raw, &grid); err == nil {
		return grid, nil
	}
	return nil, fmt.Errorf("expected a number, an array or an array of arrays")
}

func values(f *proba.Frame, err error) ([][]float64, error) {
	if err != nil {
		return nil, err
	}
	return f.Values(), nil
}

// checkFinite rejects responses holding NaN or infinite values, which come
// from out-of-domain parameters or extreme query points.
func (r *EvaluateResponse) checkFinite() error {
	grids := []struct {
		name string
		rows [][]float64
	}{
		{"mean", r.Mean}, {"var", r.Var}, {"pdf", r.PDF}, {"log_pdf", r.LogPDF},
		{"cdf", r.CDF}, {"ppf", r.PPF},
		{"self_energy", [][]float64{r.SelfEnergy}}, {"energy", [][]float64{r.Energy}},
	}
	for _, d := range r.Samples {
		grids = append(grids, struct {
			name string
			rows [][]float64
		}{"samples", d})
	}
	for _, g := range grids {
		for _, row := range g.rows {
			if !finite(row...) {
				return NewServiceError(CodeInvalidParameter,
					fmt.Sprintf("%s is not finite; check parameter domains and query points", g.name))
			}
		}
	}
	return nil
}
