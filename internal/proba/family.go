package proba

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Family supplies the closed forms of one scalar distribution family.
// Parameter slices follow the order of ParamNames. The indexing and
// subsetting logic of Table is family-agnostic; a family only declares its
// parameters and evaluates a single entry.
type Family interface {
	Name() string
	ParamNames() []string

	// Validate checks the parameters of one entry.
	Validate(params []float64) error

	Mean(params []float64) float64
	Variance(params []float64) float64
	Prob(params []float64, x float64) float64
	LogProb(params []float64, x float64) float64
	CDF(params []float64, x float64) float64
	Quantile(params []float64, p float64) float64

	// Energy returns E|X - x|.
	Energy(params []float64, x float64) float64
	// SelfEnergy returns E|X - X'| for independent copies X, X'.
	SelfEnergy(params []float64) float64
}

// NormalFamily is the Gaussian family with parameters mu and sigma.
type NormalFamily struct{}

// Name returns the family name.
func (NormalFamily) Name() string { return "normal" }

// ParamNames returns mu, sigma.
func (NormalFamily) ParamNames() []string { return []string{"mu", "sigma"} }

func (NormalFamily) dist(p []float64) distuv.Normal {
	return distuv.Normal{Mu: p[0], Sigma: p[1]}
}

// Validate requires a finite mean and a positive standard deviation.
func (NormalFamily) Validate(p []float64) error {
	if math.IsNaN(p[0]) || math.IsInf(p[0], 0) {
		return fmt.Errorf("%w: mu must be finite, got %v", ErrInvalidParameter, p[0])
	}
	if !(p[1] > 0) || math.IsInf(p[1], 0) {
		return fmt.Errorf("%w: sigma must be positive, got %v", ErrInvalidParameter, p[1])
	}
	return nil
}

func (f NormalFamily) Mean(p []float64) float64     { return p[0] }
func (f NormalFamily) Variance(p []float64) float64 { return p[1] * p[1] }

func (f NormalFamily) Prob(p []float64, x float64) float64    { return f.dist(p).Prob(x) }
func (f NormalFamily) LogProb(p []float64, x float64) float64 { return f.dist(p).LogProb(x) }
func (f NormalFamily) CDF(p []float64, x float64) float64     { return f.dist(p).CDF(x) }

func (f NormalFamily) Quantile(p []float64, q float64) float64 {
	if !(q >= 0 && q <= 1) {
		return math.NaN()
	}
	return f.dist(p).Quantile(q)
}

func (f NormalFamily) Energy(p []float64, x float64) float64 {
	d := f.dist(p)
	return (x-p[0])*(2*d.CDF(x)-1) + 2*p[1]*p[1]*d.Prob(x)
}

func (f NormalFamily) SelfEnergy(p []float64) float64 {
	return 2 * p[1] / math.Sqrt(math.Pi)
}

// LaplaceFamily is the double exponential family with parameters mu and scale.
type LaplaceFamily struct{}

// Name returns the family name.
func (LaplaceFamily) Name() string { return "laplace" }

// ParamNames returns mu, scale.
func (LaplaceFamily) ParamNames() []string { return []string{"mu", "scale"} }

func (LaplaceFamily) dist(p []float64) distuv.Laplace {
	return distuv.Laplace{Mu: p[0], Scale: p[1]}
}

// Validate requires a finite location and a positive scale.
func (LaplaceFamily) Validate(p []float64) error {
	if math.IsNaN(p[0]) || math.IsInf(p[0], 0) {
		return fmt.Errorf("%w: mu must be finite, got %v", ErrInvalidParameter, p[0])
	}
	if !(p[1] > 0) || math.IsInf(p[1], 0) {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidParameter, p[1])
	}
	return nil
}

func (f LaplaceFamily) Mean(p []float64) float64     { return p[0] }
func (f LaplaceFamily) Variance(p []float64) float64 { return 2 * p[1] * p[1] }

func (f LaplaceFamily) Prob(p []float64, x float64) float64    { return f.dist(p).Prob(x) }
func (f LaplaceFamily) LogProb(p []float64, x float64) float64 { return f.dist(p).LogProb(x) }
func (f LaplaceFamily) CDF(p []float64, x float64) float64     { return f.dist(p).CDF(x) }

func (f LaplaceFamily) Quantile(p []float64, q float64) float64 {
	if !(q >= 0 && q <= 1) {
		return math.NaN()
	}
	return f.dist(p).Quantile(q)
}

func (f LaplaceFamily) Energy(p []float64, x float64) float64 {
	d := math.Abs(x - p[0])
	return d + p[1]*math.Exp(-d/p[1])
}

func (f LaplaceFamily) SelfEnergy(p []float64) float64 {
	return 1.5 * p[1]
}

// Families lists the built-in families by name.
var Families = map[string]Family{
	NormalFamily{}.Name():  NormalFamily{},
	LaplaceFamily{}.Name(): LaplaceFamily{},
}

// FamilyByName looks up a built-in family.
func FamilyByName(name string) (Family, error) {
	f, ok := Families[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, name)
	}
	return f, nil
}
