package param

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// PriorKind tags the prior variants.
type PriorKind string

const (
	UniformKind  PriorKind = "uniform"
	GaussianKind PriorKind = "gaussian"
	SplineKind   PriorKind = "spline"
)

// Prior is a belief over a parameter's magnitude, expressed in the parameter's unit.
// The pipeline never evaluates priors; they are read by external optimizers.
type Prior interface {
	Kind() PriorKind
	// LLH returns the log-likelihood contribution at x.
	LLH(x float64) float64
	String() string
}

// Uniform is a flat prior.
type Uniform struct{}

func (Uniform) Kind() PriorKind     { return UniformKind }
func (Uniform) LLH(float64) float64 { return 0 }
func (Uniform) String() string      { return "uniform" }

// Gaussian is a normal prior around Fiducial.
type Gaussian struct {
	Fiducial float64
	Sigma    float64
}

func (Gaussian) Kind() PriorKind { return GaussianKind }

func (g Gaussian) LLH(x float64) float64 {
	d := (x - g.Fiducial) / g.Sigma
	return -0.5 * d * d
}

func (g Gaussian) String() string {
	return fmt.Sprintf("gaussian(fiducial=%g, sigma=%g)", g.Fiducial, g.Sigma)
}

// Spline is a B-spline log-likelihood with knots in the parameter's unit.
type Spline struct {
	knots  []float64
	coeffs []float64
	degree int
}

// NewSpline validates and copies a knot/coefficient/degree triple.
func NewSpline(knots, coeffs []float64, degree int) (*Spline, error) {
	if degree < 0 {
		return nil, errors.Wrapf(ErrInvalidPrior, "spline degree %d", degree)
	}
	n := len(knots) - degree - 1
	if n < degree+1 {
		return nil, errors.Wrapf(ErrInvalidPrior, "%d knots for degree %d", len(knots), degree)
	}
	if len(coeffs) < n {
		return nil, errors.Wrapf(ErrInvalidPrior, "%d coefficients, need %d", len(coeffs), n)
	}
	for i := 1; i < len(knots); i++ {
		if knots[i] < knots[i-1] {
			return nil, errors.Wrap(ErrInvalidPrior, "knots must be non-decreasing")
		}
	}
	return &Spline{
		knots:  append([]float64(nil), knots...),
		coeffs: append([]float64(nil), coeffs...),
		degree: degree,
	}, nil
}

func (*Spline) Kind() PriorKind { return SplineKind }

// Knots returns a copy of the knot positions.
func (s *Spline) Knots() []float64 { return append([]float64(nil), s.knots...) }

// Coeffs returns a copy of the coefficients.
func (s *Spline) Coeffs() []float64 { return append([]float64(nil), s.coeffs...) }

// Degree returns the polynomial degree.
func (s *Spline) Degree() int { return s.degree }

// LLH evaluates the spline at x with de Boor's algorithm. Outside the knot
// span the outermost polynomial piece is extrapolated.
func (s *Spline) LLH(x float64) float64 {
	k := s.degree
	n := len(s.knots) - k - 1
	l := k
	for l < n-1 && x >= s.knots[l+1] {
		l++
	}
	d := make([]float64, k+1)
	for j := 0; j <= k; j++ {
		d[j] = s.coeffs[j+l-k]
	}
	for r := 1; r <= k; r++ {
		for j := k; j >= r; j-- {
			lo := s.knots[j+l-k]
			den := s.knots[j+1+l-r] - lo
			alpha := 0.0
			if den != 0 {
				alpha = (x - lo) / den
			}
			d[j] = (1-alpha)*d[j-1] + alpha*d[j]
		}
	}
	return d[k]
}

func (s *Spline) String() string {
	return fmt.Sprintf("spline(deg=%d, knots=%d)", s.degree, len(s.knots))
}

func priorsEqual(a, b Prior) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch pa := a.(type) {
	case Uniform:
		return true
	case Gaussian:
		pb, ok := b.(Gaussian)
		return ok && pa == pb
	case *Spline:
		pb, ok := b.(*Spline)
		return ok && pa.degree == pb.degree && floatsEqual(pa.knots, pb.knots) && floatsEqual(pa.coeffs, pb.coeffs)
	default:
		return false
	}
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}
