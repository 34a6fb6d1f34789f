package kernel

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Gaussians evaluates at every point of x the normalised sum of gaussians
// with means mu and widths sigma. weights may be nil, in which case every
// gaussian counts once and the sum is divided by len(mu); otherwise it is
// divided by the sum of the weights.
//
// Points are split into threads contiguous chunks evaluated concurrently.
// The last chunk takes the remainder. threads <= 1 runs in the caller.
func Gaussians(ctx context.Context, x, mu, sigma, weights []float64, threads int) ([]float64, error) {
	if len(mu) != len(sigma) {
		return nil, errors.Wrapf(ErrLength, "%d means, %d widths", len(mu), len(sigma))
	}
	if weights != nil && len(weights) != len(mu) {
		return nil, errors.Wrapf(ErrLength, "%d means, %d weights", len(mu), len(weights))
	}
	for i, s := range sigma {
		if !(s > 0) {
			return nil, errors.Wrapf(ErrSigma, "sigma[%d]=%g", i, s)
		}
	}

	norm := float64(len(mu))
	if weights != nil {
		norm = 0
		for _, w := range weights {
			norm += w
		}
	}
	out := make([]float64, len(x))
	if len(mu) == 0 || len(x) == 0 {
		return out, nil
	}
	norm = 1 / (math.Sqrt(2*math.Pi) * norm)

	fill := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i] = norm * sum(x[i], mu, sigma, weights)
		}
	}

	if threads > len(x) {
		threads = len(x)
	}
	if threads <= 1 {
		fill(0, len(x))
		return out, nil
	}

	chunk := len(x) / threads
	errGrp, gCtx := errgroup.WithContext(ctx)
	for t := 0; t < threads; t++ {
		lo, hi := t*chunk, (t+1)*chunk
		if t == threads-1 {
			hi = len(x)
		}
		errGrp.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			fill(lo, hi)
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func sum(x float64, mu, sigma, weights []float64) float64 {
	var total float64
	for j := range mu {
		d := (x - mu[j]) / sigma[j]
		g := math.Exp(-0.5*d*d) / sigma[j]
		if weights != nil {
			g *= weights[j]
		}
		total += g
	}
	return total
}
