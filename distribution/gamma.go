/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package distribution

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probdist-project/gopd/internal"
	"github.com/probdist-project/gopd/tensor"
)

// gammaName is the only distribution name KL and CrossEntropy accept.
const gammaName = "Gamma"

// Gamma is the Gamma distribution parameterized by concentration
// (shape, alpha) and rate (inverse scale, beta). Both parameters must
// be strictly positive wherever they are given.
//
// Either parameter may be nil at construction, in which case both
// must be passed as overrides on every call. Overrides are always
// passed as the pair (concentration, rate).
type Gamma struct {
	*base
	concentration *tensor.Tensor
	rate          *tensor.Tensor
}

// NewGamma returns a Gamma distribution with the given parameters.
// Nil parameters defer parameterization to call time.
func NewGamma(concentration, rate *tensor.Tensor, opts ...Option) (*Gamma, error) {
	b, err := newBase(gammaName, opts)
	if err != nil {
		return nil, err
	}
	if err := checkPositive(concentration, "concentration"); err != nil {
		return nil, err
	}
	if err := checkPositive(rate, "rate"); err != nil {
		return nil, err
	}

	g := &Gamma{base: b}
	if concentration != nil {
		g.concentration = concentration.Cast(b.dtype)
	}
	if rate != nil {
		g.rate = rate.Cast(b.dtype)
	}
	return g, nil
}

// Concentration returns the concentration parameter, resolving
// optional overrides the same way the statistical methods do.
func (g *Gamma) Concentration(over ...*tensor.Tensor) (*tensor.Tensor, error) {
	conc, _, err := g.resolve(over)
	return conc, err
}

// Rate returns the rate parameter, resolving optional overrides the
// same way the statistical methods do.
func (g *Gamma) Rate(over ...*tensor.Tensor) (*tensor.Tensor, error) {
	_, rate, err := g.resolve(over)
	return rate, err
}

// resolve picks the effective (concentration, rate) pair for a call:
// either the overrides, which must come as a pair, or the parameters
// the distribution was constructed with.
func (g *Gamma) resolve(over []*tensor.Tensor) (*tensor.Tensor, *tensor.Tensor, error) {
	var conc, rate *tensor.Tensor
	switch len(over) {
	case 0:
		conc, rate = g.concentration, g.rate
	case 2:
		conc, rate = over[0], over[1]
	default:
		return nil, nil, errors.Wrap(internal.MalformedParameter,
			"concentration and rate must be overridden together")
	}
	if conc == nil || rate == nil {
		return nil, nil, errors.Wrap(internal.MalformedParameter,
			"concentration and rate are required")
	}
	if err := checkPositive(conc, "concentration"); err != nil {
		return nil, nil, err
	}
	if err := checkPositive(rate, "rate"); err != nil {
		return nil, nil, err
	}
	return conc.Cast(g.dtype), rate.Cast(g.dtype), nil
}

// Mean returns concentration / rate.
func (g *Gamma) Mean(over ...*tensor.Tensor) (*tensor.Tensor, error) {
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	return conc.Div(rate)
}

// Variance returns concentration / rate².
func (g *Gamma) Variance(over ...*tensor.Tensor) (*tensor.Tensor, error) {
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	return conc.Div(rate.Square())
}

// SD returns sqrt(concentration) / rate.
func (g *Gamma) SD(over ...*tensor.Tensor) (*tensor.Tensor, error) {
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	return conc.Sqrt().Div(rate)
}

// Mode returns (concentration - 1) / rate where concentration > 1 and
// NaN elsewhere; the mode is undefined for concentration <= 1.
func (g *Gamma) Mode(over ...*tensor.Tensor) (*tensor.Tensor, error) {
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	mode, err := conc.SubScalar(1).Div(rate)
	if err != nil {
		return nil, err
	}
	return tensor.Select(conc.GreaterScalar(1), mode, tensor.Scalar(g.dtype, math.NaN()))
}

// Entropy returns the differential entropy
//
//	H = concentration - log(rate) + lgamma(concentration)
//	    + (1 - concentration) * digamma(concentration)
func (g *Gamma) Entropy(over ...*tensor.Tensor) (*tensor.Tensor, error) {
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	h, err := conc.Sub(rate.Log())
	if err != nil {
		return nil, err
	}
	h, err = h.Add(conc.Lgamma())
	if err != nil {
		return nil, err
	}
	tail, err := conc.Neg().AddScalar(1).Mul(conc.Digamma())
	if err != nil {
		return nil, err
	}
	return h.Add(tail)
}

// LogProb returns the log density at value:
//
//	log p(x) = (concentration-1)*log(x) - rate*x
//	           - lgamma(concentration) + concentration*log(rate)
func (g *Gamma) LogProb(value *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	value, err := g.castValue(value)
	if err != nil {
		return nil, err
	}
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}

	unnormalized, err := conc.SubScalar(1).Mul(value.Log())
	if err != nil {
		return nil, err
	}
	rx, err := rate.Mul(value)
	if err != nil {
		return nil, err
	}
	unnormalized, err = unnormalized.Sub(rx)
	if err != nil {
		return nil, err
	}

	cr, err := conc.Mul(rate.Log())
	if err != nil {
		return nil, err
	}
	normalization, err := conc.Lgamma().Sub(cr)
	if err != nil {
		return nil, err
	}
	return unnormalized.Sub(normalization)
}

// Prob returns the density at value.
func (g *Gamma) Prob(value *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	lp, err := g.LogProb(value, over...)
	if err != nil {
		return nil, err
	}
	return lp.Exp(), nil
}

// CDF returns the cumulative distribution function at value, the
// regularized lower incomplete gamma function of (concentration,
// rate*value).
func (g *Gamma) CDF(value *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	value, err := g.castValue(value)
	if err != nil {
		return nil, err
	}
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	rx, err := rate.Mul(value)
	if err != nil {
		return nil, err
	}
	return tensor.Igamma(conc, rx)
}

// LogCDF returns log(CDF(value)).
func (g *Gamma) LogCDF(value *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	cdf, err := g.CDF(value, over...)
	if err != nil {
		return nil, err
	}
	return cdf.Log(), nil
}

// SurvivalFunction returns 1 - CDF(value).
func (g *Gamma) SurvivalFunction(value *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	cdf, err := g.CDF(value, over...)
	if err != nil {
		return nil, err
	}
	return cdf.Neg().AddScalar(1), nil
}

// LogSurvival returns log(1 - CDF(value)).
func (g *Gamma) LogSurvival(value *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	sf, err := g.SurvivalFunction(value, over...)
	if err != nil {
		return nil, err
	}
	return sf.Log(), nil
}

// KL returns the Kullback-Leibler divergence KL(a || b) where a is
// this distribution (or its overrides) and b is given by
// (concentrationB, rateB). Only dist == "Gamma" is supported.
//
//	KL(a||b) = (ca-cb)*digamma(ca) + lgamma(cb) - lgamma(ca)
//	           + cb*log(ra) - cb*log(rb) + ca*(rb/ra - 1)
func (g *Gamma) KL(dist string, concentrationB, rateB *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkDistName(dist, gammaName); err != nil {
		return nil, err
	}
	if err := checkPositive(concentrationB, "concentration_b"); err != nil {
		return nil, err
	}
	if err := checkPositive(rateB, "rate_b"); err != nil {
		return nil, err
	}
	if concentrationB == nil || rateB == nil {
		return nil, errors.Wrap(internal.MalformedParameter,
			"concentration_b and rate_b are required")
	}
	concA, rateA, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	concB := concentrationB.Cast(g.dtype)
	rateB = rateB.Cast(g.dtype)

	diff, err := concA.Sub(concB)
	if err != nil {
		return nil, err
	}
	kl, err := diff.Mul(concA.Digamma())
	if err != nil {
		return nil, err
	}
	kl, err = kl.Add(concB.Lgamma())
	if err != nil {
		return nil, err
	}
	kl, err = kl.Sub(concA.Lgamma())
	if err != nil {
		return nil, err
	}
	logRatio, err := rateA.Log().Sub(rateB.Log())
	if err != nil {
		return nil, err
	}
	scaled, err := concB.Mul(logRatio)
	if err != nil {
		return nil, err
	}
	kl, err = kl.Add(scaled)
	if err != nil {
		return nil, err
	}
	ratio, err := rateB.Div(rateA)
	if err != nil {
		return nil, err
	}
	tail, err := concA.Mul(ratio.SubScalar(1))
	if err != nil {
		return nil, err
	}
	return kl.Add(tail)
}

// CrossEntropy returns H(a) + KL(a || b) for another Gamma
// distribution b given by (concentrationB, rateB).
func (g *Gamma) CrossEntropy(dist string, concentrationB, rateB *tensor.Tensor, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	if err := checkDistName(dist, gammaName); err != nil {
		return nil, err
	}
	entropy, err := g.Entropy(over...)
	if err != nil {
		return nil, err
	}
	kl, err := g.KL(dist, concentrationB, rateB, over...)
	if err != nil {
		return nil, err
	}
	return entropy.Add(kl)
}

// Sample draws gamma variates. The result has shape
// shape + batchShape, where batchShape is the broadcast of the
// parameter shapes; sampling with an empty shape from a scalar batch
// yields a scalar tensor. Variates are generated by the gonum gamma
// sampler driven by this distribution's seeded stream.
func (g *Gamma) Sample(shape []int, over ...*tensor.Tensor) (*tensor.Tensor, error) {
	conc, rate, err := g.resolve(over)
	if err != nil {
		return nil, err
	}
	batch, err := tensor.BroadcastShapes(conc.Shape(), rate.Shape())
	if err != nil {
		return nil, err
	}
	concB, err := conc.BroadcastTo(batch)
	if err != nil {
		return nil, err
	}
	rateB, err := rate.BroadcastTo(batch)
	if err != nil {
		return nil, err
	}

	alphas := concB.Values()
	betas := rateB.Values()
	full := append(append([]int(nil), shape...), batch...)

	repeats := 1
	for _, d := range shape {
		repeats *= d
	}
	values := make([]float64, repeats*len(alphas))
	for i := 0; i < repeats; i++ {
		for j := range alphas {
			d := distuv.Gamma{Alpha: alphas[j], Beta: betas[j], Src: g.src}
			values[i*len(alphas)+j] = d.Rand()
		}
	}
	return tensor.New(g.dtype, full, values)
}
