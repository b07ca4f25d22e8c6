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

package distribution_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/probdist-project/gopd/distribution"
	"github.com/probdist-project/gopd/tensor"
)

func newGamma64(t *testing.T, conc, rate []float64) *distribution.Gamma {
	t.Helper()
	var ct, rt *tensor.Tensor
	var err error
	if conc != nil {
		ct, err = tensor.New(tensor.Float64, []int{len(conc)}, conc)
		require.NoError(t, err)
	}
	if rate != nil {
		rt, err = tensor.New(tensor.Float64, []int{len(rate)}, rate)
		require.NoError(t, err)
	}
	g, err := distribution.NewGamma(ct, rt,
		distribution.WithDType(tensor.Float64), distribution.WithSeed(42))
	require.NoError(t, err)
	return g
}

func TestGammaMoments(t *testing.T) {
	var tests = []struct {
		name       string
		conc, rate float64
	}{
		{name: "concentration 3 rate 4", conc: 3, rate: 4},
		{name: "concentration 0.5 rate 1", conc: 0.5, rate: 1},
		{name: "concentration 7 rate 0.25", conc: 7, rate: 0.25},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := newGamma64(t, []float64{test.conc}, []float64{test.rate})
			ref := distuv.Gamma{Alpha: test.conc, Beta: test.rate}

			mean, err := g.Mean()
			require.NoError(t, err)
			assert.InDelta(t, ref.Mean(), mean.Values()[0], 1e-12)
			assert.InDelta(t, test.conc/test.rate, mean.Values()[0], 1e-12)

			variance, err := g.Variance()
			require.NoError(t, err)
			assert.InDelta(t, ref.Variance(), variance.Values()[0], 1e-12)

			sd, err := g.SD()
			require.NoError(t, err)
			assert.InDelta(t, math.Sqrt(test.conc)/test.rate, sd.Values()[0], 1e-12)
		})
	}
}

func TestGammaMode(t *testing.T) {
	g := newGamma64(t, []float64{3, 1, 0.5}, []float64{4, 4, 4})

	mode, err := g.Mode()
	require.NoError(t, err)
	got := mode.Values()
	assert.InDelta(t, 0.5, got[0], 1e-12)
	assert.True(t, math.IsNaN(got[1]), "mode is undefined for concentration = 1")
	assert.True(t, math.IsNaN(got[2]), "mode is undefined for concentration < 1")
}

func TestGammaLogProbAgainstGonum(t *testing.T) {
	g := newGamma64(t, []float64{3}, []float64{4})
	ref := distuv.Gamma{Alpha: 3, Beta: 4}

	for _, x := range []float64{0.1, 0.5, 1, 2.5, 10} {
		value := tensor.Scalar(tensor.Float64, x)

		lp, err := g.LogProb(value)
		require.NoError(t, err)
		assert.InDelta(t, ref.LogProb(x), lp.Values()[0], 1e-10, "log prob at %v", x)

		p, err := g.Prob(value)
		require.NoError(t, err)
		assert.InDelta(t, ref.Prob(x), p.Values()[0], 1e-10, "prob at %v", x)

		cdf, err := g.CDF(value)
		require.NoError(t, err)
		assert.InDelta(t, ref.CDF(x), cdf.Values()[0], 1e-10, "cdf at %v", x)

		sf, err := g.SurvivalFunction(value)
		require.NoError(t, err)
		assert.InDelta(t, 1-ref.CDF(x), sf.Values()[0], 1e-10, "survival at %v", x)

		lc, err := g.LogCDF(value)
		require.NoError(t, err)
		assert.InDelta(t, math.Log(ref.CDF(x)), lc.Values()[0], 1e-8, "log cdf at %v", x)
	}
}

func TestGammaEntropyMonteCarlo(t *testing.T) {
	g := newGamma64(t, []float64{3}, []float64{4})

	entropy, err := g.Entropy()
	require.NoError(t, err)
	want := entropy.Values()[0]

	// H = E[-log p(X)], estimated from the distribution's own
	// sampling stream.
	samples, err := g.Sample([]int{20000})
	require.NoError(t, err)
	lp, err := g.LogProb(samples)
	require.NoError(t, err)
	got := -lp.Sum() / float64(samples.Size())

	assert.InDelta(t, want, got, 0.05, "entropy estimate too far off")
}

func TestGammaKL(t *testing.T) {
	g := newGamma64(t, []float64{3}, []float64{4})
	concB, err := tensor.New(tensor.Float64, []int{1}, []float64{5})
	require.NoError(t, err)
	rateB, err := tensor.New(tensor.Float64, []int{1}, []float64{2})
	require.NoError(t, err)

	// KL of a distribution against itself vanishes.
	selfConc, err := tensor.New(tensor.Float64, []int{1}, []float64{3})
	require.NoError(t, err)
	selfRate, err := tensor.New(tensor.Float64, []int{1}, []float64{4})
	require.NoError(t, err)
	kl, err := g.KL("Gamma", selfConc, selfRate)
	require.NoError(t, err)
	assert.InDelta(t, 0, kl.Values()[0], 1e-12)

	// KL is non-negative.
	kl, err = g.KL("Gamma", concB, rateB)
	require.NoError(t, err)
	assert.True(t, kl.Values()[0] > 0, "KL between distinct distributions must be positive")

	// Cross entropy decomposes into entropy plus divergence.
	entropy, err := g.Entropy()
	require.NoError(t, err)
	ce, err := g.CrossEntropy("Gamma", concB, rateB)
	require.NoError(t, err)
	assert.InDelta(t, entropy.Values()[0]+kl.Values()[0], ce.Values()[0], 1e-12)
}

func TestGammaKLMonteCarlo(t *testing.T) {
	g := newGamma64(t, []float64{3}, []float64{4})
	concB, err := tensor.New(tensor.Float64, []int{1}, []float64{5})
	require.NoError(t, err)
	rateB, err := tensor.New(tensor.Float64, []int{1}, []float64{2})
	require.NoError(t, err)

	kl, err := g.KL("Gamma", concB, rateB)
	require.NoError(t, err)
	want := kl.Values()[0]

	// KL(a||b) = E_a[log p_a(X) - log p_b(X)].
	samples, err := g.Sample([]int{20000})
	require.NoError(t, err)
	lpA, err := g.LogProb(samples)
	require.NoError(t, err)
	lpB, err := g.LogProb(samples, concB, rateB)
	require.NoError(t, err)
	diff, err := lpA.Sub(lpB)
	require.NoError(t, err)
	got := diff.Sum() / float64(samples.Size())

	assert.InDelta(t, want, got, 0.05, "KL estimate too far off")
}

func TestGammaSampleMoments(t *testing.T) {
	g := newGamma64(t, []float64{3}, []float64{4})

	samples, err := g.Sample([]int{10000})
	require.NoError(t, err)
	require.Equal(t, []int{10000, 1}, samples.Shape())

	values := samples.Values()
	me := 0.0
	for _, v := range values {
		me += v
	}
	me /= float64(len(values))
	va := 0.0
	for _, v := range values {
		va += (v - me) * (v - me)
	}
	va /= float64(len(values))

	// me should be around 0.75 and va should be around 0.1875
	assert.True(t, me < 0.78, "mean value of the gamma distribution is too big")
	assert.True(t, me > 0.72, "mean value of the gamma distribution is too small")
	assert.True(t, va < 0.21, "variance of the gamma distribution is too big")
	assert.True(t, va > 0.16, "variance of the gamma distribution is too small")
}

func TestGammaSampleShapes(t *testing.T) {
	g := newGamma64(t, []float64{3, 2}, []float64{4, 4})

	s, err := g.Sample([]int{5, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 2}, s.Shape())

	scalarG, err := distribution.NewGamma(
		tensor.Scalar(tensor.Float64, 3), tensor.Scalar(tensor.Float64, 4),
		distribution.WithDType(tensor.Float64), distribution.WithSeed(1))
	require.NoError(t, err)
	s, err = scalarG.Sample(nil)
	require.NoError(t, err)
	assert.True(t, s.IsScalar(), "empty shape over a scalar batch samples a scalar")
}

func TestGammaSampleDeterminism(t *testing.T) {
	a := newGamma64(t, []float64{3}, []float64{4})
	b := newGamma64(t, []float64{3}, []float64{4})

	sa, err := a.Sample([]int{16})
	require.NoError(t, err)
	sb, err := b.Sample([]int{16})
	require.NoError(t, err)
	assert.Equal(t, sa.Values(), sb.Values(), "equal seeds must reproduce equal samples")

	c, err := distribution.NewGamma(
		tensor.Scalar(tensor.Float64, 3), tensor.Scalar(tensor.Float64, 4),
		distribution.WithDType(tensor.Float64), distribution.WithSeed(43))
	require.NoError(t, err)
	sc, err := c.Sample([]int{16})
	require.NoError(t, err)
	assert.NotEqual(t, sa.Values(), sc.Values(), "distinct seeds must diverge")
}

func TestGammaDeferredParameters(t *testing.T) {
	g, err := distribution.NewGamma(nil, nil, distribution.WithDType(tensor.Float64))
	require.NoError(t, err)

	_, err = g.Mean()
	assert.Error(t, err, "deferred parameters require overrides")

	conc := tensor.Scalar(tensor.Float64, 3)
	rate := tensor.Scalar(tensor.Float64, 4)
	mean, err := g.Mean(conc, rate)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, mean.Values()[0], 1e-12)

	got, err := g.Concentration(conc, rate)
	require.NoError(t, err)
	assert.Equal(t, conc.Values(), got.Values())
}

func TestGammaOverridesTakePrecedence(t *testing.T) {
	g := newGamma64(t, []float64{3}, []float64{4})

	conc := tensor.Scalar(tensor.Float64, 10)
	rate := tensor.Scalar(tensor.Float64, 2)
	mean, err := g.Mean(conc, rate)
	require.NoError(t, err)
	assert.InDelta(t, 5, mean.Values()[0], 1e-12)

	_, err = g.Mean(conc)
	assert.Error(t, err, "overrides must come as a pair")
}

func TestGammaRejectsBadParameters(t *testing.T) {
	zero := tensor.Scalar(tensor.Float64, 0)
	neg := tensor.Scalar(tensor.Float64, -1)
	ok := tensor.Scalar(tensor.Float64, 1)

	_, err := distribution.NewGamma(zero, ok)
	assert.Error(t, err, "zero concentration must be rejected")
	_, err = distribution.NewGamma(ok, neg)
	assert.Error(t, err, "negative rate must be rejected")

	nan := tensor.Scalar(tensor.Float64, math.NaN())
	_, err = distribution.NewGamma(nan, ok)
	assert.Error(t, err, "NaN parameters must be rejected")
}

func TestGammaRejectsForeignDistribution(t *testing.T) {
	g := newGamma64(t, []float64{3}, []float64{4})
	conc := tensor.Scalar(tensor.Float64, 3)
	rate := tensor.Scalar(tensor.Float64, 4)

	_, err := g.KL("Normal", conc, rate)
	assert.Error(t, err)
	_, err = g.CrossEntropy("Exponential", conc, rate)
	assert.Error(t, err)
}

func TestGammaDefaultDType(t *testing.T) {
	g, err := distribution.NewGamma(
		tensor.Scalar(tensor.Float64, 3), tensor.Scalar(tensor.Float64, 4))
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, g.DType())

	mean, err := g.Mean()
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, mean.DType())
}
