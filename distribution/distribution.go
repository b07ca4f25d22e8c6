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
	"github.com/pkg/errors"

	"github.com/probdist-project/gopd/internal"
	"github.com/probdist-project/gopd/internal/rng"
	"github.com/probdist-project/gopd/tensor"
)

// Option configures a distribution at construction time.
type Option func(*base)

// WithDType sets the dtype of event samples and evaluation results.
// The default is tensor.Float32.
func WithDType(dtype tensor.DType) Option {
	return func(b *base) { b.dtype = dtype }
}

// WithSeed pins the seed of the sampling stream. Without it a fresh
// seed is drawn from the system entropy source.
func WithSeed(seed uint64) Option {
	return func(b *base) {
		b.seed = seed
		b.seeded = true
	}
}

// WithName overrides the distribution's display name.
func WithName(name string) Option {
	return func(b *base) { b.name = name }
}

// base carries the machinery shared by all distributions: the dtype
// of event samples, the name used in errors, and the seeded random
// source behind sampling.
type base struct {
	name   string
	dtype  tensor.DType
	seed   uint64
	seeded bool
	src    *rng.Source
}

func newBase(name string, opts []Option) (*base, error) {
	b := &base{name: name, dtype: tensor.Float32}
	for _, opt := range opts {
		opt(b)
	}
	if b.dtype != tensor.Float32 && b.dtype != tensor.Float64 {
		return nil, errors.Wrapf(internal.MalformedDType,
			"%s requires a floating-point dtype", b.name)
	}
	if !b.seeded {
		b.seed = rng.RandomSeed()
	}
	b.src = rng.New(b.seed)
	return b, nil
}

// Name returns the distribution's name.
func (b *base) Name() string { return b.name }

// DType returns the dtype of event samples.
func (b *base) DType() tensor.DType { return b.dtype }

// Seed returns the seed of the sampling stream.
func (b *base) Seed() uint64 { return b.seed }

// checkPositive validates that a parameter tensor is strictly
// positive in every element. A nil tensor passes; it stands for a
// parameter deferred to call time.
func checkPositive(t *tensor.Tensor, name string) error {
	if t == nil {
		return nil
	}
	if !t.AllPositive() {
		return errors.Wrapf(internal.MalformedParameter,
			"%s must be strictly greater than zero", name)
	}
	return nil
}

// checkDistName rejects cross-distribution divergence requests.
func checkDistName(dist, want string) error {
	if dist != want {
		return errors.Wrapf(internal.MalformedParameter,
			"unsupported distribution %q, expected %q", dist, want)
	}
	return nil
}

// castValue validates an evaluation value and casts it to the
// distribution's dtype.
func (b *base) castValue(v *tensor.Tensor) (*tensor.Tensor, error) {
	if v == nil {
		return nil, errors.Wrap(internal.MalformedValue, "value must not be nil")
	}
	return v.Cast(b.dtype), nil
}
