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

package tensor

import (
	"math"

	"github.com/chewxy/math32"
)

// promote picks the result dtype of a binary operation.
func promote(a, b DType) DType {
	if a == Float64 || b == Float64 {
		return Float64
	}
	return Float32
}

// binary applies f elementwise to the broadcast of t and other.
func (t *Tensor) binary(other *Tensor, f func(x, y float64) float64) (*Tensor, error) {
	shape, err := BroadcastShapes(t.shape, other.shape)
	if err != nil {
		return nil, err
	}

	out := empty(promote(t.dtype, other.dtype), shape)
	it := newIndexIter(shape, t.shape, other.shape)
	for i := range out.data {
		out.data[i] = out.round(f(t.data[it.offsets[0]], other.data[it.offsets[1]]))
		it.next()
	}
	return out, nil
}

// apply maps the tensor elementwise. Float32 tensors evaluate through
// the float32 function so that single-precision results match what a
// single-precision runtime would produce.
func (t *Tensor) apply(f64 func(float64) float64, f32 func(float32) float32) *Tensor {
	out := empty(t.dtype, t.shape)
	if t.dtype == Float32 && f32 != nil {
		for i, v := range t.data {
			out.data[i] = float64(f32(float32(v)))
		}
		return out
	}
	for i, v := range t.data {
		out.data[i] = out.round(f64(v))
	}
	return out
}

// Add returns t + other with broadcasting.
func (t *Tensor) Add(other *Tensor) (*Tensor, error) {
	return t.binary(other, func(x, y float64) float64 { return x + y })
}

// Sub returns t - other with broadcasting.
func (t *Tensor) Sub(other *Tensor) (*Tensor, error) {
	return t.binary(other, func(x, y float64) float64 { return x - y })
}

// Mul returns t * other elementwise with broadcasting.
func (t *Tensor) Mul(other *Tensor) (*Tensor, error) {
	return t.binary(other, func(x, y float64) float64 { return x * y })
}

// Div returns t / other elementwise with broadcasting.
func (t *Tensor) Div(other *Tensor) (*Tensor, error) {
	return t.binary(other, func(x, y float64) float64 { return x / y })
}

// AddScalar returns t + c.
func (t *Tensor) AddScalar(c float64) *Tensor {
	return t.apply(func(v float64) float64 { return v + c }, nil)
}

// SubScalar returns t - c.
func (t *Tensor) SubScalar(c float64) *Tensor {
	return t.apply(func(v float64) float64 { return v - c }, nil)
}

// MulScalar returns t * c.
func (t *Tensor) MulScalar(c float64) *Tensor {
	return t.apply(func(v float64) float64 { return v * c }, nil)
}

// Neg returns -t.
func (t *Tensor) Neg() *Tensor {
	return t.apply(func(v float64) float64 { return -v }, nil)
}

// Sqrt returns the elementwise square root.
func (t *Tensor) Sqrt() *Tensor {
	return t.apply(math.Sqrt, math32.Sqrt)
}

// Square returns the elementwise square.
func (t *Tensor) Square() *Tensor {
	return t.apply(func(v float64) float64 { return v * v }, nil)
}

// Log returns the elementwise natural logarithm.
func (t *Tensor) Log() *Tensor {
	return t.apply(math.Log, math32.Log)
}

// Exp returns the elementwise exponential.
func (t *Tensor) Exp() *Tensor {
	return t.apply(math.Exp, math32.Exp)
}

// Greater returns a mask tensor with 1 where t > other and 0
// elsewhere, broadcasting the operands.
func (t *Tensor) Greater(other *Tensor) (*Tensor, error) {
	return t.binary(other, func(x, y float64) float64 {
		if x > y {
			return 1
		}
		return 0
	})
}

// GreaterScalar returns a mask tensor with 1 where t > c.
func (t *Tensor) GreaterScalar(c float64) *Tensor {
	return t.apply(func(v float64) float64 {
		if v > c {
			return 1
		}
		return 0
	}, nil)
}

// Select picks elements from a where the mask is non-zero and from b
// elsewhere. All three tensors broadcast to a common shape.
func Select(mask, a, b *Tensor) (*Tensor, error) {
	shape, err := BroadcastShapes(mask.shape, a.shape)
	if err != nil {
		return nil, err
	}
	shape, err = BroadcastShapes(shape, b.shape)
	if err != nil {
		return nil, err
	}

	out := empty(promote(a.dtype, b.dtype), shape)
	it := newIndexIter(shape, mask.shape, a.shape, b.shape)
	for i := range out.data {
		if mask.data[it.offsets[0]] != 0 {
			out.data[i] = a.data[it.offsets[1]]
		} else {
			out.data[i] = b.data[it.offsets[2]]
		}
		it.next()
	}
	return out, nil
}

// AllPositive reports whether every element is strictly greater than
// zero. NaN elements count as non-positive.
func (t *Tensor) AllPositive() bool {
	for _, v := range t.data {
		if !(v > 0) {
			return false
		}
	}
	return true
}

// Sum returns the sum of all elements as a float64.
func (t *Tensor) Sum() float64 {
	s := 0.0
	for _, v := range t.data {
		s += v
	}
	return s
}
