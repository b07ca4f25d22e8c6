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

// Package tensor implements a dense numeric tensor used as the value
// type of the distribution and dataset packages.
//
// A Tensor wraps a flat buffer together with a shape. Operations
// return fresh tensors and never mutate their receivers. Binary
// operations broadcast their operands: shapes are aligned from the
// trailing dimension, and dimensions of size one stretch to match
// their counterpart.
package tensor

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/probdist-project/gopd/internal"
)

// DType enumerates the supported element types. Tensors store their
// elements as float64 internally; a Float32 tensor rounds the result
// of every operation through float32 precision.
type DType int

const (
	Float32 DType = iota
	Float64
)

// String returns the name of the data type.
func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// ParseDType maps a type name to a DType. It returns an error for
// names outside the supported floating-point types.
func ParseDType(name string) (DType, error) {
	switch name {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	default:
		return 0, errors.Wrap(internal.MalformedDType, name)
	}
}

// Tensor is a dense numeric array with a fixed shape.
type Tensor struct {
	dtype DType
	shape []int
	data  []float64
}

// New returns a tensor with the given shape filled with the provided
// values. The number of values must match the product of the shape
// dimensions. An empty shape creates a scalar tensor holding one value.
func New(dtype DType, shape []int, values []float64) (*Tensor, error) {
	size, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if len(values) != size {
		return nil, errors.Wrapf(internal.MalformedShape,
			"shape %v needs %d values, got %d", shape, size, len(values))
	}

	t := empty(dtype, shape)
	for i, v := range values {
		t.data[i] = t.round(v)
	}
	return t, nil
}

// Full returns a tensor of the given shape with every element set to
// the constant c.
func Full(dtype DType, shape []int, c float64) (*Tensor, error) {
	size, err := checkShape(shape)
	if err != nil {
		return nil, err
	}

	t := empty(dtype, shape)
	rc := t.round(c)
	for i := 0; i < size; i++ {
		t.data[i] = rc
	}
	return t, nil
}

// Scalar returns a rank-0 tensor holding the value v.
func Scalar(dtype DType, v float64) *Tensor {
	t := empty(dtype, nil)
	t.data[0] = t.round(v)
	return t
}

// empty allocates a tensor of the given shape without validating it.
func empty(dtype DType, shape []int) *Tensor {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return &Tensor{
		dtype: dtype,
		shape: append([]int(nil), shape...),
		data:  make([]float64, size),
	}
}

func checkShape(shape []int) (int, error) {
	size := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, errors.Wrapf(internal.MalformedShape, "dimension %d", d)
		}
		size *= d
	}
	return size, nil
}

// DType returns the element type of the tensor.
func (t *Tensor) DType() DType {
	return t.dtype
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	return len(t.data)
}

// IsScalar reports whether the tensor has rank 0.
func (t *Tensor) IsScalar() bool {
	return len(t.shape) == 0
}

// At returns the element at the given multi-index.
func (t *Tensor) At(index ...int) (float64, error) {
	if len(index) != len(t.shape) {
		return 0, errors.Wrapf(internal.MalformedShape,
			"index of rank %d into tensor of rank %d", len(index), len(t.shape))
	}
	off := 0
	for i, ix := range index {
		if ix < 0 || ix >= t.shape[i] {
			return 0, errors.Wrapf(internal.MalformedShape,
				"index %d out of range for dimension of size %d", ix, t.shape[i])
		}
		off = off*t.shape[i] + ix
	}
	return t.data[off], nil
}

// Float returns the value of a scalar tensor.
func (t *Tensor) Float() (float64, error) {
	if len(t.data) != 1 {
		return 0, errors.Wrapf(internal.MalformedShape,
			"tensor of size %d is not a scalar", len(t.data))
	}
	return t.data[0], nil
}

// Values returns a copy of the elements in row-major order.
func (t *Tensor) Values() []float64 {
	return append([]float64(nil), t.data...)
}

// Values32 returns a copy of the elements converted to float32.
func (t *Tensor) Values32() []float32 {
	out := make([]float32, len(t.data))
	for i, v := range t.data {
		out[i] = float32(v)
	}
	return out
}

// Copy returns a tensor with the same dtype, shape and elements.
func (t *Tensor) Copy() *Tensor {
	c := empty(t.dtype, t.shape)
	copy(c.data, t.data)
	return c
}

// Cast returns the tensor converted to the given dtype. Casting to
// Float32 rounds every element through float32 precision.
func (t *Tensor) Cast(dtype DType) *Tensor {
	c := empty(dtype, t.shape)
	for i, v := range t.data {
		c.data[i] = c.round(v)
	}
	return c
}

// Reshape returns a tensor with the same elements and a new shape of
// equal size.
func (t *Tensor) Reshape(shape []int) (*Tensor, error) {
	size, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if size != len(t.data) {
		return nil, errors.Wrapf(internal.MalformedShape,
			"cannot reshape %v into %v", t.shape, shape)
	}
	c := empty(t.dtype, shape)
	copy(c.data, t.data)
	return c, nil
}

// String renders small tensors fully and larger ones by shape only.
func (t *Tensor) String() string {
	if len(t.data) <= 8 {
		return fmt.Sprintf("Tensor(%s, shape=%v, %v)", t.dtype, t.shape, t.data)
	}
	return fmt.Sprintf("Tensor(%s, shape=%v)", t.dtype, t.shape)
}

func (t *Tensor) round(v float64) float64 {
	if t.dtype == Float32 {
		return float64(float32(v))
	}
	return v
}
