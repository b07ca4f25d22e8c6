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
	"github.com/pkg/errors"

	"github.com/probdist-project/gopd/internal"
)

// BroadcastShapes returns the shape obtained by broadcasting a against
// b. Shapes are aligned from the trailing dimension; a dimension
// broadcasts when the two sizes are equal or one of them is 1. An error
// is returned when the shapes are incompatible.
func BroadcastShapes(a, b []int) ([]int, error) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	out := make([]int, rank)
	for i := 1; i <= rank; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}
		switch {
		case da == db, db == 1:
			out[rank-i] = da
		case da == 1:
			out[rank-i] = db
		default:
			return nil, errors.Wrapf(internal.MalformedShape,
				"cannot broadcast %v with %v", a, b)
		}
	}
	return out, nil
}

// broadcastStrides returns, for each dimension of the target shape, the
// stride into a tensor of the given shape, with stride 0 on stretched
// dimensions. The target must already be a valid broadcast of shape.
func broadcastStrides(shape, target []int) []int {
	strides := make([]int, len(target))
	stride := 1
	for i := 1; i <= len(shape); i++ {
		d := shape[len(shape)-i]
		if d == 1 && target[len(target)-i] != 1 {
			strides[len(target)-i] = 0
		} else {
			strides[len(target)-i] = stride
		}
		stride *= d
	}
	return strides
}

// BroadcastTo returns the tensor stretched to the given shape. The
// target must be a valid broadcast of the tensor's shape.
func (t *Tensor) BroadcastTo(shape []int) (*Tensor, error) {
	merged, err := BroadcastShapes(t.shape, shape)
	if err != nil {
		return nil, err
	}
	if len(merged) != len(shape) {
		return nil, errors.Wrapf(internal.MalformedShape,
			"cannot broadcast %v to %v", t.shape, shape)
	}
	for i := range merged {
		if merged[i] != shape[i] {
			return nil, errors.Wrapf(internal.MalformedShape,
				"cannot broadcast %v to %v", t.shape, shape)
		}
	}

	out := empty(t.dtype, shape)
	it := newIndexIter(shape, t.shape)
	for i := range out.data {
		out.data[i] = t.data[it.offsets[0]]
		it.next()
	}
	return out, nil
}

// indexIter walks the multi-indices of shape in row-major order while
// tracking linear offsets into broadcast operands.
type indexIter struct {
	shape   []int
	index   []int
	strides [][]int
	offsets []int
}

func newIndexIter(shape []int, operands ...[]int) *indexIter {
	it := &indexIter{
		shape:   shape,
		index:   make([]int, len(shape)),
		strides: make([][]int, len(operands)),
		offsets: make([]int, len(operands)),
	}
	for i, op := range operands {
		it.strides[i] = broadcastStrides(op, shape)
	}
	return it
}

// next advances to the following multi-index, updating the operand
// offsets. It reports false once all indices are exhausted.
func (it *indexIter) next() bool {
	for dim := len(it.shape) - 1; dim >= 0; dim-- {
		it.index[dim]++
		for i := range it.offsets {
			it.offsets[i] += it.strides[i][dim]
		}
		if it.index[dim] < it.shape[dim] {
			return true
		}
		it.index[dim] = 0
		for i := range it.offsets {
			it.offsets[i] -= it.strides[i][dim] * it.shape[dim]
		}
	}
	return false
}
