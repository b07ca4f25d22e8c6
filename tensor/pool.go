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

	"github.com/pkg/errors"

	"github.com/probdist-project/gopd/internal"
)

// PadMode selects the padding policy of the pooling ops.
type PadMode int

const (
	// PadValid only places windows that lie fully inside the input.
	PadValid PadMode = iota
	// PadSame pads the input so the output has ceil(in/stride) rows
	// and columns; out-of-bounds positions are ignored by the max.
	PadSame
)

// poolGeometry captures the output extent and the padding offset of a
// pooled dimension.
type poolGeometry struct {
	out int
	pad int
}

func poolDim(in, kernel, stride int, pad PadMode) poolGeometry {
	if pad == PadSame {
		out := (in + stride - 1) / stride
		total := (out-1)*stride + kernel - in
		if total < 0 {
			total = 0
		}
		return poolGeometry{out: out, pad: total / 2}
	}
	return poolGeometry{out: (in-kernel)/stride + 1, pad: 0}
}

func checkPoolArgs(x *Tensor, kernel, stride int) error {
	if x.Rank() != 4 {
		return errors.Wrapf(internal.MalformedShape,
			"pooling expects an NCHW tensor, got rank %d", x.Rank())
	}
	if kernel <= 0 || stride <= 0 {
		return errors.Wrapf(internal.MalformedShape,
			"kernel %d and stride %d must be positive", kernel, stride)
	}
	return nil
}

// MaxPool2D applies max pooling with a square kernel over the two
// trailing dimensions of an NCHW tensor.
func MaxPool2D(x *Tensor, kernel, stride int, pad PadMode) (*Tensor, error) {
	if err := checkPoolArgs(x, kernel, stride); err != nil {
		return nil, err
	}
	n, c, h, w := x.shape[0], x.shape[1], x.shape[2], x.shape[3]
	gh := poolDim(h, kernel, stride, pad)
	gw := poolDim(w, kernel, stride, pad)
	if gh.out <= 0 || gw.out <= 0 {
		return nil, errors.Wrapf(internal.MalformedShape,
			"kernel %d does not fit input %dx%d", kernel, h, w)
	}

	out := empty(x.dtype, []int{n, c, gh.out, gw.out})
	for img := 0; img < n; img++ {
		for ch := 0; ch < c; ch++ {
			base := (img*c + ch) * h * w
			dst := (img*c + ch) * gh.out * gw.out
			for oy := 0; oy < gh.out; oy++ {
				for ox := 0; ox < gw.out; ox++ {
					best := math.Inf(-1)
					for ky := 0; ky < kernel; ky++ {
						y := oy*stride - gh.pad + ky
						if y < 0 || y >= h {
							continue
						}
						for kx := 0; kx < kernel; kx++ {
							xx := ox*stride - gw.pad + kx
							if xx < 0 || xx >= w {
								continue
							}
							if v := x.data[base+y*w+xx]; v > best {
								best = v
							}
						}
					}
					out.data[dst+oy*gw.out+ox] = best
				}
			}
		}
	}
	return out, nil
}

// MaxPool2DGrad propagates the output gradient of MaxPool2D back to
// the input. Each output cell routes its gradient to the first maximum
// inside its window; overlapping windows accumulate.
func MaxPool2DGrad(x, grad *Tensor, kernel, stride int, pad PadMode) (*Tensor, error) {
	if err := checkPoolArgs(x, kernel, stride); err != nil {
		return nil, err
	}
	n, c, h, w := x.shape[0], x.shape[1], x.shape[2], x.shape[3]
	gh := poolDim(h, kernel, stride, pad)
	gw := poolDim(w, kernel, stride, pad)

	want := []int{n, c, gh.out, gw.out}
	if grad.Rank() != 4 || grad.shape[0] != want[0] || grad.shape[1] != want[1] ||
		grad.shape[2] != want[2] || grad.shape[3] != want[3] {
		return nil, errors.Wrapf(internal.MalformedShape,
			"gradient shape %v does not match pooled shape %v", grad.shape, want)
	}

	out := empty(x.dtype, x.shape)
	for img := 0; img < n; img++ {
		for ch := 0; ch < c; ch++ {
			base := (img*c + ch) * h * w
			src := (img*c + ch) * gh.out * gw.out
			for oy := 0; oy < gh.out; oy++ {
				for ox := 0; ox < gw.out; ox++ {
					best := math.Inf(-1)
					argmax := -1
					for ky := 0; ky < kernel; ky++ {
						y := oy*stride - gh.pad + ky
						if y < 0 || y >= h {
							continue
						}
						for kx := 0; kx < kernel; kx++ {
							xx := ox*stride - gw.pad + kx
							if xx < 0 || xx >= w {
								continue
							}
							if v := x.data[base+y*w+xx]; v > best {
								best = v
								argmax = base + y*w + xx
							}
						}
					}
					if argmax >= 0 {
						out.data[argmax] += grad.data[src+oy*gw.out+ox]
					}
				}
			}
		}
	}
	for i, v := range out.data {
		out.data[i] = out.round(v)
	}
	return out, nil
}
