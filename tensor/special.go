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
	"gonum.org/v1/gonum/mathext"

	"github.com/probdist-project/gopd/internal"
)

// Lgamma returns the elementwise natural logarithm of the absolute
// value of the gamma function.
func (t *Tensor) Lgamma() *Tensor {
	return t.apply(func(v float64) float64 {
		lg, _ := math.Lgamma(v)
		return lg
	}, nil)
}

// Digamma returns the elementwise digamma function, the derivative of
// Lgamma.
func (t *Tensor) Digamma() *Tensor {
	return t.apply(mathext.Digamma, nil)
}

// Igamma returns the elementwise regularized lower incomplete gamma
// function P(a, x), broadcasting the operands. P(a, x) is the CDF of a
// Gamma(a, 1) random variable evaluated at x. The function is only
// defined for a > 0; non-positive a is rejected.
func Igamma(a, x *Tensor) (*Tensor, error) {
	if !a.AllPositive() {
		return nil, errors.Wrap(internal.MalformedParameter,
			"incomplete gamma requires a strictly positive first operand")
	}
	return a.binary(x, func(av, xv float64) float64 {
		if xv < 0 {
			return 0
		}
		return mathext.GammaIncReg(av, xv)
	})
}
