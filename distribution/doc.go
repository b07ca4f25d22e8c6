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

// Package distribution implements parameterized probability
// distributions over tensors.
//
// A distribution is constructed with its parameters as tensors, or
// with nil parameters that must then be supplied on every call.
// Statistical quantities (mean, variance, entropy, log-probability,
// CDF, KL divergence, ...) are evaluated elementwise over the
// broadcast of the parameters, and every method accepts optional
// override parameters for evaluating a differently parameterized
// member of the same family.
//
// Sampling is reproducible: distributions constructed with the same
// seed draw the same variates.
package distribution
