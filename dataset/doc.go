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

// Package dataset provides index samplers and a small in-memory
// dataset to drive them.
//
// A Sampler turns a row count into a sequence of row indices for one
// epoch. Implementations cover sequential order, uniformly random
// order with and without replacement, sharded order for distributed
// readers, and arbitrary user-defined iteration. Samplers that
// randomize are seeded; equal seeds reproduce equal index sequences.
//
// SliceDataset holds rows of named tensors and replays them through a
// sampler, resetting the sampler between epochs when the dataset is
// repeated.
package dataset
