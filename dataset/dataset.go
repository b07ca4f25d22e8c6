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

package dataset

import (
	"github.com/pkg/errors"

	"github.com/probdist-project/gopd/internal"
	"github.com/probdist-project/gopd/tensor"
)

// Row is one dataset record: named tensor columns.
type Row map[string]*tensor.Tensor

// SliceDataset is an in-memory dataset of rows replayed through a
// sampler. It exists to give samplers something to iterate; it is not
// a data pipeline.
type SliceDataset struct {
	rows       []Row
	sampler    Sampler
	numSamples int
	repeats    int
}

// DatasetOption configures a SliceDataset.
type DatasetOption func(*SliceDataset)

// WithSampler sets the sampler ordering the rows. The default is a
// SequentialSampler.
func WithSampler(s Sampler) DatasetOption {
	return func(d *SliceDataset) { d.sampler = s }
}

// WithNumSamples caps the number of rows read per epoch.
func WithNumSamples(n int) DatasetOption {
	return func(d *SliceDataset) { d.numSamples = n }
}

// NewSliceDataset returns a dataset over the given rows.
func NewSliceDataset(rows []Row, opts ...DatasetOption) (*SliceDataset, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(internal.MalformedSampler, "dataset must have rows")
	}
	d := &SliceDataset{rows: rows, repeats: 1}
	for _, opt := range opts {
		opt(d)
	}
	if d.sampler == nil {
		d.sampler = NewSequentialSampler()
	}

	d.sampler.SetNumRows(len(rows))
	d.sampler.SetNumSamples(d.numSamples)
	if err := d.sampler.Initialize(); err != nil {
		return nil, err
	}
	return d, nil
}

// Len returns the number of rows.
func (d *SliceDataset) Len() int {
	return len(d.rows)
}

// Repeat returns a dataset that replays n epochs per iteration,
// resetting the sampler between them.
func (d *SliceDataset) Repeat(n int) *SliceDataset {
	c := *d
	c.repeats = d.repeats * n
	return &c
}

// Indices returns the row indices of a full iteration: the sampler's
// epochs concatenated across repeats, with the reset hook fired
// between epochs.
func (d *SliceDataset) Indices() ([]int64, error) {
	var all []int64
	for epoch := 0; epoch < d.repeats; epoch++ {
		indices, err := d.sampler.GetIndices()
		if err != nil {
			return nil, err
		}
		all = append(all, indices...)
		d.sampler.Reset()
	}
	return all, nil
}

// Iterate calls fn for every row of a full iteration in sampler
// order. Iteration stops at the first error, which is returned.
func (d *SliceDataset) Iterate(fn func(Row) error) error {
	indices, err := d.Indices()
	if err != nil {
		return err
	}
	for _, ix := range indices {
		if ix < 0 || ix >= int64(len(d.rows)) {
			return errors.Wrapf(internal.MalformedSampler,
				"index %d out of range for %d rows", ix, len(d.rows))
		}
		if err := fn(d.rows[ix]); err != nil {
			return err
		}
	}
	return nil
}
