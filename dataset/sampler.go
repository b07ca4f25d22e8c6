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
	"golang.org/x/exp/rand"

	"github.com/probdist-project/gopd/internal"
	"github.com/probdist-project/gopd/internal/rng"
)

// Sampler produces the row indices of one epoch.
//
// The lifecycle is: SetNumRows and SetNumSamples configure the
// sampler, Initialize validates the configuration and prepares
// internal state, GetIndices returns the indices of the current
// epoch, and Reset advances the sampler to the next epoch.
type Sampler interface {
	// SetNumRows tells the sampler how many rows the dataset has.
	SetNumRows(n int)
	// SetNumSamples caps the number of indices per epoch; zero means
	// all rows.
	SetNumSamples(n int)
	// Initialize validates the configuration. It must be called after
	// the setters and before GetIndices.
	Initialize() error
	// GetIndices returns the indices of the current epoch.
	GetIndices() ([]int64, error)
	// Reset advances to the next epoch.
	Reset()
}

// samplerBase carries the row/sample configuration common to all
// samplers.
type samplerBase struct {
	numRows     int
	numSamples  int
	initialized bool
}

func (s *samplerBase) SetNumRows(n int)    { s.numRows = n }
func (s *samplerBase) SetNumSamples(n int) { s.numSamples = n }

func (s *samplerBase) init() error {
	if s.numRows <= 0 {
		return errors.Wrap(internal.MalformedSampler, "number of rows must be positive")
	}
	if s.numSamples < 0 {
		return errors.Wrap(internal.MalformedSampler, "number of samples must not be negative")
	}
	s.initialized = true
	return nil
}

// epochSize is the number of indices one epoch yields.
func (s *samplerBase) epochSize() int {
	if s.numSamples > 0 && s.numSamples < s.numRows {
		return s.numSamples
	}
	return s.numRows
}

func (s *samplerBase) checkInitialized() error {
	if !s.initialized {
		return errors.Wrap(internal.MalformedSampler, "sampler is not initialized")
	}
	return nil
}

// SequentialSampler yields indices in their natural order.
type SequentialSampler struct {
	samplerBase
}

// NewSequentialSampler returns a sampler that yields 0, 1, 2, ...
func NewSequentialSampler() *SequentialSampler {
	return &SequentialSampler{}
}

func (s *SequentialSampler) Initialize() error {
	return s.init()
}

func (s *SequentialSampler) GetIndices() ([]int64, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	indices := make([]int64, s.epochSize())
	for i := range indices {
		indices[i] = int64(i)
	}
	return indices, nil
}

// Reset is a no-op; sequential epochs are identical.
func (s *SequentialSampler) Reset() {}

// SamplerOption configures a randomized sampler.
type SamplerOption func(*randomState)

// WithSeed pins the shuffle seed. Without it a fresh seed is drawn
// from the system entropy source.
func WithSeed(seed uint64) SamplerOption {
	return func(r *randomState) {
		r.seed = seed
		r.seeded = true
	}
}

// randomState is the seeded random stream shared by the randomized
// samplers. The stream survives Reset so that consecutive epochs
// draw different permutations while remaining reproducible from the
// seed.
type randomState struct {
	seed   uint64
	seeded bool
	rnd    *rand.Rand
}

func (r *randomState) init() {
	if !r.seeded {
		r.seed = rng.RandomSeed()
		r.seeded = true
	}
	r.rnd = rand.New(rng.New(r.seed))
}

// RandomSampler yields indices in uniformly random order, with or
// without replacement. Every epoch reshuffles.
type RandomSampler struct {
	samplerBase
	randomState
	replacement bool
	epoch       []int64
}

// NewRandomSampler returns a sampler drawing uniformly random
// indices. With replacement, indices repeat within an epoch; without,
// an epoch is a truncated permutation.
func NewRandomSampler(replacement bool, opts ...SamplerOption) *RandomSampler {
	s := &RandomSampler{replacement: replacement}
	for _, opt := range opts {
		opt(&s.randomState)
	}
	return s
}

func (s *RandomSampler) Initialize() error {
	if err := s.samplerBase.init(); err != nil {
		return err
	}
	s.randomState.init()
	s.epoch = nil
	return nil
}

func (s *RandomSampler) GetIndices() ([]int64, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	if s.epoch == nil {
		s.epoch = s.draw()
	}
	return append([]int64(nil), s.epoch...), nil
}

func (s *RandomSampler) draw() []int64 {
	n := s.epochSize()
	indices := make([]int64, n)
	if s.replacement {
		for i := range indices {
			indices[i] = int64(s.rnd.Intn(s.numRows))
		}
		return indices
	}
	perm := s.rnd.Perm(s.numRows)
	for i := range indices {
		indices[i] = int64(perm[i])
	}
	return indices
}

// Reset discards the current epoch; the next GetIndices draws fresh
// indices from the ongoing stream.
func (s *RandomSampler) Reset() {
	s.epoch = nil
}

// DistributedSampler yields the slice of an epoch that belongs to one
// shard of a distributed read. Every shard sees the same seeded
// permutation and takes every numShards-th index, so the shards
// partition each epoch.
type DistributedSampler struct {
	samplerBase
	randomState
	numShards int
	shardID   int
	shuffle   bool
	epoch     []int64
}

// NewDistributedSampler returns a sampler for the given shard of a
// read distributed over numShards readers.
func NewDistributedSampler(numShards, shardID int, shuffle bool, opts ...SamplerOption) *DistributedSampler {
	s := &DistributedSampler{numShards: numShards, shardID: shardID, shuffle: shuffle}
	for _, opt := range opts {
		opt(&s.randomState)
	}
	return s
}

func (s *DistributedSampler) Initialize() error {
	if s.numShards <= 0 {
		return errors.Wrap(internal.MalformedSampler, "number of shards must be positive")
	}
	if s.shardID < 0 || s.shardID >= s.numShards {
		return errors.Wrapf(internal.MalformedSampler,
			"shard id %d out of range for %d shards", s.shardID, s.numShards)
	}
	if err := s.samplerBase.init(); err != nil {
		return err
	}
	s.randomState.init()
	s.epoch = nil
	return nil
}

func (s *DistributedSampler) GetIndices() ([]int64, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	if s.epoch == nil {
		s.epoch = s.draw()
	}
	return append([]int64(nil), s.epoch...), nil
}

func (s *DistributedSampler) draw() []int64 {
	order := make([]int64, s.numRows)
	for i := range order {
		order[i] = int64(i)
	}
	if s.shuffle {
		s.rnd.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	// Shards round up to equal sizes; short shards wrap around.
	perShard := (s.numRows + s.numShards - 1) / s.numShards
	if s.numSamples > 0 && s.numSamples < perShard {
		perShard = s.numSamples
	}
	indices := make([]int64, perShard)
	for i := range indices {
		indices[i] = order[(i*s.numShards+s.shardID)%s.numRows]
	}
	return indices
}

func (s *DistributedSampler) Reset() {
	s.epoch = nil
}

// FuncSampler adapts a user-defined iteration rule to the Sampler
// interface. The rule receives the epoch counter (starting at zero
// and advanced by Reset), the row count and the epoch size, and
// returns the epoch's indices.
type FuncSampler struct {
	samplerBase
	fn    func(epoch, numRows, numSamples int) []int64
	epoch int
}

// NewFuncSampler returns a sampler backed by the given rule.
func NewFuncSampler(fn func(epoch, numRows, numSamples int) []int64) *FuncSampler {
	return &FuncSampler{fn: fn}
}

func (s *FuncSampler) Initialize() error {
	if s.fn == nil {
		return errors.Wrap(internal.MalformedSampler, "iteration rule must not be nil")
	}
	s.epoch = 0
	return s.init()
}

func (s *FuncSampler) GetIndices() ([]int64, error) {
	if err := s.checkInitialized(); err != nil {
		return nil, err
	}
	indices := s.fn(s.epoch, s.numRows, s.epochSize())
	for _, ix := range indices {
		if ix < 0 || ix >= int64(s.numRows) {
			return nil, errors.Wrapf(internal.MalformedSampler,
				"index %d out of range for %d rows", ix, s.numRows)
		}
	}
	return indices, nil
}

// Reset advances the epoch counter handed to the iteration rule.
func (s *FuncSampler) Reset() {
	s.epoch++
}
