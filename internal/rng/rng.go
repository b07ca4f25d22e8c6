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

// Package rng provides a deterministic pseudo-random source seeded by
// a 64-bit key. Two sources created with the same seed produce the same
// stream, which is what makes seeded sampling and dataset shuffling
// reproducible.
package rng

import (
	crand "crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/salsa20"
	"golang.org/x/exp/rand"
)

// blockLen is the number of keystream bytes expanded per nonce.
const blockLen = 512

// Source generates uniform random values by expanding a salsa20
// keystream derived from the seed. It satisfies rand.Source from
// golang.org/x/exp/rand and can therefore back both rand.Rand and
// the gonum distribution samplers.
type Source struct {
	key   [32]byte
	buf   [blockLen]byte
	pos   int
	nonce uint64
}

var _ rand.Source = (*Source)(nil)

// New returns a Source seeded with the given value.
func New(seed uint64) *Source {
	s := new(Source)
	s.Seed(seed)
	return s
}

// Seed resets the source to the beginning of the stream determined
// by the given value.
func (s *Source) Seed(seed uint64) {
	s.key = [32]byte{}
	binary.LittleEndian.PutUint64(s.key[:8], seed)
	binary.LittleEndian.PutUint64(s.key[8:16], ^seed)
	s.nonce = 0
	s.pos = blockLen
}

// Uint64 returns the next 64 bits of the keystream.
func (s *Source) Uint64() uint64 {
	if s.pos == blockLen {
		s.refill()
	}
	v := binary.LittleEndian.Uint64(s.buf[s.pos : s.pos+8])
	s.pos += 8
	return v
}

func (s *Source) refill() {
	var nonce [8]byte
	binary.LittleEndian.PutUint64(nonce[:], s.nonce)
	s.nonce++

	in := make([]byte, blockLen)
	salsa20.XORKeyStream(s.buf[:], in, nonce[:], &s.key)
	s.pos = 0
}

// RandomSeed draws a fresh seed from the operating system's entropy
// source. It is used when the caller does not pin a seed explicitly.
func RandomSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform is broken; there is
		// no reasonable recovery for a seed request.
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}
