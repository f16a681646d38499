// Copyright 2024 The graffiti Authors
// This file is part of the graffiti library.
//
// The graffiti library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The graffiti library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the graffiti library. If not, see <http://www.gnu.org/licenses/>.

package graffiti

import (
	"context"

	"github.com/anythread/graffiti/chunk"
	"github.com/anythread/graffiti/pot"
	"github.com/anythread/graffiti/soc"
)

// MaxMineDepth is the deepest neighbourhood the miner accepts. Expected
// search cost doubles per bit of depth.
const MaxMineDepth = 32

// ctxPollInterval is the number of candidates tried between cancellation
// checks.
const ctxPollInterval = 1024

// MineResult is a resource id whose derived chunk address falls in the
// requested neighbourhood, together with that address.
type MineResult struct {
	ResourceID []byte
	Address    chunk.Address
}

// candidateIterator yields the infinite sequence of candidate resource ids,
// restartable by constructing a fresh iterator. The sequence starts at the
// all-zero id and increments it as a 256-bit counter with byte 0 least
// significant; proximity comparison stays MSB-first. The convention is
// load-bearing: every participant must mine the sequence in the same order
// for the minimality property (no smaller id satisfies the predicate) to
// mean the same thing everywhere.
type candidateIterator struct {
	current [soc.IdentifierLength]byte
	started bool
}

// next returns the following candidate. The returned slice is only valid
// until the next call.
func (it *candidateIterator) next() []byte {
	if !it.started {
		it.started = true
		return it.current[:]
	}
	for i := range it.current {
		it.current[i]++
		if it.current[i] != 0 {
			break
		}
	}
	return it.current[:]
}

// Mine searches the resource id space for an id whose derived chunk address
// lies within the neighbourhood of depth bits around target, so that
// payloads published under it gravitate to the nodes storing that
// neighbourhood.
//
// This is a proof-of-work style search: expected iterations are 2^depth and
// there is no termination guarantee beyond that expectation. The loop is
// pure CPU-bound iteration with no suspension point; it runs on the calling
// goroutine and honours cancellation only by polling ctx between batches of
// candidates. Callers wanting a deadline must arrange it on the context.
func (c *Channel) Mine(ctx context.Context, target chunk.Address, depth int) (*MineResult, error) {
	if len(target) != chunk.AddressLength {
		return nil, soc.NewErrorf(soc.ErrInvalidValue, "target length is %d, expected %d", len(target), chunk.AddressLength)
	}
	if depth < 0 || depth > MaxMineDepth {
		return nil, soc.NewErrorf(soc.ErrInvalidValue, "depth %d outside [0, %d]", depth, MaxMineDepth)
	}

	it := &candidateIterator{}
	for i := 0; ; i++ {
		if i%ctxPollInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		candidate := it.next()
		owner := c.consensualSigner(candidate).Address()
		addr, err := soc.Address(candidate, owner)
		if err != nil {
			return nil, err
		}
		if pot.InNeighbourhood(addr, target, depth) {
			c.logger.Debug("resource id mined", "iterations", i+1, "depth", depth, "address", addr)
			return &MineResult{
				ResourceID: append([]byte{}, candidate...),
				Address:    addr,
			}, nil
		}
	}
}
