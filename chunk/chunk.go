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

// Package chunk defines the address type and content addressing primitives
// shared by the rest of the library. A chunk is at most DefaultSize bytes of
// content prefixed on the wire by an 8 byte little-endian span holding the
// content length. The content address of a chunk is the Keccak256 hash of the
// span and the binary merkle tree root of the (zero padded) content.
package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"

	"github.com/anythread/graffiti/bmt"
)

const (
	// AddressLength is the length of a chunk address in bytes.
	AddressLength = 32

	// SpanSize is the size of the little-endian length prefix carried in
	// front of chunk content on the wire.
	SpanSize = 8

	// DefaultSize is the maximum chunk content length in bytes.
	DefaultSize = 4096

	// SegmentCount is the number of hash-sized segments in the BMT base.
	SegmentCount = DefaultSize / AddressLength

	// MinPayloadSize and MaxPayloadSize delimit the payload window accepted
	// when reading single-owner chunk content back from the network.
	MinPayloadSize = 1
	MaxPayloadSize = DefaultSize
)

// Address is a chunk address, used both as a network location and as a
// topic/owner key. Immutable once computed.
type Address []byte

// ZeroAddr is the address with all bits zeroed.
var ZeroAddr = Address(make([]byte, AddressLength))

// Hex returns the address as an unprefixed lowercase hex string, the
// canonical encoding at the node API boundary.
func (a Address) Hex() string {
	return fmt.Sprintf("%064x", []byte(a[:]))
}

func (a Address) String() string {
	return a.Hex()
}

// Equal reports whether the two addresses are byte equal.
func (a Address) Equal(b Address) bool {
	return bytes.Equal(a, b)
}

// MarshalJSON encodes the address as a 0x-prefixed hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hexutil.Encode(a) + `"`), nil
}

// UnmarshalJSON decodes a 0x-prefixed hex string into the address.
func (a *Address) UnmarshalJSON(value []byte) error {
	s, err := hexutil.Decode(string(bytes.Trim(value, `"`)))
	if err != nil {
		return err
	}
	*a = Address(s)
	return nil
}

// ParseHex decodes an unprefixed hex address and checks its length.
func ParseHex(s string) (Address, error) {
	b, err := hexutil.Decode("0x" + s)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %v", s, err)
	}
	if len(b) != AddressLength {
		return nil, fmt.Errorf("invalid address length %d, expected %d", len(b), AddressLength)
	}
	return Address(b), nil
}

// NewSpan encodes a content length as the 8 byte little-endian wire span.
func NewSpan(length uint64) []byte {
	span := make([]byte, SpanSize)
	binary.LittleEndian.PutUint64(span, length)
	return span
}

// Span decodes the content length from span bytes.
func Span(span []byte) uint64 {
	return binary.LittleEndian.Uint64(span)
}

// ContentAddress computes the span prefix and content address of data. The
// address is Keccak256(span || BMT root of data), so it commits both to the
// content and its length.
func ContentAddress(data []byte) (span []byte, addr Address, err error) {
	if len(data) > DefaultSize {
		return nil, nil, fmt.Errorf("chunk content of length %d exceeds maximum %d", len(data), DefaultSize)
	}
	span = NewSpan(uint64(len(data)))
	rh := bmt.NewRefHasher(newBaseHasher, SegmentCount)
	root := rh.Hash(data)

	h := newBaseHasher()
	h.Write(span)
	h.Write(root)
	return span, Address(h.Sum(nil)), nil
}

func newBaseHasher() hash.Hash {
	return sha3.NewLegacyKeccak256()
}
