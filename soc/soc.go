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

// Package soc implements the single-owner chunk: a chunk whose network
// address is derived not from its content but from an arbitrary 32 byte
// identifier and the address of its owner, and whose validity rests on the
// owner's signature over the identifier and the content address.
//
// Wire layout:
//
//	signature (65) || identifier (32) || owner (20) || span (8) || payload
//
// The chunk address is Keccak256(identifier || owner), so anyone who knows
// the identifier and the owner can compute where the chunk lives before it
// is ever written. The signed digest is Keccak256(identifier || content
// address of the span prefixed payload), binding the payload to the
// identifier without making the address depend on the payload.
package soc

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/anythread/graffiti/chunk"
)

// IdentifierLength is the length of the arbitrary identifier that, together
// with the owner address, determines the chunk address.
const IdentifierLength = 32

// Wire layout offsets.
const (
	idOffset      = SignatureLength
	ownerOffset   = idOffset + IdentifierLength
	spanOffset    = ownerOffset + common.AddressLength
	payloadOffset = spanOffset + chunk.SpanSize
)

// SOC is a single-owner chunk. It is assembled at write time or parsed back
// from wire bytes at read time, and is immutable after Sign or Parse.
type SOC struct {
	id        []byte
	owner     common.Address
	signature *Signature
	payload   []byte
	addr      chunk.Address // cached chunk address, set by Sign and Parse
}

// Address computes the network address of the single-owner chunk determined
// by the identifier and owner pair.
func Address(id []byte, owner common.Address) (chunk.Address, error) {
	if len(id) != IdentifierLength {
		return nil, NewErrorf(ErrInvalidValue, "identifier length is %d, expected %d", len(id), IdentifierLength)
	}
	return chunk.Address(crypto.Keccak256(id, owner.Bytes())), nil
}

// New creates an unsigned single-owner chunk for the given identifier and
// payload. Call Sign before serializing or uploading it.
func New(id, payload []byte) (*SOC, error) {
	if len(id) != IdentifierLength {
		return nil, NewErrorf(ErrInvalidValue, "identifier length is %d, expected %d", len(id), IdentifierLength)
	}
	if len(payload) < chunk.MinPayloadSize || len(payload) > chunk.MaxPayloadSize {
		return nil, NewErrorf(ErrDataOverflow, "payload length %d outside window [%d, %d]", len(payload), chunk.MinPayloadSize, chunk.MaxPayloadSize)
	}
	return &SOC{
		id:      append([]byte{}, id...),
		payload: append([]byte{}, payload...),
	}, nil
}

// Identifier returns the chunk's 32 byte identifier.
func (s *SOC) Identifier() []byte {
	return s.id
}

// Owner returns the owner address the chunk claims.
func (s *SOC) Owner() common.Address {
	return s.owner
}

// Signature returns the chunk's signature, or nil if the chunk is unsigned.
func (s *SOC) Signature() *Signature {
	return s.signature
}

// Payload returns the chunk's raw payload without the span prefix.
func (s *SOC) Payload() []byte {
	return s.payload
}

// Addr returns the chunk's network address. It is only set after Sign or
// Parse.
func (s *SOC) Addr() chunk.Address {
	return s.addr
}

// digest computes the hash the owner signs: Keccak256 of the identifier and
// the content address of the span prefixed payload.
func (s *SOC) digest() (common.Hash, error) {
	_, contentAddr, err := chunk.ContentAddress(s.payload)
	if err != nil {
		return common.Hash{}, NewErrorf(ErrDataOverflow, "cannot compute content address: %v", err)
	}
	return crypto.Keccak256Hash(s.id, contentAddr), nil
}

// Sign obtains the owner signature over the chunk digest and freezes the
// chunk. The owner recovered from the produced signature is cross-checked
// against the signer's declared address before it is accepted.
func (s *SOC) Sign(signer Signer) error {
	digest, err := s.digest()
	if err != nil {
		return err
	}

	signature, err := signer.Sign(digest)
	if err != nil {
		return err
	}

	// Although the Signer interface discloses the owner address, recover it
	// from the signature to see if they match.
	owner, err := getOwner(digest, signature)
	if err != nil {
		return NewError(ErrInvalidSignature, "error verifying signature")
	}
	if owner != signer.Address() {
		return NewError(ErrInvalidSignature, "signer address does not match recovered owner")
	}

	s.signature = &signature
	s.owner = owner
	s.addr, err = Address(s.id, s.owner)
	return err
}

// Verify checks that the signature is valid and was produced by the chunk's
// claimed owner.
func (s *SOC) Verify() error {
	if s.signature == nil {
		return NewError(ErrInvalidSignature, "missing signature field")
	}
	digest, err := s.digest()
	if err != nil {
		return err
	}
	owner, err := getOwner(digest, *s.signature)
	if err != nil {
		return NewError(ErrInvalidSignature, "error verifying signature")
	}
	if owner != s.owner {
		return NewError(ErrInvalidSignature, "signature does not recover to the claimed owner")
	}
	return nil
}

// Serialize returns the chunk's wire bytes. The chunk must be signed.
func (s *SOC) Serialize() ([]byte, error) {
	if s.signature == nil {
		return nil, NewError(ErrInvalidSignature, "cannot serialize an unsigned chunk, call Sign first")
	}
	span := chunk.NewSpan(uint64(len(s.payload)))
	data := make([]byte, 0, payloadOffset+len(s.payload))
	data = append(data, s.signature[:]...)
	data = append(data, s.id...)
	data = append(data, s.owner.Bytes()...)
	data = append(data, span...)
	data = append(data, s.payload...)
	return data, nil
}

// SpanAndPayload returns the span prefixed payload, the request body expected
// by the node's single-owner chunk upload endpoint.
func (s *SOC) SpanAndPayload() []byte {
	span := chunk.NewSpan(uint64(len(s.payload)))
	return append(span, s.payload...)
}

// Parse reconstructs a single-owner chunk from wire bytes and verifies it
// against the expected identifier and owner. Structural violations return
// ErrMalformedChunk, payload window violations ErrDataOverflow and
// cryptographic failures ErrInvalidSignature.
func Parse(data []byte, id []byte, owner common.Address) (*SOC, error) {
	if len(id) != IdentifierLength {
		return nil, NewErrorf(ErrInvalidValue, "identifier length is %d, expected %d", len(id), IdentifierLength)
	}
	if len(data) < payloadOffset {
		return nil, NewErrorf(ErrMalformedChunk, "chunk length %d shorter than the fixed fields %d", len(data), payloadOffset)
	}

	payload := data[payloadOffset:]
	if got := chunk.Span(data[spanOffset:payloadOffset]); got != uint64(len(payload)) {
		return nil, NewErrorf(ErrMalformedChunk, "span %d does not match payload length %d", got, len(payload))
	}
	if len(payload) < chunk.MinPayloadSize || len(payload) > chunk.MaxPayloadSize {
		return nil, NewErrorf(ErrDataOverflow, "payload length %d outside window [%d, %d]", len(payload), chunk.MinPayloadSize, chunk.MaxPayloadSize)
	}

	if !bytes.Equal(data[idOffset:ownerOffset], id) {
		return nil, NewError(ErrMalformedChunk, "chunk identifier does not match the expected identifier")
	}
	if !bytes.Equal(data[ownerOffset:spanOffset], owner.Bytes()) {
		return nil, NewError(ErrMalformedChunk, "chunk owner does not match the expected owner")
	}

	var signature Signature
	copy(signature[:], data[:SignatureLength])

	s := &SOC{
		id:        append([]byte{}, id...),
		owner:     owner,
		signature: &signature,
		payload:   append([]byte{}, payload...),
	}
	if err := s.Verify(); err != nil {
		return nil, err
	}
	s.addr, _ = Address(s.id, s.owner)
	return s, nil
}
