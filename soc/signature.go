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

package soc

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the length of a recoverable secp256k1 signature.
const SignatureLength = 65

// Signature is the 65 byte recoverable signature over the chunk digest.
type Signature [SignatureLength]byte

// Hex returns the signature as an unprefixed lowercase hex string.
func (s Signature) Hex() string {
	return fmt.Sprintf("%x", s[:])
}

// Signer signs chunk digests and discloses the owner address the signatures
// recover to. Implementations are free to block: a remote signing device is
// as valid an implementation as a local in-memory key, so callers must treat
// every Sign call as potentially slow.
type Signer interface {
	// Address returns the 20 byte owner address derived from the signing key.
	// It is fixed at construction.
	Address() common.Address
	// Sign signs the given digest.
	Sign(common.Hash) (Signature, error)
}

// GenericSigner signs with an in-memory secp256k1 private key. Signatures
// are deterministic: identical key and digest always produce identical
// signatures.
type GenericSigner struct {
	PrivKey *ecdsa.PrivateKey
	address common.Address
}

// NewGenericSigner builds a signer that will sign everything with the
// private key passed in the constructor.
func NewGenericSigner(privKey *ecdsa.PrivateKey) *GenericSigner {
	return &GenericSigner{
		PrivKey: privKey,
		address: crypto.PubkeyToAddress(privKey.PublicKey),
	}
}

// Sign signs the supplied digest with the signer's private key.
func (s *GenericSigner) Sign(data common.Hash) (signature Signature, err error) {
	signaturebytes, err := crypto.Sign(data.Bytes(), s.PrivKey)
	if err != nil {
		return
	}
	copy(signature[:], signaturebytes)
	return
}

// Address returns the public address of this signer.
func (s *GenericSigner) Address() common.Address {
	return s.address
}

// getOwner extracts the address of the digest's signer, which also checks
// that the signature is well formed.
func getOwner(digest common.Hash, signature Signature) (common.Address, error) {
	pub, err := crypto.SigToPub(digest.Bytes(), signature[:])
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
