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

// Package graffiti implements a shared publication channel on top of
// single-owner chunks. A channel is scoped by a consensus identifier every
// participant agrees on out of band; within it, resources are addressed by a
// resource id. The signing key of a resource is derived deterministically
// from the consensus topic and the resource id, so every participant derives
// the same owner and hence the same chunk address: unrelated writers publish
// to a shared, pre-computable location without any coordination.
package graffiti

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/websocket"

	"github.com/anythread/graffiti/chunk"
	"github.com/anythread/graffiti/client"
	"github.com/anythread/graffiti/soc"
)

const (
	// DefaultConsensusID scopes channels whose construction does not name an
	// application-level agreement.
	DefaultConsensusID = "graffiti:v1"

	// DefaultResourceID is the well-known sentinel resource shared by all
	// unscoped writers of a topic.
	DefaultResourceID = "any"
)

// Options configures a channel. Zero or missing fields select defaults.
type Options struct {
	// ConsensusID is the human-readable consensus identifier string; its
	// Keccak256 hash is the channel topic. Defaults to DefaultConsensusID.
	ConsensusID string
	// PostageBatchID is the default payment batch reference attached to
	// uploads, as unprefixed hex.
	PostageBatchID string
	// Validator screens written payloads and inbound subscription frames.
	// Defaults to JSONValidator.
	Validator Validator
	// HTTPClient is passed to the transport. Defaults to http.DefaultClient.
	HTTPClient *http.Client
	// Dialer is the websocket dialer used for subscriptions.
	Dialer *websocket.Dialer
	// Logger defaults to a child of the root logger.
	Logger log.Logger
}

// Channel is a handle on one consensus topic of one node gateway. It holds
// no mutable state: the topic is fixed at construction and every call
// derives what it needs, so a Channel is safe for concurrent use.
type Channel struct {
	client    *client.Client
	topic     common.Hash
	batchID   string
	validator Validator
	logger    log.Logger
}

// New builds a channel against the node at endpoint. It fails if endpoint is
// not a well-formed HTTP(S) locator.
func New(endpoint string, opts *Options) (*Channel, error) {
	if opts == nil {
		opts = &Options{}
	}
	consensusID := opts.ConsensusID
	if consensusID == "" {
		consensusID = DefaultConsensusID
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New("module", "graffiti")
	}
	c, err := client.New(endpoint, &client.Options{
		HTTPClient: opts.HTTPClient,
		Dialer:     opts.Dialer,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	validator := opts.Validator
	if validator == nil {
		validator = JSONValidator{}
	}
	return &Channel{
		client:    c,
		topic:     crypto.Keccak256Hash([]byte(consensusID)),
		batchID:   opts.PostageBatchID,
		validator: validator,
		logger:    logger,
	}, nil
}

// Topic returns the channel's consensus topic, the Keccak256 hash of the
// consensus identifier string.
func (c *Channel) Topic() common.Hash {
	return c.topic
}

// normalizeResourceID maps arbitrary resource bytes onto the 32 byte
// identifier space: nil selects the channel's default resource, 32 byte
// inputs pass through verbatim (mining yields these), anything else is
// hashed.
func normalizeResourceID(resourceID []byte) []byte {
	if len(resourceID) == 0 {
		resourceID = []byte(DefaultResourceID)
	}
	if len(resourceID) == soc.IdentifierLength {
		return append([]byte{}, resourceID...)
	}
	return crypto.Keccak256(resourceID)
}

// consensualSigner derives the per-resource signing key from the channel
// topic and the normalized resource id. The derivation is deterministic, so
// every participant of the channel obtains the same owner address for the
// same resource. In the unlikely case the derived seed is not a valid
// secp256k1 scalar it is rehashed until it is.
func (c *Channel) consensualSigner(resourceID []byte) *soc.GenericSigner {
	seed := crypto.Keccak256(c.topic.Bytes(), resourceID)
	for {
		key, err := crypto.ToECDSA(seed)
		if err == nil {
			return soc.NewGenericSigner(key)
		}
		seed = crypto.Keccak256(seed)
	}
}

// WriteOptions override per-call what Options set channel-wide.
type WriteOptions struct {
	// ResourceID scopes the write to a sub-topic. Defaults to the channel's
	// default resource.
	ResourceID []byte
	// PostageBatchID overrides the channel's payment batch for this write.
	PostageBatchID string
}

// Write validates the payload, builds and signs a single-owner chunk under
// the derived per-resource owner and uploads it. The returned chunk exposes
// the network address the payload is now readable at.
func (c *Channel) Write(ctx context.Context, payload []byte, opts *WriteOptions) (*soc.SOC, error) {
	if opts == nil {
		opts = &WriteOptions{}
	}
	if err := c.validator.Validate(payload); err != nil {
		return nil, soc.NewErrorf(soc.ErrInvalidPayload, "payload rejected: %v", err)
	}

	resourceID := normalizeResourceID(opts.ResourceID)
	signer := c.consensualSigner(resourceID)

	s, err := soc.New(resourceID, payload)
	if err != nil {
		return nil, err
	}
	if err := s.Sign(signer); err != nil {
		return nil, err
	}

	batchID := opts.PostageBatchID
	if batchID == "" {
		batchID = c.batchID
	}
	addr, err := c.client.UploadSOC(
		ctx,
		hexAddress(signer.Address()),
		chunk.Address(resourceID).Hex(),
		s.Signature().Hex(),
		s.SpanAndPayload(),
		batchID,
	)
	if err != nil {
		return nil, err
	}
	if !addr.Equal(s.Addr()) {
		c.logger.Warn("node reported unexpected chunk reference", "expected", s.Addr(), "got", addr)
	}
	c.logger.Debug("payload written", "topic", c.topic.Hex(), "resource", chunk.Address(resourceID).Hex(), "address", s.Addr())
	return s, nil
}

// Read derives the resource's chunk address, downloads the chunk from the
// node and returns its verified payload. A payload outside the accepted size
// window or a chunk failing signature verification is an error.
func (c *Channel) Read(ctx context.Context, resourceID []byte) (*Payload, error) {
	rid := normalizeResourceID(resourceID)
	owner := c.consensualSigner(rid).Address()

	addr, err := soc.Address(rid, owner)
	if err != nil {
		return nil, err
	}
	data, err := c.client.DownloadChunk(ctx, addr)
	if err != nil {
		return nil, err
	}
	s, err := soc.Parse(data, rid, owner)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("payload read", "topic", c.topic.Hex(), "resource", chunk.Address(rid).Hex(), "address", addr)
	return &Payload{data: s.Payload()}, nil
}

// Lookup returns the network address the given resource publishes to,
// without touching the node.
func (c *Channel) Lookup(resourceID []byte) (chunk.Address, error) {
	rid := normalizeResourceID(resourceID)
	return soc.Address(rid, c.consensualSigner(rid).Address())
}

func hexAddress(a common.Address) string {
	return common.Bytes2Hex(a.Bytes())
}
