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

// Package client wraps interaction with the HTTP and WebSocket API of a
// chunk-storing node: uploading signed single-owner chunks, downloading raw
// chunk bytes by address and opening push subscriptions on an address. All
// addresses, identifiers and signatures cross this boundary as unprefixed
// lowercase hex strings.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/websocket"

	"github.com/anythread/graffiti/chunk"
)

// DefaultGateway is the API endpoint of a node running on localhost.
const DefaultGateway = "http://localhost:1633"

// postageBatchHeader carries the payment batch reference on uploads.
const postageBatchHeader = "Swarm-Postage-Batch-Id"

var (
	// ErrNotFound is returned when the node does not know the requested chunk.
	ErrNotFound = errors.New("chunk not found")

	// ErrInvalidEndpoint is returned when the gateway is not a well-formed
	// HTTP(S) locator.
	ErrInvalidEndpoint = errors.New("invalid gateway endpoint")
)

// StatusError reports a non-success HTTP status from the node, carrying the
// status so callers can tell payment failures from server errors.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status: %s", e.Status)
}

// Options configures a Client. The zero value selects sane defaults.
type Options struct {
	// HTTPClient is used for all request/response calls. Defaults to
	// http.DefaultClient; set a client with a timeout to bound uploads and
	// downloads, no deadline is imposed here.
	HTTPClient *http.Client
	// Dialer is used for push subscriptions. Defaults to
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer
	// Logger for transport-level tracing. Defaults to a child of the root
	// logger.
	Logger log.Logger
}

// Client talks to a single node gateway.
type Client struct {
	gateway    *url.URL
	httpClient *http.Client
	dialer     *websocket.Dialer
	logger     log.Logger
}

// New validates the gateway locator and returns a client for it.
func New(gateway string, opts *Options) (*Client, error) {
	u, err := url.Parse(gateway)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEndpoint, gateway)
	}
	if opts == nil {
		opts = &Options{}
	}
	c := &Client{
		gateway:    u,
		httpClient: opts.HTTPClient,
		dialer:     opts.Dialer,
		logger:     opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.dialer == nil {
		c.dialer = websocket.DefaultDialer
	}
	if c.logger == nil {
		c.logger = log.New("module", "graffiti/client")
	}
	return c, nil
}

// Gateway returns the gateway locator the client was constructed with.
func (c *Client) Gateway() string {
	return c.gateway.String()
}

// UploadSOC uploads a signed single-owner chunk. The body is the span
// prefixed payload; owner, identifier and signature travel as hex in the
// request path and query. Returns the chunk's network address as reported by
// the node.
func (c *Client) UploadSOC(ctx context.Context, ownerHex, idHex, sigHex string, body []byte, batchID string) (chunk.Address, error) {
	u := *c.gateway
	u.Path = fmt.Sprintf("/soc/%s/%s", ownerHex, idHex)
	u.RawQuery = url.Values{"sig": {sigHex}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if batchID != "" {
		req.Header.Set(postageBatchHeader, batchID)
	}
	req.ContentLength = int64(len(body))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return nil, &StatusError{Code: res.StatusCode, Status: res.Status}
	}

	var ref struct {
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(res.Body).Decode(&ref); err != nil {
		return nil, fmt.Errorf("cannot decode upload response: %v", err)
	}
	addr, err := chunk.ParseHex(ref.Reference)
	if err != nil {
		return nil, fmt.Errorf("cannot decode upload reference: %v", err)
	}
	c.logger.Trace("soc uploaded", "owner", ownerHex, "id", idHex, "reference", addr)
	return addr, nil
}

// DownloadChunk fetches the full wire bytes of the chunk at addr.
func (c *Client) DownloadChunk(ctx context.Context, addr chunk.Address) ([]byte, error) {
	u := *c.gateway
	u.Path = "/chunks/" + addr.Hex()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	switch {
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case res.StatusCode/100 != 2:
		return nil, &StatusError{Code: res.StatusCode, Status: res.Status}
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Trace("chunk downloaded", "address", addr, "size", len(data))
	return data, nil
}

// SubscribeChunk opens the push connection delivering chunk payloads
// published to addr. The caller owns the returned connection and must close
// it.
func (c *Client) SubscribeChunk(ctx context.Context, addr chunk.Address) (*websocket.Conn, error) {
	u := *c.gateway
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/chunks/subscribe/" + addr.Hex()

	conn, res, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if res != nil {
			return nil, &StatusError{Code: res.StatusCode, Status: res.Status}
		}
		return nil, err
	}
	c.logger.Trace("subscription opened", "address", addr)
	return conn, nil
}
