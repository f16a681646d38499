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

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anythread/graffiti/chunk"
)

func TestNewRejectsBadEndpoints(t *testing.T) {
	for _, gateway := range []string{
		"",
		"not a url",
		"ftp://example.com",
		"http://",
		"localhost:1633",
	} {
		_, err := New(gateway, nil)
		assert.ErrorIs(t, err, ErrInvalidEndpoint, "gateway %q", gateway)
	}

	_, err := New(DefaultGateway, nil)
	assert.NoError(t, err)
}

func TestUploadSOC(t *testing.T) {
	const (
		ownerHex = "8d3766440f0d7b949a5e32995d09619a7f86e632"
		idHex    = "0000000000000000000000000000000000000000000000000000000000000017"
		sigHex   = "1b2c3d"
		batchID  = "deadbeef"
	)
	refHex := strings.Repeat("ab", chunk.AddressLength)
	body := []byte("span and payload")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, fmt.Sprintf("/soc/%s/%s", ownerHex, idHex), r.URL.Path)
		require.Equal(t, sigHex, r.URL.Query().Get("sig"))
		require.Equal(t, batchID, r.Header.Get("Swarm-Postage-Batch-Id"))
		got, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, body, got)
		fmt.Fprintf(w, `{"reference":%q}`, refHex)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	addr, err := c.UploadSOC(context.Background(), ownerHex, idHex, sigHex, body, batchID)
	require.NoError(t, err)
	assert.Equal(t, refHex, addr.Hex())
}

func TestUploadSOCStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "batch not usable", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.UploadSOC(context.Background(), "00", "00", "00", nil, "")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusPaymentRequired, statusErr.Code)
}

func TestDownloadChunk(t *testing.T) {
	content := []byte("raw chunk bytes")
	_, addr, err := chunk.ContentAddress(content)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chunks/"+addr.Hex() {
			w.Write(content)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	got, err := c.DownloadChunk(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	_, missing, err := chunk.ContentAddress([]byte("something else"))
	require.NoError(t, err)
	_, err = c.DownloadChunk(context.Background(), missing)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDownloadChunkStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	_, err = c.DownloadChunk(context.Background(), chunk.ZeroAddr)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestSubscribeChunk(t *testing.T) {
	var upgrader websocket.Upgrader
	frame := []byte("pushed payload")

	_, addr, err := chunk.ContentAddress([]byte("topic"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chunks/subscribe/"+addr.Hex(), r.URL.Path)
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame))
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	conn, err := c.SubscribeChunk(context.Background(), addr)
	require.NoError(t, err)
	defer conn.Close()

	_, got, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, frame, got)
}
