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
	"sync"
	"sync/atomic"

	"github.com/anythread/graffiti/soc"
)

// Handler receives the messages of one subscription. Both callbacks are
// invoked from a single goroutine in frame arrival order, so implementations
// need no internal synchronization for per-subscription state. Decoding,
// validation and transport failures are delivered to OnError rather than
// terminating the subscription loop, except for a failed read on the
// underlying connection which ends the loop after reporting.
type Handler interface {
	OnMessage(*Payload)
	OnError(error)
}

// Subscription is the cancellation handle of a live push connection.
type Subscription struct {
	closer    func() error
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

// Subscribe opens a push connection on the chunk address of the given
// resource and feeds inbound frames to handler. The context only bounds the
// connection handshake; the subscription itself lives until Close.
func (c *Channel) Subscribe(ctx context.Context, handler Handler, resourceID []byte) (*Subscription, error) {
	rid := normalizeResourceID(resourceID)
	owner := c.consensualSigner(rid).Address()
	addr, err := soc.Address(rid, owner)
	if err != nil {
		return nil, err
	}
	conn, err := c.client.SubscribeChunk(ctx, addr)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		closer: conn.Close,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(sub.done)
		for {
			// gorilla normalizes text and binary frames to bytes
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !sub.closed.Load() {
					handler.OnError(err)
				}
				return
			}
			if len(data) == 0 {
				continue
			}
			if err := c.validator.Validate(data); err != nil {
				handler.OnError(soc.NewErrorf(soc.ErrInvalidPayload, "inbound frame rejected: %v", err))
				continue
			}
			handler.OnMessage(&Payload{data: data})
		}
	}()
	c.logger.Debug("subscription started", "address", addr)
	return sub, nil
}

// Close tears the connection down. It is idempotent: any number of calls
// produce exactly one disconnect.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.closer()
	})
	return err
}

// Done is closed when the subscription loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
