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
	"encoding/json"

	"github.com/anythread/graffiti/soc"
)

// Validator screens payloads, both before they are written to the channel
// and on every inbound subscription frame. Implementations must be safe for
// concurrent use: one validator instance serves all subscriptions of a
// channel.
type Validator interface {
	Validate(payload []byte) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func([]byte) error

// Validate calls f(payload).
func (f ValidatorFunc) Validate(payload []byte) error {
	return f(payload)
}

// JSONValidator accepts any well-formed JSON document. It is the channel's
// default validator.
type JSONValidator struct{}

func (JSONValidator) Validate(payload []byte) error {
	if !json.Valid(payload) {
		return soc.NewError(soc.ErrInvalidPayload, "payload is not well-formed JSON")
	}
	return nil
}

// RecordValidator accepts only JSON objects, the record shape exchanged by
// applications that store structured messages on a channel.
type RecordValidator struct{}

func (RecordValidator) Validate(payload []byte) error {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(payload, &record); err != nil {
		return soc.NewErrorf(soc.ErrInvalidPayload, "payload is not a record: %v", err)
	}
	return nil
}
