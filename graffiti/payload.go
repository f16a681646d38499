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
	"fmt"
)

// Payload wraps bytes read from a channel with convenience accessors.
// Immutable once returned.
type Payload struct {
	data []byte
}

// Bytes returns the raw payload bytes.
func (p *Payload) Bytes() []byte {
	return p.data
}

// Hex returns the payload as an unprefixed lowercase hex string.
func (p *Payload) Hex() string {
	return fmt.Sprintf("%x", p.data)
}

// JSON unmarshals the payload into v.
func (p *Payload) JSON(v interface{}) error {
	return json.Unmarshal(p.data, v)
}

func (p *Payload) String() string {
	return string(p.data)
}
