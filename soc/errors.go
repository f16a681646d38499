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
	"errors"
	"fmt"
)

const (
	ErrInvalidValue     = iota // malformed argument (wrong length identifier, bad depth)
	ErrInvalidPayload          // payload rejected by the configured validator
	ErrInvalidSignature        // signature does not verify against the claimed owner
	ErrMalformedChunk          // wire bytes violate length or layout invariants
	ErrDataOverflow            // payload outside the accepted size window
	ErrIO                      // transport collaborator failure
	ErrNotFound                // chunk is not known to the node
	errCnt
)

// Error is a the typed error carried by this package and the packages built
// on top of it. The code classifies the failure, the message describes it.
type Error struct {
	code int
	err  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.err
}

// Code returns the error's classification code.
func (e *Error) Code() int {
	return e.code
}

// NewError creates a new Error struct with the given code and message.
func NewError(code int, s string) error {
	if code < 0 || code >= errCnt {
		panic("no such error code")
	}
	return &Error{
		code: code,
		err:  s,
	}
}

// NewErrorf is a convenience version of NewError with formatted messages.
func NewErrorf(code int, format string, args ...interface{}) error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// IsCode reports whether err (or any error it wraps) is an Error with the
// given code.
func IsCode(err error, code int) bool {
	var e *Error
	return errors.As(err, &e) && e.code == code
}
