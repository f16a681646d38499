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

package chunk

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
)

func TestSpanRoundtrip(t *testing.T) {
	for _, length := range []uint64{0, 1, 5, 4096} {
		span := NewSpan(length)
		if len(span) != SpanSize {
			t.Fatalf("expected span size %d, got %d", SpanSize, len(span))
		}
		if got := Span(span); got != length {
			t.Fatalf("expected decoded span %d, got %d", length, got)
		}
	}
	// the span is little-endian
	span := NewSpan(1)
	if span[0] != 0x01 || !bytes.Equal(span[1:], make([]byte, SpanSize-1)) {
		t.Fatalf("expected little-endian span, got %x", span)
	}
}

func TestContentAddress(t *testing.T) {
	data := []byte("hello graffiti")
	span, addr, err := ContentAddress(data)
	if err != nil {
		t.Fatal(err)
	}
	if got := binary.LittleEndian.Uint64(span); got != uint64(len(data)) {
		t.Fatalf("expected span %d, got %d", len(data), got)
	}
	if len(addr) != AddressLength {
		t.Fatalf("expected address length %d, got %d", AddressLength, len(addr))
	}

	// deterministic
	_, addr2, err := ContentAddress(data)
	if err != nil {
		t.Fatal(err)
	}
	if !addr.Equal(addr2) {
		t.Fatal("expected identical address for identical content")
	}

	// sensitive to content
	_, addr3, err := ContentAddress([]byte("hello graffitj"))
	if err != nil {
		t.Fatal(err)
	}
	if addr.Equal(addr3) {
		t.Fatal("expected different address for different content")
	}

	// sensitive to length: same padded tree, different span
	_, addr4, err := ContentAddress(append(data, 0x00))
	if err != nil {
		t.Fatal(err)
	}
	if addr.Equal(addr4) {
		t.Fatal("expected different address for different content length")
	}
}

func TestContentAddressOverflow(t *testing.T) {
	if _, _, err := ContentAddress(make([]byte, DefaultSize+1)); err == nil {
		t.Fatal("expected error for oversized content")
	}
	if _, _, err := ContentAddress(make([]byte, DefaultSize)); err != nil {
		t.Fatalf("expected maximum sized content to be accepted, got %v", err)
	}
}

func TestAddressHex(t *testing.T) {
	_, addr, err := ContentAddress([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	hex := addr.Hex()
	if len(hex) != 2*AddressLength {
		t.Fatalf("expected hex length %d, got %d", 2*AddressLength, len(hex))
	}
	if hex != strings.ToLower(hex) {
		t.Fatal("expected lowercase hex encoding")
	}
	parsed, err := ParseHex(hex)
	if err != nil {
		t.Fatal(err)
	}
	if !parsed.Equal(addr) {
		t.Fatal("expected hex roundtrip to preserve address")
	}
}

func TestParseHexRejectsBadInput(t *testing.T) {
	if _, err := ParseHex("abcd"); err == nil {
		t.Fatal("expected error for short address")
	}
	if _, err := ParseHex(strings.Repeat("zz", AddressLength)); err == nil {
		t.Fatal("expected error for non-hex address")
	}
}
