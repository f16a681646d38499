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

// Package pot implements the proximity order metric over fixed-length
// addresses. Proximity orders partition the address space into neighbourhoods
// around a pivot: the set of addresses with proximity order at least d
// relative to a target is the target's neighbourhood of depth d.
package pot

/*
Proximity(x, y) returns the proximity order of the MSB distance between x and y

The distance metric MSB(x, y) of two equal length byte sequences x and y is
the value of the binary integer cast of x^y, ie., x and y bitwise xor-ed.
The binary cast is big endian: most significant bit first (=MSB).

Proximity(x, y) is a discrete logarithmic scaling of the MSB distance.
It is defined as the reverse rank of the integer part of the base 2
logarithm of the distance.
It is calculated by counting the number of common leading zeros in the (MSB)
binary representation of x^y.

(0 farthest, 255 closest, 256 self)
*/
func Proximity(one, other []byte) (ret int) {
	for i := 0; i < len(one); i++ {
		oxo := one[i] ^ other[i]
		for j := 0; j < 8; j++ {
			if (oxo>>uint8(7-j))&0x01 != 0 {
				return i*8 + j
			}
		}
	}
	return len(one) * 8
}

// InNeighbourhood reports whether x falls within the neighbourhood of depth
// bits around y, i.e. whether x and y share at least depth leading bits.
func InNeighbourhood(x, y []byte, depth int) bool {
	return Proximity(x, y) >= depth
}
