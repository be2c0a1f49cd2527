/*
NAME
  firecode.go

DESCRIPTION
  firecode.go implements the 16-bit Firecode (g(x) = x^16+x^14+x^13+x^12+
  x^11+x^5+x^3+x^2+x+1) used to detect the head of a DAB+ super-frame
  before Reed-Solomon decoding (EN 300 401 / ETSI TS 102 563), grounded on
  the classic GNU Radio Firecode checker (polynomial constant 0x782f) used
  by DABstar's firecode-checker.cpp.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fec

const firecodePoly = 0x782f

// FirecodeBlockLen is the number of bytes a Firecode check covers: 9
// payload bytes followed by a 2-byte check value.
const FirecodeBlockLen = 11

func firecodeCRC(data []byte) uint16 {
	var reg uint16
	for _, b := range data {
		reg ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if reg&0x8000 != 0 {
				reg = (reg << 1) ^ firecodePoly
			} else {
				reg <<= 1
			}
		}
	}
	return reg
}

// CalcFirecode computes the 16-bit Firecode check value for a 9-byte
// payload.
func CalcFirecode(payload []byte) uint16 {
	return firecodeCRC(payload)
}

// CheckFirecode reports whether an 11-byte block (9 payload bytes + a
// 2-byte big-endian check value) passes the Firecode check.
func CheckFirecode(block []byte) bool {
	if len(block) != FirecodeBlockLen {
		return false
	}
	return firecodeCRC(block) == 0
}

// AppendFirecode returns a 9-byte payload with its Firecode check value
// appended, producing a valid 11-byte block.
func AppendFirecode(payload []byte) []byte {
	c := CalcFirecode(payload)
	return append(append([]byte{}, payload...), byte(c>>8), byte(c))
}
