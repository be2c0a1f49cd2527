/*
NAME
  crc.go

DESCRIPTION
  crc.go implements the CRC-16/CCITT check used to gate FIBs, MSC packets
  and DAB+ access units (EN 300 401 Annex describes the polynomial as
  G(x) = x^16 + x^12 + x^5 + 1, preset 0xFFFF, with the transmitted check
  value being the one's complement of the computed remainder).

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

const ccittPoly = 0x1021

// CRC16CCITT computes the CRC-16/CCITT remainder of data, preset to 0xFFFF
// and complemented on output, matching the check value an EN 300 401
// transmitter appends to a FIB, packet or access unit.
func CRC16CCITT(data []byte) uint16 {
	reg := uint16(0xFFFF)
	for _, b := range data {
		reg ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if reg&0x8000 != 0 {
				reg = (reg << 1) ^ ccittPoly
			} else {
				reg <<= 1
			}
		}
	}
	return ^reg
}

// CheckCRC16 reports whether the final two bytes of data (big-endian) equal
// CRC16CCITT of the preceding bytes. data must be at least 2 bytes long.
func CheckCRC16(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	payload := data[:len(data)-2]
	got := uint16(data[len(data)-2])<<8 | uint16(data[len(data)-1])
	return got == CRC16CCITT(payload)
}

// AppendCRC16 returns data with its CRC16CCITT appended big-endian.
func AppendCRC16(data []byte) []byte {
	c := CRC16CCITT(data)
	return append(append([]byte{}, data...), byte(c>>8), byte(c))
}
