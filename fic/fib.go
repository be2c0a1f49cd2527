/*
NAME
  fib.go

DESCRIPTION
  fib.go splits a 32-byte Fast Information Block into its 30-byte payload
  plus CRC-16 (spec §4.7's "CRC gating" invariant), then walks the
  resulting byte stream as a sequence of FIGs (Fast Information Groups),
  each with a 1-byte header (Type:3, Length:5) followed by Length data
  bytes, terminated by the 0xFF end marker or a run of 0xFF padding.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fic

import (
	"github.com/ausocean/dab/fec"
)

// FIBLen is the length of one Fast Information Block in bytes, including
// its trailing CRC-16.
const FIBLen = 32

// FIG is one parsed Fast Information Group: a type/extension pair and its
// raw data bytes (header byte excluded).
type FIG struct {
	Type int
	Data []byte
}

// SplitFIBs validates the CRC of each 32-byte FIB in buf and returns the
// concatenation of every FIB that passes, each truncated to its first
// 30 payload bytes. FIBs that fail CRC are dropped silently, matching
// spec §4.7: a corrupt FIB contributes nothing rather than aborting the
// whole FIC.
func SplitFIBs(buf []byte) []byte {
	var out []byte
	for off := 0; off+FIBLen <= len(buf); off += FIBLen {
		fib := buf[off : off+FIBLen]
		if !fec.CheckCRC16(fib) {
			continue
		}
		out = append(out, fib[:FIBLen-2]...)
	}
	return out
}

// ParseFIGs walks a FIB payload stream (already CRC-stripped, as returned
// by SplitFIBs) and returns every FIG found, stopping at an 0xFF end
// marker or when fewer bytes remain than the declared FIG length.
func ParseFIGs(buf []byte) []FIG {
	var figs []FIG
	i := 0
	for i < len(buf) {
		header := buf[i]
		if header == 0xFF {
			break
		}
		figType := int(header >> 5)
		length := int(header & 0x1F)
		i++
		if i+length > len(buf) {
			break
		}
		figs = append(figs, FIG{Type: figType, Data: buf[i : i+length]})
		i += length
	}
	return figs
}
