/*
NAME
  bitfield.go

DESCRIPTION
  bitfield.go provides a small MSB-first bit-field cursor over a FIG's raw
  data bytes. FIG records pack sub-byte fields (SubChId:6, StartAddress:10,
  and similar) across byte boundaries; this cursor reads them without
  pulling in the full internal/bitstream reader, which is tuned for
  streaming bit-exact transport decode rather than short fixed records.

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

// bitCursor walks a byte slice MSB-first, n bits at a time.
type bitCursor struct {
	data []byte
	pos  int // bit offset from start of data
}

func newBitCursor(data []byte) *bitCursor {
	return &bitCursor{data: data}
}

// read returns the next n bits (n <= 32) as the low bits of the result. It
// returns 0 if the cursor runs past the end of data.
func (c *bitCursor) read(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		byteIdx := c.pos / 8
		if byteIdx >= len(c.data) {
			c.pos++
			continue
		}
		bitIdx := 7 - uint(c.pos%8)
		bit := (c.data[byteIdx] >> bitIdx) & 1
		v = v<<1 | uint32(bit)
		c.pos++
	}
	return v
}

// readBool reads a single bit as a bool.
func (c *bitCursor) readBool() bool {
	return c.read(1) != 0
}

// remaining reports how many whole bits remain.
func (c *bitCursor) remaining() int {
	return len(c.data)*8 - c.pos
}

// skipToByte advances the cursor to the start of the next byte if it is
// not already byte-aligned.
func (c *bitCursor) skipToByte() {
	if c.pos%8 != 0 {
		c.pos += 8 - c.pos%8
	}
}

// bytePos returns the current byte offset, valid only when byte-aligned.
func (c *bitCursor) bytePos() int {
	return c.pos / 8
}
