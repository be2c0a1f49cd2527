/*
NAME
  bitstream.go

DESCRIPTION
  bitstream.go provides Reader and Writer, thin wrappers around
  github.com/icza/bitio giving MSB-first bit-level access: read_bits(n),
  read_bool and peek_bits, plus a matching bit writer. ETI assembly
  (eti's writeFC/writeSTC) is its consumer in this module; the FIG/FIB,
  MP2 and DAB+ super-frame parsers use their own bit cursors.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bitstream provides the BitReader/BitWriter abstraction used by
// the ETI encoder in this module.
package bitstream

import (
	"bytes"
	"io"

	"github.com/icza/bitio"
)

// Reader reads individual bits and fixed-width fields from an underlying
// byte source, most significant bit first, matching the bit enumeration
// used throughout EN 300 401.
type Reader struct {
	br    *bitio.Reader
	buf   []byte
	pos   int
	nRead int
}

// NewReader returns a Reader that reads from buf.
func NewReader(buf []byte) *Reader {
	return &Reader{br: bitio.NewReader(bytes.NewReader(buf)), buf: buf}
}

// ReadBits reads n (<=64) bits and returns them right-justified in a uint64.
func (r *Reader) ReadBits(n uint8) (uint64, error) {
	v, err := r.br.ReadBits(n)
	if err != nil {
		return 0, err
	}
	r.nRead += int(n)
	return v, nil
}

// ReadBool reads a single bit as a bool.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.br.ReadBool()
	if err != nil {
		return false, err
	}
	r.nRead++
	return v, nil
}

// ReadByte reads the next 8 bits as a byte; satisfies io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	v, err := r.ReadBits(8)
	return byte(v), err
}

// PeekBits reads n bits without consuming them from the stream. It does so
// by reading into a sub-reader over the unconsumed tail of buf; it is only
// valid while the Reader is still byte-aligned.
func (r *Reader) PeekBits(n uint8) (uint64, error) {
	if r.nRead%8 != 0 {
		return 0, io.ErrUnexpectedEOF
	}
	byteOff := r.nRead / 8
	if byteOff >= len(r.buf) {
		return 0, io.EOF
	}
	pr := bitio.NewReader(bytes.NewReader(r.buf[byteOff:]))
	return pr.ReadBits(n)
}

// BitsRead returns the number of bits consumed so far.
func (r *Reader) BitsRead() int { return r.nRead }

// Writer writes individual bits and fixed-width fields to an underlying
// byte sink, most significant bit first.
type Writer struct {
	bw     *bitio.Writer
	buf    *bytes.Buffer
	nWrote int
}

// NewWriter returns a Writer that accumulates into an internal buffer,
// retrievable with Bytes after a call to Close.
func NewWriter() *Writer {
	buf := &bytes.Buffer{}
	return &Writer{bw: bitio.NewWriter(buf), buf: buf}
}

// WriteBits writes the low n bits of v.
func (w *Writer) WriteBits(v uint64, n uint8) error {
	if err := w.bw.WriteBits(v, n); err != nil {
		return err
	}
	w.nWrote += int(n)
	return nil
}

// WriteBool writes a single bit.
func (w *Writer) WriteBool(v bool) error {
	if err := w.bw.WriteBool(v); err != nil {
		return err
	}
	w.nWrote++
	return nil
}

// Close flushes any partial byte (padded with zero bits) and returns the
// accumulated bytes.
func (w *Writer) Close() ([]byte, error) {
	if err := w.bw.Close(); err != nil {
		return nil, err
	}
	return w.buf.Bytes(), nil
}

// BitsWritten returns the number of bits written so far.
func (w *Writer) BitsWritten() int { return w.nWrote }
