/*
NAME
  packet.go

DESCRIPTION
  packet.go implements the Packet frame processor of spec §4.12: the
  deconvolved bit stream is split into fixed-size packets, CRC-checked,
  filtered by packet address and continuity index, and reassembled into
  MSC Data Groups which are dispatched to the registered data handler.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package packet implements packet-mode data component reassembly (MSC
// Data Groups) and dispatch to MOT/IP/Journaline/TDC/EPG sub-handlers.
package packet

import "github.com/ausocean/dab/fec"

// FirstLast values, per spec §4.12.
const (
	Intermediate = 0
	Last         = 1
	First        = 2
	Single       = 3
)

// DataHandler receives one reassembled MSC Data Group's bits, packed
// MSB-first into bytes.
type DataHandler func(data []byte)

// Processor reassembles packets addressed to one packet address into data
// groups.
type Processor struct {
	address      uint16
	expectedCI   int
	haveExpected bool
	assembling   []byte
	handler      DataHandler
}

// NewProcessor returns a Processor that reassembles packets addressed to
// address and dispatches completed data groups to handler.
func NewProcessor(address uint16, handler DataHandler) *Processor {
	return &Processor{address: address, handler: handler}
}

// Feed processes one byte-per-bit stream (as produced by a Backend) by
// splitting it into packets of the declared length and handling each.
func (p *Processor) Feed(bits []byte) {
	for len(bits) >= 16 {
		packetLenField := readBitsInt(bits, 0, 2)
		packetLen := (packetLenField + 1) * 24 * 8
		if len(bits) < packetLen {
			return
		}
		p.handlePacket(bits[:packetLen])
		bits = bits[packetLen:]
	}
}

func (p *Processor) handlePacket(pkt []byte) {
	continuityIdx := readBitsInt(pkt, 2, 2)
	firstLast := readBitsInt(pkt, 4, 2)
	address := readBitsInt(pkt, 6, 10)
	command := readBitsInt(pkt, 16, 1)
	usefulLen := readBitsInt(pkt, 17, 7)
	_ = command

	bytes := bitsToBytes(pkt)
	if len(bytes) < 2 {
		return
	}
	if fec.CRC16CCITT(bytes[:len(bytes)-2]) != uint16(bytes[len(bytes)-2])<<8|uint16(bytes[len(bytes)-1]) {
		return
	}
	if uint16(address) != p.address {
		return
	}
	if p.haveExpected && continuityIdx != p.expectedCI {
		p.assembling = nil
		p.haveExpected = false
		if firstLast != First && firstLast != Single {
			return
		}
	}
	p.expectedCI = (continuityIdx + 1) % 4
	p.haveExpected = true

	dataBytes := usefulLen
	if dataBytes > len(bytes)-5 {
		dataBytes = len(bytes) - 5
	}
	payload := bytes[3 : 3+dataBytes]

	switch firstLast {
	case Single:
		p.dispatch(payload)
	case First:
		p.assembling = append([]byte{}, payload...)
	case Intermediate:
		p.assembling = append(p.assembling, payload...)
	case Last:
		p.assembling = append(p.assembling, payload...)
		p.dispatch(p.assembling)
		p.assembling = nil
	}
}

func (p *Processor) dispatch(data []byte) {
	if p.handler != nil {
		p.handler(append([]byte{}, data...))
	}
}

// readBitsInt reads n bits starting at bit offset off (MSB-first) from a
// one-bit-per-byte stream.
func readBitsInt(bits []byte, off, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		idx := off + i
		var b byte
		if idx < len(bits) {
			b = bits[idx]
		}
		v = v<<1 | int(b)
	}
	return v
}

func bitsToBytes(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
