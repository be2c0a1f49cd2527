/*
NAME
  sync.go

DESCRIPTION
  sync.go implements the MP2 (DAB) frame processor's sync state machine
  of spec §4.10: a one-bit-per-byte stream is scanned for the MPEG-1/2
  Layer II syncword, the header is parsed for bitrate/sample-rate/padding,
  and complete frames are handed to the Layer II decoder.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mp2 implements the MP2 (MPEG-1/2 Layer II) DAB audio frame
// processor: sync detection, header parsing and Layer II decode.
package mp2

import "fmt"

// state is the sync state machine's current phase.
type state int

const (
	searchingSync state = iota
	gettingSampleRate
	gettingData
)

// bitrateTableV1L2 and sampleRateTable are the ISO 11172-3 Table B.1/B.2
// bitrate (kbit/s) and sample rate (Hz) lookups, indexed by the header's
// 4-bit bitrate index and 2-bit sample-rate index.
var bitrateTableV1L2 = [16]int{0, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, 0}
var sampleRateTable = [4]int{44100, 48000, 32000, 0}

// FrameHandler receives one assembled MP2 frame body (the frameSize*8 bits
// that follow the 12-bit syncword and the 24 header bits; syncword and
// header are not included) plus its parsed sample rate.
type FrameHandler func(frame []byte, sampleRate int)

// Processor is the MP2 frame processor's sync state machine.
type Processor struct {
	st state

	bitAcc  uint32
	bitCnt  int
	onesRun int

	bitrate    int
	sampleRate int
	padding    int
	frameSize  int

	frameBits []byte
	onFrame   FrameHandler
}

// NewProcessor returns a Processor that calls onFrame for each
// successfully synced and assembled MP2 frame.
func NewProcessor(onFrame FrameHandler) *Processor {
	return &Processor{onFrame: onFrame}
}

// Feed pushes one more one-bit-per-byte value (0 or 1) from the Backend's
// deconvolved stream through the state machine.
func (p *Processor) Feed(bit byte) {
	switch p.st {
	case searchingSync:
		if bit != 0 {
			p.onesRun++
		} else {
			p.onesRun = 0
		}
		if p.onesRun >= 12 {
			p.st = gettingSampleRate
			p.bitAcc = 0
			p.bitCnt = 0
			p.onesRun = 0
		}
	case gettingSampleRate:
		p.bitAcc = p.bitAcc<<1 | uint32(bit)
		p.bitCnt++
		if p.bitCnt == 24 {
			p.parseHeader()
			p.st = gettingData
			p.frameBits = p.frameBits[:0]
		}
	case gettingData:
		p.frameBits = append(p.frameBits, bit)
		if len(p.frameBits) >= p.frameSize*8 {
			p.emitFrame()
			p.st = searchingSync
			p.onesRun = 0
		}
	}
}

// parseHeader decodes the 24 header bits following the syncword:
// version/layer (already implied by sync), bitrate index (4), sample rate
// index (2), padding (1), plus 17 further bits not needed for frame
// sizing, per spec §4.10.
func (p *Processor) parseHeader() {
	h := p.bitAcc
	bitrateIdx := (h >> 20) & 0xF
	srIdx := (h >> 18) & 0x3
	padding := (h >> 17) & 0x1

	p.bitrate = bitrateTableV1L2[bitrateIdx]
	p.sampleRate = sampleRateTable[srIdx]
	p.padding = int(padding)
	if p.sampleRate == 0 {
		p.sampleRate = 48000
	}
	p.frameSize = 144000*p.bitrate/p.sampleRate + p.padding
	if p.sampleRate == 24000 {
		p.frameSize *= 2
	}
}

func (p *Processor) emitFrame() {
	packed := bitsToBytes(p.frameBits)
	if p.onFrame != nil {
		p.onFrame(packed, p.sampleRate)
	}
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

// PADFieldLen returns the trailing F-PAD field length in bytes for a
// frame at the given bitrate, per spec §4.10: 4 bytes at >=56 kbit/s, else
// 2 bytes.
func PADFieldLen(bitrate int) int {
	if bitrate >= 56 {
		return 4
	}
	return 2
}

func (p *Processor) String() string {
	return fmt.Sprintf("mp2.Processor{state=%d bitrate=%d sampleRate=%d}", p.st, p.bitrate, p.sampleRate)
}
