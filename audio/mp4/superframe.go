/*
NAME
  superframe.go

DESCRIPTION
  superframe.go implements the DAB+ super-frame frame processor of
  spec §4.11: a rolling 5-frame window is searched for a Firecode-valid
  head, the super-frame is Reed-Solomon corrected with RS cross-interleave,
  its header is parsed into Access Unit boundaries, and each AU is
  CRC-checked before being wrapped in a LATM/LOAS envelope for the AAC
  decoder.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mp4 implements the DAB+ super-frame frame processor: Firecode
// sync, Reed-Solomon cross-interleave correction, Access Unit framing and
// LATM/LOAS envelope synthesis for the AAC-LC decoder.
package mp4

import (
	"github.com/ausocean/dab/fec"
)

// SuperFrameFrames is the number of MP4 logical frames making up one
// DAB+ super-frame.
const SuperFrameFrames = 5

// AUHandler receives one CRC-valid Access Unit's LATM/LOAS-wrapped bytes.
type AUHandler func(envelope []byte)

// Processor assembles and decodes DAB+ super-frames from a rolling window
// of input frames.
type Processor struct {
	bitRate  int // kbit/s
	window   [][]byte
	sync     int
	errFrame int
	errRS    int
	errCRC   int
	onAU     AUHandler
}

// NewProcessor returns a Processor for a subchannel carrying DAB+ at the
// given bit rate (kbit/s).
func NewProcessor(bitRateKbps int, onAU AUHandler) *Processor {
	return &Processor{bitRate: bitRateKbps, onAU: onAU}
}

// frameBytes is the byte length of one MP4 logical frame: BitRate/8 *
// 120/110 ... per spec §4.11 the packed frame is BitRate/8 * 120 bytes
// total across the super-frame window, i.e. one frame is BitRate/8 * 24
// bytes (120/5).
func (p *Processor) frameBytes() int {
	return p.bitRate / 8 * 24
}

// AddFrame pushes one newly-decoded MP4 logical frame into the rolling
// window. Once SuperFrameFrames frames are available it attempts a
// Firecode-gated decode of the oldest complete super-frame and slides the
// window forward by one frame.
func (p *Processor) AddFrame(frame []byte) {
	p.window = append(p.window, frame)
	if len(p.window) < SuperFrameFrames {
		return
	}

	superFrame := make([]byte, 0, p.frameBytes()*SuperFrameFrames)
	for _, f := range p.window[:SuperFrameFrames] {
		superFrame = append(superFrame, f...)
	}

	if len(superFrame) >= fec.FirecodeBlockLen && fec.CheckFirecode(superFrame[:fec.FirecodeBlockLen]) {
		p.sync = 4
		p.decodeSuperFrame(superFrame)
	} else {
		p.errFrame++
		if p.sync > 0 {
			p.sync--
		}
	}

	p.window = p.window[1:]
}

// decodeSuperFrame runs RS cross-interleave correction, then parses the
// super-frame header and each Access Unit.
func (p *Processor) decodeSuperFrame(sf []byte) {
	rsDims := p.bitRate / 8
	if rsDims <= 0 {
		return
	}
	total := rsDims * fec.RSN
	if len(sf) < total {
		return
	}

	out := make([]byte, rsDims*fec.RSK)
	for j := 0; j < rsDims; j++ {
		codeword := make([]byte, fec.RSN)
		for k := 0; k < fec.RSN; k++ {
			codeword[k] = sf[(j+k*rsDims)%total]
		}
		data, _, err := fec.RSDecode(codeword)
		if err != nil {
			p.errRS++
			if j == 0 {
				// Column 0 carries the super-frame header; its loss with
				// Firecode already failing means the super-frame is lost
				// (spec §4.11 step 2). Firecode passed to reach here, so
				// continue best-effort with zeroed header bytes.
				data = make([]byte, fec.RSK)
			} else {
				data = make([]byte, fec.RSK)
			}
		}
		for k := 0; k < fec.RSK; k++ {
			out[j+k*rsDims] = data[k]
		}
	}

	p.parseHeaderAndAUs(out)
}

// parseHeaderAndAUs reads the super-frame header (bits 17..23 encode
// dacRate/sbrFlag/channelMode/psFlag/mpegSurround) and dispatches each
// Access Unit, per spec §4.11 steps 3-4.
func (p *Processor) parseHeaderAndAUs(data []byte) {
	if len(data) < 11 {
		return
	}
	// Header byte 2 is bits 16..23: rfa(1) dacRate(1) sbrFlag(1)
	// channelMode(1) psFlag(1) mpegSurround(3), MSB first.
	dacRate := uint32(data[2]>>6) & 0x1
	sbrFlag := uint32(data[2]>>5) & 0x1
	channelMode := uint32(data[2]>>4) & 0x1
	psFlag := uint32(data[2]>>3) & 0x1
	_ = psFlag

	numAUs := numAccessUnits(dacRate, sbrFlag)
	auStart := readAUStarts(data, numAUs)

	for i := 0; i < numAUs; i++ {
		start := auStart[i]
		end := auStart[i+1]
		if start < 0 || end > len(data) || end <= start+2 {
			p.errCRC++
			continue
		}
		au := data[start:end]
		payload := au[:len(au)-2]
		crc := uint16(au[len(au)-2])<<8 | uint16(au[len(au)-1])
		if fec.CRC16CCITT(payload) != crc {
			p.errCRC++
			continue
		}
		envelope := wrapLOAS(payload, sbrFlag != 0, int(channelMode))
		if p.onAU != nil {
			p.onAU(envelope)
		}
	}
}

// numAccessUnits derives numAUs per the dacRate/sbrFlag combination, per
// spec §4.11: {2,3,4,6} depending on the DAC rate and SBR use.
func numAccessUnits(dacRate, sbrFlag uint32) int {
	switch {
	case dacRate == 1 && sbrFlag == 1:
		return 6
	case dacRate == 1 && sbrFlag == 0:
		return 3
	case dacRate == 0 && sbrFlag == 1:
		return 4
	default:
		return 2
	}
}

// readAUStarts reads numAUs+1 12-bit start offsets starting at header
// byte 3 (bit 24), the last entry being the end of the final AU.
func readAUStarts(data []byte, numAUs int) []int {
	starts := make([]int, numAUs+1)
	bitPos := 24 // header bytes 0..2 already consumed
	for i := range starts {
		v := 0
		for b := 0; b < 12; b++ {
			byteIdx := (bitPos + b) / 8
			if byteIdx >= len(data) {
				break
			}
			bit := (data[byteIdx] >> uint(7-(bitPos+b)%8)) & 1
			v = v<<1 | int(bit)
		}
		starts[i] = v
		bitPos += 12
	}
	return starts
}

// ErrorCounts returns the throttled-interval error counters of spec
// §4.11: frame (Firecode), RS and CRC failure counts.
func (p *Processor) ErrorCounts() (frame, rs, crc int) {
	return p.errFrame, p.errRS, p.errCRC
}
