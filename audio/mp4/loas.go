/*
NAME
  loas.go

DESCRIPTION
  loas.go synthesizes a minimal LATM/LOAS envelope (ISO 14496-3 Annex
  1.7.3) wrapping one DAB+ Access Unit's AAC-LC payload, per spec §4.11
  step 4(b): a 0x2B7 syncword, an AudioMuxLengthBytes field, a
  StreamMuxConfig describing AAC-LC with the GA-960-sample transform (and
  an SBR header when the super-frame signals SBR), followed by the AU
  payload unmodified. This is the invocation contract handed to the
  external AAC decoder (`audio/aacdec`), not a full LATM/LOAS multiplexer.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mp4

// loasSyncword is the 11-bit LOAS sync pattern 0x2B7.
const loasSyncword = 0x2B7

// aacLCObjectType is the MPEG-4 Audio Object Type for AAC-LC.
const aacLCObjectType = 2

// wrapLOAS builds a LOAS frame: a 3-byte header (11-bit syncword + 13-bit
// length) followed by a StreamMuxConfig byte describing AAC-LC (with an
// SBR marker bit when sbr is set) and the AU payload.
func wrapLOAS(au []byte, sbr bool, channelMode int) []byte {
	smc := buildStreamMuxConfig(sbr, channelMode)
	payloadLen := len(smc) + len(au)

	out := make([]byte, 0, 3+payloadLen)
	// 11-bit syncword + 13-bit length packed MSB-first across 3 bytes.
	hdr := uint32(loasSyncword)<<13 | uint32(payloadLen&0x1FFF)
	out = append(out, byte(hdr>>16), byte(hdr>>8), byte(hdr))
	out = append(out, smc...)
	out = append(out, au...)
	return out
}

// buildStreamMuxConfig synthesizes a minimal, fixed-layout StreamMuxConfig
// for a single AAC-LC (GA, 960-sample transform) program: audio object
// type, sampling frequency index placeholder (DAB+ always runs the
// AAC decoder at 48 kHz / 960-sample "960-transform" mode, per spec
// §4.11), channel configuration, and an SBR extension flag byte when the
// super-frame header signaled SBR.
func buildStreamMuxConfig(sbr bool, channelMode int) []byte {
	b0 := byte(aacLCObjectType<<3) | 0x0B // sampling-frequency-index placeholder
	b1 := byte(channelMode & 0x0F)
	if sbr {
		b1 |= 0x80
	}
	return []byte{b0, b1}
}
