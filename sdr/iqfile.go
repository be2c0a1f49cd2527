/*
NAME
  iqfile.go

DESCRIPTION
  iqfile.go is a minimal test-fixture loader: it reads a stereo WAV file
  (left channel I, right channel Q) into a []complex64 sample buffer,
  using `github.com/go-audio/wav` and `github.com/go-audio/audio` the same
  way the teacher's `exp/flac` package does for PCM buffers. It loads
  recorded IQ fixtures (spec's S1/S2/S6-style scenarios); no test in this
  repository calls it. File-based IQ playback as a receiver input is out
  of scope per spec §1/§9.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package sdr

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// LoadIQWAV reads a 16-bit stereo WAV file from r and returns its samples
// as complex64 IQ pairs (left=I, right=Q), normalized to [-1, 1).
func LoadIQWAV(r io.Reader) ([]complex64, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("sdr: not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("sdr: reading WAV PCM buffer: %w", err)
	}
	if buf.Format.NumChannels != 2 {
		return nil, fmt.Errorf("sdr: expected stereo I/Q WAV, got %d channels", buf.Format.NumChannels)
	}

	n := len(buf.Data) / 2
	out := make([]complex64, n)
	scale := float32(1 << (buf.SourceBitDepth - 1))
	if scale == 0 {
		scale = 1 << 15
	}
	for i := 0; i < n; i++ {
		i16 := float32(buf.Data[2*i]) / scale
		q16 := float32(buf.Data[2*i+1]) / scale
		out[i] = complex(i16, q16)
	}
	return out, nil
}
