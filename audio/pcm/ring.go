/*
NAME
  ring.go

DESCRIPTION
  ring.go implements the audio ring buffer of spec §4.10/§4.11: decoded MP2
  or AAC PCM samples accumulate here until at least 100ms is queued, at
  which point a `new_audio(samples, rate, flags)` event fires. Builds on
  the teacher's `codec/pcm.Buffer`/`BufferFormat` types rather than
  reinventing a PCM buffer representation.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pcm holds the post-decode audio ring buffer shared by the MP2
// and AAC frame processors.
package pcm

import (
	"encoding/binary"

	"github.com/ausocean/dab/codec/pcm"
)

// MinQueuedMillis is the minimum queued audio duration before a new_audio
// event fires, per spec §4.10.
const MinQueuedMillis = 100

// AudioHandler receives a PCM buffer once enough audio has queued.
type AudioHandler func(buf pcm.Buffer, flags int)

// Ring accumulates interleaved 16-bit stereo PCM samples at a fixed
// sample rate until MinQueuedMillis worth has queued, then flushes.
type Ring struct {
	rate    uint
	data    []byte
	onAudio AudioHandler
}

// NewRing returns a Ring at the given sample rate.
func NewRing(rate uint, onAudio AudioHandler) *Ring {
	return &Ring{rate: rate, onAudio: onAudio}
}

// thresholdBytes is the byte count corresponding to MinQueuedMillis of
// stereo 16-bit PCM at the ring's sample rate.
func (r *Ring) thresholdBytes() int {
	return int(r.rate) * 2 /*channels*/ * 2 /*bytes/sample*/ * MinQueuedMillis / 1000
}

// PushInt16 appends interleaved stereo int16 samples, flushing to the
// AudioHandler (with the given event flags) whenever the threshold is
// reached.
func (r *Ring) PushInt16(samples []int16, flags int) {
	for _, s := range samples {
		r.data = binary.LittleEndian.AppendUint16(r.data, uint16(s))
	}
	if len(r.data) >= r.thresholdBytes() {
		r.flush(flags)
	}
}

func (r *Ring) flush(flags int) {
	buf := pcm.Buffer{
		Format: pcm.BufferFormat{SFormat: pcm.S16_LE, Rate: r.rate, Channels: 2},
		Data:   r.data,
	}
	r.data = nil
	if r.onAudio != nil {
		r.onAudio(buf, flags)
	}
}
