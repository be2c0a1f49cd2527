/*
NAME
  pcm.go

DESCRIPTION
  pcm.go defines the raw PCM buffer type shared by the audio ring buffer
  (audio/pcm) and the pipeline's decoded-audio path: a byte slice plus
  the sample format/rate/channel count describing it. This is a trimmed
  adaptation of the teacher's codec/pcm package, which also carried a
  resampling/downmixing filter bank for its own audio-capture pipeline;
  none of that is reachable from any DAB decode path (audio out of this
  receiver is always 16-bit stereo PCM handed straight to the caller),
  so only the buffer type it was built around survives here.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pcm defines the raw PCM buffer type used by the audio ring
// buffer and the pipeline's decoded-audio output path.
package pcm

// SampleFormat is the format a PCM Buffer's samples are in.
type SampleFormat int

// Unknown represents an unrecognised sample format.
const Unknown SampleFormat = -1

// Sample formats produced by this receiver's audio decode chain.
const (
	S16_LE SampleFormat = iota
	S32_LE
)

// BufferFormat describes a PCM Buffer's sample layout.
type BufferFormat struct {
	SFormat  SampleFormat
	Rate     uint
	Channels uint
}

// Buffer is a chunk of PCM audio data plus the format describing it.
type Buffer struct {
	Format BufferFormat
	Data   []byte
}

// String returns the string representation of a SampleFormat.
func (f SampleFormat) String() string {
	switch f {
	case S16_LE:
		return "S16_LE"
	case S32_LE:
		return "S32_LE"
	default:
		return "Unknown"
	}
}
