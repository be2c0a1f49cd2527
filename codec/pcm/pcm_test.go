/*
NAME
  pcm_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pcm

import "testing"

func TestSampleFormatString(t *testing.T) {
	cases := []struct {
		f    SampleFormat
		want string
	}{
		{S16_LE, "S16_LE"},
		{S32_LE, "S32_LE"},
		{Unknown, "Unknown"},
		{SampleFormat(99), "Unknown"},
	}
	for _, c := range cases {
		if got := c.f.String(); got != c.want {
			t.Errorf("SampleFormat(%d).String() = %q, want %q", c.f, got, c.want)
		}
	}
}

func TestBufferCarriesFormatAndData(t *testing.T) {
	buf := Buffer{
		Format: BufferFormat{SFormat: S16_LE, Rate: 48000, Channels: 2},
		Data:   []byte{0x01, 0x02, 0x03, 0x04},
	}
	if buf.Format.Rate != 48000 || buf.Format.Channels != 2 {
		t.Errorf("Buffer.Format = %+v, want rate 48000 channels 2", buf.Format)
	}
	if len(buf.Data) != 4 {
		t.Errorf("len(Buffer.Data) = %d, want 4", len(buf.Data))
	}
}
