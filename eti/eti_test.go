package eti

import (
	"testing"

	"github.com/ausocean/dab/fec"
	"github.com/ausocean/dab/fic"
)

func TestGenerateFrameLenAndCRC(t *testing.T) {
	cfg := fic.NewConfiguration()
	cfg.SubChannels[3] = fic.SubChannel{
		SubChId: 3, StartCU: 0, NumCU: 10, ShortForm: false,
		Option: 0, ProtLevel: 2, SubChSize: 10, BitRate: 32,
	}

	cif := make([]int8, 55296)
	for i := range cif {
		if i%2 == 0 {
			cif[i] = 1
		} else {
			cif[i] = -1
		}
	}
	fibBundle := make([]byte, 96)

	g := NewGenerator()
	frame := g.Generate(cif, cfg, fibBundle, 0, 4)

	if len(frame) != FrameLen {
		t.Fatalf("expected frame length %d, got %d", FrameLen, len(frame))
	}
	if frame[0] != 0xFF {
		t.Fatalf("expected ERR byte 0xFF, got %#x", frame[0])
	}
	// TIST must be all 0xFF, per spec P10/S6. It sits just before the 0x55
	// padding that fills the rest of the frame.
	end := FrameLen
	for end > 0 && frame[end-1] == 0x55 {
		end--
	}
	if end < 8 || frame[end-4] != 0xFF || frame[end-3] != 0xFF || frame[end-2] != 0xFF || frame[end-1] != 0xFF {
		t.Fatalf("expected TIST region filled with 0xFF")
	}
	// The data CRC precedes the 2 RFU bytes and TIST, and covers the MST,
	// which starts after SYNC, FC, one STC record and EOH (16 bytes).
	crcOff := end - 8
	want := uint16(frame[crcOff])<<8 | uint16(frame[crcOff+1])
	if got := fec.CRC16CCITT(frame[16:crcOff]); got != want {
		t.Fatalf("data CRC mismatch: computed %#04x, frame holds %#04x", got, want)
	}
}

func TestGenerateIsDeterministicAcrossCalls(t *testing.T) {
	cfg := fic.NewConfiguration()
	cfg.SubChannels[1] = fic.SubChannel{SubChId: 1, StartCU: 0, NumCU: 5, BitRate: 16, ProtLevel: 1, SubChSize: 5}

	cif := make([]int8, 55296)
	fibBundle := make([]byte, 96)

	g := NewGenerator()
	f1 := g.Generate(cif, cfg, fibBundle, 0, 2)
	f2 := g.Generate(cif, cfg, fibBundle, 0, 2)

	if len(f1) != len(f2) {
		t.Fatalf("frame lengths differ across calls")
	}
	for i := range f1 {
		if f1[i] != f2[i] {
			t.Fatalf("frame bytes differ at %d: %#x vs %#x", i, f1[i], f2[i])
		}
	}
}
