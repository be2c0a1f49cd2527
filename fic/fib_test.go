package fic

import (
	"testing"

	"github.com/ausocean/dab/fec"
)

func TestSplitFIBsDropsBadCRC(t *testing.T) {
	good := make([]byte, FIBLen)
	good[0] = 0xFF // empty FIG stream
	good = fec.AppendCRC16(good[:FIBLen-2])

	bad := make([]byte, FIBLen)
	bad[0] = 0xAA // payload with a CRC that won't match zero trailer

	buf := append(append([]byte{}, good...), bad...)
	out := SplitFIBs(buf)
	if len(out) != FIBLen-2 {
		t.Fatalf("expected exactly one surviving FIB payload (%d bytes), got %d", FIBLen-2, len(out))
	}
}

func TestParseFIGsStopsAtEndMarker(t *testing.T) {
	buf := []byte{0x01, 0xAB, 0xFF, 0x02, 0xCD, 0xCD}
	figs := ParseFIGs(buf)
	if len(figs) != 1 {
		t.Fatalf("expected 1 FIG before end marker, got %d", len(figs))
	}
	if figs[0].Type != 0 || len(figs[0].Data) != 1 || figs[0].Data[0] != 0xAB {
		t.Fatalf("unexpected FIG parsed: %+v", figs[0])
	}
}
