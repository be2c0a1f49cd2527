package mp2

import "testing"

func TestProcessorSyncsAndEmitsFrame(t *testing.T) {
	var got []byte
	var rate int
	p := NewProcessor(func(frame []byte, sampleRate int) {
		got = frame
		rate = sampleRate
	})

	// 12 one-bits for sync.
	for i := 0; i < 12; i++ {
		p.Feed(1)
	}
	// Header: bitrate index=8 (128kbit/s), sample rate idx=1 (48000), padding=0,
	// plus 17 don't-care bits.
	header := []byte{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	for _, b := range header {
		p.Feed(b)
	}
	if p.frameSize == 0 {
		t.Fatal("expected a non-zero computed frame size")
	}
	for i := 0; i < p.frameSize*8; i++ {
		p.Feed(0)
	}
	if got == nil {
		t.Fatal("expected a frame to be emitted")
	}
	if rate != 48000 {
		t.Fatalf("expected sample rate 48000, got %d", rate)
	}
}

func TestPADFieldLen(t *testing.T) {
	if PADFieldLen(32) != 2 {
		t.Fatal("expected 2-byte F-PAD below 56 kbit/s")
	}
	if PADFieldLen(128) != 4 {
		t.Fatal("expected 4-byte F-PAD at 128 kbit/s")
	}
}
