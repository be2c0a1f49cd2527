package sdr

import (
	"context"
	"math"
	"math/rand"
	"testing"
)

type fixedSource struct {
	samples []complex64
}

func (f *fixedSource) Pull(ctx context.Context, n int) ([]complex64, error) {
	if n > len(f.samples) {
		n = len(f.samples)
	}
	out := f.samples[:n]
	f.samples = f.samples[n:]
	return out, nil
}

func TestReaderDCRemoval(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	samples := make([]complex64, 8192)
	for i := range samples {
		samples[i] = complex(float32(0.5+0.01*rnd.Float64()), float32(-0.3+0.01*rnd.Float64()))
	}
	r := NewReader(&fixedSource{samples: samples}, 2048000, nil)
	r.SetDCRemoval(true)
	out, err := r.Pull(context.Background(), len(samples))
	if err != nil {
		t.Fatal(err)
	}
	// After the filter settles, the tail should be much closer to zero
	// than the untouched DC bias of the input.
	var sum complex128
	tail := out[len(out)-512:]
	for _, s := range tail {
		sum += complex128(s)
	}
	mean := sum / complex(float64(len(tail)), 0)
	if math.Abs(real(mean)) > 0.1 || math.Abs(imag(mean)) > 0.1 {
		t.Fatalf("DC blocker left large residual bias: %v", mean)
	}
}

func TestTimeSyncerFindsNullGap(t *testing.T) {
	samples := make([]complex64, TNull+TU+200)
	for i := range samples {
		samples[i] = complex(0.01, 0.01) // near-zero NULL-like floor
	}
	for i := TNull; i < len(samples); i++ {
		samples[i] = complex(1, 0)
	}
	ts := NewTimeSyncer(0.5)
	off, ok := ts.FindNull(samples)
	if !ok {
		t.Fatal("expected to find a NULL gap")
	}
	if off < 0 || off > 5 {
		t.Fatalf("expected NULL offset near 0, got %d", off)
	}
}

func TestSoftBitFuncsAgreeOnSign(t *testing.T) {
	v := complex(1.0, -1.0)
	for name, f := range SoftBitFuncs {
		b0, b1 := f(v)
		if b0 <= 0 || b1 >= 0 {
			t.Fatalf("softDec%d: expected (positive, negative), got (%d, %d)", name, b0, b1)
		}
	}
}

func TestDemodulatorFirstSymbolSeedsOnly(t *testing.T) {
	d := NewDemodulator(nil)
	symbol := make([]complex64, TU)
	for i := range symbol {
		symbol[i] = complex(1, 0)
	}
	bits, _ := d.DemodSymbol(symbol)
	if bits != nil {
		t.Fatalf("expected nil bits for the seeding symbol, got %d bits", len(bits))
	}
	bits, _ = d.DemodSymbol(symbol)
	if len(bits) != 2*ModeIActiveCarriers {
		t.Fatalf("expected %d soft bits, got %d", 2*ModeIActiveCarriers, len(bits))
	}
}

func TestTIIDetectorAccumulatesAcrossFrames(t *testing.T) {
	d := NewTIIDetector(3, 0, true)
	null := make([]complex64, TNull)
	for i := range null {
		null[i] = complex(1, 0)
	}
	var results []TIIResult
	for i := 0; i < 3; i++ {
		results = d.Feed(null)
	}
	if results == nil {
		t.Fatal("expected a result after framesToCount frames")
	}
}
