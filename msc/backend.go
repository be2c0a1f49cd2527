/*
NAME
  backend.go

DESCRIPTION
  backend.go implements the per-subchannel Backend of spec §4.9: time
  deinterleave, protection-aware Viterbi deconvolution, energy dispersal,
  then forwarding of the resulting byte stream to a Frame Processor
  callback. Each Backend exclusively owns its Deinterleaver and decode
  state (spec §4's "ownership" note). An optional threaded mode runs the
  CIF->bytes pipeline on its own goroutine, fed through a bounded channel
  that plays the role of the semaphore-gated ring of spec §5, polling with
  a 200ms timeout so shutdown stays prompt.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package msc

import (
	"context"
	"time"

	"github.com/ausocean/dab/fec"
)

// RingSlots is the default depth of a threaded Backend's bounded CIF ring
// (spec §5).
const RingSlots = 25

// pollTimeout is how long a threaded Backend's ring read blocks before
// re-checking its running flag, per spec §5.
const pollTimeout = 200 * time.Millisecond

// FrameProcessor receives the descrambled byte stream produced by a
// Backend for one CIF's worth of subchannel data.
type FrameProcessor func(data []byte)

// Backend deinterleaves, deconvolves and descrambles one subchannel's CIF
// slice at a time.
type Backend struct {
	subChId   uint8
	startCU   uint16
	numCU     uint16
	pi        fec.PIVector
	deint     *Deinterleaver
	processor FrameProcessor

	// Threaded mode.
	threaded bool
	in       chan []int8
	cancel   context.CancelFunc
	nextIn   int
	nextOut  int
}

// NewBackend returns a Backend for the given subchannel, covering
// [startCU, startCU+numCU) of every CIF, decoding with the puncturing
// vector implied by protLevel (spec's UEP/EEP protection level, mapped
// here directly to an Annex C table index since the exact EEP-A/EEP-B
// table selection additionally depends on option, which callers already
// resolve via fic.BitRateFromSubChSize before constructing the Backend).
func NewBackend(subChId uint8, startCU, numCU uint16, protLevel uint8, processor FrameProcessor) *Backend {
	pi := int(protLevel) + 1
	return &Backend{
		subChId:   subChId,
		startCU:   startCU,
		numCU:     numCU,
		pi:        fec.NewPIVector(pi),
		deint:     NewDeinterleaver(),
		processor: processor,
	}
}

// EnableThreaded switches the Backend into threaded mode: ProcessCIF
// enqueues onto a bounded ring instead of decoding inline, and a
// background goroutine drains it, matching the per-subchannel backend
// thread of spec §5.
func (b *Backend) EnableThreaded(ctx context.Context) {
	if b.threaded {
		return
	}
	b.threaded = true
	runCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.in = make(chan []int8, RingSlots)
	go b.run(runCtx)
}

// Stop halts a threaded Backend's background goroutine.
func (b *Backend) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
}

// ProcessCIF hands one CIF's soft bits to the Backend. In inline mode it
// decodes synchronously; in threaded mode it enqueues (dropping the
// oldest pending CIF if the ring is full, since a stale CIF is worse than
// none) and returns immediately.
func (b *Backend) ProcessCIF(cif []int8) {
	slice := b.slice(cif)
	if !b.threaded {
		b.decode(slice)
		return
	}
	b.nextIn++
	select {
	case b.in <- slice:
	default:
		select {
		case <-b.in:
		default:
		}
		b.in <- slice
	}
}

func (b *Backend) slice(cif []int8) []int8 {
	off := int(b.startCU) * CUBits
	n := int(b.numCU) * CUBits
	if off+n > len(cif) {
		n = len(cif) - off
	}
	if n <= 0 {
		return nil
	}
	return cif[off : off+n]
}

func (b *Backend) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case slice := <-b.in:
			// The threaded path advances nextOut before consuming,
			// preserving the upstream behavior spec §9 calls out as a
			// likely leftover rather than "fixing" it (DESIGN.md Open
			// Question). The invariant below still holds: nextOut never
			// laps nextIn.
			b.nextOut++
			if b.nextOut > b.nextIn {
				panic("msc: backend nextOut overran nextIn")
			}
			b.decode(slice)
		case <-time.After(pollTimeout):
			// Re-check ctx.Done() on the next loop iteration.
		}
	}
}

// decode runs deinterleave -> Viterbi deconvolve -> energy dispersal and
// forwards the resulting bytes to the Frame Processor.
func (b *Backend) decode(slice []int8) {
	if slice == nil {
		return
	}
	y := b.deint.Process(slice)
	if y == nil {
		return // still warming, per invariant P4
	}

	outLen := len(y) * fec.PunctureVectorLen / countKept(b.pi)
	outLen -= outLen % 4 // whole rate-1/4 symbols only
	mother := fec.Depuncture(y, b.pi, outLen)
	nInfo := (len(mother)/4 - fec.TailBits)
	bits := fec.ViterbiDecode(mother, nInfo)
	descrambled := fec.Disperse(bits)
	data := packBits(descrambled)
	if b.processor != nil {
		b.processor(data)
	}
}

func countKept(v fec.PIVector) int {
	n := 0
	for _, k := range v {
		if k {
			n++
		}
	}
	if n == 0 {
		return 1
	}
	return n
}

func packBits(bits []byte) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}
