/*
NAME
  handler.go

DESCRIPTION
  handler.go implements the MSC Handler: it owns the CIF Accumulator and
  the set of enrolled per-subchannel Backends, feeding each completed CIF
  to every Backend in enrollment order, per spec §4.8.

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
	"sync"

	"github.com/ausocean/utils/logging"
)

// Handler accumulates CIFs and dispatches them to enrolled Backends.
type Handler struct {
	mu       sync.Mutex
	acc      *Accumulator
	order    []uint8
	backends map[uint8]*Backend
	log      logging.Logger
}

// NewHandler returns an empty Handler.
func NewHandler(log logging.Logger) *Handler {
	return &Handler{
		acc:      NewAccumulator(),
		backends: make(map[uint8]*Backend),
		log:      log,
	}
}

// Enroll registers a Backend for decoding, in call order. If threaded is
// true, the Backend is switched into threaded mode (spec §5).
func (h *Handler) Enroll(ctx context.Context, b *Backend, threaded bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.backends[b.subChId]; exists {
		return
	}
	h.backends[b.subChId] = b
	h.order = append(h.order, b.subChId)
	if threaded {
		b.EnableThreaded(ctx)
	}
	if h.log != nil {
		h.log.Info("backend enrolled", "subChId", b.subChId)
	}
}

// Withdraw stops and removes the Backend for subChId, matching the
// stop_service control-plane entry of spec §6.
func (h *Handler) Withdraw(subChId uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.backends[subChId]
	if !ok {
		return
	}
	b.Stop()
	delete(h.backends, subChId)
	for i, id := range h.order {
		if id == subChId {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// WriteBlock feeds one MSC OFDM symbol's soft bits at OFDM symbol index
// idx. When a CIF completes, it is dispatched to every enrolled Backend in
// enrollment order.
func (h *Handler) WriteBlock(idx int, bits []int8) {
	cif, complete := h.acc.WriteBlock(idx, bits)
	if !complete {
		return
	}
	h.mu.Lock()
	order := append([]uint8{}, h.order...)
	backends := make(map[uint8]*Backend, len(h.backends))
	for k, v := range h.backends {
		backends[k] = v
	}
	h.mu.Unlock()

	for _, id := range order {
		if b, ok := backends[id]; ok {
			b.ProcessCIF(cif)
		}
	}
}
