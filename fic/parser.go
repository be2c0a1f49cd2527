/*
NAME
  parser.go

DESCRIPTION
  parser.go is the FIC Parser: it feeds decoded FIB payload bytes to
  ParseFIGs/parseFIG0/parseFIG1, building up a "next" Configuration while
  exposing the last complete "current" Configuration to readers, and
  atomically swaps current<-next on the FIG 0/0 ChangeFlags transition
  described in spec §4.7 (invariant P8: the swap is atomic, readers never
  observe a partially-updated Configuration).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fic

import "sync/atomic"

// Parser accumulates FIG records into a working Configuration and
// publishes it atomically once a full cycle (ChangeFlags 3 -> 0, i.e. no
// database update in progress) has been observed. Callers feed it FIB
// payload bytes (CRC-stripped, FIG-terminated) via Feed.
type Parser struct {
	next *Configuration

	// published holds the most recently completed *Configuration; accessed
	// with atomic.Value so Current() never blocks on the parsing goroutine
	// and never observes a half-built Configuration.
	published atomic.Value

	lastChangeFlags uint8
	sawChange       bool
}

// NewParser returns a Parser with an empty published Configuration.
func NewParser() *Parser {
	p := &Parser{next: NewConfiguration()}
	p.published.Store(NewConfiguration())
	return p
}

// Current returns the most recently completed Configuration. Safe for
// concurrent use with Feed.
func (p *Parser) Current() *Configuration {
	return p.published.Load().(*Configuration)
}

// Feed parses one FIB group's worth of CRC-gated payload bytes (as
// returned by SplitFIBs) into the working Configuration, publishing a new
// snapshot whenever a FIG 0/0 marks the database as stable (ChangeFlags
// transitions to 0 having previously been non-zero, or no FIG 0/0 change
// tracking is in use at all, in which case every fib group publishes).
func (p *Parser) Feed(fibPayload []byte) {
	figs := ParseFIGs(fibPayload)
	for _, f := range figs {
		switch f.Type {
		case 0:
			parseFIG0(p.next, f.Data)
		case 1:
			parseFIG1(p.next, f.Data)
		default:
			// FIG types 2 (programme service data), 5 (FIC data channel),
			// 6 (conditional access) are walked by ParseFIGs' length
			// accounting but have no Configuration fields defined for them
			// by any SPEC_FULL.md component.
		}
	}

	cf := p.next.ChangeFlags
	stable := cf == 0
	if cf != 0 {
		p.sawChange = true
	}
	if stable && p.sawChange {
		p.publish()
		p.sawChange = false
	} else if stable && p.lastChangeFlags == 0 {
		// No change-flag activity observed yet (e.g. stream starts mid
		// database): still publish periodically so Current() converges.
		p.publish()
	}
	p.lastChangeFlags = cf
}

// publish snapshots the working Configuration and installs it as current,
// then continues accumulating into a fresh clone so in-flight records that
// span the swap are not lost.
func (p *Parser) publish() {
	snapshot := p.next
	p.published.Store(snapshot)
	p.next = snapshot.clone()
}
