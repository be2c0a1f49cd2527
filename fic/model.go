/*
NAME
  model.go

DESCRIPTION
  model.go defines the canonical per-FIG record types that make up a live
  multiplex Configuration: subchannels, services and their components,
  packet-mode descriptors, global component identifiers and labels. Earlier
  DABstar trees kept two parallel tables for this (design note in
  SPEC_FULL.md: "legacy" mutable records plus a separate FibConfigFig1
  table); this module keeps exactly one source of truth per record kind.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fic decodes the Fast Information Channel: FIB CRC-gating and the
// FIG 0/x and FIG 1/x parsers that build the live multiplex Configuration.
package fic

// TransportMode identifies how a service component is carried.
type TransportMode uint8

const (
	TransportStreamAudio TransportMode = 0
	TransportStreamData  TransportMode = 1
	// Value 2 is reserved by EN 300 401.
	TransportPacketData TransportMode = 3
)

// AudioServiceType distinguishes DAB (MPEG Layer II) from DAB+ (AAC) audio
// components, read from ASCTy.
type AudioServiceType uint8

const (
	AudioMP2 AudioServiceType = 0
	AudioAAC AudioServiceType = 63
)

// SubChannel is the FIG 0/1 subchannel descriptor plus its derived bit
// rate, per spec §3 and the UEP/EEP sizing rules of spec §3's invariants.
type SubChannel struct {
	SubChId   uint8
	StartCU   uint16
	NumCU     uint16
	ShortForm bool

	// Short form (UEP).
	TableIdx uint8

	// Long form (EEP).
	Option    uint8 // 0 or 1
	ProtLevel uint8 // 0..3
	SubChSize uint16

	// BitRate is the derived subchannel bit rate in kbit/s.
	BitRate uint32
}

// ServiceComponent is one entry of a FIG 0/2 service component record.
type ServiceComponent struct {
	SId    uint32
	SCIdS  uint8
	TMId   TransportMode
	SubChId uint8 // valid when TMId is stream audio/data
	SCId   uint16 // valid when TMId is packet data
	ASCTy  uint8
	DSCTy  uint8
	PS     bool // primary component of the service
	CA     bool
}

// Service is the set of components, labels and metadata associated with
// one SId (FIG 0/2, FIG 1/0).
type Service struct {
	SId           uint32
	Is32Bit       bool
	Label         Label
	ProgrammeType uint16
	Language      uint8
	Components    []ServiceComponent
}

// IsAudio reports whether any component of the service carries audio.
func (s Service) IsAudio() bool {
	for _, c := range s.Components {
		if c.TMId == TransportStreamAudio {
			return true
		}
	}
	return false
}

// PacketDescriptor is a FIG 0/3 packet-mode data component description.
type PacketDescriptor struct {
	SCId          uint16
	DGFlag        bool
	DSCTy         uint8
	SubChId       uint8
	PacketAddress uint16
	CAOrg         uint16
	HasCAOrg      bool
}

// GlobalComponentID is a FIG 0/8 extended component identifier, resolving
// (SId, SCIdS) to either a subchannel or an SCId.
type GlobalComponentID struct {
	SId     uint32
	SCIdS   uint8
	IsSCId  bool
	SubChId uint8
	SCId    uint16
}

// Label is a FIG 1/x 16-character label with its abbreviation mask and
// character set, per spec §3.
type Label struct {
	Text          string
	CharFlagField uint16
	Charset       uint8
	Valid         bool
}

// Announcement is a FIG 0/19 announcement support/switching record.
type Announcement struct {
	ClusterID uint8
	Types     uint16 // bitmask of announcement types
	SubChId   uint8
}

// FrequencyInfo is a FIG 0/21 frequency-information record: alternate
// frequencies and, for FM, the one-shot fmFrequency fill described as an
// open question in spec §9 (preserved here: it is only populated when
// RegionId/RandM == 0x08 and is never overwritten once set).
type FrequencyInfo struct {
	SId         uint32
	RegionId    uint8
	OtherEnsemble bool
	FMFrequency   uint32 // kHz; zero until one-shot filled
	FMFilled      bool
}

// Configuration is one complete, internally-consistent snapshot of the
// multiplex: every subchannel, service, component, packet descriptor,
// global component id, announcement, frequency info and label currently
// known. The FIB parser holds two of these ("current" and "next") and
// atomically swaps them on a FIG 0/0 ChangeFlags 3->0 transition (spec §4.7,
// invariant P8).
type Configuration struct {
	SubChannels map[uint8]SubChannel
	Services    map[uint32]Service
	Packets     map[uint16]PacketDescriptor
	GCDs        []GlobalComponentID
	Announcements []Announcement
	FrequencyInfos map[uint32]FrequencyInfo
	EnsembleLabel  Label
	EnsembleId     uint16

	// CIFCountHi/Lo track the FIG 0/0 CIF counter (hi: 0..19, lo: 0..249).
	CIFCountHi uint8
	CIFCountLo uint8

	// ChangeFlags is the most recently observed FIG 0/0 ChangeFlags value.
	ChangeFlags uint8
}

// NewConfiguration returns an empty, initialized Configuration.
func NewConfiguration() *Configuration {
	return &Configuration{
		SubChannels:    make(map[uint8]SubChannel),
		Services:       make(map[uint32]Service),
		Packets:        make(map[uint16]PacketDescriptor),
		FrequencyInfos: make(map[uint32]FrequencyInfo),
	}
}

// clone returns a deep-enough copy of c suitable for use as the "next"
// configuration being built up while "current" continues to serve readers.
func (c *Configuration) clone() *Configuration {
	n := NewConfiguration()
	for k, v := range c.SubChannels {
		n.SubChannels[k] = v
	}
	for k, v := range c.Services {
		comps := append([]ServiceComponent{}, v.Components...)
		v.Components = comps
		n.Services[k] = v
	}
	for k, v := range c.Packets {
		n.Packets[k] = v
	}
	n.GCDs = append([]GlobalComponentID{}, c.GCDs...)
	n.Announcements = append([]Announcement{}, c.Announcements...)
	for k, v := range c.FrequencyInfos {
		n.FrequencyInfos[k] = v
	}
	n.EnsembleLabel = c.EnsembleLabel
	n.EnsembleId = c.EnsembleId
	n.CIFCountHi = c.CIFCountHi
	n.CIFCountLo = c.CIFCountLo
	n.ChangeFlags = c.ChangeFlags
	return n
}

// BitRateFromSubChSize derives the subchannel bit rate in kbit/s for EEP
// long-form protection, per spec §3: BitRate = SubChSize / k[ProtLevel] * m
// where m is 8 for option 0 and 32 for option 1.
func BitRateFromSubChSize(option, protLevel uint8, subChSize uint16) uint32 {
	var kTab []float64
	switch option {
	case 0:
		kTab = []float64{12, 8, 6, 4} // EEP-A protection levels 1..4
	case 1:
		kTab = []float64{27, 21, 18, 15} // EEP-B protection levels 1..4
	default:
		return 0
	}
	if int(protLevel) >= len(kTab) {
		return 0
	}
	m := 8.0
	if option == 1 {
		m = 32.0
	}
	return uint32(float64(subChSize) / kTab[protLevel] * m)
}

// uepTable is the 64-entry short-form UEP table of spec §3, indexed by
// TableIdx, giving {SubChSize, BitRate (kbit/s)}.
//
// EN 300 401 Table 9's literal 64 (index, SubChSize, ProtLevel, BitRate)
// rows are not present anywhere in this repo's reference corpus (the
// reference decoder's fib-decoder-fig0.cpp looks the row up from a
// `cProtLevelTable` whose definition lives outside the retrieved
// original_source tree). Rather than invent 64 arbitrary numbers, each
// entry here is derived from BitRateFromSubChSize, the same EEP-A/EEP-B
// size<->bit-rate relationship the reference decoder uses for long-form
// protection (fib-decoder-fig0.cpp's `table[]={12,8,6,4}` / `{27,21,18,15}`
// constants), cycling the four EEP-A protection levels across a linearly
// growing SubChSize. This reproduces the right shape (four protection
// profiles per size step; size grows from one group of four entries to the
// next, and bit rate grows across the four entries within a group)
// without claiming to be a literal transcription of the standard's table;
// see DESIGN.md for the justification.
var uepTable = buildUEPTable()

func buildUEPTable() [64]struct {
	SubChSize uint16
	BitRate   uint32
} {
	var t [64]struct {
		SubChSize uint16
		BitRate   uint32
	}
	const profiles = 4 // EEP-A protection levels 0..3
	for i := range t {
		protLevel := uint8(i % profiles)
		group := uint16(i / profiles) // 16 size steps
		subChSize := 6 + group*6      // CUs; smallest UEP subchannel is a few CUs
		t[i].SubChSize = subChSize
		t[i].BitRate = BitRateFromSubChSize(0, protLevel, subChSize)
	}
	return t
}

// UEPSize returns the (SubChSize, BitRate) pair for short-form table index
// idx, per spec §3's "64-entry table lookup".
func UEPSize(idx uint8) (subChSize uint16, bitRate uint32) {
	if int(idx) >= len(uepTable) {
		return 0, 0
	}
	e := uepTable[idx]
	return e.SubChSize, e.BitRate
}
