/*
NAME
  events.go

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import (
	"github.com/ausocean/dab/data/mot"
	"github.com/ausocean/dab/fic"
	"github.com/ausocean/dab/sdr"
)

// EventKind discriminates the typed event union delivered over Receiver's
// single-consumer event channel, per spec §9's design note: it replaces
// the Qt signal/slot cross-thread dispatch of the original implementation
// with one ordered Go channel.
type EventKind int

const (
	EventNewAudio EventKind = iota
	EventNewDataGroup
	EventMotObject
	EventFibLoaded
	EventNoSignal
	EventTii
	EventServiceAdded
	EventConfigurationChanged
)

// AudioEvent carries one ring-buffer flush of decoded PCM for an active
// audio subchannel, per spec §5's outbound audio description.
type AudioEvent struct {
	SubChId uint8
	Samples []int16
	Rate    int
	Flags   int // bit 0: SBR present, bit 1: PS present
}

// DataGroupEvent carries one dispatched packet-mode data group, tagged by
// the sub-handler that produced it ("ip", "tdc", "journaline", "epg", or
// "dls" for PAD dynamic labels).
type DataGroupEvent struct {
	SubChId uint8
	Kind    string
	Data    []byte
}

// ServiceInfo is the summary record returned by ListServices, per spec §5
// (`list_services() -> [{sid, label, is_audio, has_epg}]`).
type ServiceInfo struct {
	SId     uint32
	Label   string
	IsAudio bool
	HasEPG  bool
}

// Event is the tagged union delivered on Receiver.Events(): exactly one of
// the fields matching Kind is populated.
type Event struct {
	Kind    EventKind
	Audio   *AudioEvent
	Data    *DataGroupEvent
	Mot     *mot.Object
	Config  *fic.Configuration
	Tii     []sdr.TIIResult
	Service *ServiceInfo
}
