/*
NAME
  receiver.go

DESCRIPTION
  receiver.go wires the full DAB/DAB+ leaf-to-root signal chain of spec §2's
  dependency order: Sample Reader -> Time Syncer -> Phase Reference ->
  OFDM Demodulator -> {FIC Parser, TII Detector, MSC Handler} -> {audio
  codec chains, packet-mode data sub-handlers, ETI Generator}. Modeled
  directly on revid.Revid/revid/pipeline.go's role as the glue layer atop
  already-independent leaf components.

AUTHORS
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pipeline orchestrates the DAB/DAB+ receiver signal chain and
// exposes its control-plane and event-stream surface, per spec §5/§6.
package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ausocean/dab/audio/aacdec"
	"github.com/ausocean/dab/audio/mp2"
	"github.com/ausocean/dab/audio/mp4"
	"github.com/ausocean/dab/audio/pcm"
	cpcm "github.com/ausocean/dab/codec/pcm"
	"github.com/ausocean/dab/data/epg"
	"github.com/ausocean/dab/data/ip"
	"github.com/ausocean/dab/data/journaline"
	"github.com/ausocean/dab/data/mot"
	"github.com/ausocean/dab/data/packet"
	"github.com/ausocean/dab/data/pad"
	"github.com/ausocean/dab/data/tdc"
	"github.com/ausocean/dab/eti"
	"github.com/ausocean/dab/fic"
	"github.com/ausocean/dab/msc"
	"github.com/ausocean/dab/pipeline/config"
	"github.com/ausocean/dab/sdr"
)

// Role identifies why a service is active, per spec §5
// (`stop_service(subchid|sid, role=primary|secondary|background)`).
type Role int

const (
	RolePrimary Role = iota
	RoleSecondary
	RoleBackground
)

// Approximate DSCTy (data service component type) values used to route
// packet-mode data groups to a sub-handler, per EN 301 401's data
// component type registry; exact assignment is a documented approximation,
// consistent with the puncturing-vector and phase-reference
// approximations elsewhere in this module.
const (
	dsctyTDC        = 5
	dsctyMOT        = 24
	dsctyJournaline = 44
	dsctyIP         = 59
)

const (
	frameSamples    = 196608 // T_F, per spec §3.
	symbolsPerFrame = 76     // L, per spec §3: symbol 0 is the phase reference.
	ficSymbols      = 3      // Symbols 1..3 carry the FIC.
)

// Receiver owns the sample source and every stage of the decode chain, and
// is the sole entry point for control-plane operations and the event
// stream.
type Receiver struct {
	cfg config.Config

	reader   *sdr.Reader
	sync     *sdr.TimeSyncer
	phaseRef *sdr.PhaseRef
	demod    *sdr.Demodulator
	tiiDet   *sdr.TIIDetector

	ficParser  *fic.Parser
	mscHandler *msc.Handler
	etiGen     *eti.Generator

	padHandlers     map[uint8]*pad.Handler
	motAssem        map[uint8]*mot.Reassembler
	journalineAssem map[uint8]*journaline.Reassembler
	pktProc         map[uint8]*packet.Processor

	mu           sync.Mutex
	activeAudio  map[uint8]Role
	activePacket map[uint8]Role
	scanMode     bool

	events chan Event
	etiOut chan<- []byte

	cancel context.CancelFunc
	wg     sync.WaitGroup

	cifIdx int // running global CIF index, for ETI CIFCount_hi/lo derivation
}

// New returns a Receiver reading from src at sampleRate, configured per
// cfg.
func New(cfg config.Config, src sdr.SampleSource, sampleRate float64) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid config: %w", err)
	}
	soft := sdr.SoftBitFuncs[int(cfg.SoftBitType)]

	r := &Receiver{
		cfg:          cfg,
		reader:       sdr.NewReader(src, sampleRate, cfg.Logger),
		sync:         sdr.NewTimeSyncer(cfg.Threshold),
		phaseRef:     sdr.NewPhaseRef(),
		demod:        sdr.NewDemodulator(soft),
		tiiDet:       sdr.NewTIIDetector(cfg.TIIFramesToCount, float64(cfg.TIIThreshold), cfg.TIICollisions),
		ficParser:    fic.NewParser(),
		mscHandler:   msc.NewHandler(cfg.Logger),
		etiGen:       eti.NewGenerator(),
		padHandlers:     make(map[uint8]*pad.Handler),
		motAssem:        make(map[uint8]*mot.Reassembler),
		journalineAssem: make(map[uint8]*journaline.Reassembler),
		pktProc:         make(map[uint8]*packet.Processor),
		activeAudio:  make(map[uint8]Role),
		activePacket: make(map[uint8]Role),
		scanMode:     cfg.ScanMode,
		events:       make(chan Event, 64),
	}
	r.reader.SetDCRemoval(cfg.UseDCRemoval)
	return r, nil
}

// Events returns the Receiver's single-consumer event channel.
func (r *Receiver) Events() <-chan Event {
	return r.events
}

// SetETIOutput installs an optional tap receiving one complete ETI-NI
// frame per decoded CIF, per spec §4.15's "optional tap" framing. Passing
// nil disables the tap.
func (r *Receiver) SetETIOutput(ch chan<- []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.etiOut = ch
}

// SetScanMode inhibits Backend creation while channels are iterated
// (`set_scan_mode`, spec §5/§6).
func (r *Receiver) SetScanMode(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scanMode = on
}

// Start launches the receive loop. It returns once the first frame has
// been scheduled; decoding runs in a background goroutine until ctx is
// cancelled or Stop is called.
func (r *Receiver) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go r.run(ctx)
	return nil
}

// Stop cancels the receive loop and waits for it to exit.
func (r *Receiver) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	close(r.events)
}

func (r *Receiver) emit(e Event) {
	select {
	case r.events <- e:
	default:
		// Slow consumer: drop rather than block the decode loop.
	}
}

// run pulls one transmission frame (T_F samples) at a time, locates the
// NULL symbol and phase reference, demodulates every subsequent OFDM
// symbol, and dispatches FIC/MSC/TII bits to their respective decoders.
func (r *Receiver) run(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		samples, err := r.reader.Pull(ctx, frameSamples)
		if err != nil {
			r.emit(Event{Kind: EventNoSignal})
			return
		}

		offset, ok := r.sync.FindNull(samples)
		if !ok {
			r.emit(Event{Kind: EventNoSignal})
			continue
		}

		pos := offset + sdr.TNull
		r.decodeFrame(samples, pos)
	}
}

// decodeFrame demodulates the symbolsPerFrame OFDM symbols starting at pos
// within samples (the phase reference immediately follows the NULL
// symbol), routing FIC symbols to the FIC Parser and MSC symbols to the
// MSC Handler, then updates TII from the NULL symbol region just decoded.
func (r *Receiver) decodeFrame(samples []complex64, pos int) {
	const symLen = sdr.TU + sdr.TG

	nullStart := pos - sdr.TNull
	if nullStart >= 0 && nullStart+sdr.TNull <= len(samples) {
		if res := r.tiiDet.Feed(samples[nullStart : nullStart+sdr.TNull]); len(res) > 0 {
			r.emit(Event{Kind: EventTii, Tii: res})
		}
	}

	if pos+symLen <= len(samples) {
		if _, fineOffset := r.phaseRef.Correlate(samples[pos+sdr.TG : pos+symLen]); fineOffset != 0 {
			pos += fineOffset
		}
	}

	var ficAccum []int8
	var cif []int8
	ficCodewordBits := 0

	for sym := 0; sym < symbolsPerFrame; sym++ {
		if pos+symLen > len(samples) || pos < 0 {
			break
		}
		active := samples[pos+sdr.TG : pos+symLen]
		pos += symLen

		bits, _ := r.demod.DemodSymbol(active)
		if sym == 0 {
			continue // phase reference: seeds the demodulator only.
		}

		if sym <= ficSymbols {
			ficAccum = append(ficAccum, bits...)
			ficCodewordBits += len(bits)
			for ficCodewordBits >= fic.CodewordPunctLen {
				r.feedFICCodeword(ficAccum[:fic.CodewordPunctLen])
				ficAccum = ficAccum[fic.CodewordPunctLen:]
				ficCodewordBits -= fic.CodewordPunctLen
			}
			continue
		}

		r.mscHandler.WriteBlock(sym, bits)
		cif = append(cif, bits...)

		if len(cif) == 18*len(bits) { // one full CIF's worth of blocks seen
			r.finishCIF(cif)
			cif = nil
		}
	}
}

func (r *Receiver) feedFICCodeword(punctured []int8) {
	fibGroup := fic.DecodeCodeword(punctured)
	payload := fic.SplitFIBs(fibGroup)
	if len(payload) == 0 {
		return
	}
	r.ficParser.Feed(payload)
	r.emit(Event{Kind: EventFibLoaded, Config: r.ficParser.Current()})
}

func (r *Receiver) finishCIF(cif []int8) {
	r.cifIdx++
	if r.etiOut == nil {
		return
	}
	cfg := r.ficParser.Current()
	fibBundle := make([]byte, 96)
	frame := r.etiGen.Generate(cif, cfg, fibBundle, uint16(r.cifIdx/250), uint16(r.cifIdx%250))
	select {
	case r.etiOut <- frame:
	default:
	}
}

// ListServices returns every known service in the current Configuration,
// per spec §5 (`list_services`).
func (r *Receiver) ListServices() []ServiceInfo {
	cfg := r.ficParser.Current()
	out := make([]ServiceInfo, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		hasEPG := false
		for _, c := range svc.Components {
			if c.TMId == fic.TransportPacketData {
				if pd, ok := cfg.Packets[c.SCId]; ok && pd.DSCTy == dsctyJournaline {
					hasEPG = true
				}
			}
		}
		out = append(out, ServiceInfo{
			SId:     svc.SId,
			Label:   strings.TrimSpace(svc.Label.Text),
			IsAudio: svc.IsAudio(),
			HasEPG:  hasEPG,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SId < out[j].SId })
	return out
}

// SelectAudio enrolls the audio subchannel whose service label matches
// label (case-insensitive, trimmed), decoding DAB (MP2) or DAB+ (AAC LC)
// per the component's ASCTy, per spec §5 (`select_audio`).
func (r *Receiver) SelectAudio(label string, role Role) error {
	cfg := r.ficParser.Current()
	svc, comp, err := findAudioComponent(cfg, label)
	if err != nil {
		return err
	}
	sc, ok := cfg.SubChannels[comp.SubChId]
	if !ok {
		return fmt.Errorf("pipeline: no subchannel %d for service %q", comp.SubChId, label)
	}

	r.mu.Lock()
	if r.scanMode {
		r.mu.Unlock()
		return fmt.Errorf("pipeline: cannot select audio while scanning")
	}
	r.activeAudio[sc.SubChId] = role
	r.mu.Unlock()

	ring := pcm.NewRing(uint(sc.BitRate*1000/16), func(buf cpcm.Buffer, flags int) {
		r.emit(Event{Kind: EventNewAudio, Audio: &AudioEvent{
			SubChId: sc.SubChId, Samples: int16Samples(buf), Rate: int(buf.Format.Rate), Flags: flags,
		}})
	})

	var processor msc.FrameProcessor
	switch comp.ASCTy {
	case uint8(fic.AudioAAC):
		mp4Proc := mp4.NewProcessor(int(sc.BitRate), func(envelope []byte) {
			dec := aacdec.New()
			samples, rate, _, err := dec.DecodeEnvelope(envelope)
			if err != nil {
				return
			}
			if pcmSamples, ok := samples.([]int16); ok {
				ring.PushInt16(pcmSamples, 0)
				_ = rate
			}
		})
		processor = func(data []byte) { mp4Proc.AddFrame(data) }
	default:
		padHandler := r.padFor(sc.SubChId)
		mp2Proc := mp2.NewProcessor(func(frame []byte, sampleRate int) {
			samples := mp2.DecodeFrame(frame, true, sc.BitRate >= 192)
			ring.PushInt16(samples, 0)

			padLen := mp2.PADFieldLen(int(sc.BitRate))
			if len(frame) > padLen {
				feedPAD(padHandler, frame[len(frame)-padLen:])
			}
		})
		processor = func(data []byte) {
			for _, b := range data {
				for bit := 7; bit >= 0; bit-- {
					mp2Proc.Feed((b >> uint(bit)) & 1)
				}
			}
		}
	}

	b := msc.NewBackend(sc.SubChId, sc.StartCU, sc.NumCU, sc.ProtLevel, processor)
	r.mscHandler.Enroll(context.Background(), b, false)
	r.emit(Event{Kind: EventServiceAdded, Service: &ServiceInfo{SId: svc.SId, Label: strings.TrimSpace(svc.Label.Text), IsAudio: true}})
	return nil
}

// SelectPacket enrolls the packet-mode data subchannel whose service label
// matches label, dispatching completed data groups to the appropriate
// sub-handler by DSCTy, per spec §5 (`select_packet`).
func (r *Receiver) SelectPacket(label string, role Role) error {
	cfg := r.ficParser.Current()
	svc, comp, pd, err := findPacketComponent(cfg, label)
	if err != nil {
		return err
	}
	sc, ok := cfg.SubChannels[pd.SubChId]
	if !ok {
		return fmt.Errorf("pipeline: no subchannel %d for service %q", pd.SubChId, label)
	}

	r.mu.Lock()
	if r.scanMode {
		r.mu.Unlock()
		return fmt.Errorf("pipeline: cannot select packet data while scanning")
	}
	r.activePacket[sc.SubChId] = role
	r.mu.Unlock()

	proc := packet.NewProcessor(pd.PacketAddress, func(data []byte) {
		r.dispatchDataGroup(sc.SubChId, pd.DSCTy, data)
	})
	r.pktProc[sc.SubChId] = proc

	backendProc := msc.FrameProcessor(func(data []byte) { proc.Feed(bitsOf(data)) })
	b := msc.NewBackend(sc.SubChId, sc.StartCU, sc.NumCU, sc.ProtLevel, backendProc)
	r.mscHandler.Enroll(context.Background(), b, false)
	r.emit(Event{Kind: EventServiceAdded, Service: &ServiceInfo{SId: svc.SId, Label: strings.TrimSpace(svc.Label.Text)}})
	return nil
}

func (r *Receiver) dispatchDataGroup(subChId uint8, dscty uint8, data []byte) {
	switch dscty {
	case dsctyIP:
		ip.Unwrap(data, func(d ip.Datagram) {
			r.emit(Event{Kind: EventNewDataGroup, Data: &DataGroupEvent{SubChId: subChId, Kind: "ip", Data: d.Payload}})
		})
	case dsctyTDC:
		tdc.Pass(data, func(payload []byte) {
			r.emit(Event{Kind: EventNewDataGroup, Data: &DataGroupEvent{SubChId: subChId, Kind: "tdc", Data: payload}})
		})
	case dsctyJournaline:
		r.journalineFor(subChId).AddSegment(0, 0, data, true)
	case dsctyMOT:
		r.motFor(subChId).AddHeader(0, data, 1, false)
	default:
	}
}

func (r *Receiver) journalineFor(subChId uint8) *journaline.Reassembler {
	if j, ok := r.journalineAssem[subChId]; ok {
		return j
	}
	j := journaline.NewReassembler(func(obj journaline.Object) {
		r.emit(Event{Kind: EventNewDataGroup, Data: &DataGroupEvent{SubChId: subChId, Kind: "journaline", Data: obj.Body}})
	})
	r.journalineAssem[subChId] = j
	return j
}

// motFor returns the MOT Reassembler for subChId, emitting a MotObject
// event for every completed object and additionally an "epg" data-group
// event when the object's content-type classifies as EPG/TPEG transport.
func (r *Receiver) motFor(subChId uint8) *mot.Reassembler {
	if m, ok := r.motAssem[subChId]; ok {
		return m
	}
	emitEPG := epg.Filter(func(doc epg.Document) {
		r.emit(Event{Kind: EventNewDataGroup, Data: &DataGroupEvent{SubChId: subChId, Kind: "epg", Data: doc.Body}})
	})
	onDone := func(obj mot.Object) {
		r.emit(Event{Kind: EventMotObject, Mot: &obj})
		emitEPG(obj)
	}
	m := mot.NewReassembler(onDone)
	r.motAssem[subChId] = m
	return m
}

// StopService withdraws the Backend enrolled for subChId if its active
// role matches role, per spec §5 (`stop_service`).
func (r *Receiver) StopService(subChId uint8, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if got, ok := r.activeAudio[subChId]; ok && got == role {
		delete(r.activeAudio, subChId)
		r.mscHandler.Withdraw(subChId)
		return nil
	}
	if got, ok := r.activePacket[subChId]; ok && got == role {
		delete(r.activePacket, subChId)
		r.mscHandler.Withdraw(subChId)
		return nil
	}
	return fmt.Errorf("pipeline: no active service on subchannel %d with role %v", subChId, role)
}

func findAudioComponent(cfg *fic.Configuration, label string) (fic.Service, fic.ServiceComponent, error) {
	want := strings.ToLower(strings.TrimSpace(label))
	for _, svc := range cfg.Services {
		if strings.ToLower(strings.TrimSpace(svc.Label.Text)) != want {
			continue
		}
		for _, c := range svc.Components {
			if c.TMId == fic.TransportStreamAudio {
				return svc, c, nil
			}
		}
	}
	return fic.Service{}, fic.ServiceComponent{}, fmt.Errorf("pipeline: no audio service labelled %q", label)
}

func findPacketComponent(cfg *fic.Configuration, label string) (fic.Service, fic.ServiceComponent, fic.PacketDescriptor, error) {
	want := strings.ToLower(strings.TrimSpace(label))
	for _, svc := range cfg.Services {
		if strings.ToLower(strings.TrimSpace(svc.Label.Text)) != want {
			continue
		}
		for _, c := range svc.Components {
			if c.TMId != fic.TransportPacketData {
				continue
			}
			if pd, ok := cfg.Packets[c.SCId]; ok {
				return svc, c, pd, nil
			}
		}
	}
	return fic.Service{}, fic.ServiceComponent{}, fic.PacketDescriptor{}, fmt.Errorf("pipeline: no packet service labelled %q", label)
}

// padFor returns the PAD Handler for subChId, emitting a "dls" data-group
// event for dynamic labels and routing completed MOT X-PAD groups to the
// subchannel's MOT Reassembler.
func (r *Receiver) padFor(subChId uint8) *pad.Handler {
	if h, ok := r.padHandlers[subChId]; ok {
		return h
	}
	h := pad.NewHandler(
		func(text string, clear bool) {
			r.emit(Event{Kind: EventNewDataGroup, Data: &DataGroupEvent{SubChId: subChId, Kind: "dls", Data: []byte(text)}})
		},
		func(group []byte) { r.motFor(subChId).AddHeader(0, group, 1, false) },
	)
	r.padHandlers[subChId] = h
	return h
}

// feedPAD reads the one-byte X-PAD field header (appType:5, C/Z flag:1)
// from the tail of an MP2 frame's ancillary data and forwards the field to
// h. This assumes a single X-PAD field per frame with no continuation
// indicator list, a documented simplification matching pad.go's existing
// "every DLS field is self-terminating" approximation.
func feedPAD(h *pad.Handler, padBytes []byte) {
	if len(padBytes) < 2 {
		return
	}
	appType := int(padBytes[0] >> 3)
	cFlag := padBytes[0]&0x04 != 0
	h.FeedXPAD(appType, cFlag, padBytes[1:])
}

func int16Samples(buf cpcm.Buffer) []int16 {
	out := make([]int16, len(buf.Data)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(buf.Data[2*i:]))
	}
	return out
}

func bitsOf(data []byte) []byte {
	out := make([]byte, 0, len(data)*8)
	for _, b := range data {
		for bit := 7; bit >= 0; bit-- {
			out = append(out, (b>>uint(bit))&1)
		}
	}
	return out
}
