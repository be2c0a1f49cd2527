/*
NAME
  receiver_test.go

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
	"context"
	"testing"
	"time"

	"github.com/ausocean/dab/pipeline/config"
)

// erroringSource always fails, exercising the NoSignal path of run().
type erroringSource struct{}

func (erroringSource) Pull(ctx context.Context, n int) ([]complex64, error) {
	return nil, context.Canceled
}

func newTestReceiver(t *testing.T) *Receiver {
	t.Helper()
	r, err := New(config.NewDefault(nil), erroringSource{}, 2048000)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return r
}

// feedTestConfiguration seeds r's FIC Parser with one audio service (SId
// 0x1001, label "Test Service") on subchannel 3, and one packet-mode data
// service (SId 0x1002, label "Test Data") on subchannel 4, bypassing the
// FIB/CRC framing layer since fic.Parser.Feed accepts already-split FIG
// bytes directly (as fic/parser_test.go does).
func feedTestConfiguration(r *Receiver) {
	var buf []byte

	// FIG 0/1: subchannel 3, long form, option 0, protLevel 2, size 10.
	buf = append(buf, 0x05, 0x01, 0x0C, 0x00, 0x88, 0x0A)

	// FIG 0/2: service 0x1001, one stream-audio component on subchannel 3.
	buf = append(buf, 0x06, 0x02, 0x10, 0x01, 0x01, 0x00, 0x0C)

	// FIG 0/1: subchannel 4, long form, option 0, protLevel 1, size 5.
	buf = append(buf, 0x05, 0x01, 0x10, 0x00, 0x84, 0x05)

	// FIG 0/3: packet address 7, SCId 1, DSCTy 5 (TDC), subchannel 4.
	buf = append(buf, 0x06, 0x03, 0x00, 0x10, 0x05, 0x10, 0x07)

	// FIG 0/2: service 0x1002, one packet-data component, SCIdS 0, SCId 1.
	buf = append(buf, 0x06, 0x02, 0x10, 0x02, 0x01, 0xC0, 0x01)

	// FIG 1/1: label for service 0x1001, "Test Service".
	buf = append(buf, 0x35, 0x01, 0x10, 0x01)
	buf = append(buf, []byte("Test Service    ")...)
	buf = append(buf, 0x00, 0x00)

	// FIG 1/1: label for service 0x1002, "Test Data".
	buf = append(buf, 0x35, 0x01, 0x10, 0x02)
	buf = append(buf, []byte("Test Data       ")...)
	buf = append(buf, 0x00, 0x00)

	buf = append(buf, 0xFF)

	r.ficParser.Feed(buf)
}

func TestNewAcceptsValidConfig(t *testing.T) {
	cfg := config.NewDefault(nil)
	if _, err := New(cfg, erroringSource{}, 2048000); err != nil {
		t.Fatalf("New() returned error for a valid config: %v", err)
	}
}

func TestListServicesEmpty(t *testing.T) {
	r := newTestReceiver(t)
	if got := r.ListServices(); len(got) != 0 {
		t.Fatalf("ListServices() on a fresh receiver = %v, want empty", got)
	}
}

func TestListServicesReflectsConfiguration(t *testing.T) {
	r := newTestReceiver(t)
	feedTestConfiguration(r)

	got := r.ListServices()
	if len(got) != 2 {
		t.Fatalf("ListServices() returned %d services, want 2: %+v", len(got), got)
	}
	// ListServices sorts by SId, so 0x1001 (audio) sorts before 0x1002 (data).
	if got[0].Label != "Test Service" || !got[0].IsAudio {
		t.Errorf("ListServices()[0] = %+v, want label %q and IsAudio", got[0], "Test Service")
	}
	if got[1].Label != "Test Data" || got[1].IsAudio {
		t.Errorf("ListServices()[1] = %+v, want label %q and !IsAudio", got[1], "Test Data")
	}
}

func TestSelectAudioUnknownService(t *testing.T) {
	r := newTestReceiver(t)
	if err := r.SelectAudio("Nonexistent", RolePrimary); err == nil {
		t.Fatal("SelectAudio() on an unknown service returned nil error")
	}
}

func TestSelectAudioEnrollsKnownService(t *testing.T) {
	r := newTestReceiver(t)
	feedTestConfiguration(r)

	if err := r.SelectAudio("Test Service", RolePrimary); err != nil {
		t.Fatalf("SelectAudio() returned error: %v", err)
	}
	if got := r.activeAudio[3]; got != RolePrimary {
		t.Errorf("activeAudio[3] = %v, want RolePrimary", got)
	}

	select {
	case e := <-r.Events():
		if e.Kind != EventServiceAdded {
			t.Errorf("first event kind = %v, want EventServiceAdded", e.Kind)
		}
	default:
		t.Error("expected an EventServiceAdded event after SelectAudio")
	}
}

func TestSelectAudioBlockedDuringScan(t *testing.T) {
	r := newTestReceiver(t)
	feedTestConfiguration(r)
	r.SetScanMode(true)

	if err := r.SelectAudio("Test Service", RolePrimary); err == nil {
		t.Fatal("SelectAudio() during scan mode returned nil error")
	}
}

func TestSelectPacketEnrollsKnownService(t *testing.T) {
	r := newTestReceiver(t)
	feedTestConfiguration(r)

	if err := r.SelectPacket("Test Data", RoleSecondary); err != nil {
		t.Fatalf("SelectPacket() returned error: %v", err)
	}
	if got := r.activePacket[4]; got != RoleSecondary {
		t.Errorf("activePacket[4] = %v, want RoleSecondary", got)
	}
}

func TestStopServiceRequiresMatchingRole(t *testing.T) {
	r := newTestReceiver(t)
	feedTestConfiguration(r)

	if err := r.SelectAudio("Test Service", RolePrimary); err != nil {
		t.Fatalf("SelectAudio() returned error: %v", err)
	}
	if err := r.StopService(3, RoleSecondary); err == nil {
		t.Fatal("StopService() with a mismatched role returned nil error")
	}
	if err := r.StopService(3, RolePrimary); err != nil {
		t.Fatalf("StopService() returned error: %v", err)
	}
	if _, ok := r.activeAudio[3]; ok {
		t.Error("activeAudio[3] still present after StopService")
	}
}

func TestRunEmitsNoSignalOnSourceError(t *testing.T) {
	r := newTestReceiver(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	select {
	case e := <-r.Events():
		if e.Kind != EventNoSignal {
			t.Errorf("event kind = %v, want EventNoSignal", e.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventNoSignal")
	}

	r.Stop()
}

func TestJournalineForCachesReassembler(t *testing.T) {
	r := newTestReceiver(t)
	j1 := r.journalineFor(9)
	j2 := r.journalineFor(9)
	if j1 != j2 {
		t.Error("journalineFor returned a different Reassembler for the same subChId")
	}
}

func TestDispatchDataGroupTDC(t *testing.T) {
	r := newTestReceiver(t)
	payload := []byte{0x01, 0x02, 0x03}
	r.dispatchDataGroup(4, dsctyTDC, payload)

	select {
	case e := <-r.Events():
		if e.Kind != EventNewDataGroup || e.Data.Kind != "tdc" {
			t.Fatalf("event = %+v, want a tdc EventNewDataGroup", e)
		}
	default:
		t.Fatal("expected an EventNewDataGroup event")
	}
}
