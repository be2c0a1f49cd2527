/*
NAME
  ip.go

DESCRIPTION
  ip.go unwraps UDP payload bytes from MSC data groups carrying IP
  datagrams (DSCTy per EN 301 735), emitting udp_payload events per spec
  scenario S4. Reassembly/dispatch only: no network stack participation,
  per spec's Non-goal on device/transport abstractions beyond this.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package ip unwraps IPv4/UDP datagrams carried in MSC packet-mode data
// groups.
package ip

import "fmt"

// Datagram is one unwrapped UDP payload plus its source/destination
// ports.
type Datagram struct {
	SrcPort, DstPort uint16
	Payload          []byte
}

// PayloadHandler receives each unwrapped UDP payload.
type PayloadHandler func(d Datagram)

// Unwrap parses an IPv4 datagram (header + UDP payload) from a completed
// MSC data group and invokes handler with the UDP payload, per the
// udp_payload event of spec scenario S4.
func Unwrap(dataGroup []byte, handler PayloadHandler) error {
	if len(dataGroup) < 20 {
		return fmt.Errorf("data/ip: datagram too short for an IPv4 header")
	}
	ihl := int(dataGroup[0]&0x0F) * 4
	proto := dataGroup[9]
	if proto != 17 { // UDP
		return fmt.Errorf("data/ip: unsupported IP protocol %d", proto)
	}
	if len(dataGroup) < ihl+8 {
		return fmt.Errorf("data/ip: datagram too short for a UDP header")
	}
	udp := dataGroup[ihl:]
	srcPort := uint16(udp[0])<<8 | uint16(udp[1])
	dstPort := uint16(udp[2])<<8 | uint16(udp[3])
	payload := udp[8:]

	if handler != nil {
		handler(Datagram{SrcPort: srcPort, DstPort: dstPort, Payload: append([]byte{}, payload...)})
	}
	return nil
}
