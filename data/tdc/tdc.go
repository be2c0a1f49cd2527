/*
NAME
  tdc.go

DESCRIPTION
  tdc.go passes Transparent Data Channel payload bytes through unmodified,
  per spec §4.12's packet-mode data sub-handlers: TDC carries no internal
  framing of its own, so the MSC Data Group's body is the application
  payload as-is.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package tdc passes Transparent Data Channel payloads through unmodified.
package tdc

// PayloadHandler receives one TDC data group's payload, unmodified.
type PayloadHandler func(payload []byte)

// Pass forwards data to handler verbatim. TDC (EN 300 401 Annex F) defines
// no internal segmentation beyond the MSC Data Group itself.
func Pass(data []byte, handler PayloadHandler) {
	if handler != nil {
		handler(append([]byte{}, data...))
	}
}
