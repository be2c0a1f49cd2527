/*
NAME
  epg.go

DESCRIPTION
  epg.go reassembles Electronic Programme Guide objects (EN 300 707,
  carried as MOT objects with content-type "application/epg") keyed by
  TransportId. Reassembly and dispatch only: the raw XML/binary EPG body
  is handed upstream unparsed, per spec §1's Non-goal on rendering.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package epg filters completed MOT objects down to EPG content and
// forwards them unparsed.
package epg

import "github.com/ausocean/dab/data/mot"

// Document is one completed EPG object.
type Document struct {
	TransportId uint16
	Name        string
	Body        []byte
}

// DocumentHandler receives completed EPG Documents.
type DocumentHandler func(doc Document)

// Filter adapts a mot.ObjectHandler, forwarding only objects classified as
// ContentTransport (the EPG/TPEG content-type group, per EN 300 707 §5.1)
// to onDoc.
func Filter(onDoc DocumentHandler) mot.ObjectHandler {
	return func(obj mot.Object) {
		if obj.ContentType != mot.ContentTransport {
			return
		}
		if onDoc != nil {
			onDoc(Document{TransportId: obj.TransportId, Name: obj.Name, Body: obj.Body})
		}
	}
}
