/*
NAME
  journaline.go

DESCRIPTION
  journaline.go reassembles Journaline (IRT dynamic news service) objects
  carried as MSC Data Groups, keyed by the ObjectId declared in each
  group's extension header. Reassembly and dispatch only: no rendering of
  the decoded news-tree content, per spec §1's Non-goal on presentation.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package journaline reassembles Journaline objects from MSC data groups.
package journaline

// Object is one completed Journaline object: the raw payload bytes plus
// the identifier needed by a downstream renderer.
type Object struct {
	ObjectId uint16
	Body     []byte
}

// ObjectHandler receives completed Journaline Objects.
type ObjectHandler func(obj Object)

type segments struct {
	body        map[int][]byte
	numSegments int
}

// Reassembler accumulates Journaline segments keyed by ObjectId.
type Reassembler struct {
	pending map[uint16]*segments
	onDone  ObjectHandler
}

// NewReassembler returns a Reassembler invoking onDone for each completed
// object.
func NewReassembler(onDone ObjectHandler) *Reassembler {
	return &Reassembler{pending: make(map[uint16]*segments), onDone: onDone}
}

// AddSegment installs one numbered segment of an object. last marks the
// final segment, fixing the object's total segment count.
func (r *Reassembler) AddSegment(objectId uint16, segmentNo int, data []byte, last bool) {
	s, ok := r.pending[objectId]
	if !ok {
		s = &segments{body: make(map[int][]byte)}
		r.pending[objectId] = s
	}
	s.body[segmentNo] = append([]byte{}, data...)
	if last {
		s.numSegments = segmentNo + 1
	}
	if s.numSegments == 0 {
		return
	}
	for i := 0; i < s.numSegments; i++ {
		if _, ok := s.body[i]; !ok {
			return
		}
	}
	var body []byte
	for i := 0; i < s.numSegments; i++ {
		body = append(body, s.body[i]...)
	}
	delete(r.pending, objectId)
	if r.onDone != nil {
		r.onDone(Object{ObjectId: objectId, Body: body})
	}
}
