/*
NAME
  mot.go

DESCRIPTION
  mot.go implements the MOT (Multimedia Object Transfer) Object
  Reassembler of spec §4.14: header and body segments are accumulated by
  TransportId until every declared segment is present, then the object's
  name (parameter id 12) and content-type classify it before a single
  MotObject event fires.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mot implements MOT object reassembly: header/body segment
// accumulation and completion detection keyed by TransportId.
package mot

// ContentType classifies a completed MOT object by its declared
// content-type group, per spec §4.14.
type ContentType int

const (
	ContentUnknown ContentType = iota
	ContentImage
	ContentText
	ContentTransport // e.g. TPEG/EPG carried as MOT
	ContentApplication
)

// Object is one completed Multimedia Object.
type Object struct {
	TransportId uint16
	Name        string
	ContentType ContentType
	Body        []byte
	InDirectory bool
}

// ObjectHandler receives completed Objects.
type ObjectHandler func(obj Object)

type segments struct {
	header      []byte
	body        map[int][]byte
	numSegments int
	lastSeen    bool
	inDirectory bool
}

// Reassembler accumulates MOT header and body segments per TransportId.
type Reassembler struct {
	pending map[uint16]*segments
	onDone  ObjectHandler
}

// NewReassembler returns a Reassembler invoking onDone for each completed
// object.
func NewReassembler(onDone ObjectHandler) *Reassembler {
	return &Reassembler{pending: make(map[uint16]*segments), onDone: onDone}
}

// AddHeader installs the header segment for a TransportId, declaring the
// expected number of body segments, per spec §4.14.
func (r *Reassembler) AddHeader(transportId uint16, header []byte, numSegments int, inDirectory bool) {
	s := r.entry(transportId)
	s.header = append([]byte{}, header...)
	s.numSegments = numSegments
	s.inDirectory = inDirectory
	r.checkComplete(transportId, s)
}

// AddBodySegment installs one numbered body segment, marking the final
// segment when last is true.
func (r *Reassembler) AddBodySegment(transportId uint16, segmentNo int, data []byte, last bool) {
	s := r.entry(transportId)
	s.body[segmentNo] = append([]byte{}, data...)
	if last {
		s.numSegments = segmentNo + 1
		s.lastSeen = true
	}
	r.checkComplete(transportId, s)
}

func (r *Reassembler) entry(transportId uint16) *segments {
	s, ok := r.pending[transportId]
	if !ok {
		s = &segments{body: make(map[int][]byte)}
		r.pending[transportId] = s
	}
	return s
}

func (r *Reassembler) checkComplete(transportId uint16, s *segments) {
	if s.header == nil || s.numSegments == 0 {
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
	name, ctype := parseHeader(s.header)
	obj := Object{
		TransportId: transportId,
		Name:        name,
		ContentType: ctype,
		Body:        body,
		InDirectory: s.inDirectory,
	}
	delete(r.pending, transportId)
	if r.onDone != nil {
		r.onDone(obj)
	}
}

// parseHeader walks the MOT header's parameter list for the name
// (parameter id 12, ContentName) and derives a coarse ContentType from
// the header's content-type/sub-type fields (the first two bytes of the
// header core, per EN 301 234).
func parseHeader(header []byte) (name string, ctype ContentType) {
	ctype = ContentUnknown
	if len(header) >= 2 {
		typeGroup := header[0] >> 2
		switch typeGroup {
		case 2:
			ctype = ContentImage
		case 1:
			ctype = ContentText
		case 3:
			ctype = ContentTransport
		case 5:
			ctype = ContentApplication
		}
	}

	i := 7 // skip the 7-byte fixed header core (EN 301 234 §6.2)
	for i+2 <= len(header) {
		paramId := header[i] & 0x3F
		plen := int(header[i+1])
		i += 2
		if i+plen > len(header) {
			break
		}
		if paramId == 12 {
			name = trimNulls(header[i : i+plen])
		}
		i += plen
	}
	return name, ctype
}

func trimNulls(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
