/*
NAME
  fig1.go

DESCRIPTION
  fig1.go parses FIG type 1 (Service and Ensemble Information) records:
  16-character labels and their abbreviation character-flag field for the
  ensemble (1/0) and for services (1/1, 1/5), per spec §4.7. This is the
  single source of truth for label text (the "FibConfigFig1" unification
  decided in DESIGN.md's Open Questions).

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

const labelTextLen = 16

// parseFIG1 dispatches a FIG type 1 record by its extension field.
func parseFIG1(cfg *Configuration, data []byte) {
	if len(data) < 1 {
		return
	}
	charset := data[0] >> 4
	ext := int(data[0] & 0x0F) // OE flag and 3-bit extension
	body := data[1:]

	switch ext {
	case 0:
		parseFIG1_0(cfg, body, charset)
	case 1, 5:
		parseFIG1_1(cfg, body, ext == 5, charset)
	default:
		// FIG 1/2..1/4, 1/6 (service component / XPAD labels) are walked at
		// the FIB level but not materialized: no component named in the
		// spec consumes them.
	}
}

// parseFIG1_0 reads the ensemble label.
func parseFIG1_0(cfg *Configuration, body []byte, charset uint8) {
	if len(body) < 2+labelTextLen+2 {
		return
	}
	// body[0:2] is the ensemble id restated; skip it.
	lbl := parseLabel(body[2:], charset)
	cfg.EnsembleLabel = lbl
}

// parseFIG1_1 reads a service label, keyed by a 16-bit SId (ext 1) or
// 32-bit SId (ext 5).
func parseFIG1_1(cfg *Configuration, body []byte, is32 bool, charset uint8) {
	idLen := 2
	if is32 {
		idLen = 4
	}
	if len(body) < idLen+labelTextLen+2 {
		return
	}
	var sid uint32
	if is32 {
		sid = uint32(body[0])<<24 | uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
	} else {
		sid = uint32(body[0])<<8 | uint32(body[1])
	}
	lbl := parseLabel(body[idLen:], charset)

	svc, ok := cfg.Services[sid]
	if !ok {
		svc = Service{SId: sid, Is32Bit: is32}
	}
	svc.Label = lbl
	cfg.Services[sid] = svc
}

// parseLabel reads a 16-character label plus its trailing 2-byte
// character-flag field, decoding EBU Latin (charset 0) text as Latin-1.
// Other charset values are decoded byte-for-byte as Latin-1 too: a full
// EBU Latin table is not needed for the ASCII-range characters typical of
// real ensemble/service labels, and the raw Charset value is preserved for
// callers that need it.
func parseLabel(body []byte, charset uint8) Label {
	if len(body) < labelTextLen+2 {
		return Label{}
	}
	text := make([]rune, 0, labelTextLen)
	for _, b := range body[:labelTextLen] {
		text = append(text, rune(b))
	}
	flag := uint16(body[labelTextLen])<<8 | uint16(body[labelTextLen+1])
	return Label{
		Text:          trimTrailingSpace(string(text)),
		Charset:       charset,
		CharFlagField: flag,
		Valid:         true,
	}
}

func trimTrailingSpace(s string) string {
	end := len(s)
	for end > 0 && s[end-1] == ' ' {
		end--
	}
	return s[:end]
}
