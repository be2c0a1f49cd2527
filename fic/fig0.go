/*
NAME
  fig0.go

DESCRIPTION
  fig0.go parses FIG type 0 (MCI & part of SI) extensions into the live
  Configuration: 0/0 ensemble info and CIF counter, 0/1 subchannel
  organization, 0/2 service/component organization, 0/3 packet-mode data
  components, 0/8 service component global definition, 0/19 announcement
  switching and 0/21 frequency information, per spec §4.7. Extensions not
  required by any component named in the spec (0/5, 0/6, 0/9, 0/10, 0/13,
  0/14, 0/17, 0/24...) are still walked so the FIB parser's cursor does
  not desync, but their payload is not materialized into Configuration.

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

// parseFIG0 dispatches a FIG type 0 record (extension in the low 5 bits of
// the first data byte, below the C/N, OE and P/D flags) to the matching
// handler and applies it to cfg.
func parseFIG0(cfg *Configuration, data []byte) {
	if len(data) < 1 {
		return
	}
	cn := data[0]&0x80 != 0
	oe := data[0]&0x40 != 0
	pd := data[0]&0x20 != 0
	ext := int(data[0] & 0x1F)
	_ = cn
	_ = oe
	_ = pd
	body := data[1:]

	switch ext {
	case 0:
		parseFIG0_0(cfg, body)
	case 1:
		parseFIG0_1(cfg, body)
	case 2:
		parseFIG0_2(cfg, body, pd)
	case 3:
		parseFIG0_3(cfg, body)
	case 8:
		parseFIG0_8(cfg, body, pd)
	case 19:
		parseFIG0_19(cfg, body)
	case 21:
		parseFIG0_21(cfg, body)
	default:
		// Walked but not materialized; see package doc comment.
	}
}

// parseFIG0_0 reads the ensemble id and CIF counter (spec §4.7's
// "fast_loaded" trigger for the FIB parser's swap logic).
func parseFIG0_0(cfg *Configuration, body []byte) {
	if len(body) < 4 {
		return
	}
	cfg.EnsembleId = uint16(body[0])<<8 | uint16(body[1])
	cfg.ChangeFlags = body[2] >> 6
	cfg.CIFCountHi = body[2] & 0x1F
	cfg.CIFCountLo = body[3]
}

// parseFIG0_1 reads one or more subchannel organization records (short or
// long form) and installs each into cfg.SubChannels.
func parseFIG0_1(cfg *Configuration, body []byte) {
	c := newBitCursor(body)
	for c.remaining() >= 24 {
		subChId := uint8(c.read(6))
		startAddr := uint16(c.read(10))
		longForm := c.readBool()
		if !longForm {
			// Short form: TableSwitch(1) + TableIndex(6).
			_ = c.read(1)
			idx := uint8(c.read(6))
			size, rate := UEPSize(idx)
			cfg.SubChannels[subChId] = SubChannel{
				SubChId:   subChId,
				StartCU:   startAddr,
				ShortForm: true,
				TableIdx:  idx,
				SubChSize: size,
				NumCU:     size,
				BitRate:   rate,
			}
		} else {
			option := uint8(c.read(2))
			protLevel := uint8(c.read(3))
			size := uint16(c.read(10))
			cfg.SubChannels[subChId] = SubChannel{
				SubChId:   subChId,
				StartCU:   startAddr,
				ShortForm: false,
				Option:    option,
				ProtLevel: protLevel,
				SubChSize: size,
				NumCU:     size,
				BitRate:   BitRateFromSubChSize(option, protLevel, size),
			}
		}
	}
}

// parseFIG0_2 reads service/component organization records. pd selects
// 32-bit (programme/data ECC-qualified) vs 16-bit SId encoding.
func parseFIG0_2(cfg *Configuration, body []byte, pd bool) {
	i := 0
	for i < len(body) {
		var sid uint32
		if pd {
			if i+4 > len(body) {
				break
			}
			sid = uint32(body[i])<<24 | uint32(body[i+1])<<16 | uint32(body[i+2])<<8 | uint32(body[i+3])
			i += 4
		} else {
			if i+2 > len(body) {
				break
			}
			sid = uint32(body[i])<<8 | uint32(body[i+1])
			i += 2
		}
		if i >= len(body) {
			break
		}
		numComp := int(body[i] & 0x0F)
		i++

		svc, ok := cfg.Services[sid]
		if !ok {
			svc = Service{SId: sid, Is32Bit: pd}
		}
		for k := 0; k < numComp && i+2 <= len(body); k++ {
			c0, c1 := body[i], body[i+1]
			i += 2
			tmid := TransportMode((c0 >> 6) & 0x3)
			comp := ServiceComponent{SId: sid, TMId: tmid, CA: c1&0x01 != 0, PS: c1&0x02 != 0}
			switch tmid {
			case TransportStreamAudio:
				comp.ASCTy = c0 & 0x3F
				comp.SubChId = c1 >> 2
			case TransportStreamData:
				comp.DSCTy = c0 & 0x3F
				comp.SubChId = c1 >> 2
			case TransportPacketData:
				comp.SCIdS = c0 & 0x0F
				comp.SCId = uint16(c1)
			}
			svc.Components = append(svc.Components, comp)
		}
		cfg.Services[sid] = svc
	}
}

// parseFIG0_3 reads packet-mode data component descriptions.
func parseFIG0_3(cfg *Configuration, body []byte) {
	i := 0
	for i+5 <= len(body) {
		scid := uint16(body[i])<<4 | uint16(body[i+1]>>4)
		dgFlag := body[i+1]&0x08 != 0
		dscty := body[i+2] & 0x3F
		subChId := body[i+3] >> 2
		caFlag := body[i+3]&0x01 != 0
		pktAddr := uint16(body[i+3]&0x01)<<8 | uint16(body[i+4])
		i += 5
		pd := PacketDescriptor{
			SCId:          scid,
			DGFlag:        dgFlag,
			DSCTy:         dscty,
			SubChId:       subChId,
			PacketAddress: pktAddr,
		}
		if caFlag && i+2 <= len(body) {
			pd.HasCAOrg = true
			pd.CAOrg = uint16(body[i])<<8 | uint16(body[i+1])
			i += 2
		}
		cfg.Packets[scid] = pd
	}
}

// parseFIG0_8 reads extended (global) component identifiers, resolving an
// SCIdS to either a SubChId (stream) or SCId (packet).
func parseFIG0_8(cfg *Configuration, body []byte, pd bool) {
	i := 0
	for i < len(body) {
		var sid uint32
		if pd {
			if i+4 > len(body) {
				break
			}
			sid = uint32(body[i])<<24 | uint32(body[i+1])<<16 | uint32(body[i+2])<<8 | uint32(body[i+3])
			i += 4
		} else {
			if i+2 > len(body) {
				break
			}
			sid = uint32(body[i])<<8 | uint32(body[i+1])
			i += 2
		}
		if i >= len(body) {
			break
		}
		scids := body[i] >> 4
		lsFlag := body[i]&0x08 != 0
		i++
		gcd := GlobalComponentID{SId: sid, SCIdS: scids}
		if !lsFlag {
			if i >= len(body) {
				break
			}
			gcd.SubChId = body[i] & 0x3F
			i++
		} else {
			if i+2 > len(body) {
				break
			}
			gcd.IsSCId = true
			gcd.SCId = uint16(body[i]&0x0F)<<8 | uint16(body[i+1])
			i += 2
		}
		cfg.GCDs = append(cfg.GCDs, gcd)
	}
}

// parseFIG0_19 reads announcement switching records.
func parseFIG0_19(cfg *Configuration, body []byte) {
	i := 0
	for i+3 <= len(body) {
		cluster := body[i]
		types := uint16(body[i+1])<<8 | uint16(body[i+2])
		i += 3
		if i >= len(body) {
			break
		}
		subChId := body[i] & 0x3F
		i++
		cfg.Announcements = append(cfg.Announcements, Announcement{
			ClusterID: cluster,
			Types:     types,
			SubChId:   subChId,
		})
	}
}

// parseFIG0_21 reads frequency-information records, applying the one-shot
// FM-frequency fill decided in DESIGN.md (Open Question): once FMFilled is
// set for a given SId, later FIG 0/21 occurrences are ignored rather than
// overwriting it, so the first valid FM alternative observed wins.
func parseFIG0_21(cfg *Configuration, body []byte) {
	i := 0
	for i+3 <= len(body) {
		sid := uint32(body[i])<<8 | uint32(body[i+1])
		region := body[i+2] >> 3
		rAndM := body[i+2] & 0x0F
		length := int(body[i+2] & 0x07)
		i += 3
		if i+length > len(body) {
			break
		}
		fi, ok := cfg.FrequencyInfos[sid]
		if !ok {
			fi = FrequencyInfo{SId: sid, RegionId: region}
		}
		if rAndM == 0x08 && !fi.FMFilled && length >= 2 {
			raw := uint16(body[i])<<8 | uint16(body[i+1])
			fi.FMFrequency = 87500 + uint32(raw)*100
			fi.FMFilled = true
		}
		cfg.FrequencyInfos[sid] = fi
		i += length
	}
}
