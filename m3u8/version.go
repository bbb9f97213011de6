package m3u8

/*
 This file computes the minimal protocol version a playlist must
 declare, following section 8 of the [HLS spec]. The EXT-X-VERSION tag
 is derived from the playlist contents and never stored.

[HLS spec]: https://datatracker.ietf.org/doc/html/draft-pantos-hls-rfc8216bis-16
*/

// updateVersion sets ver to newVer unless it is already higher.
func updateVersion(ver *uint8, newVer uint8) {
	if *ver < newVer {
		*ver = newVer
	}
}

// MinVersion returns the minimal protocol version the playlist must
// declare to be compatible with its contents.
func (p *MediaPlaylist) MinVersion() uint8 {
	ver := uint8(1)
	hasMap := false
	for i := range p.Segments {
		seg := &p.Segments[i]
		if seg.Encryption != nil {
			switch m := seg.Encryption.(type) {
			case AES128:
				if m.IV != nil {
					updateVersion(&ver, 2)
				}
				if m.Keyformat != "" {
					ver = 5
				}
			case SampleAES:
				ver = 5
			}
			for _, kv := range keyformatversions(seg.Encryption) {
				if kv != 1 {
					ver = 5
					break
				}
			}
		}
		if _, ok := seg.Duration.(FloatDuration); ok {
			updateVersion(&ver, 3)
		}
		if _, ok := seg.RangeOrBitrate.(SegmentByteRange); ok {
			updateVersion(&ver, 4)
		}
		if seg.Map != nil {
			// Nothing later in the loop can raise the version further.
			hasMap = true
			ver = 5
			break
		}
	}
	if p.IframesOnly {
		updateVersion(&ver, 4)
	} else if hasMap {
		// An EXT-X-MAP on a playlist without I-frames only segments
		// requires version 6 rather than 5.
		ver = 6
	}
	if len(p.Variables) > 0 {
		ver = 8
	}
	if p.Metadata.Skip != nil {
		if len(p.Metadata.Skip.RecentlyRemovedDateranges) == 0 {
			ver = 9
		} else {
			ver = 10
		}
	}
	for _, d := range p.Variables {
		if d.Type == QUERYPARAM {
			ver = 11
		}
	}
	return ver
}

// MinVersion returns the minimal protocol version the playlist must
// declare to be compatible with its contents.
func (p *MultivariantPlaylist) MinVersion() uint8 {
	ver := uint8(1)
outer:
	for _, group := range p.RenditionGroups {
		cc, ok := group.(ClosedCaptionsGroup)
		if !ok {
			continue
		}
		for i := range cc.Renditions {
			if _, ok := cc.Renditions[i].InStreamId.(CCService); ok {
				ver = 7
				break outer
			}
		}
	}
	if len(p.Variables) > 0 {
		ver = 8
	}
	for _, d := range p.Variables {
		if d.Type == QUERYPARAM {
			ver = 11
		}
	}
	for i := range p.VariantStreams {
		if len(p.VariantStreams[i].RequiredVideoLayout) > 0 {
			ver = 12
		}
	}
	return ver
}

func keyformatversions(method EncryptionMethod) []uint64 {
	switch m := method.(type) {
	case AES128:
		return m.Keyformatversions
	case SampleAES:
		return m.Keyformatversions
	case SampleAESCTR:
		return m.Keyformatversions
	}
	return nil
}
