package m3u8

/*
 This file contains the tag and attribute serializers shared by both
 playlist encoders. Every tag function emits one complete line
 including the trailing newline.
*/

import (
	"encoding/hex"
	"io"
	"slices"
	"strconv"
	"strings"
)

// tagWriter wraps an io.Writer and keeps the first write error, so tag
// functions can issue many small writes without checking each one.
// Writes after a failure are dropped.
type tagWriter struct {
	w   io.Writer
	err error
}

func (t *tagWriter) str(s string) {
	if t.err == nil {
		_, t.err = io.WriteString(t.w, s)
	}
}

// writeQuoted writes e.g. `,URI="value"`. The value must not contain
// double quotes, carriage returns or line feeds.
func writeQuoted(w *tagWriter, key, value string) {
	w.str(",")
	w.str(key)
	w.str(`="`)
	w.str(value)
	w.str(`"`)
}

// writeUnQuoted writes e.g. `,VIDEO-RANGE=PQ`.
func writeUnQuoted(w *tagWriter, key, value string) {
	w.str(",")
	w.str(key)
	w.str("=")
	w.str(value)
}

func writeUint(w *tagWriter, key string, value uint64) {
	w.str(",")
	w.str(key)
	w.str("=")
	w.str(strconv.FormatUint(value, 10))
}

func writeFloat(w *tagWriter, key string, value float64) {
	w.str(",")
	w.str(key)
	w.str("=")
	writeFloatValue(w, value)
}

// writeFloatValue writes the shortest decimal representation that
// round-trips, so 2.0 serializes as 2 and 5.045 as 5.045.
func writeFloatValue(w *tagWriter, value float64) {
	w.str(strconv.FormatFloat(value, 'f', -1, 64))
}

// writeHexValue writes a byte string as 0x followed by uppercase
// hexadecimal digits, two per byte.
func writeHexValue(w *tagWriter, value []byte) {
	w.str("0x")
	w.str(strings.ToUpper(hex.EncodeToString(value)))
}

// writeByteRangeValue writes `length[@offset]`.
func writeByteRangeValue(w *tagWriter, r ByteRange) {
	w.str(strconv.FormatUint(r.Length, 10))
	if r.Offset != nil {
		w.str("@")
		w.str(strconv.FormatUint(*r.Offset, 10))
	}
}

func writeDefines(w *tagWriter, defines []Define) {
	for _, d := range defines {
		switch d.Type {
		case VALUE:
			w.str(`#EXT-X-DEFINE:NAME="`)
			w.str(d.Name)
			w.str(`",VALUE="`)
			w.str(d.Value)
			w.str("\"\n")
		case IMPORT:
			w.str(`#EXT-X-DEFINE:IMPORT="`)
			w.str(d.Name)
			w.str("\"\n")
		case QUERYPARAM:
			w.str(`#EXT-X-DEFINE:QUERYPARAM="`)
			w.str(d.Name)
			w.str("\"\n")
		}
	}
}

func writeExtXStart(w *tagWriter, offset *StartOffset) {
	w.str("#EXT-X-START:TIME-OFFSET=")
	writeFloatValue(w, offset.Seconds)
	if offset.Precise {
		w.str(",PRECISE=YES")
	}
	w.str("\n")
}

// writeKey serializes an encryption method under the given tag prefix,
// either `#EXT-X-KEY:` or `#EXT-X-SESSION-KEY:`. A nil method yields
// METHOD=NONE with no other attributes.
func writeKey(w *tagWriter, tag string, method EncryptionMethod) {
	w.str(tag)
	switch m := method.(type) {
	case nil:
		w.str("METHOD=NONE")
	case AES128:
		w.str(`METHOD=AES-128,URI="`)
		w.str(m.URI)
		w.str(`"`)
		if m.IV != nil {
			writeUnQuoted(w, "IV", m.IV.String())
		}
		if m.Keyformat != "" {
			writeQuoted(w, "KEYFORMAT", m.Keyformat)
		}
		writeKeyformatversions(w, m.Keyformatversions)
	case SampleAES:
		w.str(`METHOD=SAMPLE-AES,URI="`)
		w.str(m.URI)
		w.str(`"`)
		if m.IV != nil {
			writeUnQuoted(w, "IV", m.IV.String())
		}
		writeKeyformatversions(w, m.Keyformatversions)
	case SampleAESCTR:
		w.str(`METHOD=SAMPLE-AES-CTR,URI="`)
		w.str(m.URI)
		w.str(`"`)
		writeKeyformatversions(w, m.Keyformatversions)
	}
	w.str("\n")
}

// KEYFORMATVERSIONS is omitted when it would be empty or the default
// value of 1.
func writeKeyformatversions(w *tagWriter, versions []uint64) {
	if len(versions) == 0 || (len(versions) == 1 && versions[0] == 1) {
		return
	}
	w.str(`,KEYFORMATVERSIONS="`)
	for i, v := range versions {
		if i > 0 {
			w.str("/")
		}
		w.str(strconv.FormatUint(v, 10))
	}
	w.str(`"`)
}

func writeExtXMap(w *tagWriter, section *MediaInitializationSection) {
	w.str(`#EXT-X-MAP:URI="`)
	w.str(section.URI)
	w.str(`"`)
	if section.Range != nil {
		w.str(`,BYTERANGE="`)
		w.str(strconv.FormatUint(section.Range.Length, 10))
		w.str("@")
		w.str(strconv.FormatUint(section.Range.Offset, 10))
		w.str(`"`)
	}
	w.str("\n")
}

func writeExtInf(w *tagWriter, seg *MediaSegment) {
	w.str("#EXTINF:")
	switch d := seg.Duration.(type) {
	case FloatDuration:
		writeFloatValue(w, float64(d))
	case IntDuration:
		w.str(strconv.FormatUint(uint64(d), 10))
	}
	if seg.Title != "" {
		w.str(",")
		w.str(seg.Title)
	}
	w.str("\n")
}

func writeExtXPart(w *tagWriter, part *PartialSegment) {
	w.str(`#EXT-X-PART:URI="`)
	w.str(part.URI)
	w.str(`",DURATION=`)
	writeFloatValue(w, part.Duration)
	if part.Independent {
		w.str(",INDEPENDENT=YES")
	}
	if part.Range != nil {
		w.str(`,BYTERANGE="`)
		writeByteRangeValue(w, *part.Range)
		w.str(`"`)
	}
	if part.Gap {
		w.str(",GAP=YES")
	}
	w.str("\n")
}

// writeExtXServerControl joins the active sub-features with commas.
// With no active sub-feature the tag degenerates to a bare
// `#EXT-X-SERVER-CONTROL:` line.
func writeExtXServerControl(w *tagWriter, delta *DeltaUpdateInfo, holdBack, partHoldBack *float64, canBlockReload bool) {
	w.str("#EXT-X-SERVER-CONTROL:")
	wrote := false
	if delta != nil {
		w.str("CAN-SKIP-UNTIL=")
		writeFloatValue(w, delta.SkipBoundary)
		if delta.CanSkipDateranges {
			w.str(",CAN-SKIP-DATERANGES=YES")
		}
		wrote = true
	}
	if holdBack != nil {
		if wrote {
			w.str(",")
		}
		w.str("HOLD-BACK=")
		writeFloatValue(w, *holdBack)
		wrote = true
	}
	if partHoldBack != nil {
		if wrote {
			w.str(",")
		}
		w.str("PART-HOLD-BACK=")
		writeFloatValue(w, *partHoldBack)
		wrote = true
	}
	if canBlockReload {
		if wrote {
			w.str(",")
		}
		w.str("CAN-BLOCK-RELOAD=YES")
	}
	w.str("\n")
}

func writeExtXSkip(w *tagWriter, skip *SkipInfo) {
	w.str("#EXT-X-SKIP:SKIPPED-SEGMENTS=")
	w.str(strconv.FormatUint(skip.SkippedSegments, 10))
	if len(skip.RecentlyRemovedDateranges) > 0 {
		w.str(`,RECENTLY-REMOVED-DATERANGES="`)
		w.str(strings.Join(skip.RecentlyRemovedDateranges, "\t"))
		w.str(`"`)
	}
	w.str("\n")
}

func writeExtXPreloadHint(w *tagWriter, hint *PreloadHint) {
	w.str("#EXT-X-PRELOAD-HINT:TYPE=")
	if hint.Type == PreloadMap {
		w.str("MAP")
	} else {
		w.str("PART")
	}
	writeQuoted(w, "URI", hint.URI)
	if hint.StartByteOffset != 0 {
		writeUint(w, "BYTERANGE-START", hint.StartByteOffset)
	}
	if hint.Length != nil {
		writeUint(w, "BYTERANGE-LENGTH", *hint.Length)
	}
	w.str("\n")
}

func writeExtXRenditionReport(w *tagWriter, report *RenditionReport) {
	w.str(`#EXT-X-RENDITION-REPORT:URI="`)
	w.str(report.URI)
	w.str(`"`)
	if report.LastMSN != nil {
		writeUint(w, "LAST-MSN", *report.LastMSN)
	}
	if report.LastPart != nil {
		writeUint(w, "LAST-PART", *report.LastPart)
	}
	w.str("\n")
}

// Client attributes are written in ascending key order so output is
// deterministic across encodes of the same playlist.
func writeExtXDateRange(w *tagWriter, d *DateRange) {
	w.str(`#EXT-X-DATERANGE:ID="`)
	w.str(d.ID)
	w.str(`"`)
	if d.Class != "" {
		writeQuoted(w, "CLASS", d.Class)
	}
	writeQuoted(w, "START-DATE", d.StartDate.Format(DATETIME))
	if d.Cue != nil {
		writeQuoted(w, "CUE", cueValue(d.Cue))
	}
	if d.EndDate != nil {
		writeQuoted(w, "END-DATE", d.EndDate.Format(DATETIME))
	}
	if d.Duration != nil {
		writeFloat(w, "DURATION", *d.Duration)
	}
	if d.PlannedDuration != nil {
		writeFloat(w, "PLANNED-DURATION", *d.PlannedDuration)
	}
	keys := make([]string, 0, len(d.ClientAttributes))
	for k := range d.ClientAttributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		w.str(",X-")
		w.str(k)
		w.str("=")
		switch v := d.ClientAttributes[k].(type) {
		case StringValue:
			w.str(`"`)
			w.str(string(v))
			w.str(`"`)
		case BytesValue:
			writeHexValue(w, v)
		case FloatValue:
			writeFloatValue(w, float64(v))
		}
	}
	if len(d.SCTE35Cmd) > 0 {
		w.str(",SCTE35-CMD=")
		writeHexValue(w, d.SCTE35Cmd)
	}
	if len(d.SCTE35Out) > 0 {
		w.str(",SCTE35-OUT=")
		writeHexValue(w, d.SCTE35Out)
	}
	if len(d.SCTE35In) > 0 {
		w.str(",SCTE35-IN=")
		writeHexValue(w, d.SCTE35In)
	}
	if d.EndOnNext {
		w.str(",END-ON-NEXT=YES")
	}
	w.str("\n")
}

func cueValue(cue *DateRangeCue) string {
	var s string
	switch cue.Position {
	case CuePre:
		s = "PRE"
	case CuePost:
		s = "POST"
	}
	if cue.Once {
		if s != "" {
			return s + ",ONCE"
		}
		return "ONCE"
	}
	return s
}

// writeRenditionGroup writes one EXT-X-MEDIA line per rendition in the
// group.
func writeRenditionGroup(w *tagWriter, group RenditionGroup) {
	switch g := group.(type) {
	case VideoGroup:
		for i := range g.Renditions {
			r := &g.Renditions[i]
			writeMediaHead(w, "VIDEO", r.URI)
			writeRenditionInfo(w, g.GroupId, &r.Info)
			writePriority(w, r.Info.Priority)
			writeCharacteristics(w, r.Info.Characteristics)
			w.str("\n")
		}
	case AudioGroup:
		for i := range g.Renditions {
			r := &g.Renditions[i]
			writeMediaHead(w, "AUDIO", r.URI)
			writeRenditionInfo(w, g.GroupId, &r.Info)
			writePriority(w, r.Info.Priority)
			if r.BitDepth != nil {
				writeUint(w, "BIT-DEPTH", *r.BitDepth)
			}
			if r.SampleRate != nil {
				writeUint(w, "SAMPLE-RATE", *r.SampleRate)
			}
			writeCharacteristics(w, r.Info.Characteristics)
			writeChannels(w, r.Channels)
			w.str("\n")
		}
	case SubtitlesGroup:
		for i := range g.Renditions {
			r := &g.Renditions[i]
			writeMediaHead(w, "SUBTITLES", r.URI)
			writeRenditionInfo(w, g.GroupId, &r.Info)
			writePriority(w, r.Info.Priority)
			if r.Forced {
				w.str(",FORCED=YES")
			}
			writeCharacteristics(w, r.Info.Characteristics)
			w.str("\n")
		}
	case ClosedCaptionsGroup:
		for i := range g.Renditions {
			r := &g.Renditions[i]
			writeMediaHead(w, "CLOSED-CAPTIONS", "")
			writeRenditionInfo(w, g.GroupId, &r.Info)
			writePriority(w, r.Info.Priority)
			writeQuoted(w, "INSTREAM-ID", inStreamIDValue(r.InStreamId))
			writeCharacteristics(w, r.Info.Characteristics)
			w.str("\n")
		}
	}
}

func writeMediaHead(w *tagWriter, mediaType, uri string) {
	w.str("#EXT-X-MEDIA:TYPE=")
	w.str(mediaType)
	if uri != "" {
		writeQuoted(w, "URI", uri)
	}
}

func writeRenditionInfo(w *tagWriter, groupId string, info *RenditionInfo) {
	writeQuoted(w, "GROUP-ID", groupId)
	if info.Language != "" {
		writeQuoted(w, "LANGUAGE", info.Language)
	}
	if info.AssocLanguage != "" {
		writeQuoted(w, "ASSOC-LANGUAGE", info.AssocLanguage)
	}
	writeQuoted(w, "NAME", info.Name)
	if info.StableRenditionId != "" {
		writeQuoted(w, "STABLE-RENDITION-ID", info.StableRenditionId)
	}
}

func writePriority(w *tagWriter, priority RenditionPlaybackPriority) {
	switch priority {
	case PriorityDefault:
		w.str(",DEFAULT=YES,AUTOSELECT=YES")
	case PriorityAutoSelect:
		w.str(",AUTOSELECT=YES")
	}
}

func writeCharacteristics(w *tagWriter, characteristics []string) {
	if len(characteristics) > 0 {
		writeQuoted(w, "CHARACTERISTICS", strings.Join(characteristics, ","))
	}
}

func inStreamIDValue(id InStreamID) string {
	switch id := id.(type) {
	case CCChannel:
		return "CC" + strconv.FormatUint(uint64(id), 10)
	case CCService:
		return "SERVICE" + strconv.FormatUint(uint64(id), 10)
	}
	return ""
}

// An empty coding identifier list is written as the placeholder `-`.
func writeChannels(w *tagWriter, channels AudioChannels) {
	switch c := channels.(type) {
	case nil:
		return
	case ChannelCount:
		w.str(`,CHANNELS="`)
		w.str(strconv.FormatUint(uint64(c), 10))
	case ChannelsWithCodings:
		w.str(`,CHANNELS="`)
		w.str(strconv.FormatUint(c.Count, 10))
		w.str("/")
		writeCodings(w, c.CodingIdentifiers)
	case ChannelsWithUsage:
		w.str(`,CHANNELS="`)
		w.str(strconv.FormatUint(c.Count, 10))
		w.str("/")
		writeCodings(w, c.CodingIdentifiers)
		w.str("/")
		var usage []string
		if c.Binaural {
			usage = append(usage, "BINAURAL")
		}
		if c.Immersive {
			usage = append(usage, "IMMERSIVE")
		}
		if c.Downmix {
			usage = append(usage, "DOWNMIX")
		}
		w.str(strings.Join(usage, ","))
	}
	w.str(`"`)
}

func writeCodings(w *tagWriter, identifiers []string) {
	if len(identifiers) == 0 {
		w.str("-")
		return
	}
	w.str(strings.Join(identifiers, ","))
}

func writeStreamInfAttrs(w *tagWriter, si *StreamInf) {
	w.str("BANDWIDTH=")
	w.str(strconv.FormatUint(si.Bandwidth, 10))
	if si.AverageBandwidth != nil {
		writeUint(w, "AVERAGE-BANDWIDTH", *si.AverageBandwidth)
	}
	if si.Score != nil {
		writeFloat(w, "SCORE", *si.Score)
	}
	if len(si.Codecs) > 0 {
		writeQuoted(w, "CODECS", strings.Join(si.Codecs, ","))
	}
	if len(si.SupplementalCodecs) > 0 {
		w.str(`,SUPPLEMENTAL-CODECS="`)
		for i := range si.SupplementalCodecs {
			if i > 0 {
				w.str(",")
			}
			w.str(si.SupplementalCodecs[i].Codec)
			for _, brand := range si.SupplementalCodecs[i].CompatibilityBrands {
				w.str("/")
				w.str(brand)
			}
		}
		w.str(`"`)
	}
	if si.Resolution != nil {
		w.str(",RESOLUTION=")
		w.str(strconv.FormatUint(si.Resolution.Width, 10))
		w.str("x")
		w.str(strconv.FormatUint(si.Resolution.Height, 10))
	}
	if si.HDCPLevel != "" {
		writeUnQuoted(w, "HDCP-LEVEL", string(si.HDCPLevel))
	}
	if len(si.AllowedCPC) > 0 {
		w.str(`,ALLOWED-CPC="`)
		for i := range si.AllowedCPC {
			if i > 0 {
				w.str(",")
			}
			w.str(si.AllowedCPC[i].Keyformat)
			w.str(":")
			w.str(strings.Join(si.AllowedCPC[i].CPCLabels, "/"))
		}
		w.str(`"`)
	}
	if si.VideoRange != "" && si.VideoRange != SDR {
		writeUnQuoted(w, "VIDEO-RANGE", string(si.VideoRange))
	}
	writeVideoLayout(w, si.RequiredVideoLayout)
	if si.StableVariantId != "" {
		writeQuoted(w, "STABLE-VARIANT-ID", si.StableVariantId)
	}
	if si.PathwayId != "" {
		writeQuoted(w, "PATHWAY-ID", si.PathwayId)
	}
}

// A layout that is empty or exactly one monoscopic channel is the
// default and omitted.
func writeVideoLayout(w *tagWriter, layout []VideoChannel) {
	if len(layout) == 0 || (len(layout) == 1 && layout[0] == ChMono) {
		return
	}
	w.str(`,REQ-VIDEO-LAYOUT="`)
	for i, ch := range layout {
		if i > 0 {
			w.str(",")
		}
		if ch == ChStereo {
			w.str("CH-STEREO")
		} else {
			w.str("CH-MONO")
		}
	}
	w.str(`"`)
}

func writeExtXStreamInf(w *tagWriter, vs *VariantStream) {
	w.str("#EXT-X-STREAM-INF:")
	writeStreamInfAttrs(w, &vs.StreamInf)
	if vs.FrameRate != nil {
		w.str(",FRAME-RATE=")
		w.str(strconv.FormatFloat(*vs.FrameRate, 'f', 3, 64))
	}
	if vs.Audio != "" {
		writeQuoted(w, "AUDIO", vs.Audio)
	}
	if vs.Video != "" {
		writeQuoted(w, "VIDEO", vs.Video)
	}
	if vs.Subtitles != "" {
		writeQuoted(w, "SUBTITLES", vs.Subtitles)
	}
	if vs.Captions != "" {
		writeQuoted(w, "CLOSED-CAPTIONS", vs.Captions)
	}
	w.str("\n")
	w.str(vs.URI)
	w.str("\n")
}

func writeExtXIFrameStreamInf(w *tagWriter, is *IFrameStream) {
	w.str("#EXT-X-I-FRAME-STREAM-INF:")
	writeStreamInfAttrs(w, &is.StreamInf)
	if is.Video != "" {
		writeQuoted(w, "VIDEO", is.Video)
	}
	writeQuoted(w, "URI", is.URI)
	w.str("\n")
}

func writeExtXSessionData(w *tagWriter, sd *SessionData) {
	w.str(`#EXT-X-SESSION-DATA:DATA-ID="`)
	w.str(sd.DataId)
	w.str(`"`)
	switch v := sd.Value.(type) {
	case SessionValue:
		writeQuoted(w, "VALUE", v.Value)
		if v.Language != "" {
			writeQuoted(w, "LANGUAGE", v.Language)
		}
	case SessionURI:
		writeQuoted(w, "URI", v.URI)
		if v.Format == FormatRAW {
			w.str(",FORMAT=RAW")
		} else {
			w.str(",FORMAT=JSON")
		}
	}
	w.str("\n")
}

func writeExtXContentSteering(w *tagWriter, cs *ContentSteering) {
	w.str(`#EXT-X-CONTENT-STEERING:SERVER-URI="`)
	w.str(cs.ServerURI)
	w.str(`"`)
	if cs.PathwayId != "" {
		writeQuoted(w, "PATHWAY-ID", cs.PathwayId)
	}
	w.str("\n")
}
