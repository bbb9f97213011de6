package m3u8

/*
 This file assembles complete playlist documents from the tag
 serializers in tags.go.
*/

import (
	"io"
	"strconv"
	"strings"
)

// Encode writes the playlist as an extended M3U document. Encoding
// stops at the first write error, which is returned verbatim. The
// output written up to that point stays in w, so callers that need
// all-or-nothing behavior should encode into a buffer first.
//
// The playlist is not validated. Contents that violate the protocol,
// like a segment duration above TargetDuration, are written as-is.
func (p *MediaPlaylist) Encode(w io.Writer) error {
	tw := &tagWriter{w: w}
	tw.str("#EXTM3U\n")
	writeVersion(tw, p.MinVersion())
	writeDefines(tw, p.Variables)
	if p.IndependentSegments {
		tw.str("#EXT-X-INDEPENDENT-SEGMENTS\n")
	}
	if p.StartOffset != nil {
		writeExtXStart(tw, p.StartOffset)
	}
	tw.str("#EXT-X-TARGETDURATION:")
	tw.str(strconv.FormatUint(p.TargetDuration, 10))
	tw.str("\n")
	if p.FirstMediaSequence != 0 {
		tw.str("#EXT-X-MEDIA-SEQUENCE:")
		tw.str(strconv.FormatUint(p.FirstMediaSequence, 10))
		tw.str("\n")
	}
	if p.DiscontinuitySequence != 0 {
		tw.str("#EXT-X-DISCONTINUITY-SEQUENCE:")
		tw.str(strconv.FormatUint(p.DiscontinuitySequence, 10))
		tw.str("\n")
	}
	if p.Finished {
		tw.str("#EXT-X-ENDLIST\n")
	}
	switch p.PlaylistType {
	case EVENT:
		tw.str("#EXT-X-PLAYLIST-TYPE:EVENT\n")
	case VOD:
		tw.str("#EXT-X-PLAYLIST-TYPE:VOD\n")
	}
	if p.IframesOnly {
		tw.str("#EXT-X-I-FRAMES-ONLY\n")
	}
	var partHoldBack *float64
	if p.PartInf != nil {
		tw.str("#EXT-X-PART-INF:PART-TARGET=")
		writeFloatValue(tw, p.PartInf.PartTarget)
		tw.str("\n")
		partHoldBack = &p.PartInf.PartHoldBack
	}
	if p.DeltaUpdates != nil || p.HoldBack != nil || partHoldBack != nil || p.CanBlockReload {
		writeExtXServerControl(tw, p.DeltaUpdates, p.HoldBack, partHoldBack, p.CanBlockReload)
	}
	for i := range p.Metadata.DateRanges {
		writeExtXDateRange(tw, &p.Metadata.DateRanges[i])
	}
	if p.Metadata.Skip != nil {
		writeExtXSkip(tw, p.Metadata.Skip)
	}
	for i := range p.Metadata.PreloadHints {
		writeExtXPreloadHint(tw, &p.Metadata.PreloadHints[i])
	}
	for i := range p.Metadata.RenditionReports {
		writeExtXRenditionReport(tw, &p.Metadata.RenditionReports[i])
	}

	// Segment state tags persist until the next tag of the same kind,
	// so a tag equal to the previous segment's is not re-emitted. The
	// loop starts from a synthetic unencrypted segment with no map.
	prev := &MediaSegment{}
	for i := range p.Segments {
		if tw.err != nil {
			return tw.err
		}
		writeSegment(tw, &p.Segments[i], prev)
		prev = &p.Segments[i]
	}
	return tw.err
}

func writeSegment(w *tagWriter, seg, prev *MediaSegment) {
	if seg.Discontinuity {
		w.str("#EXT-X-DISCONTINUITY\n")
	}
	writeExtInf(w, seg)
	switch r := seg.RangeOrBitrate.(type) {
	case SegmentByteRange:
		// EXT-X-BYTERANGE is always re-emitted. An inherited offset
		// would silently shift when segments are skipped.
		w.str("#EXT-X-BYTERANGE:")
		writeByteRangeValue(w, ByteRange(r))
		w.str("\n")
	case SegmentBitrate:
		if !equalRangeOrBitrate(seg.RangeOrBitrate, prev.RangeOrBitrate) {
			w.str("#EXT-X-BITRATE:")
			w.str(strconv.FormatUint(uint64(r), 10))
			w.str("\n")
		}
	}
	if !equalEncryption(seg.Encryption, prev.Encryption) {
		writeKey(w, "#EXT-X-KEY:", seg.Encryption)
	}
	if seg.Map != nil && !seg.Map.Equal(prev.Map) {
		writeExtXMap(w, seg.Map)
	}
	if !seg.ProgramDateTime.IsZero() {
		w.str("#EXT-X-PROGRAM-DATE-TIME:")
		w.str(seg.ProgramDateTime.Format(DATETIME))
		w.str("\n")
	}
	if seg.Gap {
		w.str("#EXT-X-GAP\n")
	}
	for i := range seg.Parts {
		writeExtXPart(w, &seg.Parts[i])
	}
	w.str(seg.URI)
	w.str("\n")
}

// Encode writes the playlist as an extended M3U document. See
// MediaPlaylist.Encode for the error contract.
func (p *MultivariantPlaylist) Encode(w io.Writer) error {
	tw := &tagWriter{w: w}
	tw.str("#EXTM3U\n")
	writeVersion(tw, p.MinVersion())
	writeDefines(tw, p.Variables)
	if p.IndependentSegments {
		tw.str("#EXT-X-INDEPENDENT-SEGMENTS\n")
	}
	if p.StartOffset != nil {
		writeExtXStart(tw, p.StartOffset)
	}
	for _, group := range p.RenditionGroups {
		writeRenditionGroup(tw, group)
	}
	for i := range p.VariantStreams {
		writeExtXStreamInf(tw, &p.VariantStreams[i])
	}
	for i := range p.IFrameStreams {
		writeExtXIFrameStreamInf(tw, &p.IFrameStreams[i])
	}
	for i := range p.SessionData {
		writeExtXSessionData(tw, &p.SessionData[i])
	}
	for _, key := range p.SessionKeys {
		writeKey(tw, "#EXT-X-SESSION-KEY:", key)
	}
	for i := range p.ContentSteering {
		writeExtXContentSteering(tw, &p.ContentSteering[i])
	}
	return tw.err
}

// Version 1 is implied and not declared.
func writeVersion(w *tagWriter, ver uint8) {
	if ver == 1 {
		return
	}
	w.str("#EXT-X-VERSION:")
	w.str(strconv.FormatUint(uint64(ver), 10))
	w.str("\n")
}

// String returns the encoded playlist.
func (p *MediaPlaylist) String() string {
	var sb strings.Builder
	p.Encode(&sb)
	return sb.String()
}

// String returns the encoded playlist.
func (p *MultivariantPlaylist) String() string {
	var sb strings.Builder
	p.Encode(&sb)
	return sb.String()
}
