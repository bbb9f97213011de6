package m3u8

/*
 This file defines the playlist data model.
*/

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Playlist is the interface common to both playlist kinds.
type Playlist interface {
	// Encode writes the playlist as an extended M3U document.
	Encode(w io.Writer) error
	// MinVersion returns the minimal protocol version the playlist must declare.
	MinVersion() uint8
	String() string
}

// DATETIME represents format for EXT-X-PROGRAM-DATE-TIME and
// EXT-X-DATERANGE timestamps. Format is [ISO/IEC 8601:2004] according
// to the [HLS spec].
const DATETIME = time.RFC3339Nano

// PlaylistType is the EXT-X-PLAYLIST-TYPE tag value.
type PlaylistType uint

const (
	// use 0 for undefined
	EVENT PlaylistType = iota + 1
	VOD
)

// MediaPlaylist represents a single variant or rendition playlist.
// URI lines in the playlist point to media segments.
//
// The playlist is treated as an immutable snapshot for the duration of
// one Encode call. Encode performs no locking.
type MediaPlaylist struct {
	Segments              []MediaSegment   // Segments in playback order. Position determines the sequence number.
	StartOffset           *StartOffset     // EXT-X-START
	Variables             []Define         // EXT-X-DEFINE tags
	IndependentSegments   bool             // EXT-X-INDEPENDENT-SEGMENTS
	TargetDuration        uint64           // EXT-X-TARGETDURATION. Upper bound on all segment durations.
	FirstMediaSequence    uint64           // EXT-X-MEDIA-SEQUENCE of the first segment in Segments
	DiscontinuitySequence uint64           // EXT-X-DISCONTINUITY-SEQUENCE
	Finished              bool             // EXT-X-ENDLIST. No more segments will be added.
	PlaylistType          PlaylistType     // EXT-X-PLAYLIST-TYPE (EVENT, VOD or empty)
	HoldBack              *float64         // HOLD-BACK of EXT-X-SERVER-CONTROL in seconds
	IframesOnly           bool             // EXT-X-I-FRAMES-ONLY
	DeltaUpdates          *DeltaUpdateInfo // CAN-SKIP-UNTIL/CAN-SKIP-DATERANGES of EXT-X-SERVER-CONTROL
	CanBlockReload        bool             // CAN-BLOCK-RELOAD of EXT-X-SERVER-CONTROL
	PartInf               *PartInformation // EXT-X-PART-INF and PART-HOLD-BACK
	Metadata              MediaMetadata    // Tags not associated with specific segments
}

// MediaMetadata holds playlist information that is not associated with
// specific media segments.
type MediaMetadata struct {
	DateRanges       []DateRange       // EXT-X-DATERANGE tags
	Skip             *SkipInfo         // EXT-X-SKIP of a playlist delta update
	PreloadHints     []PreloadHint     // EXT-X-PRELOAD-HINT tags
	RenditionReports []RenditionReport // EXT-X-RENDITION-REPORT tags
}

// SkipInfo describes segments replaced by an EXT-X-SKIP tag in a
// playlist delta update.
type SkipInfo struct {
	SkippedSegments           uint64   // SKIPPED-SEGMENTS
	RecentlyRemovedDateranges []string // RECENTLY-REMOVED-DATERANGES ids
}

// MediaSegment represents a media segment included in a media playlist.
// Media segments may be encrypted.
type MediaSegment struct {
	URI             string                      // URI is the path to the media segment.
	Duration        SegmentDuration             // EXTINF first parameter
	Title           string                      // EXTINF optional second parameter
	RangeOrBitrate  ByteRangeOrBitrate          // EXT-X-BYTERANGE or EXT-X-BITRATE, nil for neither
	Discontinuity   bool                        // EXT-X-DISCONTINUITY precedes this segment
	Encryption      EncryptionMethod            // EXT-X-KEY in effect for this segment, nil for no encryption
	Map             *MediaInitializationSection // EXT-X-MAP in effect for this segment
	ProgramDateTime time.Time                   // EXT-X-PROGRAM-DATE-TIME. Zero value means absent.
	Gap             bool                        // EXT-X-GAP. Segment carries no media data.
	Parts           []PartialSegment            // EXT-X-PART tags preceding the segment URI line
}

// SegmentDuration is an EXTINF duration. The wire format distinguishes
// integer from floating-point durations, which affects the minimal
// protocol version of the playlist.
type SegmentDuration interface {
	isSegmentDuration()
}

// FloatDuration is a floating-point EXTINF duration in seconds.
type FloatDuration float64

// IntDuration is a decimal-integer EXTINF duration in seconds.
type IntDuration uint64

func (FloatDuration) isSegmentDuration() {}
func (IntDuration) isSegmentDuration()   {}

// ByteRange represents a sub-range of a resource. A nil Offset means
// the range starts where the previous range of the same resource ended.
type ByteRange struct {
	Length uint64  // length of the range in bytes
	Offset *uint64 // offset from the start of the resource in bytes
}

// Equal reports whether two byte ranges serialize identically.
func (r ByteRange) Equal(other ByteRange) bool {
	if r.Length != other.Length {
		return false
	}
	if (r.Offset == nil) != (other.Offset == nil) {
		return false
	}
	return r.Offset == nil || *r.Offset == *other.Offset
}

// ByteRangeWithOffset is a byte range whose offset is mandatory, as
// used by EXT-X-MAP.
type ByteRangeWithOffset struct {
	Length uint64 // length of the range in bytes
	Offset uint64 // offset from the start of the resource in bytes
}

// ByteRangeOrBitrate is either a SegmentByteRange or a SegmentBitrate.
// The two are mutually exclusive for a given segment.
type ByteRangeOrBitrate interface {
	isByteRangeOrBitrate()
}

// SegmentByteRange marks a segment as a sub-range of the resource
// identified by its URI (EXT-X-BYTERANGE).
type SegmentByteRange ByteRange

// SegmentBitrate is the approximate segment bit rate in kbps
// (EXT-X-BITRATE). It applies until the next SegmentBitrate.
type SegmentBitrate uint64

func (SegmentByteRange) isByteRangeOrBitrate() {}
func (SegmentBitrate) isByteRangeOrBitrate()   {}

func equalRangeOrBitrate(a, b ByteRangeOrBitrate) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case SegmentByteRange:
		br, ok := b.(SegmentByteRange)
		return ok && ByteRange(a).Equal(ByteRange(br))
	case SegmentBitrate:
		rate, ok := b.(SegmentBitrate)
		return ok && a == rate
	}
	return false
}

// EncryptionMethod describes how a media segment is encrypted
// (EXT-X-KEY). A nil EncryptionMethod means no encryption. The closed
// set of methods keeps invalid attribute combinations, like an IV on
// SAMPLE-AES-CTR, unrepresentable.
type EncryptionMethod interface {
	isEncryptionMethod()
	// Equal reports whether two methods serialize identically.
	Equal(other EncryptionMethod) bool
}

// AES128 is the AES-128 encryption method.
type AES128 struct {
	URI               string   // URI parameter. Specifies how to obtain the key.
	IV                *IV      // IV parameter
	Keyformat         string   // KEYFORMAT parameter. Empty means the default IDENTITY format.
	Keyformatversions []uint64 // KEYFORMATVERSIONS parameter
}

// SampleAES is the SAMPLE-AES encryption method.
type SampleAES struct {
	URI               string   // URI parameter
	IV                *IV      // IV parameter
	Keyformatversions []uint64 // KEYFORMATVERSIONS parameter
}

// SampleAESCTR is the SAMPLE-AES-CTR encryption method. It carries no IV.
type SampleAESCTR struct {
	URI               string   // URI parameter
	Keyformatversions []uint64 // KEYFORMATVERSIONS parameter
}

func (AES128) isEncryptionMethod()       {}
func (SampleAES) isEncryptionMethod()    {}
func (SampleAESCTR) isEncryptionMethod() {}

func (m AES128) Equal(other EncryptionMethod) bool {
	o, ok := other.(AES128)
	return ok && m.URI == o.URI && equalIV(m.IV, o.IV) && m.Keyformat == o.Keyformat &&
		slices.Equal(m.Keyformatversions, o.Keyformatversions)
}

func (m SampleAES) Equal(other EncryptionMethod) bool {
	o, ok := other.(SampleAES)
	return ok && m.URI == o.URI && equalIV(m.IV, o.IV) &&
		slices.Equal(m.Keyformatversions, o.Keyformatversions)
}

func (m SampleAESCTR) Equal(other EncryptionMethod) bool {
	o, ok := other.(SampleAESCTR)
	return ok && m.URI == o.URI && slices.Equal(m.Keyformatversions, o.Keyformatversions)
}

func equalEncryption(a, b EncryptionMethod) bool {
	if a == nil {
		return b == nil
	}
	return a.Equal(b)
}

// IV is a 128-bit AES initialization vector.
type IV struct {
	Hi, Lo uint64
}

// String renders the IV as 0x followed by uppercase hexadecimal digits
// without zero padding.
func (iv IV) String() string {
	if iv.Hi == 0 {
		return "0x" + strings.ToUpper(strconv.FormatUint(iv.Lo, 16))
	}
	return "0x" + strings.ToUpper(strconv.FormatUint(iv.Hi, 16)) + fmt.Sprintf("%016X", iv.Lo)
}

func equalIV(a, b *IV) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// MediaInitializationSection (EXT-X-MAP tag) specifies how to obtain
// the Media Initialization Section required to parse the applicable
// media segments. It applies to every segment after it until the next
// EXT-X-MAP tag or the end of the playlist.
type MediaInitializationSection struct {
	URI   string               // URI is the path to the Media Initialization Section.
	Range *ByteRangeWithOffset // BYTERANGE parameter
}

// Equal reports whether two sections serialize identically. Either
// receiver or argument may be nil.
func (m *MediaInitializationSection) Equal(other *MediaInitializationSection) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.URI != other.URI {
		return false
	}
	if (m.Range == nil) != (other.Range == nil) {
		return false
	}
	return m.Range == nil || *m.Range == *other.Range
}

// PartialSegment represents an EXT-X-PART tag, a low-latency sub-range
// of a media segment.
type PartialSegment struct {
	URI         string     // URI parameter
	Duration    float64    // DURATION parameter in seconds
	Independent bool       // INDEPENDENT parameter. Part starts with an independent frame.
	Range       *ByteRange // BYTERANGE parameter
	Gap         bool       // GAP parameter. Part is not available.
}

// PartInformation carries the EXT-X-PART-INF tag and the PART-HOLD-BACK
// attribute of EXT-X-SERVER-CONTROL.
type PartInformation struct {
	PartHoldBack float64 // PART-HOLD-BACK in seconds
	PartTarget   float64 // PART-TARGET. Upper bound on all partial segment durations.
}

// DeltaUpdateInfo describes the server's playlist delta update
// capabilities in EXT-X-SERVER-CONTROL.
type DeltaUpdateInfo struct {
	SkipBoundary      float64 // CAN-SKIP-UNTIL in seconds
	CanSkipDateranges bool    // CAN-SKIP-DATERANGES
}

// StartOffset corresponds to the EXT-X-START tag. Negative offsets are
// relative to the end of the playlist.
type StartOffset struct {
	Seconds float64 // TIME-OFFSET parameter
	Precise bool    // PRECISE parameter
}

// DefineType is the kind of an EXT-X-DEFINE tag.
type DefineType uint

const (
	VALUE DefineType = iota
	IMPORT
	QUERYPARAM
)

// Define represents an EXT-X-DEFINE tag and provides a playlist
// variable definition or declaration.
type Define struct {
	Name  string     // Specifies the Variable Name.
	Type  DefineType // NAME-VALUE pair, IMPORT or QUERYPARAM.
	Value string     // Only used if type is VALUE.
}

// PreloadHintType says whether a hinted resource is a partial segment
// or a Media Initialization Section.
type PreloadHintType uint

const (
	PreloadPart PreloadHintType = iota
	PreloadMap
)

// PreloadHint represents an EXT-X-PRELOAD-HINT tag, a hint that the
// client should request a resource before it is available.
type PreloadHint struct {
	Type            PreloadHintType
	URI             string  // URI parameter
	StartByteOffset uint64  // BYTERANGE-START parameter. Omitted when zero.
	Length          *uint64 // BYTERANGE-LENGTH parameter. Nil means until the end of the resource.
}

// RenditionReport represents an EXT-X-RENDITION-REPORT tag with
// information about an associated rendition that is as up-to-date as
// the playlist that contains it.
type RenditionReport struct {
	URI      string  // URI parameter
	LastMSN  *uint64 // LAST-MSN parameter
	LastPart *uint64 // LAST-PART parameter
}

// DateRange corresponds to an EXT-X-DATERANGE tag. It is used for
// signaling SCTE-35 messages, interstitials, and other metadata events.
type DateRange struct {
	ID               string                    // ID is the mandatory quoted-string id.
	Class            string                    // CLASS is a client-defined quoted-string.
	StartDate        time.Time                 // START-DATE is the mandatory start time.
	Cue              *DateRangeCue             // CUE trigger description
	EndDate          *time.Time                // END-DATE is the optional end time.
	Duration         *float64                  // DURATION in seconds
	PlannedDuration  *float64                  // PLANNED-DURATION in seconds
	ClientAttributes map[string]AttributeValue // X-<name> attributes, keyed without the X- prefix
	SCTE35Cmd        []byte                    // SCTE35-CMD payload
	SCTE35Out        []byte                    // SCTE35-OUT payload
	SCTE35In         []byte                    // SCTE35-IN payload
	EndOnNext        bool                      // END-ON-NEXT parameter
}

// CuePosition is the relative time at which a date range action is
// triggered.
type CuePosition uint

const (
	CueNeither CuePosition = iota
	CuePre
	CuePost
)

// DateRangeCue is the CUE attribute of an EXT-X-DATERANGE tag.
type DateRangeCue struct {
	Once     bool // trigger once and never again
	Position CuePosition
}

// AttributeValue is a client-defined date range attribute value:
// a StringValue, a BytesValue or a FloatValue.
type AttributeValue interface {
	isAttributeValue()
}

type StringValue string
type BytesValue []byte
type FloatValue float64

func (StringValue) isAttributeValue() {}
func (BytesValue) isAttributeValue()  {}
func (FloatValue) isAttributeValue()  {}

// MultivariantPlaylist represents a multivariant (master) playlist
// which lists variant streams, rendition groups and other global
// parameters of the presentation.
type MultivariantPlaylist struct {
	IndependentSegments bool               // EXT-X-INDEPENDENT-SEGMENTS
	StartOffset         *StartOffset       // EXT-X-START
	Variables           []Define           // EXT-X-DEFINE tags
	RenditionGroups     []RenditionGroup   // EXT-X-MEDIA tags grouped by GROUP-ID
	VariantStreams      []VariantStream    // EXT-X-STREAM-INF tags
	IFrameStreams       []IFrameStream     // EXT-X-I-FRAME-STREAM-INF tags
	SessionData         []SessionData      // EXT-X-SESSION-DATA tags
	SessionKeys         []EncryptionMethod // EXT-X-SESSION-KEY tags
	ContentSteering     []ContentSteering  // EXT-X-CONTENT-STEERING tags
}

// StreamInf holds the attributes shared by EXT-X-STREAM-INF and
// EXT-X-I-FRAME-STREAM-INF. Attributes are listed in the same order as
// they are written.
type StreamInf struct {
	Bandwidth           uint64                           // BANDWIDTH parameter. Peak segment bit rate.
	AverageBandwidth    *uint64                          // AVERAGE-BANDWIDTH parameter
	Score               *float64                         // SCORE parameter
	Codecs              []string                         // CODECS parameter
	SupplementalCodecs  []SupplementalCodec              // SUPPLEMENTAL-CODECS parameter
	Resolution          *Resolution                      // RESOLUTION parameter
	HDCPLevel           HDCPLevel                        // HDCP-LEVEL parameter. Empty omits the attribute.
	AllowedCPC          []ContentProtectionConfiguration // ALLOWED-CPC parameter
	VideoRange          VideoRange                       // VIDEO-RANGE parameter. SDR, the default, is not written.
	RequiredVideoLayout []VideoChannel                   // REQ-VIDEO-LAYOUT parameter
	StableVariantId     string                           // STABLE-VARIANT-ID parameter
	PathwayId           string                           // PATHWAY-ID parameter for Content Steering
}

// SupplementalCodec describes media samples with a backward-compatible
// base layer and a newer enhancement layer.
type SupplementalCodec struct {
	Codec               string
	CompatibilityBrands []string
}

// Resolution is a video resolution in pixels, written as WxH.
type Resolution struct {
	Width, Height uint64
}

// HDCPLevel is the High-bandwidth Digital Content Protection level:
// NONE, TYPE-0 or TYPE-1.
type HDCPLevel string

const (
	HDCPNone  HDCPLevel = "NONE"
	HDCPType0 HDCPLevel = "TYPE-0"
	HDCPType1 HDCPLevel = "TYPE-1"
)

// VideoRange is the video dynamic range: SDR, HLG or PQ.
type VideoRange string

const (
	SDR VideoRange = "SDR"
	HLG VideoRange = "HLG"
	PQ  VideoRange = "PQ"
)

// ContentProtectionConfiguration is one entry of ALLOWED-CPC: the
// playback device classes that implement Keyformat with a certain
// content protection robustness.
type ContentProtectionConfiguration struct {
	Keyformat string
	CPCLabels []string
}

// VideoChannel says whether video content is stereoscopic or not.
type VideoChannel uint

const (
	ChMono VideoChannel = iota
	ChStereo
)

// VariantStream represents an EXT-X-STREAM-INF tag, a set of renditions
// that can be combined to play the presentation. Group ids reference
// RenditionGroups by value; no referential integrity is checked.
type VariantStream struct {
	StreamInf
	FrameRate *float64 // FRAME-RATE parameter, written with 3 decimals
	Audio     string   // AUDIO rendition group id
	Video     string   // VIDEO rendition group id
	Subtitles string   // SUBTITLES rendition group id
	Captions  string   // CLOSED-CAPTIONS rendition group id
	URI       string   // URI line following the tag
}

// IFrameStream represents an EXT-X-I-FRAME-STREAM-INF tag identifying a
// media playlist containing the I-frames of a presentation.
type IFrameStream struct {
	StreamInf
	Video string // VIDEO rendition group id
	URI   string // URI parameter
}

// RenditionGroup is a group of alternative renditions of the same
// content: a VideoGroup, AudioGroup, SubtitlesGroup or
// ClosedCaptionsGroup. The typed rendition lists keep each group
// homogeneous.
type RenditionGroup interface {
	isRenditionGroup()
}

// VideoGroup is a group of video renditions.
type VideoGroup struct {
	GroupId    string
	Renditions []VideoRendition
}

// AudioGroup is a group of audio renditions.
type AudioGroup struct {
	GroupId    string
	Renditions []AudioRendition
}

// SubtitlesGroup is a group of subtitle renditions.
type SubtitlesGroup struct {
	GroupId    string
	Renditions []SubtitleRendition
}

// ClosedCaptionsGroup is a group of closed caption renditions.
type ClosedCaptionsGroup struct {
	GroupId    string
	Renditions []ClosedCaptionRendition
}

func (VideoGroup) isRenditionGroup()          {}
func (AudioGroup) isRenditionGroup()          {}
func (SubtitlesGroup) isRenditionGroup()      {}
func (ClosedCaptionsGroup) isRenditionGroup() {}

// RenditionInfo holds the attributes common to all rendition kinds.
type RenditionInfo struct {
	Language          string                    // LANGUAGE parameter
	AssocLanguage     string                    // ASSOC-LANGUAGE parameter
	Name              string                    // NAME parameter. Mandatory.
	Priority          RenditionPlaybackPriority // DEFAULT/AUTOSELECT parameters
	Characteristics   []string                  // CHARACTERISTICS parameter
	StableRenditionId string                    // STABLE-RENDITION-ID parameter
}

// RenditionPlaybackPriority is the priority in which a rendition should
// be chosen over another rendition.
type RenditionPlaybackPriority uint

const (
	// PriorityNone renditions may not be auto selected without explicit
	// user preference.
	PriorityNone RenditionPlaybackPriority = iota

	// PriorityAutoSelect renditions may be chosen in the absence of
	// explicit user preference when they match the playback environment.
	PriorityAutoSelect

	// PriorityDefault renditions are considered essential to play.
	// DEFAULT=YES implies AUTOSELECT=YES.
	PriorityDefault
)

// VideoRendition is one EXT-X-MEDIA tag of TYPE=VIDEO.
type VideoRendition struct {
	Info RenditionInfo
	URI  string // URI parameter, optional
}

// AudioRendition is one EXT-X-MEDIA tag of TYPE=AUDIO.
type AudioRendition struct {
	BitDepth   *uint64       // BIT-DEPTH parameter
	SampleRate *uint64       // SAMPLE-RATE parameter
	Channels   AudioChannels // CHANNELS parameter, nil omits the attribute
	Info       RenditionInfo
	URI        string // URI parameter, optional
}

// SubtitleRendition is one EXT-X-MEDIA tag of TYPE=SUBTITLES.
type SubtitleRendition struct {
	Info   RenditionInfo
	Forced bool   // FORCED parameter
	URI    string // URI parameter. Mandatory for subtitles.
}

// ClosedCaptionRendition is one EXT-X-MEDIA tag of TYPE=CLOSED-CAPTIONS.
// It carries no URI.
type ClosedCaptionRendition struct {
	InStreamId InStreamID
	Info       RenditionInfo
}

// InStreamID specifies a rendition within the segments of a media
// playlist: a CCChannel or a CCService.
type InStreamID interface {
	isInStreamID()
}

// CCChannel is a Line 21 Data Services channel, CC1 through CC4.
type CCChannel uint

const (
	CC1 CCChannel = iota + 1
	CC2
	CC3
	CC4
)

// CCService is a Digital Television Closed Captioning service block
// number between 1 and 63.
type CCService uint8

func (CCChannel) isInStreamID() {}
func (CCService) isInStreamID() {}

// AudioChannels is the CHANNELS attribute of an audio rendition:
// a ChannelCount, ChannelsWithCodings or ChannelsWithUsage.
type AudioChannels interface {
	isAudioChannels()
}

// ChannelCount is a count of audio channels with no further parameters.
type ChannelCount uint64

// ChannelsWithCodings is a channel count with a list of audio coding
// identifiers.
type ChannelsWithCodings struct {
	Count             uint64
	CodingIdentifiers []string
}

// ChannelsWithUsage is a channel count with coding identifiers and
// special usage identifiers.
type ChannelsWithUsage struct {
	Count             uint64
	CodingIdentifiers []string
	Binaural          bool // audio is binaural
	Immersive         bool // audio is pre-processed content that should not be dynamically spatialized
	Downmix           bool // audio is a downmix derivative of some other audio
}

func (ChannelCount) isAudioChannels()        {}
func (ChannelsWithCodings) isAudioChannels() {}
func (ChannelsWithUsage) isAudioChannels()   {}

// SessionData represents an EXT-X-SESSION-DATA tag carrying arbitrary
// session data.
type SessionData struct {
	DataId string           // DATA-ID is the mandatory quoted-string identifier.
	Value  SessionDataValue // inline value or URI
}

// SessionDataValue is either an inline SessionValue or a SessionURI.
type SessionDataValue interface {
	isSessionDataValue()
}

// SessionValue is session data stored inline.
type SessionValue struct {
	Value    string // VALUE parameter
	Language string // LANGUAGE parameter
}

// SessionURI is session data identified by a URI.
type SessionURI struct {
	URI    string    // URI parameter
	Format URIFormat // FORMAT parameter
}

func (SessionValue) isSessionDataValue() {}
func (SessionURI) isSessionDataValue()   {}

// URIFormat is the format of session data identified by a URI.
type URIFormat uint

const (
	FormatJSON URIFormat = iota
	FormatRAW
)

// ContentSteering represents an EXT-X-CONTENT-STEERING tag.
type ContentSteering struct {
	ServerURI string // SERVER-URI is a quoted-string containing a URI to a Steering Manifest
	PathwayId string // PATHWAY-ID is a quoted-string containing a unique identifier for the pathway
}

/*
[ISO/IEC 8601:2004]: http://www.iso.org/iso/catalogue_detail?csnumber=40874
[HLS spec]: https://datatracker.ietf.org/doc/html/draft-pantos-hls-rfc8216bis-16
*/
