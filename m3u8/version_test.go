package m3u8

import (
	"fmt"
	"testing"

	"github.com/matryer/is"
)

func TestMinVersionMediaPlaylist(t *testing.T) {
	segment := func(s MediaSegment) MediaPlaylist {
		return MediaPlaylist{TargetDuration: 10, Segments: []MediaSegment{s}}
	}

	cases := []struct {
		playlist MediaPlaylist
		expected uint8
		reason   string
	}{
		{MediaPlaylist{TargetDuration: 10}, 1,
			"empty playlist needs no features"},
		{segment(MediaSegment{URI: "1.ts", Duration: IntDuration(6)}), 1,
			"integer durations work since version 1"},
		{segment(MediaSegment{URI: "1.ts", Duration: IntDuration(6),
			Encryption: AES128{URI: "k", IV: &IV{Lo: 5}}}), 2,
			"an explicit IV needs version 2"},
		{segment(MediaSegment{URI: "1.ts", Duration: FloatDuration(5.045)}), 3,
			"float durations need version 3"},
		{segment(MediaSegment{URI: "1.ts", Duration: IntDuration(6),
			RangeOrBitrate: SegmentByteRange{Length: 400}}), 4,
			"EXT-X-BYTERANGE needs version 4"},
		{MediaPlaylist{TargetDuration: 10, IframesOnly: true}, 4,
			"EXT-X-I-FRAMES-ONLY needs version 4"},
		{segment(MediaSegment{URI: "1.ts", Duration: IntDuration(6),
			Encryption: AES128{URI: "k", Keyformat: "com.example.drm"}}), 5,
			"a non-identity KEYFORMAT needs version 5"},
		{segment(MediaSegment{URI: "1.ts", Duration: IntDuration(6),
			Encryption: SampleAES{URI: "k"}}), 5,
			"SAMPLE-AES needs version 5"},
		{segment(MediaSegment{URI: "1.ts", Duration: IntDuration(6),
			Encryption: SampleAESCTR{URI: "k", Keyformatversions: []uint64{1, 7}}}), 5,
			"KEYFORMATVERSIONS other than 1 needs version 5"},
		{MediaPlaylist{TargetDuration: 10, IframesOnly: true, Segments: []MediaSegment{
			{URI: "1.ts", Duration: IntDuration(6), Map: &MediaInitializationSection{URI: "init.mp4"}},
		}}, 5,
			"EXT-X-MAP with I-frames only needs version 5"},
		{segment(MediaSegment{URI: "1.ts", Duration: IntDuration(6),
			Map: &MediaInitializationSection{URI: "init.mp4"}}), 6,
			"EXT-X-MAP without I-frames only needs version 6"},
		{MediaPlaylist{TargetDuration: 10, Variables: []Define{
			{Name: "v", Type: VALUE, Value: "x"},
		}}, 8,
			"variable definitions need version 8"},
		{MediaPlaylist{TargetDuration: 10, Metadata: MediaMetadata{
			Skip: &SkipInfo{SkippedSegments: 3},
		}}, 9,
			"EXT-X-SKIP needs version 9"},
		{MediaPlaylist{TargetDuration: 10, Metadata: MediaMetadata{
			Skip: &SkipInfo{SkippedSegments: 3, RecentlyRemovedDateranges: []string{"a"}},
		}}, 10,
			"EXT-X-SKIP with removed date ranges needs version 10"},
		{MediaPlaylist{TargetDuration: 10, Variables: []Define{
			{Name: "v", Type: QUERYPARAM},
		}}, 11,
			"QUERYPARAM definitions need version 11"},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			is := is.New(t)
			is.Equal(c.playlist.MinVersion(), c.expected) // version mismatch: c.reason
		})
	}
}

func TestMinVersionMultivariantPlaylist(t *testing.T) {
	cases := []struct {
		playlist MultivariantPlaylist
		expected uint8
		reason   string
	}{
		{MultivariantPlaylist{}, 1,
			"empty playlist needs no features"},
		{MultivariantPlaylist{RenditionGroups: []RenditionGroup{
			ClosedCaptionsGroup{GroupId: "cc", Renditions: []ClosedCaptionRendition{
				{InStreamId: CC1, Info: RenditionInfo{Name: "cc1"}},
			}},
		}}, 1,
			"CC channels work since version 1"},
		{MultivariantPlaylist{RenditionGroups: []RenditionGroup{
			ClosedCaptionsGroup{GroupId: "cc", Renditions: []ClosedCaptionRendition{
				{InStreamId: CCService(1), Info: RenditionInfo{Name: "svc"}},
			}},
		}}, 7,
			"SERVICE in-stream ids need version 7"},
		{MultivariantPlaylist{Variables: []Define{{Name: "v", Type: IMPORT}}}, 8,
			"variable definitions need version 8"},
		{MultivariantPlaylist{Variables: []Define{{Name: "v", Type: QUERYPARAM}}}, 11,
			"QUERYPARAM definitions need version 11"},
		{MultivariantPlaylist{VariantStreams: []VariantStream{
			{StreamInf: StreamInf{Bandwidth: 100, RequiredVideoLayout: []VideoChannel{ChStereo}}, URI: "v.m3u8"},
		}}, 12,
			"REQ-VIDEO-LAYOUT needs version 12"},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case-%d", i), func(t *testing.T) {
			is := is.New(t)
			is.Equal(c.playlist.MinVersion(), c.expected) // version mismatch: c.reason
		})
	}
}

// Adding a feature must never lower the inferred version.
func TestMinVersionMonotonic(t *testing.T) {
	is := is.New(t)

	p := MediaPlaylist{TargetDuration: 10}
	last := p.MinVersion()

	p.Segments = append(p.Segments, MediaSegment{
		URI:      "1.ts",
		Duration: FloatDuration(5.045),
	})
	v := p.MinVersion()
	is.True(v >= last) // float duration must not lower the version
	last = v

	p.Segments[0].Encryption = AES128{URI: "k", IV: &IV{Lo: 1}, Keyformatversions: []uint64{1, 7, 6}}
	v = p.MinVersion()
	is.True(v >= last) // encryption must not lower the version
	last = v

	p.Segments[0].Map = &MediaInitializationSection{URI: "init.mp4"}
	v = p.MinVersion()
	is.True(v >= last) // EXT-X-MAP must not lower the version
	last = v

	p.Metadata.Skip = &SkipInfo{SkippedSegments: 1, RecentlyRemovedDateranges: []string{"x"}}
	v = p.MinVersion()
	is.True(v >= last) // EXT-X-SKIP must not lower the version
	last = v

	p.Variables = append(p.Variables, Define{Name: "q", Type: QUERYPARAM})
	v = p.MinVersion()
	is.True(v >= last) // QUERYPARAM must not lower the version
	is.Equal(v, uint8(11))
}
