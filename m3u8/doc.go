package m3u8

/* Package m3u8 implements generation of HLS m3u8 playlists.

HLS (HTTP Live Streaming) is an evolving protocol with multiple versions.
Versions 1-7 are described in [IETF RFC8216][rfc8216], but the protocol has continued
to evolve with new features and versions in a
series of Internet Drafts [rfc8216bis].
This library follows [rfc8216bis-16].

## Structure and design of the code

There are two types of m3u8 playlists: MultivariantPlaylist and MediaPlaylist.
These are represented as two different structs, but they have a common interface Playlist.

Playlists are plain values. One fills in the struct fields and calls Encode
to write the extended M3U document, or String to get it as a string.
Closed attribute sets, like the encryption methods of EXT-X-KEY, are modeled
as small sealed interfaces so that invalid combinations cannot be expressed.

The EXT-X-VERSION tag is never set by hand. MinVersion derives it from the
playlist contents, and Encode omits the tag when the result is version 1.

Encode issues many small writes. When writing to a file or a socket,
wrap the destination in a [bufio.Writer].

Generate a simple media playlist (without error handling):

	p := MediaPlaylist{TargetDuration: 10, Finished: true}
	for i := 0; i < 5; i++ {
	  p.Segments = append(p.Segments, MediaSegment{
	    URI:      fmt.Sprintf("test%d.ts", i),
	    Duration: FloatDuration(9.3),
	  })
	}
	_ = p.Encode(os.Stdout)

Examples of usage may be found in *_test.go files of the package.

[rfc8216]: https://tools.ietf.org/html/rfc8216
[rfc8216bis]: https://tools.ietf.org/html/draft-pantos-rfc8216bis
[rfc8216bis-16]: https://tools.ietf.org/html/draft-pantos-rfc8216bis-16
*/
