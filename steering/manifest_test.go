package steering

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeManifest(t *testing.T) {
	host := "clone.example.com"
	m := Manifest{
		TTLSeconds:      300,
		ReloadURI:       "https://example.com/steering?session=123&fmt=json",
		PathwayPriority: []string{"CDN-A", "CDN-B"},
		PathwayClones: []PathwayClone{{
			BaseId: "CDN-A",
			Id:     "CDN-A-CLONE",
			URIReplacement: URIReplacement{
				Host:            &host,
				QueryParameters: map[string]string{"token": "abc"},
				PerVariantURIs: map[string]string{
					"low":  "https://clone.example.com/low.m3u8",
					"high": "https://clone.example.com/high.m3u8",
				},
				PerRenditionURIs: map[string]string{
					"audio-en": "https://clone.example.com/audio.m3u8",
				},
			},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))

	// Struct fields keep declaration order, map entries are sorted by
	// key, and URIs are not HTML-escaped.
	assert.Equal(t,
		`{"VERSION":1,"TTL":300,"RELOAD-URI":"https://example.com/steering?session=123&fmt=json",`+
			`"PATHWAY-PRIORITY":["CDN-A","CDN-B"],`+
			`"PATHWAY-CLONES":[{"BASE-ID":"CDN-A","ID":"CDN-A-CLONE","URI-REPLACEMENT":{`+
			`"HOST":"clone.example.com","PARAMS":{"token":"abc"},`+
			`"PER-VARIANT-URIS":{"high":"https://clone.example.com/high.m3u8","low":"https://clone.example.com/low.m3u8"},`+
			`"PER-RENDITION-URIS":{"audio-en":"https://clone.example.com/audio.m3u8"}}}]}`,
		buf.String())

	assert.True(t, json.Valid(buf.Bytes()))
}

func TestEncodeManifestMinimal(t *testing.T) {
	m := Manifest{
		TTLSeconds:      300,
		PathwayPriority: []string{"CDN-A"},
	}

	var buf bytes.Buffer
	require.NoError(t, m.Encode(&buf))
	assert.Equal(t, `{"VERSION":1,"TTL":300,"PATHWAY-PRIORITY":["CDN-A"]}`, buf.String())
}

func TestEncodeManifestPanics(t *testing.T) {
	t.Run("empty pathway priority", func(t *testing.T) {
		m := Manifest{TTLSeconds: 300}
		assert.Panics(t, func() {
			_ = m.Encode(&bytes.Buffer{})
		})
	})

	t.Run("empty host", func(t *testing.T) {
		host := ""
		m := Manifest{
			TTLSeconds:      300,
			PathwayPriority: []string{"CDN-A"},
			PathwayClones: []PathwayClone{{
				BaseId:         "CDN-A",
				Id:             "clone",
				URIReplacement: URIReplacement{Host: &host},
			}},
		}
		assert.Panics(t, func() {
			_ = m.Encode(&bytes.Buffer{})
		})
	})

	t.Run("empty query parameter key", func(t *testing.T) {
		m := Manifest{
			TTLSeconds:      300,
			PathwayPriority: []string{"CDN-A"},
			PathwayClones: []PathwayClone{{
				BaseId: "CDN-A",
				Id:     "clone",
				URIReplacement: URIReplacement{
					QueryParameters: map[string]string{"": "nope"},
				},
			}},
		}
		assert.Panics(t, func() {
			_ = m.Encode(&bytes.Buffer{})
		})
	})
}

func TestManifestString(t *testing.T) {
	m := Manifest{TTLSeconds: 10, PathwayPriority: []string{"A"}}
	assert.Equal(t, `{"VERSION":1,"TTL":10,"PATHWAY-PRIORITY":["A"]}`, m.String())
}
