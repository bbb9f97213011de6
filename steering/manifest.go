// Package steering implements generation of HLS content steering
// manifests.
//
// Content steering allows content producers to group redundant variant
// streams into pathways and to dynamically prioritize access to
// different pathways. A multivariant playlist points to the steering
// manifest with the EXT-X-CONTENT-STEERING tag.
package steering

import (
	"bytes"
	"encoding/json"
	"io"
)

// Manifest identifies the available pathways and their priority order.
type Manifest struct {
	// TTLSeconds specifies how many seconds the client must wait
	// before reloading the steering manifest.
	TTLSeconds uint64

	// ReloadURI specifies the URI the client must use the next time it
	// obtains the steering manifest. Empty means the URI it was loaded
	// from.
	ReloadURI string

	// PathwayPriority lists pathway ids from most preferred to least
	// preferred. It must not be empty.
	PathwayPriority []string

	// PathwayClones lists novel pathways made by cloning existing ones.
	PathwayClones []PathwayClone
}

// PathwayClone introduces a novel pathway by applying URI replacement
// rules to an existing one.
type PathwayClone struct {
	BaseId         string // id of the base pathway this clone is based on
	Id             string // id of the new pathway
	URIReplacement URIReplacement
}

// URIReplacement holds the URI replacement rules of a pathway clone.
type URIReplacement struct {
	// Host, if non-nil, replaces the hostname of every rendition URI
	// in the new pathway. It must not point to an empty string.
	Host *string

	// QueryParameters are appended to every rendition URI in the new
	// pathway. They are not percent encoded. Keys must not be empty.
	QueryParameters map[string]string

	// PerVariantURIs replaces the URI of every variant stream whose
	// STABLE-VARIANT-ID appears as a key.
	PerVariantURIs map[string]string

	// PerRenditionURIs replaces the URI of every rendition whose
	// STABLE-RENDITION-ID appears as a key.
	PerRenditionURIs map[string]string
}

// The wire names follow appendix D of the HLS spec. Map entries are
// written in ascending key order.
type manifestJSON struct {
	Version         int                `json:"VERSION"`
	TTL             uint64             `json:"TTL"`
	ReloadURI       string             `json:"RELOAD-URI,omitempty"`
	PathwayPriority []string           `json:"PATHWAY-PRIORITY"`
	PathwayClones   []pathwayCloneJSON `json:"PATHWAY-CLONES,omitempty"`
}

type pathwayCloneJSON struct {
	BaseId         string             `json:"BASE-ID"`
	Id             string             `json:"ID"`
	URIReplacement uriReplacementJSON `json:"URI-REPLACEMENT"`
}

type uriReplacementJSON struct {
	Host             *string           `json:"HOST,omitempty"`
	Params           map[string]string `json:"PARAMS,omitempty"`
	PerVariantURIs   map[string]string `json:"PER-VARIANT-URIS,omitempty"`
	PerRenditionURIs map[string]string `json:"PER-RENDITION-URIS,omitempty"`
}

// Encode writes the manifest as JSON. The declared VERSION is always 1.
//
// Encode panics when an invariant of the HLS spec is violated:
// an empty PathwayPriority list, a Host pointing to an empty string, or
// an empty QueryParameters key.
func (m *Manifest) Encode(w io.Writer) error {
	if len(m.PathwayPriority) == 0 {
		panic("steering: manifest with empty pathway priority list")
	}
	doc := manifestJSON{
		Version:         1,
		TTL:             m.TTLSeconds,
		ReloadURI:       m.ReloadURI,
		PathwayPriority: m.PathwayPriority,
	}
	for _, clone := range m.PathwayClones {
		r := clone.URIReplacement
		if r.Host != nil && *r.Host == "" {
			panic("steering: manifest with empty host replacement")
		}
		if _, ok := r.QueryParameters[""]; ok {
			panic("steering: manifest with empty query parameter key")
		}
		doc.PathwayClones = append(doc.PathwayClones, pathwayCloneJSON{
			BaseId: clone.BaseId,
			Id:     clone.Id,
			URIReplacement: uriReplacementJSON{
				Host:             r.Host,
				Params:           r.QueryParameters,
				PerVariantURIs:   r.PerVariantURIs,
				PerRenditionURIs: r.PerRenditionURIs,
			},
		})
	}

	// A json.Encoder writing straight to w would HTML-escape URIs and
	// append a newline, so marshal through a buffer instead.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

// String returns the encoded manifest.
func (m *Manifest) String() string {
	var buf bytes.Buffer
	m.Encode(&buf)
	return buf.String()
}
