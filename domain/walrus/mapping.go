package walrus

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Kind string

const (
	KindBlob Kind = "blob"
	KindSite Kind = "site"
)

const (
	// DefaultIndex is the entry file served at the root of a site
	DefaultIndex = "index.html"

	blobPrefix       = "blob:"
	legacySitePrefix = "walrus-site:"
)

// Mapping describes where the content of an ENS name lives on Walrus.
// Index and Network are only meaningful for KindSite.
type Mapping struct {
	Kind    Kind   `json:"type" yaml:"type"`
	ID      string `json:"id" yaml:"id"`
	Index   string `json:"index,omitempty" yaml:"index,omitempty"`
	Network string `json:"network,omitempty" yaml:"network,omitempty"`
}

func Blob(id string) Mapping {
	return Mapping{Kind: KindBlob, ID: id}
}

func Site(id, index, network string) Mapping {
	if index == "" {
		index = DefaultIndex
	}
	return Mapping{Kind: KindSite, ID: id, Index: index, Network: network}
}

func (m Mapping) IsSite() bool {
	return m.Kind == KindSite
}

// siteRecord covers both the legacy {type,id} and the enhanced {type,objectId}
// record shapes.
type siteRecord struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	ObjectID string `json:"objectId,omitempty"`
	Index    string `json:"index,omitempty"`
	Network  string `json:"network,omitempty"`
}

// Parse decodes a text record value. ok is false for anything that is not a
// usable mapping, malformed input included.
func Parse(text string) (m Mapping, ok bool) {
	if strings.HasPrefix(text, blobPrefix) {
		id := text[len(blobPrefix):]
		if id == "" {
			return Mapping{}, false
		}
		return Blob(id), true
	}

	if strings.HasPrefix(text, legacySitePrefix) {
		id := text[len(legacySitePrefix):]
		if id == "" {
			return Mapping{}, false
		}
		return Site(id, "", ""), true
	}

	rec := siteRecord{}
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return Mapping{}, false
	}
	if rec.Type != string(KindSite) {
		return Mapping{}, false
	}

	id := rec.ObjectID
	if id == "" {
		id = rec.ID
	}
	if id == "" {
		return Mapping{}, false
	}
	return Site(id, rec.Index, rec.Network), true
}

// Stringify encodes m into the text record value understood by Parse.
func Stringify(m Mapping) string {
	if m.Kind == KindBlob {
		return blobPrefix + m.ID
	}

	index := m.Index
	if index == "" {
		index = DefaultIndex
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// a struct of strings never fails to encode
	_ = enc.Encode(siteRecord{
		Type:    string(KindSite),
		ID:      m.ID,
		Index:   index,
		Network: m.Network,
	})
	return strings.TrimSuffix(buf.String(), "\n")
}
