package cache

import "strings"

// Keyer builds cache keys for the two cached pipeline stages.
type Keyer interface {
	// LayoutKey returns the key of the layout computed from the document
	// with hash docHash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key of one rendered output of the layout with
	// hash layoutHash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the inputs besides the document that change a layout.
type LayoutKeyOpts struct {
	ConfigHash string `json:"config"`
	Trace      bool   `json:"trace,omitempty"`
}

// ArtifactKeyOpts lists the render switches that change an artifact.
type ArtifactKeyOpts struct {
	Format          string `json:"format"`
	Style           string `json:"style,omitempty"`
	SequenceNumbers bool   `json:"sequence_numbers,omitempty"`
	RightAngles     bool   `json:"right_angles,omitempty"`
}

// DefaultKeyer produces keys of the form "layout:<sha256>" and
// "artifact:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// KeyType returns the stage a key belongs to ("layout", "artifact"), or
// "other" for keys not built by a Keyer. Scoped prefixes are skipped.
func KeyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i < 0 {
		return "other"
	}
	head := key[:i]
	head = head[strings.LastIndexByte(head, ':')+1:]
	switch head {
	case "layout", "artifact":
		return head
	}
	return "other"
}
