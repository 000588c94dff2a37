package docdiff

import (
	"encoding/json"
)

// Kind defines the type of a Difference
type Kind string

const (
	// KindTagMissing means a path present in the reference document has no
	// counterpart in the candidate
	KindTagMissing = Kind("Tag missing")
	// KindExtraTag is the compliment of a missing tag: a path only the
	// candidate document has
	KindExtraTag = Kind("Extra tag")
	// KindAttrMissing means the candidate node lacks an attribute the reference
	// node carries
	KindAttrMissing = Kind("Attribute missing")
	// KindAttrMismatch means both nodes carry the attribute with different values
	KindAttrMismatch = Kind("Attribute mismatch")
	// KindTextMismatch is a change in the trimmed text of a node
	KindTextMismatch = Kind("Text mismatch")
	// KindMissingKey means a key path is present on only one side of a nested
	// object comparison
	KindMissingKey = Kind("Missing key")
	// KindValueMismatch is an alteration of a scalar at the same key path
	KindValueMismatch = Kind("Value mismatch")
)

// Kinds lists every difference kind in reporting order
var Kinds = []Kind{
	KindTagMissing,
	KindExtraTag,
	KindAttrMissing,
	KindAttrMismatch,
	KindTextMismatch,
	KindMissingKey,
	KindValueMismatch,
}

const (
	// Absent is rendered in place of a value that one side doesn't have
	Absent = "-"
	// TextLabel labels differences in node text
	TextLabel = "(text)"
)

// Difference is one reported divergence between a reference and a candidate
// document
type Difference struct {
	// Label is the attribute name, "(text)", a key path, or "-" for whole-tag
	// differences
	Label string `json:"label"`
	// Kind of divergence
	Kind Kind `json:"kind"`
	// Reference value, or "-" when the reference side has nothing
	Reference string `json:"reference"`
	// Candidate value, or "-" when the candidate side has nothing
	Candidate string `json:"candidate"`
	// Path is the structural path (markup) or key path (objects) the
	// difference was found at
	Path string `json:"path,omitempty"`
}

// Row returns the four reported columns of a difference
func (d Difference) Row() []string {
	return []string{d.Label, string(d.Kind), d.Reference, d.Candidate}
}

// MarshalJSON implements a compact JSON Marshaller, writing a difference as
// an array: [kind, path, label, reference, candidate]
func (d Difference) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{string(d.Kind), d.Path, d.Label, d.Reference, d.Candidate})
}

// UnmarshalJSON reads the compact array form written by MarshalJSON
func (d *Difference) UnmarshalJSON(data []byte) error {
	var v []string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	for len(v) < 5 {
		v = append(v, "")
	}
	*d = Difference{Kind: Kind(v[0]), Path: v[1], Label: v[2], Reference: v[3], Candidate: v[4]}
	return nil
}

// Differences is an ordered sequence of Difference records
type Differences []Difference

// Count returns the number of differences of kind k
func (ds Differences) Count(k Kind) (n int) {
	for _, d := range ds {
		if d.Kind == k {
			n++
		}
	}
	return n
}
