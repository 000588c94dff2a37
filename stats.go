package docdiff

// Stats holds statistical metadata about a comparison
type Stats struct {
	Left  int `json:"leftNodes"`  // count of paths in the reference document
	Right int `json:"rightNodes"` // count of paths in the candidate document

	// paths produced more than once while flattening, summed over both sides
	Collisions int `json:"collisions,omitempty"`

	TagsMissing     int `json:"tagsMissing,omitempty"`
	ExtraTags       int `json:"extraTags,omitempty"`
	AttrsMissing    int `json:"attrsMissing,omitempty"`
	AttrMismatches  int `json:"attrMismatches,omitempty"`
	TextMismatches  int `json:"textMismatches,omitempty"`
	MissingKeys     int `json:"missingKeys,omitempty"`
	ValueMismatches int `json:"valueMismatches,omitempty"`
}

// NodeChange returns a count of the shift between reference & candidate
func (s Stats) NodeChange() int {
	return s.Right - s.Left
}

// Count returns the number of recorded differences of kind k
func (s Stats) Count(k Kind) int {
	switch k {
	case KindTagMissing:
		return s.TagsMissing
	case KindExtraTag:
		return s.ExtraTags
	case KindAttrMissing:
		return s.AttrsMissing
	case KindAttrMismatch:
		return s.AttrMismatches
	case KindTextMismatch:
		return s.TextMismatches
	case KindMissingKey:
		return s.MissingKeys
	case KindValueMismatch:
		return s.ValueMismatches
	}
	return 0
}

// Total is the number of differences recorded
func (s Stats) Total() (n int) {
	for _, k := range Kinds {
		n += s.Count(k)
	}
	return n
}

// Add accumulates another set of stats into s
func (s *Stats) Add(o Stats) {
	s.Left += o.Left
	s.Right += o.Right
	s.Collisions += o.Collisions
	s.TagsMissing += o.TagsMissing
	s.ExtraTags += o.ExtraTags
	s.AttrsMissing += o.AttrsMissing
	s.AttrMismatches += o.AttrMismatches
	s.TextMismatches += o.TextMismatches
	s.MissingKeys += o.MissingKeys
	s.ValueMismatches += o.ValueMismatches
}

// Record counts each difference in ds under its kind
func (s *Stats) Record(ds Differences) {
	for _, d := range ds {
		switch d.Kind {
		case KindTagMissing:
			s.TagsMissing++
		case KindExtraTag:
			s.ExtraTags++
		case KindAttrMissing:
			s.AttrsMissing++
		case KindAttrMismatch:
			s.AttrMismatches++
		case KindTextMismatch:
			s.TextMismatches++
		case KindMissingKey:
			s.MissingKeys++
		case KindValueMismatch:
			s.ValueMismatches++
		}
	}
}
