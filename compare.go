package docdiff

import "sort"

// ExclusionSet holds canonical attribute names that are never compared
type ExclusionSet map[string]struct{}

// NewExclusionSet builds an ExclusionSet from attribute names
func NewExclusionSet(names ...string) ExclusionSet {
	es := make(ExclusionSet, len(names))
	for _, n := range names {
		es[n] = struct{}{}
	}
	return es
}

// Has reports whether name is excluded. A nil set excludes nothing
func (es ExclusionSet) Has(name string) bool {
	_, ok := es[name]
	return ok
}

// Compare diffs two flattened markup documents.
//
// The first pass walks reference paths in document order. A path missing
// from the candidate yields a "Tag missing" difference, otherwise every
// reference attribute that isn't excluded is checked followed by the node
// text. Attributes only the candidate carries are never reported. The second
// pass walks candidate paths in document order, reporting paths the
// reference lacks as "Extra tag"
func Compare(ref, cand *Mapping, excl ExclusionSet) Differences {
	if ref == nil {
		ref = NewMapping()
	}
	if cand == nil {
		cand = NewMapping()
	}

	var diffs Differences
	for _, p := range ref.Paths() {
		r, _ := ref.Get(p)
		c, ok := cand.Get(p)
		if !ok {
			diffs = append(diffs, Difference{
				Label:     Absent,
				Kind:      KindTagMissing,
				Reference: r.Tag(),
				Candidate: Absent,
				Path:      p,
			})
			continue
		}

		for _, a := range r.Attrs {
			if excl.Has(a.Name) {
				continue
			}
			cv, ok := c.Attr(a.Name)
			if !ok {
				diffs = append(diffs, Difference{
					Label:     a.Name,
					Kind:      KindAttrMissing,
					Reference: a.Value,
					Candidate: Absent,
					Path:      p,
				})
			} else if cv != a.Value {
				diffs = append(diffs, Difference{
					Label:     a.Name,
					Kind:      KindAttrMismatch,
					Reference: a.Value,
					Candidate: cv,
					Path:      p,
				})
			}
		}

		if r.Text != c.Text {
			diffs = append(diffs, Difference{
				Label:     TextLabel,
				Kind:      KindTextMismatch,
				Reference: r.Text,
				Candidate: c.Text,
				Path:      p,
			})
		}
	}

	for _, p := range cand.Paths() {
		if _, ok := ref.Get(p); ok {
			continue
		}
		c, _ := cand.Get(p)
		diffs = append(diffs, Difference{
			Label:     Absent,
			Kind:      KindExtraTag,
			Reference: Absent,
			Candidate: c.Tag(),
			Path:      p,
		})
	}

	return diffs
}

// CompareObjects diffs two flattened nested-object documents. Object key
// paths carry no document order, so the union of keys is visited sorted
func CompareObjects(ref, cand ObjectMapping) Differences {
	keys := ref.Keys()
	for k := range cand {
		if _, ok := ref[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var diffs Differences
	for _, k := range keys {
		rv, inRef := ref[k]
		cv, inCand := cand[k]
		switch {
		case inRef && !inCand:
			diffs = append(diffs, Difference{Label: k, Kind: KindMissingKey, Reference: rv, Candidate: Absent, Path: k})
		case !inRef && inCand:
			diffs = append(diffs, Difference{Label: k, Kind: KindMissingKey, Reference: Absent, Candidate: cv, Path: k})
		case rv != cv:
			diffs = append(diffs, Difference{Label: k, Kind: KindValueMismatch, Reference: rv, Candidate: cv, Path: k})
		}
	}
	return diffs
}

// CompareValues flattens & diffs two nested-object document trees
func CompareValues(ref, cand interface{}) Differences {
	return CompareObjects(FlattenObject(ref), FlattenObject(cand))
}
