package docdiff

import (
	"context"
)

// DiffConfig are any possible configuration parameters for calculating diffs
type DiffConfig struct {
	// Rules control canonical naming, pruning & identity addressing of markup
	// nodes
	Rules Rules
	// Exclusions are canonical attribute names never compared
	Exclusions ExclusionSet
	// Provide a non-nil stats pointer & diff will populate it with data from
	// the diff process
	Stats *Stats
}

// DiffOption is a function that adjust a config, zero or more DiffOptions
// can be passed to the New function
type DiffOption func(cfg *DiffConfig)

// OptionRules sets the naming rules used to flatten markup
func OptionRules(r Rules) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Rules = r
	}
}

// OptionExclusions sets the attribute exclusion set
func OptionExclusions(es ExclusionSet) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Exclusions = es
	}
}

// OptionSetStats will set the passed-in stats pointer when a diff is
// calculated. Stats accumulate across calls, a DocDiff configured with stats
// must not be shared between goroutines
func OptionSetStats(st *Stats) DiffOption {
	return func(cfg *DiffConfig) {
		cfg.Stats = st
	}
}

// DocDiff is a configured differ for pairs of documents. Without stats
// configured a DocDiff is safe for concurrent use
type DocDiff struct {
	cfg       *DiffConfig
	flattener *Flattener
}

// New creates a DocDiff
func New(opts ...DiffOption) *DocDiff {
	cfg := &DiffConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &DocDiff{
		cfg:       cfg,
		flattener: NewFlattener(NewCanonicalizer(cfg.Rules)),
	}
}

// Exclusions returns the configured exclusion set
func (dd *DocDiff) Exclusions() ExclusionSet {
	return dd.cfg.Exclusions
}

// Flatten converts a markup document into a Mapping using the configured
// rules
func (dd *DocDiff) Flatten(root *Element) *Mapping {
	return dd.flattener.Flatten(root)
}

// Compare diffs two flattened markup documents with the configured
// exclusions
func (dd *DocDiff) Compare(ref, cand *Mapping) Differences {
	if ref == nil {
		ref = NewMapping()
	}
	if cand == nil {
		cand = NewMapping()
	}
	diffs := Compare(ref, cand, dd.cfg.Exclusions)
	if st := dd.cfg.Stats; st != nil {
		st.Left += ref.Len()
		st.Right += cand.Len()
		st.Collisions += len(ref.Collisions()) + len(cand.Collisions())
		st.Record(diffs)
	}
	return diffs
}

// DiffMarkup flattens both markup documents & diffs them. the error return
// is only non-nil when ctx is done before the diff starts
func (dd *DocDiff) DiffMarkup(ctx context.Context, ref, cand *Element) (Differences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return dd.Compare(dd.Flatten(ref), dd.Flatten(cand)), nil
}

// DiffObjects flattens both nested-object documents & diffs them. the error
// return is only non-nil when ctx is done before the diff starts
func (dd *DocDiff) DiffObjects(ctx context.Context, ref, cand interface{}) (Differences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rm, rc := FlattenObjectCollisions(ref)
	cm, cc := FlattenObjectCollisions(cand)
	diffs := CompareObjects(rm, cm)
	if st := dd.cfg.Stats; st != nil {
		st.Left += len(rm)
		st.Right += len(cm)
		st.Collisions += len(rc) + len(cc)
		st.Record(diffs)
	}
	return diffs, nil
}
