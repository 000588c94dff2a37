package docdiff

import "strings"

// DefaultIdentityAttr is the attribute that addresses identity-addressed nodes
// when Rules doesn't name one
const DefaultIdentityAttr = "name"

// Rules are the static naming rules applied while flattening markup
type Rules struct {
	// TagRenames maps raw node names to canonical node names
	TagRenames map[string]string `json:"tagRenames,omitempty" yaml:"tag_renames,omitempty"`
	// AttrRenames maps raw attribute names to canonical attribute names
	AttrRenames map[string]string `json:"attrRenames,omitempty" yaml:"attr_renames,omitempty"`
	// IgnoredTags lists canonical node names whose whole subtree is skipped
	IgnoredTags []string `json:"ignoredTags,omitempty" yaml:"ignored_tags,omitempty"`
	// IdentityTags lists canonical node names addressed by their identity
	// attribute instead of sibling position
	IdentityTags []string `json:"identityTags,omitempty" yaml:"identity_tags,omitempty"`
	// IdentityAttr is the canonical attribute name used for identity
	// addressing, defaults to "name"
	IdentityAttr string `json:"identityAttr,omitempty" yaml:"identity_attr,omitempty"`
}

// Canonicalizer maps raw node & attribute names to canonical names. It's
// immutable once constructed & safe for concurrent use
type Canonicalizer struct {
	tags         map[string]string
	attrs        map[string]string
	ignored      map[string]bool
	identity     map[string]bool
	identityAttr string
}

// NewCanonicalizer copies rules into a Canonicalizer. Empty rules give the
// identity mapping
func NewCanonicalizer(rules Rules) *Canonicalizer {
	c := &Canonicalizer{
		tags:         make(map[string]string, len(rules.TagRenames)),
		attrs:        make(map[string]string, len(rules.AttrRenames)),
		ignored:      make(map[string]bool, len(rules.IgnoredTags)),
		identity:     make(map[string]bool, len(rules.IdentityTags)),
		identityAttr: rules.IdentityAttr,
	}
	for k, v := range rules.TagRenames {
		c.tags[k] = v
	}
	for k, v := range rules.AttrRenames {
		c.attrs[k] = v
	}
	for _, t := range rules.IgnoredTags {
		c.ignored[t] = true
	}
	for _, t := range rules.IdentityTags {
		c.identity[t] = true
	}
	if c.identityAttr == "" {
		c.identityAttr = DefaultIdentityAttr
	}
	return c
}

// Tag returns the canonical name of a raw node name
func (c *Canonicalizer) Tag(raw string) string {
	if name, ok := c.tags[raw]; ok {
		return name
	}
	return raw
}

// Attr returns the canonical name of a raw attribute name
func (c *Canonicalizer) Attr(raw string) string {
	if name, ok := c.attrs[raw]; ok {
		return name
	}
	return raw
}

// Ignored reports whether nodes of a canonical name are pruned
func (c *Canonicalizer) Ignored(canonical string) bool {
	return c.ignored[canonical]
}

// IdentityAddressed reports whether nodes of a canonical name are addressed
// by their identity attribute
func (c *Canonicalizer) IdentityAddressed(canonical string) bool {
	return c.identity[canonical]
}

// IdentityAttr is the canonical attribute name that addresses identity nodes
func (c *Canonicalizer) IdentityAttr() string {
	return c.identityAttr
}

// localName strips a namespace prefix, in either "prefix:name" or
// "{uri}name" form
func localName(raw string) string {
	if strings.HasPrefix(raw, "{") {
		if i := strings.IndexByte(raw, '}'); i >= 0 {
			return raw[i+1:]
		}
	}
	if i := strings.LastIndexByte(raw, ':'); i >= 0 {
		return raw[i+1:]
	}
	return raw
}
