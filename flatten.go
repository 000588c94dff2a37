package docdiff

import (
	"strconv"
	"strings"
)

// Record is the leaf record stored for every node of a flattened markup
// document
type Record struct {
	// Name is the canonical node name
	Name string
	// Attrs holds canonical attributes in document order
	Attrs []Attr
	// Text is the node's own text, trimmed
	Text string
}

// Attr returns the value of the canonical attribute named name
func (r *Record) Attr(name string) (string, bool) {
	for _, a := range r.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Tag renders the record as a synthetic open/close tag string
func (r *Record) Tag() string {
	return "<" + r.Name + ">" + r.Text + "</" + r.Name + ">"
}

// Mapping is a flattened markup document: structural paths mapped to leaf
// records. Paths keep the order they were first seen in
type Mapping struct {
	paths      []string
	records    map[string]*Record
	collisions []string
}

// NewMapping allocates an empty Mapping
func NewMapping() *Mapping {
	return &Mapping{records: map[string]*Record{}}
}

// Len is the number of distinct paths in the mapping
func (m *Mapping) Len() int { return len(m.paths) }

// Paths lists structural paths in document order. The returned slice must
// not be modified
func (m *Mapping) Paths() []string { return m.paths }

// Get returns the record stored at path
func (m *Mapping) Get(path string) (*Record, bool) {
	r, ok := m.records[path]
	return r, ok
}

// Collisions lists every path that was produced more than once while
// flattening. Only the first record seen at such a path is kept
func (m *Mapping) Collisions() []string { return m.collisions }

// Set stores r at path. Set returns false & keeps the existing record when
// path is already present
func (m *Mapping) Set(path string, r *Record) bool {
	if _, exists := m.records[path]; exists {
		m.collisions = append(m.collisions, path)
		return false
	}
	m.paths = append(m.paths, path)
	m.records[path] = r
	return true
}

// Flattener converts markup element trees into Mappings
type Flattener struct {
	canon *Canonicalizer
}

// NewFlattener creates a Flattener. A nil Canonicalizer applies no renames
func NewFlattener(c *Canonicalizer) *Flattener {
	if c == nil {
		c = NewCanonicalizer(Rules{})
	}
	return &Flattener{canon: c}
}

// frame is one pending node of the depth-first traversal, with its path
// already resolved against its parent's sibling counters
type frame struct {
	el     *Element
	path   string
	record *Record
}

// Flatten walks root depth-first in pre-order, assigning every kept node a
// structural path. Traversal uses an explicit stack, so document depth is
// bounded by memory rather than the goroutine stack
func (f *Flattener) Flatten(root *Element) *Mapping {
	m := NewMapping()
	if root == nil {
		return m
	}

	top, ok := f.resolve(root, "", map[string]int{})
	if !ok {
		return m
	}

	stack := []frame{top}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		m.Set(fr.path, fr.record)

		// counters are scoped to the children of this one node
		counters := map[string]int{}
		children := make([]frame, 0, len(fr.el.Children))
		for _, ch := range fr.el.Children {
			if ch == nil {
				continue
			}
			if chf, ok := f.resolve(ch, fr.path, counters); ok {
				children = append(children, chf)
			}
		}
		// push in reverse so the first child is visited next
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return m
}

// resolve computes the canonical record & path for el under parentPath.
// resolve returns false for ignored nodes, pruning their subtree
func (f *Flattener) resolve(el *Element, parentPath string, counters map[string]int) (frame, bool) {
	name := f.canon.Tag(localName(el.Name))
	if f.canon.Ignored(name) {
		return frame{}, false
	}

	rec := &Record{Name: name, Text: strings.TrimSpace(el.Text)}
	for _, a := range el.Attrs {
		cname := f.canon.Attr(a.Name)
		if _, dup := rec.Attr(cname); dup {
			continue
		}
		rec.Attrs = append(rec.Attrs, Attr{Name: cname, Value: a.Value})
	}

	var path string
	if id, ok := rec.Attr(f.canon.IdentityAttr()); ok && f.canon.IdentityAddressed(name) {
		path = parentPath + "/" + name + "[@" + f.canon.IdentityAttr() + "='" + id + "']"
	} else {
		counters[name]++
		path = parentPath + "/" + name + "[" + strconv.Itoa(counters[name]) + "]"
	}

	return frame{el: el, path: path, record: rec}, true
}
