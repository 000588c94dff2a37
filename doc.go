// Package docdiff compares two semi-structured documents that describe the
// same business entity, typically a reference document & a candidate produced
// by a system that replaces the reference one, and reports every structural
// divergence between them.
//
// Two document shapes are supported. Markup documents (XML, HTML) are parsed
// into Element trees, then flattened into a Mapping from structural path to
// leaf record:
//
//	/Order[1]/Line[2]/Param[@name='colour']
//
// every path segment is a canonical node name followed by either a 1-based
// index among same-named siblings, or, for node kinds configured as identity
// addressed, the value of the node's identity attribute. Nested-object
// documents (JSON, YAML) are made of the go types created by unmarshaling:
//
//	map[string]interface{}
//	[]interface{}
//
// plus scalars, and flatten into an ObjectMapping from key path ("a.b[2].c")
// to a normalized scalar string.
//
// Differences are reported, never resolved. Markup comparison follows
// reference document order & then lists nodes only the candidate has, object
// comparison visits key paths in sorted order
package docdiff
