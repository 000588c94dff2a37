// Package source reads the documents a comparison is made of, either from
// the filesystem or from a relational store.
package source

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qri-io/docdiff"
)

// ErrUnavailable is returned when a document doesn't exist: a missing file,
// a missing row or an empty payload
var ErrUnavailable = errors.New("document unavailable")

// ParseError is returned when a document exists but can't be parsed
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Name, e.Err)
}

// Unwrap returns the underlying parser error
func (e *ParseError) Unwrap() error { return e.Err }

// Format identifies a document encoding
type Format string

const (
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf guesses a document format from a file name extension. Unknown
// extensions return the empty Format
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xml":
		return FormatXML
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return ""
}

// Markup reports whether documents of format f are markup trees
func (f Format) Markup() bool {
	return f == FormatXML || f == FormatHTML
}

// ParseMarkup parses a markup document. An empty Format means XML
func ParseMarkup(name string, r io.Reader, f Format) (*docdiff.Element, error) {
	var (
		el  *docdiff.Element
		err error
	)
	switch f {
	case FormatXML, "":
		el, err = docdiff.ParseXML(r)
	case FormatHTML:
		el, err = docdiff.ParseHTML(r)
	default:
		err = errors.Errorf("%s is not a markup format", f)
	}
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return el, nil
}

// ParseObject parses a nested-object document. An empty Format means JSON
func ParseObject(name string, r io.Reader, f Format) (interface{}, error) {
	var (
		v   interface{}
		err error
	)
	switch f {
	case FormatJSON, "":
		v, err = docdiff.DecodeJSON(r)
	case FormatYAML:
		v, err = docdiff.DecodeYAML(r)
	default:
		err = errors.Errorf("%s is not an object format", f)
	}
	if err != nil {
		return nil, &ParseError{Name: name, Err: err}
	}
	return v, nil
}
