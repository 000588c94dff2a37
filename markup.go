package docdiff

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Attr is a single name/value attribute of an Element
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Element is a node in a parsed markup document. Name may carry a namespace
// in "{uri}local" or "prefix:local" form, Text holds the character data that
// precedes the first child element
type Element struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Element
}

// Attr returns the value of the first attribute named name
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ParseXML reads an XML document into an element tree. Documents declaring
// a non UTF-8 encoding are transcoded
func ParseXML(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Element
		stack []*Element
		// stack entries that already have a child element, so later character
		// data is tail text & not part of the element's own text
		closed []bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: xmlName(t.Name)}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements: %s", el.Name)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
				closed[len(closed)-1] = true
			}
			stack = append(stack, el)
			closed = append(closed, false)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			closed = closed[:len(closed)-1]
		case xml.CharData:
			if len(stack) > 0 && !closed[len(closed)-1] {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return root, nil
}

func xmlName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return "{" + n.Space + "}" + n.Local
}

// ParseHTML reads an HTML document into an element tree rooted at the <html>
// element
func ParseHTML(r io.Reader) (*Element, error) {
	utf8, err := charset.NewReader(r, "")
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(utf8)
	if err != nil {
		return nil, err
	}
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode {
			return htmlElement(n), nil
		}
	}
	return nil, fmt.Errorf("document has no root element")
}

func htmlElement(n *html.Node) *Element {
	el := &Element{Name: n.Data}
	for _, a := range n.Attr {
		el.Attrs = append(el.Attrs, Attr{Name: a.Key, Value: a.Val})
	}
	var text strings.Builder
	leading := true
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		switch ch.Type {
		case html.ElementNode:
			leading = false
			el.Children = append(el.Children, htmlElement(ch))
		case html.TextNode:
			if leading {
				text.WriteString(ch.Data)
			}
		}
	}
	el.Text = text.String()
	return el
}
