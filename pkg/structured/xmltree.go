package structured

import (
	"encoding/xml"
	"io"
	"strings"
)

type xmlElement struct {
	name     string
	attrs    []xml.Attr
	text     strings.Builder
	children []*xmlElement
}

// FlattenXML decodes an XML document into an element tree and emits fields
// for attributes and leaf element text. Attributes appear at
// "<path>.@<name>". A leaf element (no element children) with non-blank text
// emits its trimmed text at "<path>". Non-leaf elements recurse into element
// children only; character data interleaved with child elements is ignored.
// A decode error is returned so the caller can fall back to raw-text
// detection.
func FlattenXML(r io.Reader) ([]Field, error) {
	root, err := decodeXML(r)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}

	var fields []Field
	index := 1
	walkXML(root, root.name, &fields, &index)
	return fields, nil
}

func decodeXML(r io.Reader) (*xmlElement, error) {
	dec := xml.NewDecoder(r)

	var root *xmlElement
	var stack []*xmlElement
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
			el := &xmlElement{name: t.Name.Local, attrs: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, &xml.SyntaxError{Msg: "multiple root elements"}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		}
	}
	return root, nil
}

func walkXML(el *xmlElement, path string, fields *[]Field, index *int) {
	for _, attr := range el.attrs {
		*fields = append(*fields, Field{
			Path:   path + ".@" + attr.Name.Local,
			Value:  attr.Value,
			Index:  *index,
			Line:   -1,
			Column: -1,
		})
		*index++
	}

	if len(el.children) == 0 {
		text := strings.TrimSpace(el.text.String())
		if text != "" {
			*fields = append(*fields, Field{
				Path:   path,
				Value:  text,
				Index:  *index,
				Line:   -1,
				Column: -1,
			})
			*index++
		}
		return
	}

	for _, child := range el.children {
		walkXML(child, path+"."+child.name, fields, index)
	}
}
