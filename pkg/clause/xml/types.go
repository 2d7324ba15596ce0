package xml

import (
	"encoding/xml"
	"strings"
)

// BodyElement represents any element that can appear in a document body or table cell
type BodyElement interface {
	isBodyElement()
}

// ParagraphContent represents any content that can appear in a paragraph
type ParagraphContent interface {
	isParagraphContent()
}

// RunContent is one piece of a run: text, a break or a tab.
type RunContent interface {
	isRunContent()
}

// OnOff is a WordprocessingML toggle such as <w:b/> or <w:b w:val="0"/>.
type OnOff struct {
	Val string `xml:"val,attr"`
}

// Enabled reports whether the toggle is on. A missing val means on.
func (o *OnOff) Enabled() bool {
	if o == nil {
		return false
	}
	switch strings.ToLower(o.Val) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// Style represents a style reference
type Style struct {
	Val string `xml:"val,attr"`
}

// decodeBlock reads child elements of start until its end tag, decoding the
// block-level elements a body, cell or content control can hold.
func decodeBlock(d *xml.Decoder, start xml.StartElement) ([]BodyElement, error) {
	var elements []BodyElement
	for {
		token, err := d.Token()
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var para Paragraph
				if err := d.DecodeElement(&para, &t); err != nil {
					return nil, err
				}
				elements = append(elements, &para)
			case "tbl":
				var table Table
				if err := d.DecodeElement(&table, &t); err != nil {
					return nil, err
				}
				elements = append(elements, &table)
			case "sdt", "sdtContent", "customXml":
				// content controls wrap ordinary paragraphs
				inner, err := decodeBlock(d, t)
				if err != nil {
					return nil, err
				}
				elements = append(elements, inner...)
			default:
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return elements, nil
			}
		}
	}
}
