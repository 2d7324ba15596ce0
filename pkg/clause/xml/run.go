package xml

import (
	"encoding/xml"
	"strings"
)

// Run represents a run of text with common properties
type Run struct {
	Properties *RunProperties
	Content    []RunContent
}

func (r Run) isParagraphContent() {}

// RunProperties represents run formatting properties
type RunProperties struct {
	Bold      *OnOff `xml:"b"`
	Italic    *OnOff `xml:"i"`
	Underline *Style `xml:"u"`
	Style     *Style `xml:"rStyle"`
}

// Text represents text content
type Text struct {
	Content string
}

func (t *Text) isRunContent() {}

// Break represents a line, column or page break
type Break struct {
	Type string
}

func (b *Break) isRunContent() {}

// Tab represents a tab character
type Tab struct{}

func (t *Tab) isRunContent() {}

// UnmarshalXML implements custom XML unmarshaling to keep text, breaks and tabs in order
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				var props RunProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				r.Properties = &props
			case "t":
				var text struct {
					Content string `xml:",chardata"`
				}
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				r.Content = append(r.Content, &Text{Content: text.Content})
			case "br", "cr":
				br := &Break{}
				for _, attr := range t.Attr {
					if attr.Name.Local == "type" {
						br.Type = attr.Value
					}
				}
				r.Content = append(r.Content, br)
				if err := d.Skip(); err != nil {
					return err
				}
			case "tab":
				r.Content = append(r.Content, &Tab{})
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				// drawings, field codes, footnote references
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

// IsBold reports whether the run is bold.
func (r *Run) IsBold() bool {
	return r.Properties != nil && r.Properties.Bold.Enabled()
}

// GetText returns the text content of a run. Tabs become '\t', breaks '\n'.
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, c := range r.Content {
		switch c := c.(type) {
		case *Text:
			sb.WriteString(c.Content)
		case *Tab:
			sb.WriteByte('\t')
		case *Break:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
