package xml

import (
	"encoding/xml"
	"strings"
)

// Paragraph represents a paragraph in the document
type Paragraph struct {
	Properties *ParagraphProperties
	// Content keeps runs and hyperlinks in order
	Content []ParagraphContent
}

func (p Paragraph) isBodyElement() {}

// ParagraphProperties holds the paragraph properties the importer looks at
type ParagraphProperties struct {
	Style        *Style `xml:"pStyle"`
	OutlineLevel *Style `xml:"outlineLvl"`
	NumPr        *struct {
		ILvl  *Style `xml:"ilvl"`
		NumID *Style `xml:"numId"`
	} `xml:"numPr"`
}

// UnmarshalXML implements custom XML unmarshaling to preserve content order
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	content, err := decodeInline(d, start, p)
	if err != nil {
		return err
	}
	p.Content = content
	return nil
}

// decodeInline collects runs from start and from the inline wrappers Word uses
// (hyperlinks, tracked insertions, smart tags, simple fields).
func decodeInline(d *xml.Decoder, start xml.StartElement, p *Paragraph) ([]ParagraphContent, error) {
	var content []ParagraphContent
	for {
		token, err := d.Token()
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if p == nil {
					if err := d.Skip(); err != nil {
						return nil, err
					}
					continue
				}
				var props ParagraphProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return nil, err
				}
				p.Properties = &props
			case "r":
				var run Run
				if err := d.DecodeElement(&run, &t); err != nil {
					return nil, err
				}
				content = append(content, &run)
			case "hyperlink":
				var link Hyperlink
				if err := d.DecodeElement(&link, &t); err != nil {
					return nil, err
				}
				content = append(content, &link)
			case "ins", "smartTag", "fldSimple", "customXml", "sdt", "sdtContent":
				inner, err := decodeInline(d, t, nil)
				if err != nil {
					return nil, err
				}
				content = append(content, inner...)
			default:
				// deleted text, bookmarks, proofing marks
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return content, nil
			}
		}
	}
}

// StyleID returns the paragraph style id, or "".
func (p *Paragraph) StyleID() string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

// HasOutlineLevel reports whether the paragraph carries an explicit heading
// outline level. Level 9 is Word's "body text" and does not count.
func (p *Paragraph) HasOutlineLevel() bool {
	if p.Properties == nil || p.Properties.OutlineLevel == nil {
		return false
	}
	return p.Properties.OutlineLevel.Val != "9"
}

// Runs returns all runs, including those inside hyperlinks, in order.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, c := range p.Content {
		switch c := c.(type) {
		case *Run:
			runs = append(runs, c)
		case *Hyperlink:
			runs = append(runs, c.Runs...)
		}
	}
	return runs
}

// GetText returns the concatenated text of all runs in a paragraph
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, r := range p.Runs() {
		sb.WriteString(r.GetText())
	}
	return sb.String()
}

// Hyperlink represents a hyperlink in a paragraph
type Hyperlink struct {
	ID     string `xml:"id,attr"`
	Anchor string `xml:"anchor,attr"`
	Runs   []*Run `xml:"r"`
}

func (h Hyperlink) isParagraphContent() {}

// GetText returns the text content of the hyperlink
func (h *Hyperlink) GetText() string {
	var sb strings.Builder
	for _, r := range h.Runs {
		sb.WriteString(r.GetText())
	}
	return sb.String()
}
