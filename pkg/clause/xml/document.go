package xml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Document represents a Word document structure
type Document struct {
	XMLName xml.Name `xml:"document"`
	Body    *Body    `xml:"body"`
}

// Body represents the document body
type Body struct {
	// Elements keeps paragraphs and tables in document order
	Elements []BodyElement
}

// UnmarshalXML implements custom XML unmarshaling to preserve element order
func (b *Body) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	elements, err := decodeBlock(d, start)
	if err != nil {
		return err
	}
	b.Elements = elements
	return nil
}

// ParseDocument parses word/document.xml
func ParseDocument(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Body == nil {
		return nil, fmt.Errorf("failed to parse document: missing body")
	}

	return &doc, nil
}
