package xml

import (
	"encoding/xml"
)

// Table represents a table in the document
type Table struct {
	Rows []TableRow `xml:"tr"`
}

func (t Table) isBodyElement() {}

// TableRow represents a row in a table
type TableRow struct {
	Cells []TableCell `xml:"tc"`
}

// TableCell represents a cell in a table row
type TableCell struct {
	// Elements holds the cell's paragraphs and nested tables in order
	Elements []BodyElement
}

// UnmarshalXML implements custom XML unmarshaling to preserve element order
func (c *TableCell) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	elements, err := decodeBlock(d, start)
	if err != nil {
		return err
	}
	c.Elements = elements
	return nil
}
