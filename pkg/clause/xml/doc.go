// Package xml provides the WordprocessingML structures the importer reads.
//
// Only what an import needs is decoded: the body's paragraphs and tables in
// document order, paragraph styles, and runs with their text, breaks, tabs and
// bold flag. Everything else in word/document.xml is skipped.
//
//	doc, err := xml.ParseDocument(r)
//	for _, el := range doc.Body.Elements {
//	    switch el := el.(type) {
//	    case *xml.Paragraph:
//	        fmt.Println(el.StyleID(), el.GetText())
//	    case *xml.Table:
//	        fmt.Println(len(el.Rows))
//	    }
//	}
package xml
