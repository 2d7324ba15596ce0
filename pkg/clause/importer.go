package clause

import (
	"bytes"
	stdxml "encoding/xml"
	"regexp"
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-clause/pkg/clause/xml"
)

// SectionTitleClass marks paragraphs imported from heading-like styles.
const SectionTitleClass = "section-title"

const stylesPart = "word/styles.xml"

var (
	// blankRegex lists the blank conventions in priority order. Go regexps are
	// leftmost-first, so at any position an earlier alternative wins:
	//   «___»   guillemet-quoted underscores
	//   [___]   bracket-quoted underscores
	//   [text]  bracketed hint, 2-60 characters, no tags, brackets or braces
	//   ____    bare run of four or more underscores
	blankRegex = regexp.MustCompile(`«_{3,}»|\[_{3,}\]|\[([^\[\]<>{}\n]{2,60})\]|_{4,}`)

	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	headingStylePrefixes = []string{"heading", "title", "subtitle", "заголовок", "überschrift", "titre", "тақырып"}
)

// ImportDocx converts a .docx file into marked HTML: heading paragraphs become
// section titles, bold runs become <strong>, and blank conventions become
// field markers. Any structural problem fails the whole import.
func ImportDocx(data []byte) (string, error) {
	return defaultEngine().ImportDocx(data)
}

func importDocx(data []byte, hint string, logger *Logger) (string, error) {
	reader, err := NewDocxReaderFromBytes(data)
	if err != nil {
		return "", NewDocumentError("import", "DOCX", err)
	}

	docXML, err := reader.GetDocumentXML()
	if err != nil {
		return "", NewDocumentError("extract", documentPart, err)
	}

	doc, err := xml.ParseDocument(bytes.NewReader(docXML))
	if err != nil {
		return "", NewDocumentError("parse", documentPart, err)
	}

	styles := readStyleNames(reader, logger)
	conv := &htmlConverter{styles: styles}
	conv.writeBlock(doc.Body.Elements)

	marked, count := markBlanks(conv.out.String(), hint)
	logger.WithFields(Fields{
		"input_bytes": len(data),
		"html_length": len(marked),
		"fields":      count,
	}).Info("Imported DOCX")
	return marked, nil
}

// MarkBlanks rewrites blank conventions in already converted HTML into field
// markers named field1, field2, ... in order of appearance. Ids already used by
// field markers in html are skipped.
func MarkBlanks(html, hint string) string {
	out, _ := markBlanks(html, hint)
	return out
}

func markBlanks(html, hint string) (string, int) {
	if strings.TrimSpace(hint) == "" {
		hint = DefaultImportHint
	}

	taken := map[string]bool{}
	for _, f := range DetectFields(html) {
		taken[f.ID] = true
	}

	n, count := 0, 0
	nextID := func() string {
		for {
			n++
			id := "field" + strconv.Itoa(n)
			if !taken[id] {
				return id
			}
		}
	}

	var sb strings.Builder
	last := 0
	for _, m := range blankRegex.FindAllStringSubmatchIndex(html, -1) {
		sb.WriteString(html[last:m[0]])
		fieldHint := hint
		if m[2] >= 0 {
			inner := strings.TrimSpace(html[m[2]:m[3]])
			if strings.Trim(inner, "_ ") != "" {
				fieldHint = inner
			}
		}
		sb.WriteString(FieldMarker(nextID(), fieldHint))
		count++
		last = m[1]
	}
	sb.WriteString(html[last:])
	return sb.String(), count
}

type htmlConverter struct {
	styles map[string]string
	out    strings.Builder
}

func (c *htmlConverter) writeBlock(elements []xml.BodyElement) {
	for _, el := range elements {
		switch el := el.(type) {
		case *xml.Paragraph:
			c.writeParagraph(el)
		case *xml.Table:
			c.writeTable(el)
		}
	}
}

func (c *htmlConverter) writeTable(t *xml.Table) {
	c.out.WriteString("<table>")
	for _, row := range t.Rows {
		c.out.WriteString("<tr>")
		for _, cell := range row.Cells {
			c.out.WriteString("<td>")
			c.writeBlock(cell.Elements)
			c.out.WriteString("</td>")
		}
		c.out.WriteString("</tr>")
	}
	c.out.WriteString("</table>")
}

func (c *htmlConverter) writeParagraph(p *xml.Paragraph) {
	inline := c.inlineHTML(p)
	if strings.TrimSpace(inline) == "" {
		return
	}
	if c.isHeading(p) {
		c.out.WriteString(`<p class="` + SectionTitleClass + `">`)
	} else {
		c.out.WriteString("<p>")
	}
	c.out.WriteString(inline)
	c.out.WriteString("</p>")
}

// inlineHTML merges neighbouring runs with the same weight so that Word's
// arbitrary run splits do not fragment <strong> elements.
func (c *htmlConverter) inlineHTML(p *xml.Paragraph) string {
	var sb strings.Builder
	bold := false
	for _, run := range p.Runs() {
		text := runHTML(run)
		if text == "" {
			continue
		}
		if run.IsBold() != bold {
			if bold {
				sb.WriteString("</strong>")
			} else {
				sb.WriteString("<strong>")
			}
			bold = !bold
		}
		sb.WriteString(text)
	}
	if bold {
		sb.WriteString("</strong>")
	}
	return sb.String()
}

func runHTML(run *xml.Run) string {
	var sb strings.Builder
	for _, content := range run.Content {
		switch content := content.(type) {
		case *xml.Text:
			sb.WriteString(textEscaper.Replace(content.Content))
		case *xml.Tab:
			sb.WriteString(" ")
		case *xml.Break:
			if content.Type == "" || content.Type == "textWrapping" {
				sb.WriteString("<br>")
			}
		}
	}
	return sb.String()
}

func (c *htmlConverter) isHeading(p *xml.Paragraph) bool {
	if p.HasOutlineLevel() {
		return true
	}
	id := p.StyleID()
	if id == "" {
		return false
	}
	return isHeadingStyle(id) || isHeadingStyle(c.styles[id])
}

func isHeadingStyle(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	for _, prefix := range headingStylePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// readStyleNames maps style ids to display names. Localized Word versions use
// ids like "1" for "heading 1", so the name is what identifies a heading.
// A missing or broken styles part only costs heading detection.
func readStyleNames(reader *DocxReader, logger *Logger) map[string]string {
	names := map[string]string{}
	if _, ok := reader.Parts[stylesPart]; !ok {
		return names
	}
	data, err := reader.GetPart(stylesPart)
	if err != nil {
		logger.WithField("error", err).Warn("Could not read styles part")
		return names
	}

	var styles struct {
		Styles []struct {
			ID   string `xml:"styleId,attr"`
			Name struct {
				Val string `xml:"val,attr"`
			} `xml:"name"`
		} `xml:"style"`
	}
	if err := stdxml.Unmarshal(data, &styles); err != nil {
		logger.WithField("error", err).Warn("Could not parse styles part")
		return names
	}
	for _, s := range styles.Styles {
		names[s.ID] = s.Name.Val
	}
	return names
}
