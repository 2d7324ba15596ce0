package clause

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"text/template"
)

// ExportTarget selects the document shell produced by Export.
type ExportTarget string

const (
	TargetPrint ExportTarget = "print"
	TargetWord  ExportTarget = "word"
)

// ParseExportTarget maps a user-supplied name to a target. Empty means print.
func ParseExportTarget(s string) (ExportTarget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "print", "html":
		return TargetPrint, nil
	case "word", "doc", "docx":
		return TargetWord, nil
	}
	return "", fmt.Errorf("unknown export target %q", s)
}

// ContentType returns the MIME type of the exported document.
func (t ExportTarget) ContentType() string {
	if t == TargetWord {
		return "application/msword"
	}
	return "text/html; charset=utf-8"
}

// FileName returns a download name for title.
func (t ExportTarget) FileName(title string) string {
	base := fileNameUnsafe.ReplaceAllString(strings.TrimSpace(title), "_")
	if base == "" {
		base = "document"
	}
	if t == TargetWord {
		return base + ".doc"
	}
	return base + ".html"
}

var fileNameUnsafe = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// documentCSS holds the layout shared by both shells.
const documentCSS = `
body { font-family: "Times New Roman", Times, serif; font-size: 12pt; line-height: 1.5; color: #000; }
p { margin: 0 0 6pt 0; text-align: justify; text-indent: 1.25cm; }
p.section-title, h1, h2, h3, h4 { text-indent: 0; text-align: center; font-weight: bold; margin: 12pt 0 6pt 0; }
h1.document-title { font-size: 14pt; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #000; padding: 4pt; vertical-align: top; }
td p, th p { text-indent: 0; }
.contract-field, [data-field] { font-style: italic; text-decoration: underline; border-bottom: 1px solid #000; padding: 0 2pt; }
.contract-field:empty::before, [data-field]:empty::before { content: attr(data-ph); color: #777; }
`

var printShell = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
@page { size: A4; margin: 2cm 1.5cm 2cm 3cm; }
@media print { body { margin: 0; } }
{{.CSS}}</style>
</head>
<body>
{{if .Title}}<h1 class="document-title">{{.Title}}</h1>
{{end}}{{.Body}}
</body>
</html>
`))

var wordShell = template.Must(template.New("word").Parse(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:w="urn:schemas-microsoft-com:office:word" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View><w:Zoom>100</w:Zoom></w:WordDocument></xml><![endif]-->
<style>
@page WordSection1 { size: 21cm 29.7cm; margin: 2cm 1.5cm 2cm 3cm; mso-page-orientation: portrait; }
div.WordSection1 { page: WordSection1; }
{{.CSS}}</style>
</head>
<body>
<div class="WordSection1">
{{if .Title}}<h1 class="document-title">{{.Title}}</h1>
{{end}}{{.Body}}
</div>
</body>
</html>
`))

type shellData struct {
	Title string
	CSS   string
	Body  string
}

// Format wraps fully rendered HTML in a standalone, print-ready document.
// The body is inserted as is; only the title is escaped.
func Format(renderedHTML, title string) string {
	return Export(TargetPrint, renderedHTML, title)
}

// FormatWord wraps rendered HTML in a shell that word processors open as a document.
func FormatWord(renderedHTML, title string) string {
	return Export(TargetWord, renderedHTML, title)
}

// Export wraps renderedHTML for target.
func Export(target ExportTarget, renderedHTML, title string) string {
	shell := printShell
	if target == TargetWord {
		shell = wordShell
	}

	var sb strings.Builder
	// executing a parsed template into a strings.Builder with string fields cannot fail
	_ = shell.Execute(&sb, shellData{
		Title: html.EscapeString(strings.TrimSpace(title)),
		CSS:   documentCSS,
		Body:  renderedHTML,
	})
	return sb.String()
}
