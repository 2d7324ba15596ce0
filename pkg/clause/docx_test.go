package clause

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNamespace = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createDOCXBytes builds a minimal package around body, the inner XML of
// <w:body>. A non-empty styles becomes word/styles.xml.
func createDOCXBytes(body, styles string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	rels, _ := w.Create("_rels/.rels")
	io.WriteString(rels, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`)

	wordRels, _ := w.Create("word/_rels/document.xml.rels")
	io.WriteString(wordRels, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
</Relationships>`)

	doc, _ := w.Create("word/document.xml")
	io.WriteString(doc, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document `+wordNamespace+`><w:body>`+body+`</w:body></w:document>`)

	if styles != "" {
		st, _ := w.Create("word/styles.xml")
		io.WriteString(st, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles `+wordNamespace+`>`+styles+`</w:styles>`)
	}

	ct, _ := w.Create("[Content_Types].xml")
	io.WriteString(ct, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)

	w.Close()
	return buf.Bytes()
}

// createSimpleDOCXBytes wraps content in a single paragraph with one run.
func createSimpleDOCXBytes(content string) []byte {
	return createDOCXBytes(`<w:p><w:r><w:t xml:space="preserve">`+content+`</w:t></w:r></w:p>`, "")
}

func TestNewDocxReader(t *testing.T) {
	data := createSimpleDOCXBytes("Hello")
	reader, err := NewDocxReaderFromBytes(data)
	require.NoError(t, err)

	assert.Contains(t, reader.Parts, "word/document.xml")
	docXML, err := reader.GetDocumentXML()
	require.NoError(t, err)
	assert.Contains(t, string(docXML), "Hello")

	_, err = reader.GetPart("word/missing.xml")
	assert.Error(t, err)
}

func TestNewDocxReaderRejectsOtherFormats(t *testing.T) {
	var zipWithoutDocument bytes.Buffer
	zw := zip.NewWriter(&zipWithoutDocument)
	f, _ := zw.Create("content.xml")
	io.WriteString(f, "<x/>")
	zw.Close()

	tests := []struct {
		name    string
		data    []byte
		message string
	}{
		{name: "empty", data: nil, message: "empty file"},
		{name: "legacy doc", data: append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 32)...), message: "legacy .doc"},
		{name: "pdf", data: []byte("%PDF-1.7\n"), message: "PDF"},
		{name: "plain text", data: []byte("just text"), message: "not a .docx"},
		{name: "truncated zip", data: []byte("PK\x03\x04garbage"), message: "not a zip"},
		{name: "zip without document", data: zipWithoutDocument.Bytes(), message: "missing word/document.xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDocxReaderFromBytes(tt.data)
			require.Error(t, err)
			assert.True(t, IsUnsupportedFormat(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDocxReaderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contract.docx")
	require.NoError(t, os.WriteFile(path, createSimpleDOCXBytes("x"), 0o600))

	reader, err := DocxReaderFromFile(path)
	require.NoError(t, err)
	assert.NotNil(t, reader.Parts["word/document.xml"])

	_, err = DocxReaderFromFile(filepath.Join(t.TempDir(), "missing.docx"))
	assert.Error(t, err)
	assert.False(t, IsUnsupportedFormat(err))
}
