package clause

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

const documentPart = "word/document.xml"

var (
	zipMagic = []byte("PK\x03\x04")
	// legacy .doc files are OLE compound documents
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DocxReader handles reading parts of a DOCX package
type DocxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
}

// NewDocxReader opens a DOCX package. Anything that is not a zip with a
// word/document.xml part fails with an error wrapping ErrUnsupportedFormat.
func NewDocxReader(r io.ReaderAt, size int64) (*DocxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip package: %v", ErrUnsupportedFormat, err)
	}

	dr := &DocxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}
	for _, file := range zipReader.File {
		dr.Parts[file.Name] = file
	}

	if _, ok := dr.Parts[documentPart]; !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrUnsupportedFormat, documentPart)
	}

	return dr, nil
}

// NewDocxReaderFromBytes sniffs data before opening it, so that common wrong
// inputs get a precise message.
func NewDocxReaderFromBytes(data []byte) (*DocxReader, error) {
	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedFormat)
	case bytes.HasPrefix(data, oleMagic):
		return nil, fmt.Errorf("%w: legacy .doc files are not supported, save the document as .docx", ErrUnsupportedFormat)
	case bytes.HasPrefix(data, []byte("%PDF")):
		return nil, fmt.Errorf("%w: PDF files are not supported", ErrUnsupportedFormat)
	case !bytes.HasPrefix(data, zipMagic):
		return nil, fmt.Errorf("%w: not a .docx file", ErrUnsupportedFormat)
	}
	return NewDocxReader(bytes.NewReader(data), int64(len(data)))
}

// DocxReaderFromFile creates a DocxReader from a file path
func DocxReaderFromFile(path string) (*DocxReader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return NewDocxReaderFromBytes(content)
}

// GetPart retrieves the content of a specific part
func (dr *DocxReader) GetPart(partName string) ([]byte, error) {
	file, ok := dr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}

	return content, nil
}

// GetDocumentXML retrieves the content of word/document.xml
func (dr *DocxReader) GetDocumentXML() ([]byte, error) {
	return dr.GetPart(documentPart)
}

// IsUnsupportedFormat reports whether err was caused by a non-DOCX input.
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}
