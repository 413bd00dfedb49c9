package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Extractor pulls plain text out of uploaded document files. go-fitz reads
// both PDF and EPUB, so one extractor covers every supported format.
type Extractor struct{}

// NewExtractor creates a document text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// SupportedType reports whether the file extension is a format the extractor
// can read.
func SupportedType(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".epub":
		return true
	}
	return false
}

// DocType returns the stored document type for a file name.
func DocType(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		ext = "pdf"
	}
	return ext
}

// ExtractText concatenates the text of every page in the file. A document
// whose pages hold no text yields an empty string, which ingestion treats as
// a valid zero-page document.
func (e *Extractor) ExtractText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", i, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// Stage copies an uploaded file into the uploads directory under its original
// name and returns the staged path.
func Stage(r io.Reader, uploadsDir, name string) (string, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}
	path := filepath.Join(uploadsDir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to stage upload: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}
