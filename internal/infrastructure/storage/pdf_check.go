package storage

import (
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// checkPDF opens the document with mupdf and requires at least one
// renderable page. This catches truncated exports and files that are
// PDFs in extension only.
func checkPDF(content []byte) error {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return fmt.Errorf("PDF has no pages")
	}
	return nil
}
