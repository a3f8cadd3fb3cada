package reader

import (
	"bytes"
	"testing"

	"github.com/phpdave11/gofpdf"
)

// TestOpenGofpdfGeneratedDocument exercises Open against a PDF produced by
// an independent, real-world generator rather than a hand-built fixture.
func TestOpenGofpdfGeneratedDocument(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Hello, World!")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 10, "Second page")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("gofpdf Output: %v", err)
	}

	r, err := Open(buf.Bytes(), TolerantOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	pages := r.Document.Catalog.Pages.Flatten()
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	for i, p := range pages {
		if p.EffectiveMediaBox() == nil {
			t.Fatalf("page %d: expected a resolvable MediaBox", i)
		}
	}
}
