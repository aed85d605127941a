package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/draftvista/draftvista/internal/textclean"
)

// fromPDF decodes a PDF file and returns its cleaned text content.
func fromPDF(path string) (string, error) {
	text, err := readPDF(path)
	if err != nil {
		return "", fmt.Errorf("PDF extraction failed: %w", err)
	}
	return text, nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	body, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", fmt.Errorf("reading PDF text: %w", err)
	}

	if strings.TrimSpace(buf.String()) == "" {
		return "", fmt.Errorf("%w in PDF: the file might be scanned or corrupted", ErrNoReadableText)
	}

	return textclean.Clean(buf.String()), nil
}
