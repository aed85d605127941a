// Package extract pulls plain text out of uploaded manuscript files.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFileType reports a file extension outside the accepted set.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrNoReadableText reports a document that decoded but contained no text,
// typically a scanned or corrupted file.
var ErrNoReadableText = errors.New("no readable text found")

// Text extracts and normalizes the text content of the file at path. The
// backend is chosen by file extension: .pdf uses the PDF reader, .docx and
// .doc use the Word reader. Any other extension fails with
// ErrUnsupportedFileType.
func Text(path string) (string, error) {
	text, err := dispatch(path)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from file: %w", err)
	}
	return text, nil
}

func dispatch(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return fromPDF(path)
	case ".docx", ".doc":
		return fromWord(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
}
