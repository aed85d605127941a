package extract

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeDocx builds a minimal OOXML package containing the given paragraphs.
func writeDocx(t *testing.T, paragraphs ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "manuscript.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating docx: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	doc, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("creating document.xml: %v", err)
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		sb.WriteString(`<w:p><w:r><w:t>`)
		sb.WriteString(p)
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:body></w:document>`)

	if _, err := doc.Write([]byte(sb.String())); err != nil {
		t.Fatalf("writing document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}
	return path
}

func TestTextUnsupportedExtensions(t *testing.T) {
	for _, name := range []string{"notes.txt", "slides.pptx", "data.csv", "noext", "paper.PDF.bak"} {
		path := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
			t.Fatalf("writing file: %v", err)
		}

		_, err := Text(path)
		if !errors.Is(err, ErrUnsupportedFileType) {
			t.Errorf("Text(%q): expected ErrUnsupportedFileType, got %v", name, err)
		}
	}
}

func TestTextFromDocx(t *testing.T) {
	path := writeDocx(t, "Introduction to the study.", "Methods   and    materials.")

	text, err := Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "Introduction to the study.") {
		t.Errorf("expected first paragraph in output, got %q", text)
	}
	if !strings.Contains(text, "Methods and materials.") {
		t.Errorf("expected normalized second paragraph, got %q", text)
	}
}

func TestTextDocxCaseInsensitiveExtension(t *testing.T) {
	path := writeDocx(t, "Body text.")
	upper := filepath.Join(filepath.Dir(path), "MANUSCRIPT.DOCX")
	if err := os.Rename(path, upper); err != nil {
		t.Fatalf("renaming: %v", err)
	}

	if _, err := Text(upper); err != nil {
		t.Errorf("uppercase extension should dispatch to Word backend, got %v", err)
	}
}

func TestTextEmptyDocx(t *testing.T) {
	path := writeDocx(t, "", "   ")

	_, err := Text(path)
	if !errors.Is(err, ErrNoReadableText) {
		t.Fatalf("expected ErrNoReadableText, got %v", err)
	}
}

func TestTextWrappingLayers(t *testing.T) {
	// A .doc that is not a zip archive fails inside the Word backend; the
	// message must carry both the stage prefix and the top-level prefix.
	path := filepath.Join(t.TempDir(), "legacy.doc")
	if err := os.WriteFile(path, []byte("\xd0\xcf\x11\xe0 old binary format"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	_, err := Text(path)
	if err == nil {
		t.Fatal("expected error for binary .doc")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "failed to extract text from file: ") {
		t.Errorf("missing top-level prefix: %q", msg)
	}
	if !strings.Contains(msg, "Word document extraction failed: ") {
		t.Errorf("missing stage prefix: %q", msg)
	}
}

func TestTextCorruptPDFWrapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf at all"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	_, err := Text(path)
	if err == nil {
		t.Fatal("expected error for corrupt PDF")
	}
	if !strings.Contains(err.Error(), "PDF extraction failed: ") {
		t.Errorf("missing PDF stage prefix: %q", err.Error())
	}
}

func TestDocxMissingDocumentPart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hollow.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating file: %v", err)
	}
	zw := zip.NewWriter(f)
	part, _ := zw.Create("word/styles.xml")
	part.Write([]byte("<styles/>"))
	zw.Close()
	f.Close()

	_, err = Text(path)
	if err == nil || !strings.Contains(err.Error(), "no main document part") {
		t.Errorf("expected missing document part error, got %v", err)
	}
}
