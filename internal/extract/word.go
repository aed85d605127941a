package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/draftvista/draftvista/internal/textclean"
)

// fromWord decodes a Word document and returns its cleaned text content.
// Modern .docx files are OOXML zip archives; legacy binary .doc files are
// accepted by extension but fail here with a diagnostic error, matching how
// the upload filter advertises both.
func fromWord(path string) (string, error) {
	text, warnings, err := readDocx(path)
	if err != nil {
		return "", fmt.Errorf("Word document extraction failed: %w", err)
	}
	for _, w := range warnings {
		log.Printf("Word extraction warning for %s: %s", path, w)
	}
	return text, nil
}

// readDocx reads word/document.xml out of the OOXML package and flattens the
// runs of every paragraph into plain text.
func readDocx(path string) (string, []string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening document package: %w", err)
	}
	defer archive.Close()

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", nil, fmt.Errorf("no main document part found")
	}

	rc, err := document.Open()
	if err != nil {
		return "", nil, fmt.Errorf("opening document part: %w", err)
	}
	defer rc.Close()

	text, warnings, err := flattenDocumentXML(rc)
	if err != nil {
		return "", nil, err
	}

	if strings.TrimSpace(text) == "" {
		return "", warnings, fmt.Errorf("%w in Word document", ErrNoReadableText)
	}

	return textclean.Clean(text), warnings, nil
}

func flattenDocumentXML(r io.Reader) (string, []string, error) {
	var (
		sb       strings.Builder
		warnings []string
		inText   bool
	)

	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", warnings, fmt.Errorf("parsing document XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			case "drawing", "pict":
				warnings = append(warnings, "embedded drawing skipped")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return sb.String(), warnings, nil
}
