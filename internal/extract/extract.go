package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Text extracts plain text from uploaded contract bytes. Supported extensions
// are "pdf", "docx" and "txt". An empty result is not an error here; callers
// treat all-whitespace text as fatal for the run.
func Text(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case "pdf":
		return pdfText(content)
	case "docx":
		return docxText(content)
	case "txt":
		return string(content), nil
	default:
		return "", fmt.Errorf("unsupported extension %q", ext)
	}
}

func pdfText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that fail to extract.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// docxBody mirrors the parts of OOXML word/document.xml we care about:
// paragraphs (w:p) containing runs of text (w:t).
type docxBody struct {
	Paragraphs []struct {
		Texts []string `xml:"r>t"`
	} `xml:"body>p"`
}

// docxText pulls paragraph text out of the word/document.xml entry of the
// OOXML zip, one paragraph per line, blank paragraphs dropped.
func docxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()

		var body docxBody
		if err := xml.NewDecoder(rc).Decode(&body); err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		var lines []string
		for _, p := range body.Paragraphs {
			if line := strings.TrimSpace(strings.Join(p.Texts, "")); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n"), nil
	}
	return "", fmt.Errorf("docx missing word/document.xml")
}
