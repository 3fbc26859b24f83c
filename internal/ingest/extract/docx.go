package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"mga-chatbot/internal/domain"
)

const wordMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// DOCX extracts the body text of a Word document as a single document.
// Paragraphs, including those inside tables, become lines.
func DOCX(_ context.Context, file domain.RawFile) ([]domain.Document, error) {
	zr, err := zip.OpenReader(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer func() {
		_ = zr.Close()
	}()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open document.xml: %w", err)
		}
		text, err := parseDocumentXML(rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		return single(file, text), nil
	}

	return nil, errors.New("docx has no word/document.xml")
}

// parseDocumentXML walks document.xml collecting w:t text. A w:p ends a
// line; w:tab and w:br map to a tab and a newline.
func parseDocumentXML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordMLNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordMLNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
