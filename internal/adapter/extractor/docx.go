package extractor

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxExtractor produces one content unit per paragraph of the main
// document part; paragraphs without text are dropped.
//
// A .docx file is a zip archive whose word/document.xml part holds the
// body as w:p (paragraph) elements containing w:t (text run) elements.
type DocxExtractor struct{}

func (e *DocxExtractor) Extract(path string) ([]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer archive.Close()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("document has no word/document.xml part")
	}

	r, err := doc.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open document part: %w", err)
	}
	defer r.Close()

	paragraphs, err := readParagraphs(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document part: %w", err)
	}

	return dropEmpty(paragraphs), nil
}

// readParagraphs walks the XML token stream, collecting the character
// data of each w:t run into its enclosing w:p paragraph.
func readParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inText = inParagraph
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					paragraphs = append(paragraphs, current.String())
				}
				inParagraph = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
