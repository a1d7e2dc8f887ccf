package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/corpuslint/internal/corpus"
)

// TextParser handles plain text files. The whole body becomes a single
// untitled section; plain text has no fences or diagram markup to check.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, path string) (*corpus.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &corpus.Document{
		Path:   path,
		Title:  titleFromPath(path),
		Status: corpus.StatusClean,
	}

	body := strings.TrimSpace(string(src))
	if body != "" {
		doc.Sections = append(doc.Sections, &corpus.Section{
			Level: 0,
			Line:  1,
			Body:  body,
		})
	}
	return doc, nil
}
