package parser

import (
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/corpuslint/internal/corpus"
	"github.com/dgallion1/corpuslint/internal/diagram"
)

// MarkdownParser handles Markdown files using goldmark for structure and a
// raw fence scan for snippet bookkeeping.
type MarkdownParser struct{}

type fmEnvelope struct {
	Title string `yaml:"title"`
}

func (p *MarkdownParser) Parse(r io.Reader, path string) (*corpus.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := &corpus.Document{
		Path:   path,
		Title:  titleFromPath(path),
		Status: corpus.StatusClean,
	}

	// Frontmatter is stripped before structural parsing so delimiter
	// lines never read as thematic breaks or headings.
	body := src
	var meta fmEnvelope
	if rest, fmErr := frontmatter.Parse(bytes.NewReader(src), &meta); fmErr == nil {
		body = rest
		if meta.Title != "" {
			doc.Title = meta.Title
		}
	}
	lineOffset := countLines(src) - countLines(body)

	fences := scanFences(string(body))
	lineStarts := buildLineIndex(body)

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	// Walk top-level blocks. Headings open a new section; everything else
	// accumulates into the current one. A stack of open headings yields
	// each section's breadcrumb.
	type stackEntry struct {
		title string
		level int
	}
	var stack []stackEntry
	var current *corpus.Section
	var bodyBuf bytes.Buffer

	flushBody := func() {
		if current == nil {
			return
		}
		t := strings.TrimSpace(bodyBuf.String())
		if t != "" {
			if current.Body != "" {
				current.Body += "\n\n" + t
			} else {
				current.Body = t
			}
		}
		bodyBuf.Reset()
	}

	// ensurePreamble lazily opens a level-0 section for content that
	// appears before the first heading.
	ensurePreamble := func() {
		if current == nil {
			current = &corpus.Section{Level: 0, Line: lineOffset + 1}
			doc.Sections = append(doc.Sections, current)
		}
	}

	lastLevel := 0
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			flushBody()
			level := node.Level
			title := string(node.Text(body))
			line := lineOffset + nodeLine(node, lineStarts)

			if lastLevel > 0 && level > lastLevel+1 {
				doc.AddWarning(corpus.WarnHeadingSkip,
					"heading level jumps from "+levelMark(lastLevel)+" to "+levelMark(level), line)
			}
			lastLevel = level

			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			bc := make([]string, 0, len(stack)+1)
			for _, e := range stack {
				bc = append(bc, e.title)
			}
			bc = append(bc, title)
			stack = append(stack, stackEntry{title: title, level: level})

			current = &corpus.Section{
				Title:      title,
				Level:      level,
				Line:       line,
				Breadcrumb: bc,
			}
			doc.Sections = append(doc.Sections, current)

		case *ast.FencedCodeBlock, *ast.CodeBlock:
			// Captured by the fence scan; keep it out of the body text.
			ensurePreamble()

		default:
			t := extractText(n, body)
			if t != "" {
				ensurePreamble()
				if bodyBuf.Len() > 0 {
					bodyBuf.WriteString("\n\n")
				}
				bodyBuf.WriteString(t)
			}
		}
	}
	flushBody()

	attachFences(doc, fences, lineOffset)
	return doc, nil
}

// attachFences assigns scanned fence blocks to the section whose span
// contains the opening fence line, classifying diagram markup and
// reporting unclosed fences.
func attachFences(doc *corpus.Document, fences []fenceBlock, lineOffset int) {
	for _, f := range fences {
		openLine := lineOffset + f.OpenLine
		if f.CloseLine < 0 {
			doc.AddWarning(corpus.WarnUnclosedFence, "code fence opened but never closed", openLine)
			continue
		}

		sec := sectionAt(doc, openLine)
		if sec == nil {
			sec = &corpus.Section{Level: 0, Line: lineOffset + 1}
			doc.Sections = append([]*corpus.Section{sec}, doc.Sections...)
		}

		lang := fenceLanguage(f.Info)
		if isDiagramLanguage(lang) {
			kind, warns := diagram.Check(f.Body)
			for i := range warns {
				warns[i].Line += openLine
			}
			sec.Diagrams = append(sec.Diagrams, &corpus.DiagramBlock{
				Kind:     kind,
				Body:     f.Body,
				Line:     openLine,
				Warnings: warns,
			})
			if len(warns) > 0 && doc.Status == corpus.StatusClean {
				doc.Status = corpus.StatusWarnings
			}
			continue
		}

		if lang == "" {
			lang = corpus.LangUnspecified
		}
		sec.Snippets = append(sec.Snippets, &corpus.Snippet{
			Language: lang,
			Body:     f.Body,
			Line:     openLine,
			BodyHash: HashText(f.Body),
		})
	}
}

func isDiagramLanguage(lang string) bool {
	return lang == "mermaid"
}

// sectionAt finds the last section starting at or before the given line.
func sectionAt(doc *corpus.Document, line int) *corpus.Section {
	var found *corpus.Section
	for _, sec := range doc.Sections {
		if sec.Line <= line {
			found = sec
		}
	}
	return found
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}

// nodeLine maps a block node to its 1-based starting line.
func nodeLine(n ast.Node, lineStarts []int) int {
	lines := n.Lines()
	if lines.Len() == 0 {
		return 1
	}
	off := lines.At(0).Start
	return sort.SearchInts(lineStarts, off+1)
}

// buildLineIndex returns the byte offset of each line start.
func buildLineIndex(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func countLines(b []byte) int {
	return bytes.Count(b, []byte{'\n'})
}

func levelMark(level int) string {
	return strings.Repeat("#", level)
}
