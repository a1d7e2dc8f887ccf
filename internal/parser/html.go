package parser

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/corpuslint/internal/corpus"
)

// HTMLParser handles HTML documentation files. Heading tags delimit
// sections and <pre><code> blocks become snippets. The html package does
// not expose source positions, so sections and snippets carry no line
// numbers.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, path string) (*corpus.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		// html.Parse only fails on reader errors; parse problems are
		// absorbed by the tolerant HTML5 algorithm.
		return nil, err
	}

	doc := &corpus.Document{
		Path:   path,
		Title:  titleFromPath(path),
		Status: corpus.StatusClean,
	}
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	type stackEntry struct {
		title string
		level int
	}
	var stack []stackEntry
	var current *corpus.Section
	var bodyBuf strings.Builder

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

	ensureSection := func() *corpus.Section {
		if current == nil {
			current = &corpus.Section{Level: 0}
			doc.Sections = append(doc.Sections, current)
		}
		return current
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				flushBody()
				title := textContent(n)

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
					Breadcrumb: bc,
				}
				doc.Sections = append(doc.Sections, current)
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "pre":
				if code := findChild(n, "code"); code != nil {
					lang := codeLanguage(code)
					if lang == "" {
						lang = corpus.LangUnspecified
					}
					body := strings.TrimRight(textContent(code), "\n")
					sec := ensureSection()
					sec.Snippets = append(sec.Snippets, &corpus.Snippet{
						Language: lang,
						Body:     body,
						BodyHash: HashText(body),
					})
					return
				}
			case "p", "li", "td", "blockquote":
				t := textContent(n)
				if t != "" {
					ensureSection()
					if bodyBuf.Len() > 0 {
						bodyBuf.WriteString("\n\n")
					}
					bodyBuf.WriteString(t)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	body := findBody(root)
	if body != nil {
		walk(body)
	} else {
		walk(root)
	}
	flushBody()

	return doc, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// codeLanguage reads the conventional language-x class from a code tag.
func codeLanguage(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(attr.Val) {
			if lang, ok := strings.CutPrefix(cls, "language-"); ok {
				return lang
			}
			if lang, ok := strings.CutPrefix(cls, "lang-"); ok {
				return lang
			}
		}
	}
	return ""
}

func findChild(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
