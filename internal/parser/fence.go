package parser

import (
	"strings"
)

// fenceBlock is one fenced code block found by a raw line scan.
// CloseLine is -1 when the fence was opened but never closed.
type fenceBlock struct {
	OpenLine  int    // 1-based line of the opening fence.
	CloseLine int    // 1-based line of the closing fence, or -1.
	Info      string // Info string after the opening fence, trimmed.
	Body      string // Content between the fences, without the fence lines.
}

// scanFences walks raw markdown line by line and captures fenced blocks.
//
// It follows CommonMark fence rules: a fence is a run of three or more
// backticks or tildes after at most three spaces of indentation; the
// closing fence must use the same character with at least the opening
// run's length. Shorter fence-looking lines inside an open block are
// content, which is what lets a ```` fence contain a ``` example.
// goldmark recovers from an unterminated fence by closing it at EOF, so
// the unclosed case has to be detected here.
func scanFences(src string) []fenceBlock {
	var blocks []fenceBlock

	var (
		open      bool
		openChar  byte
		openLen   int
		current   fenceBlock
		bodyLines []string
	)

	lines := strings.Split(src, "\n")
	for i, line := range lines {
		lineNo := i + 1
		ch, runLen, rest := fenceMarker(line)

		if !open {
			if ch == 0 {
				continue
			}
			// Backtick fences may not carry backticks in the info string.
			if ch == '`' && strings.ContainsRune(rest, '`') {
				continue
			}
			open = true
			openChar = ch
			openLen = runLen
			current = fenceBlock{OpenLine: lineNo, CloseLine: -1, Info: rest}
			bodyLines = bodyLines[:0]
			continue
		}

		if ch == openChar && runLen >= openLen && rest == "" {
			current.CloseLine = lineNo
			current.Body = joinBody(bodyLines)
			blocks = append(blocks, current)
			open = false
			continue
		}
		bodyLines = append(bodyLines, line)
	}

	if open {
		current.Body = joinBody(bodyLines)
		blocks = append(blocks, current)
	}

	return blocks
}

// fenceMarker reports whether a line is a fence delimiter. It returns the
// fence character ('`' or '~', 0 for non-fence lines), the run length, and
// the trimmed remainder of the line.
func fenceMarker(line string) (byte, int, string) {
	s := line
	indent := 0
	for indent < len(s) && indent < 4 && s[indent] == ' ' {
		indent++
	}
	if indent >= 4 {
		return 0, 0, ""
	}
	s = s[indent:]
	if s == "" {
		return 0, 0, ""
	}
	ch := s[0]
	if ch != '`' && ch != '~' {
		return 0, 0, ""
	}
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, ""
	}
	return ch, n, strings.TrimSpace(s[n:])
}

func joinBody(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// fenceLanguage extracts the language tag from a fence info string.
// The first whitespace-delimited word is the tag per CommonMark.
func fenceLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
