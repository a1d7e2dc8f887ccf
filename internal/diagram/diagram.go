// Package diagram performs syntactic checks on fenced diagram markup.
// It verifies that every edge endpoint refers to a node introduced
// earlier in the same block. It never attempts to render or semantically
// validate a diagram.
package diagram

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/corpuslint/internal/corpus"
)

// Arrow operators recognized between edge endpoints, longest first so the
// scanner never splits e.g. "-->" into "--" plus ">".
var arrowRe = regexp.MustCompile(`-\.+->>?|==+>|--+>>|--+>|->>|->|--+`)

// Labelled node mention such as A[Start], B(Round), C{Decision}.
var labelledRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_-]*)\s*[\[({]`)

// Bare node token.
var bareRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Check scans one diagram block and reports dangling edge references.
// Warning lines are 1-based within the block body; the caller offsets
// them to document coordinates.
func Check(body string) (corpus.DiagramKind, []corpus.Warning) {
	kind := corpus.DiagramOther
	sawHeader := false

	declared := map[string]bool{}
	warned := map[string]bool{}
	var warnings []corpus.Warning

	for i, raw := range strings.Split(body, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}

		if !sawHeader {
			if k, ok := headerKind(line); ok {
				kind = k
				sawHeader = true
				continue
			}
			// Headerless blocks are treated as flowcharts; the fence
			// tag already told us this is diagram markup.
			kind = corpus.DiagramFlowchart
			sawHeader = true
		}

		// Class/state/ER markup reuses dashes for unrelated syntax, so
		// the edge check only applies to flowchart and sequence blocks.
		if kind == corpus.DiagramOther {
			continue
		}

		if name, ok := participantName(line); ok {
			declared[name] = true
			continue
		}
		if strings.HasPrefix(line, "subgraph ") {
			declared[strings.TrimSpace(strings.TrimPrefix(line, "subgraph "))] = true
			continue
		}
		if line == "end" {
			continue
		}

		segments := arrowRe.Split(line, -1)
		if len(segments) == 1 {
			// No edge on this line: a standalone mention declares.
			if name, ok := nodeName(line); ok {
				declared[name] = true
			}
			continue
		}

		for segIdx, seg := range segments {
			seg = cleanEndpoint(seg, segIdx == len(segments)-1)
			if seg == "" {
				continue
			}
			if m := labelledRe.FindStringSubmatch(seg); m != nil {
				// A labelled mention introduces the node even inside an edge.
				declared[m[1]] = true
				continue
			}
			if !bareRe.MatchString(seg) {
				continue
			}
			if !declared[seg] && !warned[seg] {
				warned[seg] = true
				warnings = append(warnings, corpus.Warning{
					Code:    corpus.WarnMissingNode,
					Message: fmt.Sprintf("edge references undeclared node %q", seg),
					Line:    lineNo,
				})
			}
		}
	}

	return kind, warnings
}

func headerKind(line string) (corpus.DiagramKind, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return corpus.DiagramOther, false
	}
	switch fields[0] {
	case "flowchart", "graph":
		return corpus.DiagramFlowchart, true
	case "sequenceDiagram":
		return corpus.DiagramSequence, true
	case "erDiagram", "classDiagram", "stateDiagram", "stateDiagram-v2", "gantt", "pie", "journey":
		return corpus.DiagramOther, true
	}
	return corpus.DiagramOther, false
}

func participantName(line string) (string, bool) {
	for _, kw := range []string{"participant ", "actor "} {
		if !strings.HasPrefix(line, kw) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, kw))
		// "participant X as Label" declares X.
		if idx := strings.Index(rest, " as "); idx >= 0 {
			rest = rest[:idx]
		}
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// nodeName extracts the node token from a standalone declaration line.
func nodeName(line string) (string, bool) {
	if m := labelledRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if bareRe.MatchString(line) {
		return line, true
	}
	return "", false
}

// cleanEndpoint strips edge decoration from an endpoint segment:
// |label| pipes next to the arrow and, on the last segment of a
// sequence message, everything from the colon on.
func cleanEndpoint(seg string, last bool) string {
	seg = strings.TrimSpace(seg)
	if last {
		if idx := strings.Index(seg, ":"); idx >= 0 {
			seg = seg[:idx]
		}
	}
	if strings.HasPrefix(seg, "|") {
		if end := strings.Index(seg[1:], "|"); end >= 0 {
			seg = seg[end+2:]
		}
	}
	if strings.HasSuffix(seg, "|") {
		if start := strings.LastIndex(seg[:len(seg)-1], "|"); start >= 0 {
			seg = seg[:start]
		}
	}
	return strings.TrimSpace(seg)
}
