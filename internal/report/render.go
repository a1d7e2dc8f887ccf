package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// RenderJSON writes the per-document records as a JSON array, sorted by
// path. Map keys inside each record are sorted by the encoder, so the
// output is byte-stable across runs.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Documents)
}

// RenderText writes a human-readable summary, separating clean documents
// from those with warnings so triage is quick.
func (r *Report) RenderText(w io.Writer) error {
	t := r.Totals
	fmt.Fprintf(w, "corpus: %d documents (%d skipped), %d sections, %d snippets, %d diagrams, %d warnings\n",
		t.Documents, t.Skipped, t.Sections, t.Snippets, t.Diagrams, t.Warnings)

	var clean, warned []DocumentReport
	for _, dr := range r.Documents {
		if len(dr.Warnings) == 0 && len(dr.DiagramWarnings) == 0 {
			clean = append(clean, dr)
		} else {
			warned = append(warned, dr)
		}
	}

	if len(clean) > 0 {
		fmt.Fprintf(w, "\nclean (%d):\n", len(clean))
		for _, dr := range clean {
			fmt.Fprintf(w, "  %s: %s\n", dr.Document, docSummary(dr))
		}
	}

	if len(warned) > 0 {
		fmt.Fprintf(w, "\nwith warnings (%d):\n", len(warned))
		for _, dr := range warned {
			fmt.Fprintf(w, "  %s: %s\n", dr.Document, docSummary(dr))
			for _, warn := range dr.Warnings {
				writeWarning(w, warn.Line, string(warn.Code), warn.Message)
			}
			for _, warn := range dr.DiagramWarnings {
				writeWarning(w, warn.Line, string(warn.Code), warn.Message)
			}
		}
	}

	if len(r.Duplicates) > 0 {
		fmt.Fprintf(w, "\nduplicated snippets (%d):\n", len(r.Duplicates))
		for _, dup := range r.Duplicates {
			locs := make([]string, 0, len(dup.Locations))
			for _, loc := range dup.Locations {
				if loc.Line > 0 {
					locs = append(locs, fmt.Sprintf("%s:%d", loc.Document, loc.Line))
				} else {
					locs = append(locs, loc.Document)
				}
			}
			fmt.Fprintf(w, "  %s (%s): %s\n", shortHash(dup.BodyHash), dup.Language, strings.Join(locs, ", "))
		}
	}

	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func docSummary(dr DocumentReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d sections, %d snippets", dr.Sections, dr.Snippets)
	if len(dr.SnippetsByLanguage) > 0 {
		langs := make([]string, 0, len(dr.SnippetsByLanguage))
		for lang := range dr.SnippetsByLanguage {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		parts := make([]string, 0, len(langs))
		for _, lang := range langs {
			parts = append(parts, fmt.Sprintf("%s %d", lang, dr.SnippetsByLanguage[lang]))
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(parts, ", "))
	}
	if dr.Diagrams > 0 {
		fmt.Fprintf(&sb, ", %d diagrams", dr.Diagrams)
	}
	if dr.Status == "skipped" {
		sb.WriteString(" [skipped]")
	}
	return sb.String()
}

func writeWarning(w io.Writer, line int, code, message string) {
	if line > 0 {
		fmt.Fprintf(w, "      line %d: [%s] %s\n", line, code, message)
	} else {
		fmt.Fprintf(w, "      [%s] %s\n", code, message)
	}
}
