// Package report aggregates scan results into a deterministic summary.
package report

import (
	"sort"

	"github.com/dgallion1/corpuslint/internal/corpus"
)

// DocumentReport is the per-document record. Field order matches the
// JSON output contract.
type DocumentReport struct {
	Document           string           `json:"document"`
	Title              string           `json:"title,omitempty"`
	Status             string           `json:"status"`
	Sections           int              `json:"sections"`
	Snippets           int              `json:"snippets"`
	SnippetsByLanguage map[string]int   `json:"snippets_by_language"`
	Diagrams           int              `json:"diagrams"`
	DiagramWarnings    []corpus.Warning `json:"diagram_warnings"`
	Warnings           []corpus.Warning `json:"warnings"`
}

// Location points at one snippet occurrence.
type Location struct {
	Document string `json:"document"`
	Line     int    `json:"line,omitempty"`
}

// Duplicate records a snippet body repeated verbatim across documents.
// Advisory only: duplication never affects exit codes.
type Duplicate struct {
	BodyHash  string     `json:"body_hash"`
	Language  string     `json:"language"`
	Locations []Location `json:"locations"`
}

// Totals summarizes a whole scan.
type Totals struct {
	Documents int `json:"documents"`
	Skipped   int `json:"skipped"`
	Sections  int `json:"sections"`
	Snippets  int `json:"snippets"`
	Diagrams  int `json:"diagrams"`
	Warnings  int `json:"warnings"`
}

// Report is the full scan result, ordered by document path.
type Report struct {
	Documents  []DocumentReport `json:"documents"`
	Duplicates []Duplicate      `json:"duplicates,omitempty"`
	Totals     Totals           `json:"totals"`
}

// Build aggregates parsed documents into a report. Input order does not
// matter; documents are sorted by path and every slice is non-nil so
// repeated runs encode byte-identically.
func Build(docs []*corpus.Document) *Report {
	sorted := make([]*corpus.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	r := &Report{Documents: make([]DocumentReport, 0, len(sorted))}

	type dupKey struct {
		hash string
		lang string
	}
	dupLocs := map[dupKey][]Location{}
	dupDocs := map[dupKey]map[string]bool{}

	for _, doc := range sorted {
		dr := DocumentReport{
			Document:           doc.Path,
			Title:              doc.Title,
			Status:             string(doc.Status),
			Sections:           len(doc.Sections),
			SnippetsByLanguage: map[string]int{},
			DiagramWarnings:    []corpus.Warning{},
			Warnings:           append([]corpus.Warning{}, doc.Warnings...),
		}

		for _, sec := range doc.Sections {
			for _, sn := range sec.Snippets {
				dr.Snippets++
				dr.SnippetsByLanguage[sn.Language]++
				if sn.BodyHash != "" {
					k := dupKey{hash: sn.BodyHash, lang: sn.Language}
					dupLocs[k] = append(dupLocs[k], Location{Document: doc.Path, Line: sn.Line})
					if dupDocs[k] == nil {
						dupDocs[k] = map[string]bool{}
					}
					dupDocs[k][doc.Path] = true
				}
			}
			for _, dg := range sec.Diagrams {
				dr.Diagrams++
				dr.DiagramWarnings = append(dr.DiagramWarnings, dg.Warnings...)
			}
		}

		r.Totals.Documents++
		if doc.Status == corpus.StatusSkipped {
			r.Totals.Skipped++
		}
		r.Totals.Sections += dr.Sections
		r.Totals.Snippets += dr.Snippets
		r.Totals.Diagrams += dr.Diagrams
		r.Totals.Warnings += len(dr.Warnings) + len(dr.DiagramWarnings)

		r.Documents = append(r.Documents, dr)
	}

	for k, docSet := range dupDocs {
		if len(docSet) < 2 {
			continue
		}
		r.Duplicates = append(r.Duplicates, Duplicate{
			BodyHash:  k.hash,
			Language:  k.lang,
			Locations: dupLocs[k],
		})
	}
	sort.Slice(r.Duplicates, func(i, j int) bool {
		a, b := r.Duplicates[i], r.Duplicates[j]
		if a.BodyHash != b.BodyHash {
			return a.BodyHash < b.BodyHash
		}
		return a.Language < b.Language
	})

	return r
}

// HasWarnings reports whether any document produced warnings.
func (r *Report) HasWarnings() bool {
	for _, dr := range r.Documents {
		if len(dr.Warnings) > 0 || len(dr.DiagramWarnings) > 0 {
			return true
		}
	}
	return false
}
