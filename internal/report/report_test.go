package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/corpuslint/internal/corpus"
)

func sampleDocs() []*corpus.Document {
	return []*corpus.Document{
		{
			Path:   "z.md",
			Title:  "Z",
			Status: corpus.StatusClean,
			Sections: []*corpus.Section{
				{
					Title: "Intro", Level: 1,
					Snippets: []*corpus.Snippet{
						{Language: "python", Body: "print(1)", Line: 3, BodyHash: "hash-shared"},
					},
				},
			},
		},
		{
			Path:   "a.md",
			Title:  "A",
			Status: corpus.StatusWarnings,
			Warnings: []corpus.Warning{
				{Code: corpus.WarnUnclosedFence, Message: "code fence opened but never closed", Line: 10},
			},
			Sections: []*corpus.Section{
				{
					Title: "Setup", Level: 1,
					Snippets: []*corpus.Snippet{
						{Language: "python", Body: "print(1)", Line: 5, BodyHash: "hash-shared"},
						{Language: "bash", Body: "ls", Line: 9, BodyHash: "hash-bash"},
					},
					Diagrams: []*corpus.DiagramBlock{
						{
							Kind: corpus.DiagramFlowchart, Line: 12,
							Warnings: []corpus.Warning{
								{Code: corpus.WarnMissingNode, Message: `edge references undeclared node "C"`, Line: 14},
							},
						},
					},
				},
			},
		},
	}
}

func TestBuild_SortsByPath(t *testing.T) {
	r := Build(sampleDocs())
	if len(r.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(r.Documents))
	}
	if r.Documents[0].Document != "a.md" || r.Documents[1].Document != "z.md" {
		t.Errorf("expected path order a.md, z.md; got %q, %q",
			r.Documents[0].Document, r.Documents[1].Document)
	}
}

func TestBuild_Counts(t *testing.T) {
	r := Build(sampleDocs())

	a := r.Documents[0]
	if a.Sections != 1 || a.Snippets != 2 || a.Diagrams != 1 {
		t.Errorf("unexpected counts for a.md: %+v", a)
	}
	if a.SnippetsByLanguage["python"] != 1 || a.SnippetsByLanguage["bash"] != 1 {
		t.Errorf("unexpected language counts: %v", a.SnippetsByLanguage)
	}
	if len(a.DiagramWarnings) != 1 {
		t.Errorf("expected 1 diagram warning, got %d", len(a.DiagramWarnings))
	}

	if r.Totals.Documents != 2 || r.Totals.Sections != 2 || r.Totals.Snippets != 3 {
		t.Errorf("unexpected totals: %+v", r.Totals)
	}
	if r.Totals.Warnings != 2 {
		t.Errorf("expected 2 total warnings, got %d", r.Totals.Warnings)
	}
}

func TestBuild_OrderIndependence(t *testing.T) {
	docs := sampleDocs()
	reversed := []*corpus.Document{docs[1], docs[0]}

	var buf1, buf2 bytes.Buffer
	if err := Build(docs).RenderJSON(&buf1); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := Build(reversed).RenderJSON(&buf2); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Error("report must not depend on input order")
	}
}

func TestBuild_CrossDocumentDuplicates(t *testing.T) {
	r := Build(sampleDocs())
	if len(r.Duplicates) != 1 {
		t.Fatalf("expected 1 duplicate group, got %d", len(r.Duplicates))
	}
	dup := r.Duplicates[0]
	if dup.BodyHash != "hash-shared" {
		t.Errorf("unexpected duplicate hash %q", dup.BodyHash)
	}
	if len(dup.Locations) != 2 {
		t.Errorf("expected 2 locations, got %d", len(dup.Locations))
	}
}

func TestBuild_SameDocumentRepeatIsNotDuplicate(t *testing.T) {
	docs := []*corpus.Document{{
		Path:   "one.md",
		Status: corpus.StatusClean,
		Sections: []*corpus.Section{{
			Snippets: []*corpus.Snippet{
				{Language: "go", BodyHash: "h1", Line: 1},
				{Language: "go", BodyHash: "h1", Line: 9},
			},
		}},
	}}
	r := Build(docs)
	if len(r.Duplicates) != 0 {
		t.Errorf("repeats within one document are not cross-document duplicates, got %v", r.Duplicates)
	}
}

func TestBuild_DuplicateGroupsOrderedByHashThenLanguage(t *testing.T) {
	// The same body hash under two language tags forms two groups; their
	// order must not depend on map iteration.
	docs := []*corpus.Document{
		{
			Path:   "a.md",
			Status: corpus.StatusClean,
			Sections: []*corpus.Section{{
				Snippets: []*corpus.Snippet{
					{Language: "python", BodyHash: "hash-same", Line: 1},
					{Language: "bash", BodyHash: "hash-same", Line: 5},
				},
			}},
		},
		{
			Path:   "b.md",
			Status: corpus.StatusClean,
			Sections: []*corpus.Section{{
				Snippets: []*corpus.Snippet{
					{Language: "python", BodyHash: "hash-same", Line: 2},
					{Language: "bash", BodyHash: "hash-same", Line: 8},
				},
			}},
		},
	}

	for i := 0; i < 50; i++ {
		r := Build(docs)
		if len(r.Duplicates) != 2 {
			t.Fatalf("expected 2 duplicate groups, got %d", len(r.Duplicates))
		}
		if r.Duplicates[0].Language != "bash" || r.Duplicates[1].Language != "python" {
			t.Fatalf("run %d: expected language order bash, python; got %q, %q",
				i, r.Duplicates[0].Language, r.Duplicates[1].Language)
		}
	}
}

func TestHasWarnings(t *testing.T) {
	r := Build(sampleDocs())
	if !r.HasWarnings() {
		t.Error("expected warnings")
	}

	clean := Build([]*corpus.Document{{Path: "c.md", Status: corpus.StatusClean}})
	if clean.HasWarnings() {
		t.Error("expected no warnings")
	}
}

func TestRenderText_SeparatesCleanFromWarned(t *testing.T) {
	var buf bytes.Buffer
	if err := Build(sampleDocs()).RenderText(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "clean (1):") {
		t.Errorf("expected clean group, got:\n%s", out)
	}
	if !strings.Contains(out, "with warnings (1):") {
		t.Errorf("expected warnings group, got:\n%s", out)
	}
	if !strings.Contains(out, "unclosed-fence") {
		t.Errorf("expected warning code in output, got:\n%s", out)
	}
	if !strings.Contains(out, "duplicated snippets") {
		t.Errorf("expected duplicates note, got:\n%s", out)
	}
	if !strings.Contains(out, "  a.md: ") {
		t.Errorf("expected per-document summary line, got:\n%s", out)
	}
	for _, r := range out {
		if r > 0x7f {
			t.Fatalf("text output must be plain ASCII, got %q", out)
		}
	}
}

func TestRenderJSON_Deterministic(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	r := Build(sampleDocs())
	if err := r.RenderJSON(&buf1); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := r.RenderJSON(&buf2); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Error("repeated renders must be byte-identical")
	}
}
