package corpus

// DocumentStatus describes how a document came through the scan.
type DocumentStatus string

const (
	StatusClean    DocumentStatus = "clean"
	StatusWarnings DocumentStatus = "warnings"
	StatusSkipped  DocumentStatus = "skipped"
)

// WarningCode classifies structural problems found while scanning.
type WarningCode string

const (
	WarnUnclosedFence WarningCode = "unclosed-fence"
	WarnHeadingSkip   WarningCode = "heading-skip"
	WarnMissingNode   WarningCode = "missing-node"
	WarnDecodeError   WarningCode = "decode-error"
)

// Warning is a non-fatal structural problem attached to a document.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	Line    int         `json:"line,omitempty"`
}

// Document is one parsed file in the corpus.
type Document struct {
	Path        string         `json:"path"`  // Relative to the corpus root, slash-separated.
	Title       string         `json:"title"` // Frontmatter/HTML title, else filename stem.
	Status      DocumentStatus `json:"status"`
	Sections    []*Section     `json:"sections"`
	Warnings    []Warning      `json:"warnings"`
	ContentHash string         `json:"content_hash,omitempty"` // SHA-256 hex of the decoded text.
}

// Section is a heading-delimited subdivision of a document.
// Level 0 marks preamble text appearing before the first heading.
type Section struct {
	Title      string          `json:"title"`
	Level      int             `json:"level"`
	Line       int             `json:"line,omitempty"`
	Body       string          `json:"-"`
	Breadcrumb []string        `json:"breadcrumb,omitempty"` // Heading ancestry, e.g. ["Authentication", "JWT"].
	Snippets   []*Snippet      `json:"snippets"`
	Diagrams   []*DiagramBlock `json:"diagrams"`
}

// LangUnspecified is the language tag reported for fences with no info string.
const LangUnspecified = "unspecified"

// Snippet is a fenced code block captured from a section.
type Snippet struct {
	Language string `json:"language"`
	Body     string `json:"-"`
	Line     int    `json:"line"`
	BodyHash string `json:"body_hash,omitempty"` // SHA-256 hex, for cross-document duplicate detection.
}

// DiagramKind is the flavor of diagram markup inside a block.
type DiagramKind string

const (
	DiagramFlowchart DiagramKind = "flowchart"
	DiagramSequence  DiagramKind = "sequence"
	DiagramOther     DiagramKind = "other"
)

// DiagramBlock is a fenced block of diagram-description markup.
type DiagramBlock struct {
	Kind     DiagramKind `json:"kind"`
	Body     string      `json:"-"`
	Line     int         `json:"line"`
	Warnings []Warning   `json:"warnings"`
}

// AddWarning appends a structural warning and downgrades a clean document.
func (d *Document) AddWarning(code WarningCode, message string, line int) {
	d.Warnings = append(d.Warnings, Warning{Code: code, Message: message, Line: line})
	if d.Status == StatusClean {
		d.Status = StatusWarnings
	}
}

// WarningCount returns the total warning count including per-diagram warnings.
func (d *Document) WarningCount() int {
	n := len(d.Warnings)
	for _, sec := range d.Sections {
		for _, dg := range sec.Diagrams {
			n += len(dg.Warnings)
		}
	}
	return n
}

// DiagramWarnings flattens the diagram warnings of every section, in order.
func (d *Document) DiagramWarnings() []Warning {
	var out []Warning
	for _, sec := range d.Sections {
		for _, dg := range sec.Diagrams {
			out = append(out, dg.Warnings...)
		}
	}
	return out
}
