package diagram

import (
	"strings"
	"testing"

	"github.com/dgallion1/corpuslint/internal/corpus"
)

func TestCheck_DanglingEdgeReference(t *testing.T) {
	body := "flowchart TD\nA\nB\nA --> C\n"
	kind, warns := Check(body)
	if kind != corpus.DiagramFlowchart {
		t.Errorf("expected flowchart kind, got %q", kind)
	}
	if len(warns) != 1 {
		t.Fatalf("expected exactly 1 warning, got %d: %v", len(warns), warns)
	}
	if !strings.Contains(warns[0].Message, `"C"`) {
		t.Errorf("warning must name C, got %q", warns[0].Message)
	}
	if warns[0].Line != 4 {
		t.Errorf("expected warning on line 4, got %d", warns[0].Line)
	}
}

func TestCheck_DeclaredEdgeIsClean(t *testing.T) {
	body := "flowchart TD\nA\nB\nA --> B\n"
	_, warns := Check(body)
	if len(warns) != 0 {
		t.Errorf("expected no warnings, got %v", warns)
	}
}

func TestCheck_LabelledMentionDeclares(t *testing.T) {
	body := "flowchart LR\nA[Start] --> B{Decision}\nB --> C(Done)\n"
	_, warns := Check(body)
	if len(warns) != 0 {
		t.Errorf("labelled mentions declare their nodes, got %v", warns)
	}
}

func TestCheck_DeclarationMustComeFirst(t *testing.T) {
	body := "flowchart TD\nA\nA --> C\nC\n"
	_, warns := Check(body)
	if len(warns) != 1 {
		t.Fatalf("a later declaration does not cure an earlier edge, got %v", warns)
	}
}

func TestCheck_MissingNodeWarnedOncePerBlock(t *testing.T) {
	body := "flowchart TD\nA\nA --> X\nA --> X\n"
	_, warns := Check(body)
	if len(warns) != 1 {
		t.Errorf("expected deduplicated warning, got %d: %v", len(warns), warns)
	}
}

func TestCheck_SequenceParticipants(t *testing.T) {
	body := "sequenceDiagram\nparticipant Client\nparticipant API as Backend\nClient ->> API: login\nAPI -->> Client: token\n"
	kind, warns := Check(body)
	if kind != corpus.DiagramSequence {
		t.Errorf("expected sequence kind, got %q", kind)
	}
	if len(warns) != 0 {
		t.Errorf("expected no warnings, got %v", warns)
	}
}

func TestCheck_SequenceUndeclaredActor(t *testing.T) {
	body := "sequenceDiagram\nparticipant Client\nClient ->> Cache: get\n"
	_, warns := Check(body)
	if len(warns) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warns), warns)
	}
	if !strings.Contains(warns[0].Message, `"Cache"`) {
		t.Errorf("warning must name Cache, got %q", warns[0].Message)
	}
}

func TestCheck_EdgeLabelsIgnored(t *testing.T) {
	body := "flowchart TD\nA\nB\nA -->|yes| B\n"
	_, warns := Check(body)
	if len(warns) != 0 {
		t.Errorf("pipe labels are not node references, got %v", warns)
	}
}

func TestCheck_HeaderlessBlockIsFlowchart(t *testing.T) {
	body := "A[Req] --> B[Handler]\nB --> C\n"
	kind, warns := Check(body)
	if kind != corpus.DiagramFlowchart {
		t.Errorf("expected flowchart kind, got %q", kind)
	}
	if len(warns) != 1 {
		t.Errorf("expected 1 warning for C, got %v", warns)
	}
}

func TestCheck_OtherKindsAreNotChecked(t *testing.T) {
	body := "erDiagram\nUSER ||--o{ ORDER : places\n"
	kind, warns := Check(body)
	if kind != corpus.DiagramOther {
		t.Errorf("expected other kind, got %q", kind)
	}
	if len(warns) != 0 {
		t.Errorf("ER markup must not be edge-checked, got %v", warns)
	}
}

func TestCheck_CommentsAndBlanksIgnored(t *testing.T) {
	body := "flowchart TD\n\n%% a comment\nA\nA --> A\n"
	_, warns := Check(body)
	if len(warns) != 0 {
		t.Errorf("expected no warnings, got %v", warns)
	}
}

func TestCheck_SubgraphDeclares(t *testing.T) {
	body := "flowchart TD\nsubgraph Cluster\nA[Pod]\nend\nA --> Cluster\n"
	_, warns := Check(body)
	if len(warns) != 0 {
		t.Errorf("subgraph names are declared nodes, got %v", warns)
	}
}
