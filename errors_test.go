package nucleus

import (
	"strings"
	"testing"
)

func Test_RenderError_Caret_Snippet(t *testing.T) {
	src := `(do 1
  (trim 5))`
	s := newTestSession(t, "")
	err := mustFail(t, s, src)

	out := RenderError(err, src)
	if !strings.HasPrefix(out, "TypeError at 2:3:") {
		t.Fatalf("header: %q", out)
	}
	if !strings.Contains(out, "   2 |   (trim 5))") {
		t.Fatalf("context line missing: %q", out)
	}
	if !strings.Contains(out, "|   ^") {
		t.Fatalf("caret missing: %q", out)
	}
}

func Test_RenderError_Parse_Header(t *testing.T) {
	s := newTestSession(t, "")
	err := mustFail(t, s, `(bogus`)
	out := RenderError(err, `(bogus`)
	if !strings.HasPrefix(out, "PARSE ERROR at 1:1:") {
		t.Fatalf("header: %q", out)
	}
}

func Test_RenderError_Without_Span(t *testing.T) {
	e := &EvalError{Kind: ErrNoCandidate, Msg: "exhausted"}
	if got := RenderError(e, "src"); got != "NoCandidate: exhausted" {
		t.Fatalf("spanless render: %q", got)
	}
}

func Test_EvalError_Kinds_Fatality(t *testing.T) {
	if (&EvalError{Kind: ErrTimeout}).Fatal() {
		t.Fatal("timeout must be recoverable")
	}
	if !(&EvalError{Kind: ErrInternal}).Fatal() {
		t.Fatal("internal errors poison the session")
	}
}
