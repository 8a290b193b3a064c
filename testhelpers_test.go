package nucleus

import "testing"

const testDoc = `alpha one
beta two
gamma three
delta four
epsilon five`

// newTestSession returns a session with doc loaded (testDoc when empty).
func newTestSession(t *testing.T, doc string) *Session {
	t.Helper()
	if doc == "" {
		doc = testDoc
	}
	s := NewSession(DefaultOptions())
	s.LoadText(doc, "test.txt")
	return s
}

// mustExec runs one turn and fails the test on any error.
func mustExec(t *testing.T, s *Session, src string) Value {
	t.Helper()
	resp := s.Execute(src)
	if !resp.OK {
		t.Fatalf("execute %q failed: %v", src, resp.Err)
	}
	return resp.Result
}

// mustFail runs one turn and returns the expected error.
func mustFail(t *testing.T, s *Session, src string) *EvalError {
	t.Helper()
	resp := s.Execute(src)
	if resp.OK {
		t.Fatalf("execute %q should have failed, got %s", src, FormatValue(resp.Result))
	}
	return resp.Err
}

// evalOne evaluates src in a fresh session over testDoc.
func evalOne(t *testing.T, src string) Value {
	t.Helper()
	return mustExec(t, newTestSession(t, ""), src)
}

func wantInt(t *testing.T, v Value, n int64) {
	t.Helper()
	if v.Tag != VTInt || v.Data.(int64) != n {
		t.Fatalf("want Int %d, got %s", n, FormatValue(v))
	}
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNum || v.Data.(float64) != f {
		t.Fatalf("want Num %v, got %s", f, FormatValue(v))
	}
}

func wantStr(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTStr || v.Data.(string) != s {
		t.Fatalf("want Str %q, got %s", s, FormatValue(v))
	}
}

func wantNull(t *testing.T, v Value) {
	t.Helper()
	if v.Tag != VTNull {
		t.Fatalf("want null, got %s", FormatValue(v))
	}
}

func wantKind(t *testing.T, err *EvalError, kind ErrKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s, got nil error", kind)
	}
	if err.Kind != kind {
		t.Fatalf("want %s, got %s (%s)", kind, err.Kind, err.Msg)
	}
}

func listOf(t *testing.T, v Value) []Value {
	t.Helper()
	if v.Tag != VTList {
		t.Fatalf("want List, got %s", FormatValue(v))
	}
	return v.Data.([]Value)
}

func recordOf(t *testing.T, v Value) *RecordObject {
	t.Helper()
	if v.Tag != VTRec {
		t.Fatalf("want Record, got %s", FormatValue(v))
	}
	return v.Data.(*RecordObject)
}
