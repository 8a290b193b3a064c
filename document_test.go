package nucleus

import (
	"strings"
	"testing"
)

func Test_Document_Line_Access(t *testing.T) {
	d := NewDocument("one\ntwo\nthree\n", "x.txt")
	if d.LineCount() != 3 {
		t.Fatalf("line count: got %d", d.LineCount())
	}
	got, err := d.Line(1)
	if err != nil || got != "one" {
		t.Fatalf("line 1: got %q err %v", got, err)
	}
	got, err = d.Line(-1)
	if err != nil || got != "three" {
		t.Fatalf("line -1: got %q err %v", got, err)
	}
	for _, n := range []int{0, 4, -4} {
		if _, err := d.Line(n); err == nil || err.Kind != ErrLineOutOfRange {
			t.Fatalf("line %d should be out of range, got %v", n, err)
		}
	}
}

func Test_Document_Slice_Reorders_And_Clamps(t *testing.T) {
	d := NewDocument("a\nb\nc\nd", "")
	if got := d.Slice(3, 2); len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("reorder: got %v", got)
	}
	if got := d.Slice(-100, 100); len(got) != 4 {
		t.Fatalf("clamp: got %v", got)
	}
	if got := d.Slice(10, 20); got != nil {
		t.Fatalf("both out on one side should be empty, got %v", got)
	}
}

func Test_Document_Grep_Hits_And_Groups(t *testing.T) {
	d := NewDocument("SALES_NORTH: $2,340,000\nnoise\nSALES_SOUTH: $3,120,000", "")
	hits, err := d.Grep(`SALES_(\w+): (\$[\d,]+)`)
	if err != nil {
		t.Fatalf("grep: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("want 2 hits, got %d", len(hits))
	}
	h := hits[1]
	if h.LineNum != 3 || h.Line != "SALES_SOUTH: $3,120,000" {
		t.Fatalf("hit line: %+v", h)
	}
	if len(h.Groups) != 2 || h.Groups[0] != "SOUTH" || h.Groups[1] != "$3,120,000" {
		t.Fatalf("groups: %v", h.Groups)
	}
}

func Test_Document_Grep_Is_CaseInsensitive_By_Default(t *testing.T) {
	d := NewDocument("Error here\nERROR there\nerror everywhere", "")
	hits, err := d.Grep("error")
	if err != nil {
		t.Fatalf("grep: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("want 3 case-folded hits, got %d", len(hits))
	}
}

func Test_Document_Grep_ZeroWidth_Terminates(t *testing.T) {
	d := NewDocument("abc", "")
	hits, err := d.Grep("")
	if err != nil {
		t.Fatalf("grep: %v", err)
	}
	// one hit per position: before a, b, c and at the end
	if len(hits) != 4 {
		t.Fatalf("zero-width matches: want 4, got %d", len(hits))
	}
}

func Test_Document_Grep_Invalid_Pattern(t *testing.T) {
	d := NewDocument("x", "")
	_, err := d.Grep("(")
	if err == nil || err.Kind != ErrRegex {
		t.Fatalf("want RegexError, got %v", err)
	}
	if !strings.Contains(err.Msg, "(") {
		t.Fatalf("RegexError should carry the pattern: %s", err.Msg)
	}
}

func Test_Document_Fuzzy_Scoring_And_Order(t *testing.T) {
	d := NewDocument("totally different\ncontains the query inside\nquerry\nquery", "")
	hits := d.Fuzzy("query", 10)
	if len(hits) != 4 {
		t.Fatalf("want 4 distinct lines, got %d", len(hits))
	}
	// substring matches score 0; ties break on smaller line number
	if hits[0].Score != 0 || hits[0].LineNum != 2 {
		t.Fatalf("best hit: %+v", hits[0])
	}
	if hits[1].Score != 0 || hits[1].LineNum != 4 {
		t.Fatalf("second hit: %+v", hits[1])
	}
	if hits[2].Line != "querry" || hits[2].Score <= 0 {
		t.Fatalf("near miss: %+v", hits[2])
	}
	if hits[3].Score <= hits[2].Score {
		t.Fatalf("unrelated line should score worst: %+v", hits[3])
	}
}

func Test_Document_Fuzzy_Distinct_And_Limit(t *testing.T) {
	d := NewDocument("dup\ndup\ndup\nother", "")
	hits := d.Fuzzy("dup", 10)
	if len(hits) != 2 {
		t.Fatalf("distinct lines: want 2, got %d", len(hits))
	}
	if got := d.Fuzzy("dup", 1); len(got) != 1 || got[0].Line != "dup" {
		t.Fatalf("limit: got %+v", got)
	}
}

func Test_Document_Stats_Samples(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("line\n")
	}
	d := NewDocument(b.String(), "big.txt")
	st := d.Stats()
	if st.LineCount != 40 || st.Length != len(b.String()) {
		t.Fatalf("stats: %+v", st)
	}
	if len(st.SampleStart) != 5 || len(st.SampleMiddle) != 5 || len(st.SampleEnd) != 5 {
		t.Fatalf("samples should be 5 lines each: %+v", st)
	}
}

func Test_Document_Trailing_Newline_Does_Not_Add_Line(t *testing.T) {
	if got := NewDocument("a\nb\n", "").LineCount(); got != 2 {
		t.Fatalf("want 2 lines, got %d", got)
	}
	if got := NewDocument("a\nb", "").LineCount(); got != 2 {
		t.Fatalf("want 2 lines, got %d", got)
	}
}
