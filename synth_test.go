package nucleus

import "testing"

const synthExamplesSrc = `(synthesize-extractor (list
  (record "input" "$1,000" "output" 1000)
  (record "input" "$2,500" "output" 2500)
  (record "input" "$10,000" "output" 10000)))`

func Test_Synth_Currency_To_Int(t *testing.T) {
	s := newTestSession(t, "")
	v := mustExec(t, s, synthExamplesSrc)
	if v.Tag != VTFun {
		t.Fatalf("want Lambda, got %s", FormatValue(v))
	}
	mustExec(t, s, `(let f `+synthExamplesSrc+`)`)
	wantInt(t, mustExec(t, s, `(f "$5,000")`), 5000)
}

func Test_Synth_Result_Matches_Every_Example(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let f `+synthExamplesSrc+`)`)
	wantInt(t, mustExec(t, s, `(f "$1,000")`), 1000)
	wantInt(t, mustExec(t, s, `(f "$2,500")`), 2500)
	wantInt(t, mustExec(t, s, `(f "$10,000")`), 10000)
}

func Test_Synth_Contradictory_Examples_NoCandidate(t *testing.T) {
	s := newTestSession(t, "")
	err := mustFail(t, s, `(synthesize-extractor (list
	  (record "input" "$1,000" "output" 1000)
	  (record "input" "$1,000" "output" 2000)))`)
	wantKind(t, err, ErrNoCandidate)
	explored, ok := err.Meta["candidates_explored"]
	if !ok || explored.Tag != VTInt || explored.Data.(int64) < 1 {
		t.Fatalf("diagnostic candidates_explored missing: %v", err.Meta)
	}
	if _, ok := err.Meta["first_failing_example"]; !ok {
		t.Fatalf("diagnostic first_failing_example missing: %v", err.Meta)
	}
}

func Test_Synth_Needs_Two_Examples(t *testing.T) {
	s := newTestSession(t, "")
	err := mustFail(t, s, `(synthesize-extractor (list (record "input" "$1" "output" 1)))`)
	wantKind(t, err, ErrNeedsMoreExamples)
}

func Test_Synth_Quarter_Specializer(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let q (synthesize-extractor (list
	  (record "input" "Q1-2024" "output" "2024-01")
	  (record "input" "Q3-2024" "output" "2024-07"))))`)
	wantStr(t, mustExec(t, s, `(q "Q2-2025")`), "2025-04")
	wantStr(t, mustExec(t, s, `(q "Q4-1999")`), "1999-10")
	wantNull(t, mustExec(t, s, `(q "H1-2024")`))
}

func Test_Synth_Float_Output(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let f (synthesize-extractor (list
	  (record "input" "rate: 3.5" "output" 3.5)
	  (record "input" "rate: 7.25" "output" 7.25))))`)
	wantNum(t, mustExec(t, s, `(f "rate: 9.75")`), 9.75)
}

func Test_Synth_Date_Output(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let f (synthesize-extractor (list
	  (record "input" "due 2024-01-15 latest" "output" "2024-01-15")
	  (record "input" "due 2024-06-30 latest" "output" "2024-06-30"))))`)
	wantStr(t, mustExec(t, s, `(f "due 2025-12-01 latest")`), "2025-12-01")
}

func Test_Synth_KeyValue_String_Output(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let f (synthesize-extractor (list
	  (record "input" "name: alice" "output" "alice")
	  (record "input" "name: bob" "output" "bob"))))`)
	wantStr(t, mustExec(t, s, `(f "name: carol")`), "carol")
}

func Test_Synth_Deterministic(t *testing.T) {
	a := synthTry(t)
	b := synthTry(t)
	if a != b {
		t.Fatalf("enumeration is not deterministic: %q vs %q", a, b)
	}
}

func synthTry(t *testing.T) string {
	t.Helper()
	s := newTestSession(t, "")
	v := mustExec(t, s, synthExamplesSrc)
	return v.Data.(*Fun).Desc
}

func Test_Synth_Respects_Candidate_Budget(t *testing.T) {
	s := NewSession(Options{MaxCandidates: 1})
	s.LoadText(testDoc, "t")
	resp := s.Execute(synthExamplesSrc)
	if resp.OK {
		t.Fatalf("budget of 1 should exhaust, got %s", FormatValue(resp.Result))
	}
	wantKind(t, resp.Err, ErrNoCandidate)
}

func Test_Synth_Hits_Promote_To_Lines(t *testing.T) {
	s := newTestSession(t, "SALES_NORTH: $2,340,000\nSALES_SOUTH: $3,120,000")
	mustExec(t, s, `(let f (synthesize-extractor (list
	  (record "input" "$1,000" "output" 1000)
	  (record "input" "$2,500" "output" 2500))))`)
	got := listOf(t, mustExec(t, s, `(map (grep "SALES_") f)`))
	wantInt(t, got[0], 2340000)
	wantInt(t, got[1], 3120000)
}
