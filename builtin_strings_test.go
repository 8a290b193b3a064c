package nucleus

import "testing"

func Test_Builtin_Strings_Match_Groups(t *testing.T) {
	wantStr(t, evalOne(t, `(match "total: $1,234" "\\$([\\d,]+)" 0)`), "$1,234")
	wantStr(t, evalOne(t, `(match "total: $1,234" "\\$([\\d,]+)" 1)`), "1,234")
	wantNull(t, evalOne(t, `(match "no digits" "\\d+" 0)`))
	wantNull(t, evalOne(t, `(match "abc" "(a)" 5)`))
	// group defaults to the whole match
	wantStr(t, evalOne(t, `(match "x42y" "\\d+")`), "42")
}

func Test_Builtin_Strings_Match_Invalid_Pattern(t *testing.T) {
	s := newTestSession(t, "")
	err := mustFail(t, s, `(match "x" "(" 0)`)
	wantKind(t, err, ErrRegex)
}

func Test_Builtin_Strings_Replace_Is_Global(t *testing.T) {
	wantStr(t, evalOne(t, `(replace "1,234,567" "," "")`), "1234567")
	wantStr(t, evalOne(t, `(replace "a1b2" "\\d" "#")`), "a#b#")
}

func Test_Builtin_Strings_Split(t *testing.T) {
	got := listOf(t, evalOne(t, `(split "a:b:c" ":")`))
	if len(got) != 3 {
		t.Fatalf("split: got %s", FormatValue(List(got)))
	}
	wantStr(t, got[1], "b")
	wantStr(t, evalOne(t, `(split "a:b:c" ":" 1)`), "b")
	wantStr(t, evalOne(t, `(split "a:b:c" ":" -1)`), "c")
	wantNull(t, evalOne(t, `(split "a:b:c" ":" 9)`))
	wantNull(t, evalOne(t, `(split "a:b:c" ":" -9)`))
}

func Test_Builtin_Strings_Predicates(t *testing.T) {
	checks := map[string]bool{
		`(contains "haystack" "ays")`:    true,
		`(contains "haystack" "zzz")`:    false,
		`(starts-with "haystack" "hay")`: true,
		`(starts-with "haystack" "ay")`:  false,
		`(ends-with "haystack" "tack")`:  true,
	}
	for src, want := range checks {
		v := evalOne(t, src)
		if v.Tag != VTBool || v.Data.(bool) != want {
			t.Fatalf("%s: want %v, got %s", src, want, FormatValue(v))
		}
	}
}

func Test_Builtin_Strings_Trim_Upper_Lower(t *testing.T) {
	wantStr(t, evalOne(t, `(trim "  x  ")`), "x")
	wantStr(t, evalOne(t, `(upper "héllo")`), "HÉLLO")
	wantStr(t, evalOne(t, `(lower "HÉLLO")`), "héllo")
}

func Test_Builtin_Strings_Accept_GrepHits(t *testing.T) {
	// the hit's enclosing line is used wherever a string is needed
	s := newTestSession(t, "alpha ERROR one\nbeta ok")
	mustExec(t, s, `(grep "ERROR")`)
	wantStr(t, mustExec(t, s, `(upper (first RESULTS))`), "ALPHA ERROR ONE")
}
