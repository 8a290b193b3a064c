package nucleus

import "testing"

func Test_Eval_Literals(t *testing.T) {
	wantInt(t, evalOne(t, `5`), 5)
	wantInt(t, evalOne(t, `-12`), -12)
	wantNum(t, evalOne(t, `2.5`), 2.5)
	wantStr(t, evalOne(t, `"hi\nthere"`), "hi\nthere")
	if v := evalOne(t, `true`); v.Tag != VTBool || !v.Data.(bool) {
		t.Fatalf("true literal: got %s", FormatValue(v))
	}
}

func Test_Eval_Let_Binds_And_Returns(t *testing.T) {
	s := newTestSession(t, "")
	wantInt(t, mustExec(t, s, `(let x 5)`), 5)
	wantInt(t, mustExec(t, s, `x`), 5)
}

func Test_Eval_Let_Rejects_Reserved(t *testing.T) {
	s := newTestSession(t, "")
	wantKind(t, mustFail(t, s, `(let RESULTS 1)`), ErrReservedName)
	wantKind(t, mustFail(t, s, `(let TURN 1)`), ErrReservedName)
	wantKind(t, mustFail(t, s, `(let _1 1)`), ErrReservedName)
	// _foo is a normal name, not a history slot
	wantInt(t, mustExec(t, s, `(let _foo 7)`), 7)
}

func Test_Eval_Lambda_Captures_By_Snapshot(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let n 10)`)
	mustExec(t, s, `(let f (lambda x (list x n)))`)
	mustExec(t, s, `(let n 99)`)
	got := listOf(t, mustExec(t, s, `(f 1)`))
	if len(got) != 2 {
		t.Fatalf("want 2 elements, got %d", len(got))
	}
	wantInt(t, got[0], 1)
	wantInt(t, got[1], 10) // definition-time snapshot, not 99
}

func Test_Eval_Lambda_Captures_Called_Lambdas(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let inc (lambda x (sum (list x 1))))`)
	mustExec(t, s, `(let twice (lambda x (inc (inc x))))`)
	wantInt(t, mustExec(t, s, `(twice 5)`), 7)
}

func Test_Eval_If_Arms_Are_Lazy(t *testing.T) {
	// (bogus) would raise if the untaken arm were evaluated
	wantInt(t, evalOne(t, `(if true 1 (bogus))`), 1)
	wantInt(t, evalOne(t, `(if false (bogus) 2)`), 2)
	wantNull(t, evalOne(t, `(if false 1)`))
}

func Test_Eval_Do_Returns_Last(t *testing.T) {
	wantInt(t, evalOne(t, `(do 1 2 3)`), 3)
}

func Test_Eval_Truthiness(t *testing.T) {
	for src, want := range map[string]int64{
		`(if 0 1 2)`:            2,
		`(if "" 1 2)`:           2,
		`(if (list) 1 2)`:       2,
		`(if (if false 1) 1 2)`: 2, // null
		`(if "x" 1 2)`:          1,
		`(if -1 1 2)`:           1,
		`(if (list 0) 1 2)`:     1,
	} {
		wantInt(t, evalOne(t, src), want)
	}
}

func Test_Eval_Errors_Arity_Type_Unknown(t *testing.T) {
	s := newTestSession(t, "")
	wantKind(t, mustFail(t, s, `(trim)`), ErrArity)
	wantKind(t, mustFail(t, s, `(trim "a" "b")`), ErrArity)
	wantKind(t, mustFail(t, s, `(trim 5)`), ErrType)
	wantKind(t, mustFail(t, s, `(bogus 1)`), ErrType)
	wantKind(t, mustFail(t, s, `missing`), ErrType)
}

func Test_Eval_Error_Carries_Span(t *testing.T) {
	s := newTestSession(t, "")
	err := mustFail(t, s, `(do 1
  (trim 5))`)
	if err.Line != 2 {
		t.Fatalf("want error on line 2, got %d (%s)", err.Line, err.Msg)
	}
}

func Test_Eval_Null_Propagates_Through_Primitives(t *testing.T) {
	wantNull(t, evalOne(t, `(upper (if false 1))`))
	wantNull(t, evalOne(t, `(match (if false 1) "x")`))
	wantNull(t, evalOne(t, `(take (if false 1) 2)`))
	wantInt(t, evalOne(t, `(count (if false 1))`), 0)
}

func Test_Eval_UserLambda_In_Head_Position(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let double (lambda x (sum (list x x))))`)
	wantInt(t, mustExec(t, s, `(double 21)`), 42)
}

func Test_Collection_Count(t *testing.T) {
	wantInt(t, evalOne(t, `(count (list 1 2 3))`), 3)
	wantInt(t, evalOne(t, `(count "héllo")`), 5)
	wantInt(t, evalOne(t, `(count (list))`), 0)
}

func Test_Collection_Sum_Coerces_And_Skips(t *testing.T) {
	wantInt(t, evalOne(t, `(sum (list 1 2 3))`), 6)
	wantNum(t, evalOne(t, `(sum (list 1 2.5))`), 3.5)
	// strings coerce like parseNumber; non-numeric elements are skipped
	wantNum(t, evalOne(t, `(sum (list 1 "2.5" "nope"))`), 3.5)
	wantNum(t, evalOne(t, `(sum (list "50%" "25%"))`), 0.75)
}

func Test_Collection_Filter_Map_Reduce(t *testing.T) {
	got := listOf(t, evalOne(t, `(filter (list 0 1 2 "" "a") (lambda x x))`))
	if len(got) != 3 {
		t.Fatalf("filter: want 3 kept, got %s", FormatValue(List(got)))
	}
	wantInt(t, got[0], 1)
	wantInt(t, got[1], 2)
	wantStr(t, got[2], "a")

	got = listOf(t, evalOne(t, `(map (list 1 2 3) (lambda x (sum (list x 1))))`))
	wantInt(t, got[0], 2)
	wantInt(t, got[2], 4)

	wantInt(t, evalOne(t, `(reduce (list 1 2 3) 0 (lambda acc (lambda x (sum (list acc x)))))`), 6)
}

func Test_Collection_Reduce_Requires_Curried_Operation(t *testing.T) {
	s := newTestSession(t, "")
	wantKind(t, mustFail(t, s, `(reduce (list 1 2) 0 (lambda acc acc))`), ErrType)
}

func Test_Collection_Take_Drop_First_Last_Reverse(t *testing.T) {
	got := listOf(t, evalOne(t, `(take (list 1 2 3) 2)`))
	if len(got) != 2 {
		t.Fatalf("take: got %s", FormatValue(List(got)))
	}
	got = listOf(t, evalOne(t, `(take (list 1 2) 99)`))
	if len(got) != 2 {
		t.Fatalf("take past end should clamp: got %s", FormatValue(List(got)))
	}
	got = listOf(t, evalOne(t, `(drop (list 1 2 3) 1)`))
	wantInt(t, got[0], 2)
	wantInt(t, evalOne(t, `(first (list 9 8))`), 9)
	wantInt(t, evalOne(t, `(last (list 9 8))`), 8)
	wantNull(t, evalOne(t, `(first (list))`))
	got = listOf(t, evalOne(t, `(reverse (list 1 2 3))`))
	wantInt(t, got[0], 3)
}

func Test_Collection_Distinct_Is_TypeStrict(t *testing.T) {
	got := listOf(t, evalOne(t, `(distinct (list 1 1 2 1.0 "1"))`))
	// 1 and 1.0 and "1" are three distinct values
	if len(got) != 4 {
		t.Fatalf("distinct: want 4, got %s", FormatValue(List(got)))
	}
}

func Test_Collection_Sort(t *testing.T) {
	got := listOf(t, evalOne(t, `(sort (list 3 1.5 2))`))
	wantNum(t, got[0], 1.5)
	wantInt(t, got[1], 2)
	wantInt(t, got[2], 3)

	got = listOf(t, evalOne(t, `(sort (list "b" "a" "c"))`))
	wantStr(t, got[0], "a")

	s := newTestSession(t, "")
	wantKind(t, mustFail(t, s, `(sort (list 1 "a"))`), ErrType)
}

func Test_Collection_GroupBy_Preserves_First_Appearance(t *testing.T) {
	rec := recordOf(t, evalOne(t, `(group-by (list "aa" "b" "cc") (lambda x (count x)))`))
	if len(rec.Keys) != 2 || rec.Keys[0] != "2" || rec.Keys[1] != "1" {
		t.Fatalf("group-by key order: got %v", rec.Keys)
	}
	twos, _ := rec.Get("2")
	if len(listOf(t, twos)) != 2 {
		t.Fatalf("group 2: got %s", FormatValue(twos))
	}
}

func Test_Record_And_Get(t *testing.T) {
	s := newTestSession(t, "")
	mustExec(t, s, `(let r (record "a" 1 "b" 2))`)
	wantInt(t, mustExec(t, s, `(get r "a")`), 1)
	wantNull(t, mustExec(t, s, `(get r "zzz")`))
	wantInt(t, mustExec(t, s, `(get (list 10 20) -1)`), 20)
	wantNull(t, mustExec(t, s, `(get (list 10 20) 5)`))
}

func Test_Print_Pushes_To_Log_Buffer(t *testing.T) {
	s := newTestSession(t, "")
	resp := s.Execute(`(do (print "hello") (print 42) 7)`)
	if !resp.OK {
		t.Fatalf("execute failed: %v", resp.Err)
	}
	if len(resp.Logs) != 2 || resp.Logs[0] != `"hello"` || resp.Logs[1] != "42" {
		t.Fatalf("logs: got %v", resp.Logs)
	}
	wantInt(t, resp.Result, 7)
}

func Test_Eval_Purity_Reevaluation_Is_Identical(t *testing.T) {
	src := `(map (grep "o") (lambda x (upper (match x "[a-z]+" 0))))`
	a := evalOne(t, src)
	b := evalOne(t, src)
	if !valueEqual(a, b) {
		t.Fatalf("re-evaluation differs: %s vs %s", FormatValue(a), FormatValue(b))
	}
}
