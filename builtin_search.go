// builtin_search.go
//
// Document search primitives: grep, fuzzy-search, lines, text-stats. All of
// them require a loaded document and raise NoDocument otherwise.
package nucleus

func registerSearchPrims(table map[string]*primitive) {
	register(table, &primitive{
		name: "grep", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			if err := ev.requireDoc(call); err != nil {
				return Null, err
			}
			pat, isNull, err := ev.strArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			hits, gerr := ev.doc.Grep(pat)
			if gerr != nil {
				gerr.Line, gerr.Col = call.Line, call.Col+1
				return Null, gerr
			}
			out := make([]Value, len(hits))
			for i, h := range hits {
				out[i] = GrepVal(h)
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "fuzzy-search", minArgs: 1, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			if err := ev.requireDoc(call); err != nil {
				return Null, err
			}
			query, isNull, err := ev.strArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			limit := int64(ev.defaultFuzzyLimit)
			if len(args) == 2 {
				n, isNull, err := ev.intArg(call, args, 1)
				if err != nil || isNull {
					return Null, err
				}
				limit = n
			}
			hits := ev.doc.Fuzzy(query, int(limit))
			out := make([]Value, len(hits))
			for i, h := range hits {
				out[i] = FuzzyVal(h)
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "lines", minArgs: 1, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			if err := ev.requireDoc(call); err != nil {
				return Null, err
			}
			start, isNull, err := ev.intArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			if len(args) == 1 {
				ln, lerr := ev.doc.Line(int(start))
				if lerr != nil {
					lerr.Line, lerr.Col = call.Line, call.Col+1
					return Null, lerr
				}
				return Str(ln), nil
			}
			end, isNull, err := ev.intArg(call, args, 1)
			if err != nil || isNull {
				return Null, err
			}
			slice := ev.doc.Slice(int(start), int(end))
			out := make([]Value, len(slice))
			for i, s := range slice {
				out[i] = Str(s)
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "text-stats", minArgs: 0, maxArgs: 0,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			if err := ev.requireDoc(call); err != nil {
				return Null, err
			}
			st := ev.doc.Stats()
			strList := func(xs []string) Value {
				out := make([]Value, len(xs))
				for i, s := range xs {
					out[i] = Str(s)
				}
				return List(out)
			}
			sample := NewRecord()
			sample.Set("start", strList(st.SampleStart))
			sample.Set("middle", strList(st.SampleMiddle))
			sample.Set("end", strList(st.SampleEnd))
			rec := NewRecord()
			rec.Set("length", Int(int64(st.Length)))
			rec.Set("line_count", Int(int64(st.LineCount)))
			if st.Path != "" {
				rec.Set("path", Str(st.Path))
			}
			rec.Set("sample", RecVal(sample))
			return RecVal(rec), nil
		},
	})
}
