// builtin_collection.go
//
// Collection primitives plus the list constructor and print. Lambda-taking
// operations (filter/map/reduce/group-by) apply the operation through the
// evaluator so user callbacks see the same semantics as top-level code.
package nucleus

import "sort"

func registerCollectionPrims(table map[string]*primitive) {
	register(table, &primitive{
		name: "list", minArgs: 0, maxArgs: -1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			out := make([]Value, len(args))
			copy(out, args)
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "print", minArgs: 1, maxArgs: -1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			for _, a := range args {
				ev.logs = append(ev.logs, FormatValue(a))
			}
			return Null, nil
		},
	})

	register(table, &primitive{
		name: "record", minArgs: 0, maxArgs: -1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			if len(args)%2 != 0 {
				return Null, errf(ErrArity, call, "record expects an even number of arguments (key value ...), received %d", len(args))
			}
			rec := NewRecord()
			for i := 0; i < len(args); i += 2 {
				k, ok := asStr(args[i])
				if !ok {
					return Null, errf(ErrType, call, "argument %d must be Str, got %s", i+1, args[i].Tag)
				}
				rec.Set(k, args[i+1])
			}
			return RecVal(rec), nil
		},
	})

	register(table, &primitive{
		name: "get", minArgs: 2, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			switch v := args[0]; v.Tag {
			case VTNull:
				return Null, nil
			case VTRec:
				k, ok := asStr(args[1])
				if !ok {
					return Null, errf(ErrType, call, "argument 2 must be Str, got %s", args[1].Tag)
				}
				out, _ := v.Data.(*RecordObject).Get(k)
				return out, nil
			case VTList:
				i, isNull, err := ev.intArg(call, args, 1)
				if err != nil || isNull {
					return Null, err
				}
				xs := v.Data.([]Value)
				if i < 0 {
					i = int64(len(xs)) + i
				}
				if i < 0 || i >= int64(len(xs)) {
					return Null, nil
				}
				return xs[i], nil
			default:
				return Null, errf(ErrType, call, "argument 1 must be Record or List, got %s", v.Tag)
			}
		},
	})

	register(table, &primitive{
		name: "count", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			switch v := args[0]; v.Tag {
			case VTNull:
				return Int(0), nil
			case VTList:
				return Int(int64(len(v.Data.([]Value)))), nil
			case VTStr, VTGrep:
				s, _ := asStr(v)
				return Int(int64(len([]rune(s)))), nil
			default:
				return Null, errf(ErrType, call, "argument 1 must be List or Str, got %s", v.Tag)
			}
		},
	})

	register(table, &primitive{
		name: "sum", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			var accInt int64
			var accNum float64
			sawNum := false
			for _, x := range xs {
				switch x.Tag {
				case VTInt:
					accInt += x.Data.(int64)
				case VTNum:
					sawNum = true
					accNum += x.Data.(float64)
				case VTStr, VTGrep:
					// coerce like parseNumber; non-numeric elements are skipped
					s, _ := asStr(x)
					if v, ok := parseNumberStr(s); ok {
						sawNum = true
						accNum += v
					}
				}
			}
			if sawNum {
				return Num(accNum + float64(accInt)), nil
			}
			return Int(accInt), nil
		},
	})

	register(table, &primitive{
		name: "filter", minArgs: 2, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			pred, isNull, err := ev.funArg(call, args, 1)
			if err != nil || isNull {
				return Null, err
			}
			var out []Value
			for _, x := range xs {
				r, aerr := ev.apply(pred, x, call)
				if aerr != nil {
					return Null, aerr
				}
				if truthy(r) {
					out = append(out, x)
				}
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "map", minArgs: 2, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			f, isNull, err := ev.funArg(call, args, 1)
			if err != nil || isNull {
				return Null, err
			}
			out := make([]Value, len(xs))
			for i, x := range xs {
				r, aerr := ev.apply(f, x, call)
				if aerr != nil {
					return Null, aerr
				}
				out[i] = r
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "reduce", minArgs: 3, maxArgs: 3,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			f, isNull, err := ev.funArg(call, args, 2)
			if err != nil || isNull {
				return Null, err
			}
			acc := args[1]
			for _, x := range xs {
				var aerr *EvalError
				acc, aerr = ev.applyCurried(f, acc, x, call)
				if aerr != nil {
					return Null, aerr
				}
			}
			return acc, nil
		},
	})

	register(table, &primitive{
		name: "take", minArgs: 2, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, n, done, err := sliceArgs(ev, call, args)
			if done {
				return Null, err
			}
			if n > int64(len(xs)) {
				n = int64(len(xs))
			}
			if n < 0 {
				n = 0
			}
			out := make([]Value, n)
			copy(out, xs[:n])
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "drop", minArgs: 2, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, n, done, err := sliceArgs(ev, call, args)
			if done {
				return Null, err
			}
			if n > int64(len(xs)) {
				n = int64(len(xs))
			}
			if n < 0 {
				n = 0
			}
			out := make([]Value, len(xs)-int(n))
			copy(out, xs[n:])
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "first", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			if len(xs) == 0 {
				return Null, nil
			}
			return xs[0], nil
		},
	})

	register(table, &primitive{
		name: "last", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			if len(xs) == 0 {
				return Null, nil
			}
			return xs[len(xs)-1], nil
		},
	})

	register(table, &primitive{
		name: "reverse", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			out := make([]Value, len(xs))
			for i, x := range xs {
				out[len(xs)-1-i] = x
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "distinct", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			var out []Value
			for _, x := range xs {
				dup := false
				for _, y := range out {
					if valueEqual(x, y) {
						dup = true
						break
					}
				}
				if !dup {
					out = append(out, x)
				}
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "sort", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			out := make([]Value, len(xs))
			copy(out, xs)
			var sortErr *EvalError
			sort.SliceStable(out, func(a, b int) bool {
				c, ok := compareValues(out[a], out[b])
				if !ok && sortErr == nil {
					sortErr = errf(ErrType, call, "cannot order %s against %s", out[a].Tag, out[b].Tag)
				}
				return c < 0
			})
			if sortErr != nil {
				return Null, sortErr
			}
			return List(out), nil
		},
	})

	register(table, &primitive{
		name: "group-by", minArgs: 2, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			f, isNull, err := ev.funArg(call, args, 1)
			if err != nil || isNull {
				return Null, err
			}
			rec := NewRecord()
			for _, x := range xs {
				k, aerr := ev.apply(f, x, call)
				if aerr != nil {
					return Null, aerr
				}
				key := keyString(k)
				cur, _ := rec.Get(key)
				if cur.Tag != VTList {
					cur = List(nil)
				}
				rec.Set(key, List(append(cur.Data.([]Value), x)))
			}
			return RecVal(rec), nil
		},
	})
}

func sliceArgs(ev *evaluator, call *Expr, args []Value) (xs []Value, n int64, done bool, err *EvalError) {
	xs, isNull, err := ev.listArg(call, args, 0)
	if err != nil || isNull {
		return nil, 0, true, err
	}
	n, isNull, err = ev.intArg(call, args, 1)
	if err != nil || isNull {
		return nil, 0, true, err
	}
	return xs, n, false, nil
}

// keyString is the group-by key form: plain text for strings, the printed
// form for everything else.
func keyString(v Value) string {
	switch v.Tag {
	case VTStr:
		return v.Data.(string)
	case VTGrep:
		return v.Data.(*GrepHit).Line
	default:
		return v.String()
	}
}
