// builtin_strings.go
//
// String and extraction primitives. Regex-taking primitives compile their
// pattern per call; an invalid pattern raises RegexError carrying the
// original pattern text.
package nucleus

import (
	"regexp"
	"strings"
)

func compilePattern(call *Expr, pat string) (*regexp.Regexp, *EvalError) {
	re, err := regexp.Compile(pat)
	if err != nil {
		e := errf(ErrRegex, call, "invalid pattern %q: %v", pat, err)
		return nil, e
	}
	return re, nil
}

func registerStringPrims(table map[string]*primitive) {
	register(table, &primitive{
		name: "match", minArgs: 2, maxArgs: 3,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			s, isNull, err := ev.strArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			pat, isNull, err := ev.strArg(call, args, 1)
			if err != nil || isNull {
				return Null, err
			}
			var group int64
			if len(args) == 3 {
				g, isNull, err := ev.intArg(call, args, 2)
				if err != nil || isNull {
					return Null, err
				}
				group = g
			}
			re, rerr := compilePattern(call, pat)
			if rerr != nil {
				return Null, rerr
			}
			m := re.FindStringSubmatch(s)
			if m == nil || group < 0 || int(group) >= len(m) {
				return Null, nil
			}
			return Str(m[group]), nil
		},
	})

	register(table, &primitive{
		name: "replace", minArgs: 3, maxArgs: 3,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			s, isNull, err := ev.strArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			from, isNull, err := ev.strArg(call, args, 1)
			if err != nil || isNull {
				return Null, err
			}
			to, isNull, err := ev.strArg(call, args, 2)
			if err != nil || isNull {
				return Null, err
			}
			re, rerr := compilePattern(call, from)
			if rerr != nil {
				return Null, rerr
			}
			return Str(re.ReplaceAllString(s, to)), nil
		},
	})

	register(table, &primitive{
		name: "split", minArgs: 2, maxArgs: 3,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			s, isNull, err := ev.strArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			delim, isNull, err := ev.strArg(call, args, 1)
			if err != nil || isNull {
				return Null, err
			}
			parts := strings.Split(s, delim)
			if len(args) == 2 {
				out := make([]Value, len(parts))
				for i, p := range parts {
					out[i] = Str(p)
				}
				return List(out), nil
			}
			idx, isNull, err := ev.intArg(call, args, 2)
			if err != nil || isNull {
				return Null, err
			}
			if idx < 0 {
				idx = int64(len(parts)) + idx
			}
			if idx < 0 || idx >= int64(len(parts)) {
				return Null, nil
			}
			return Str(parts[idx]), nil
		},
	})

	twoStr := func(name string, f func(s, t string) bool) {
		register(table, &primitive{
			name: name, minArgs: 2, maxArgs: 2,
			fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
				s, isNull, err := ev.strArg(call, args, 0)
				if err != nil || isNull {
					return Null, err
				}
				t, isNull, err := ev.strArg(call, args, 1)
				if err != nil || isNull {
					return Null, err
				}
				return Bool(f(s, t)), nil
			},
		})
	}
	twoStr("contains", strings.Contains)
	twoStr("starts-with", strings.HasPrefix)
	twoStr("ends-with", strings.HasSuffix)

	oneStr := func(name string, f func(s string) string) {
		register(table, &primitive{
			name: name, minArgs: 1, maxArgs: 1,
			fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
				s, isNull, err := ev.strArg(call, args, 0)
				if err != nil || isNull {
					return Null, err
				}
				return Str(f(s)), nil
			},
		})
	}
	oneStr("trim", strings.TrimSpace)
	oneStr("upper", strings.ToUpper)
	oneStr("lower", strings.ToLower)
}
