// synth.go
//
// The relational synthesizer: given input/output examples it searches a
// candidate space of short primitive pipelines (regex extraction, numeric
// parsing, string normalization) and returns the first pipeline that maps
// every input to its output under strict Value equality.
//
// The search is a plain backtracking enumerator over a fixed template set —
// observably equivalent to a relational formulation, and deterministic:
// candidates are generated breadth-first by template index, then pattern
// index, so the same examples always yield the same extractor. Every step
// evaluates through the same parse/string helpers as the corresponding
// evaluator primitive, so an extractor can never drift from the language.
//
// A closed-form quarter→month specializer runs before the generic search:
// examples shaped (Q[1-4]-YYYY, YYYY-MM) are served even when no pipeline
// template could express the mapping.
package nucleus

import (
	"fmt"
	"regexp"
	"strings"
)

// synthStep is one stage of a candidate pipeline.
type synthStep struct {
	desc  string
	apply func(Value) Value
}

// composition is an ordered pipeline of steps.
type composition struct {
	steps []synthStep
}

func (c composition) run(in string) Value {
	v := Str(in)
	for _, st := range c.steps {
		if v.Tag == VTNull {
			return Null
		}
		v = st.apply(v)
	}
	return v
}

func (c composition) desc() string {
	parts := make([]string, len(c.steps))
	for i, st := range c.steps {
		parts[i] = st.desc
	}
	return strings.Join(parts, " | ")
}

// synthExample is one (input, output) pair.
type synthExample struct {
	in  string
	out Value
}

// outType classifies the output the generators must hit.
type outType int

const (
	outInt outType = iota
	outFloat
	outStr
	outDated // a string shaped YYYY-MM-DD
	outBool
)

var reISOOut = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func classifyOut(v Value) outType {
	switch v.Tag {
	case VTInt:
		return outInt
	case VTNum:
		return outFloat
	case VTBool:
		return outBool
	case VTStr:
		if reISOOut.MatchString(v.Data.(string)) {
			return outDated
		}
		return outStr
	default:
		return outStr
	}
}

// ---- step constructors (each closes over the same helpers as the
// evaluator primitive of the same name) ----

func stepMatch(pat string, group int) (synthStep, bool) {
	re, err := regexp.Compile(pat)
	if err != nil {
		return synthStep{}, false
	}
	return synthStep{
		desc: fmt.Sprintf("match(%q,%d)", pat, group),
		apply: func(v Value) Value {
			s, ok := asStr(v)
			if !ok {
				return Null
			}
			m := re.FindStringSubmatch(s)
			if m == nil || group >= len(m) {
				return Null
			}
			return Str(m[group])
		},
	}, true
}

func stepReplace(from, to string) synthStep {
	re := regexp.MustCompile(regexp.QuoteMeta(from))
	return synthStep{
		desc: fmt.Sprintf("replace(%q,%q)", from, to),
		apply: func(v Value) Value {
			s, ok := asStr(v)
			if !ok {
				return Null
			}
			return Str(re.ReplaceAllString(s, to))
		},
	}
}

func stepSplit(delim string, index int) synthStep {
	return synthStep{
		desc: fmt.Sprintf("split(%q,%d)", delim, index),
		apply: func(v Value) Value {
			s, ok := asStr(v)
			if !ok {
				return Null
			}
			parts := strings.Split(s, delim)
			i := index
			if i < 0 {
				i = len(parts) + i
			}
			if i < 0 || i >= len(parts) {
				return Null
			}
			return Str(parts[i])
		},
	}
}

func stepStr(name string, f func(string) string) synthStep {
	return synthStep{
		desc: name,
		apply: func(v Value) Value {
			s, ok := asStr(v)
			if !ok {
				return Null
			}
			return Str(f(s))
		},
	}
}

func stepParse(name string, f func(string) Value) synthStep {
	return synthStep{
		desc: name,
		apply: func(v Value) Value {
			s, ok := asStr(v)
			if !ok {
				return Null
			}
			return f(s)
		},
	}
}

func parseIntVal(s string) Value {
	if n, ok := parseIntStr(s); ok {
		return Int(n)
	}
	return Null
}

func parseFloatVal(s string) Value {
	if f, ok := parseFloatStr(s); ok {
		return Num(f)
	}
	return Null
}

func parseNumberVal(s string) Value {
	if f, ok := parseNumberStr(s); ok {
		return Num(f)
	}
	return Null
}

func parseDateVal(s string) Value {
	if iso, ok := parseDateStr(s, ""); ok {
		return Str(iso)
	}
	return Null
}

// ---- the extraction pattern catalog ----
//
// Each entry is a (regex, group) pair; the order is part of the engine's
// observable behavior and must stay stable.
type catalogPattern struct {
	pat   string
	group int
}

var extractionCatalog = []catalogPattern{
	{`\$([\d,]+\.\d+)`, 1},            // currency with decimals
	{`\$([\d,]+)`, 1},                 // currency without decimals
	{`(-?\d[\d,]*\.\d+)`, 1},          // plain decimal
	{`(-?\d[\d,]*)`, 1},               // plain integer
	{`(-?[\d.]+)\s*%`, 1},             // percentage
	{`:\s*(.+?)\s*$`, 1},              // key-value suffix (colon)
	{`=\s*(.+?)\s*$`, 1},              // key-value suffix (equals)
	{`\(([\d,.]+)\)`, 1},              // parenthesized amount
	{`Q([1-4])[-/\s](\d{4})`, 0},      // quarter
	{`\d{4}-\d{2}-\d{2}`, 0},          // ISO date
	{`\d{1,2}/\d{1,2}/\d{4}`, 0},      // slash date
	{`\d{1,2}-[A-Za-z]{3}-\d{2}`, 0},  // D-Mon-YY
	{`[A-Z][a-z]+ \d{1,2}, \d{4}`, 0}, // Month D, YYYY
	{`(\d{1,2} [A-Z][a-z]+ \d{4})`, 1}, // D Month YYYY
}

var splitCatalog = []struct {
	delim string
	index int
}{
	{":", 1}, {":", -1}, {"=", 1}, {"=", -1},
	{",", 0}, {",", 1}, {",", -1},
	{" ", 0}, {" ", 1}, {" ", -1},
	{"|", 1}, {"\t", 1},
}

// template generates the i-th candidate of a family, or ok=false when the
// family is exhausted.
type template func(i int) (composition, bool)

func matchThen(rest ...synthStep) template {
	return func(i int) (composition, bool) {
		if i >= len(extractionCatalog) {
			return composition{}, false
		}
		cp := extractionCatalog[i]
		m, ok := stepMatch(cp.pat, cp.group)
		if !ok {
			return composition{}, false
		}
		return composition{steps: append([]synthStep{m}, rest...)}, true
	}
}

func splitThen(rest ...synthStep) template {
	return func(i int) (composition, bool) {
		if i >= len(splitCatalog) {
			return composition{}, false
		}
		sc := splitCatalog[i]
		return composition{steps: append([]synthStep{stepSplit(sc.delim, sc.index)}, rest...)}, true
	}
}

func fixed(steps ...synthStep) template {
	return func(i int) (composition, bool) {
		if i > 0 {
			return composition{}, false
		}
		return composition{steps: steps}, true
	}
}

// generatorsFor selects the template families matching the inferred output
// type. Family order is observable and stable.
func generatorsFor(t outType) []template {
	trim := stepStr("trim", strings.TrimSpace)
	upper := stepStr("upper", strings.ToUpper)
	lower := stepStr("lower", strings.ToLower)
	pInt := stepParse("parseInt", parseIntVal)
	pFloat := stepParse("parseFloat", parseFloatVal)
	pCur := stepParse("parseCurrency", parseCurrencyStr)
	pNum := stepParse("parseNumber", parseNumberVal)
	pDate := stepParse("parseDate", parseDateVal)
	noComma := stepReplace(",", "")

	switch t {
	case outInt:
		return []template{
			matchThen(pInt),
			matchThen(pCur),
			splitThen(trim, pInt),
		}
	case outFloat:
		return []template{
			matchThen(pFloat),
			matchThen(noComma, pFloat),
			matchThen(pCur),
			matchThen(pNum),
			splitThen(trim, pFloat),
		}
	case outDated:
		return []template{
			matchThen(pDate),
			fixed(pDate),
		}
	case outStr:
		return []template{
			splitThen(trim),
			matchThen(),
			matchThen(trim),
			fixed(trim),
			fixed(upper),
			fixed(lower),
			matchThen(upper),
			matchThen(lower),
		}
	default:
		return nil
	}
}

// synthesizeExtractor runs the full search. On success the returned Value
// is a Lambda closing over the winning composition. Failures are structured:
// NeedsMoreExamples below two examples, NoCandidate when the budget or the
// template space is exhausted (Meta carries candidates_explored and the
// 1-based index of the first failing example of the first candidate).
func synthesizeExtractor(examples []synthExample, maxCandidates int, ev *evaluator, call *Expr) (Value, *EvalError) {
	if len(examples) < 2 {
		return Null, errf(ErrNeedsMoreExamples, call, "synthesis needs at least 2 examples, received %d", len(examples))
	}

	if fn, ok := quarterSpecializer(examples); ok {
		return fn, nil
	}

	gens := generatorsFor(classifyOut(examples[0].out))
	explored := 0
	firstFailing := 0

	noCandidate := func() *EvalError {
		e := errf(ErrNoCandidate, call, "no composition satisfies all %d examples (%d candidates explored)", len(examples), explored)
		e.Meta = map[string]Value{
			"candidates_explored":   Int(int64(explored)),
			"first_failing_example": Int(int64(firstFailing)),
		}
		return e
	}

	// Breadth-first: round r takes the r-th candidate of every family.
	for round := 0; ; round++ {
		any := false
		for _, gen := range gens {
			cand, ok := gen(round)
			if !ok {
				continue
			}
			any = true
			if explored >= maxCandidates {
				return Null, noCandidate()
			}
			if ev != nil && ev.deadlineExpired() {
				return Null, errf(ErrTimeout, call, "deadline exceeded during synthesis")
			}
			explored++
			if idx := firstMismatch(cand, examples); idx == 0 {
				return FunVal(&Fun{
					Native: func(v Value) Value {
						s, ok := asStr(v)
						if !ok {
							return Null
						}
						return cand.run(s)
					},
					Desc: cand.desc(),
				}), nil
			} else if firstFailing == 0 {
				firstFailing = idx
			}
		}
		if !any {
			return Null, noCandidate()
		}
	}
}

// firstMismatch returns 0 when every example passes, else the 1-based index
// of the first example the candidate gets wrong.
func firstMismatch(c composition, examples []synthExample) int {
	for i, ex := range examples {
		if !valueEqual(c.run(ex.in), ex.out) {
			return i + 1
		}
	}
	return 0
}

var (
	reQuarterIn  = regexp.MustCompile(`^Q([1-4])[-/\s](\d{4})$`)
	reQuarterOut = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

var quarterMonth = map[string]string{"1": "01", "2": "04", "3": "07", "4": "10"}

// quarterSpecializer emits the closed-form Q→{01,04,07,10} mapping when
// every example is shaped (Q[1-4]-YYYY, YYYY-MM) consistently.
func quarterSpecializer(examples []synthExample) (Value, bool) {
	for _, ex := range examples {
		if ex.out.Tag != VTStr {
			return Null, false
		}
		in := reQuarterIn.FindStringSubmatch(strings.TrimSpace(ex.in))
		out := reQuarterOut.FindStringSubmatch(ex.out.Data.(string))
		if in == nil || out == nil {
			return Null, false
		}
		if in[2] != out[1] || quarterMonth[in[1]] != out[2] {
			return Null, false
		}
	}
	return FunVal(&Fun{
		Native: func(v Value) Value {
			s, ok := asStr(v)
			if !ok {
				return Null
			}
			m := reQuarterIn.FindStringSubmatch(strings.TrimSpace(s))
			if m == nil {
				return Null
			}
			return Str(m[2] + "-" + quarterMonth[m[1]])
		},
		Desc: "quarter->month",
	}), true
}

// registerSynthPrims installs (synthesize-extractor EXAMPLES).
func registerSynthPrims(table map[string]*primitive) {
	register(table, &primitive{
		name: "synthesize-extractor", minArgs: 1, maxArgs: 1,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			xs, isNull, err := ev.listArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			examples := make([]synthExample, 0, len(xs))
			for i, x := range xs {
				if x.Tag != VTRec {
					return Null, errf(ErrType, call, "example %d must be a Record with input and output", i+1)
				}
				rec := x.Data.(*RecordObject)
				in, ok1 := rec.Get("input")
				out, ok2 := rec.Get("output")
				if !ok1 || !ok2 {
					return Null, errf(ErrType, call, "example %d must carry both input and output", i+1)
				}
				s, ok := asStr(in)
				if !ok {
					return Null, errf(ErrType, call, "example %d input must be Str, got %s", i+1, in.Tag)
				}
				examples = append(examples, synthExample{in: s, out: out})
			}
			fn, serr := synthesizeExtractor(examples, ev.maxCandidates, ev, call)
			if serr != nil {
				return Null, serr
			}
			ev.logf("synthesized extractor: %s", fn.Data.(*Fun).Desc)
			return fn, nil
		},
	})
}
