// value.go
//
// The Nucleus runtime value model: a closed tagged union covering every kind
// of data that flows between primitives. Tags determine which Go type lives
// in Value.Data (see ValueTag). Values are immutable by convention: every
// primitive returns fresh Values and never writes through Data.
//
// Equality is structural and type-strict: 1 != 1.0 != "1". Ordering is total
// on {Int, Num} (compared as float), lexicographic on Str, elementwise on
// List (shorter < longer under prefix equality). Lambdas compare by identity.
package nucleus

import (
	"fmt"
	"strconv"
)

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull  ValueTag = iota // null (no payload)
	VTBool                  // bool
	VTInt                   // int64
	VTNum                   // float64
	VTStr                   // string
	VTList                  // []Value
	VTGrep                  // *GrepHit
	VTFuzzy                 // *FuzzyHit
	VTFun                   // *Fun (closure or synthesized extractor)
	VTRec                   // *RecordObject (ordered string-keyed map)
)

func (t ValueTag) String() string {
	switch t {
	case VTNull:
		return "Null"
	case VTBool:
		return "Bool"
	case VTInt:
		return "Int"
	case VTNum:
		return "Num"
	case VTStr:
		return "Str"
	case VTList:
		return "List"
	case VTGrep:
		return "GrepHit"
	case VTFuzzy:
		return "FuzzyHit"
	case VTFun:
		return "Lambda"
	case VTRec:
		return "Record"
	default:
		return "Unknown"
	}
}

// Value is the universal runtime carrier used by the evaluator.
//
// Invariants:
//   - When Tag==VTNull, Data is nil.
//   - When Tag==VTRec, Data is *RecordObject preserving insertion order.
//   - Data is never mutated after construction.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

// Primitive constructors.
func Bool(b bool) Value     { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value     { return Value{Tag: VTInt, Data: n} }
func Num(f float64) Value   { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value    { return Value{Tag: VTStr, Data: s} }
func List(xs []Value) Value { return Value{Tag: VTList, Data: xs} }
func FunVal(f *Fun) Value   { return Value{Tag: VTFun, Data: f} }

// GrepHit is one regex match with its enclosing line. LineNum is 1-based.
// Groups holds the capture groups in order; group 0 (the full match) lives in
// Match and is not duplicated here. A group that did not participate in the
// match is the empty string.
type GrepHit struct {
	Match   string
	Line    string
	LineNum int
	Index   int
	Groups  []string
}

// FuzzyHit is one fuzzy-search result. Lower Score is a better match; an
// exact case-folded substring match scores 0. LineNum is 1-based.
type FuzzyHit struct {
	Line    string
	LineNum int
	Score   float64
}

func GrepVal(h *GrepHit) Value   { return Value{Tag: VTGrep, Data: h} }
func FuzzyVal(h *FuzzyHit) Value { return Value{Tag: VTFuzzy, Data: h} }

// RecordObject is an ordered string-keyed map. Keys holds insertion order;
// order-sensitive operations must consult Keys, never range over Entries.
type RecordObject struct {
	Entries map[string]Value
	Keys    []string
}

// NewRecord creates an empty record.
func NewRecord() *RecordObject {
	return &RecordObject{Entries: map[string]Value{}}
}

// Set binds k to v, appending k to Keys on first insertion.
func (r *RecordObject) Set(k string, v Value) {
	if _, ok := r.Entries[k]; !ok {
		r.Keys = append(r.Keys, k)
	}
	r.Entries[k] = v
}

// Get returns the value bound to k, or (Null, false).
func (r *RecordObject) Get(k string) (Value, bool) {
	v, ok := r.Entries[k]
	if !ok {
		return Null, false
	}
	return v, true
}

// RecVal wraps a RecordObject into a Value.
func RecVal(r *RecordObject) Value { return Value{Tag: VTRec, Data: r} }

// Record builds a VTRec from a plain Go map. Key order follows Go map
// iteration; callers that care about order use NewRecord/Set directly.
func Record(m map[string]Value) Value {
	r := NewRecord()
	for k, v := range m {
		r.Set(k, v)
	}
	return RecVal(r)
}

// Fun is a lambda value. User lambdas carry a single parameter, a body, and
// a value-snapshot of the free names the body references (never the whole
// environment). Synthesized extractors carry Native instead of Body.
type Fun struct {
	Param    string
	Body     *Expr
	Captured map[string]Value

	// Native, when non-nil, bypasses Body: the lambda is implemented by the
	// host (synthesize-extractor product). Desc is its display form.
	Native func(Value) Value
	Desc   string
}

// String renders a short debug representation.
func (v Value) String() string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return formatNum(v.Data.(float64))
	case VTStr:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTList:
		return fmt.Sprintf("<list len=%d>", len(v.Data.([]Value)))
	case VTGrep:
		h := v.Data.(*GrepHit)
		return fmt.Sprintf("<hit %d:%q>", h.LineNum, h.Match)
	case VTFuzzy:
		h := v.Data.(*FuzzyHit)
		return fmt.Sprintf("<fuzzy %d score=%s>", h.LineNum, formatNum(h.Score))
	case VTFun:
		f := v.Data.(*Fun)
		if f.Native != nil {
			return fmt.Sprintf("<extractor %s>", f.Desc)
		}
		return fmt.Sprintf("<lambda %s>", f.Param)
	case VTRec:
		return fmt.Sprintf("<record n=%d>", len(v.Data.(*RecordObject).Keys))
	default:
		return "<unknown>"
	}
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// valueEqual is the strict structural equality used everywhere: by distinct,
// by the synthesizer's verifier, and by tests. No cross-tag coercion.
func valueEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTInt:
		return a.Data.(int64) == b.Data.(int64)
	case VTNum:
		return a.Data.(float64) == b.Data.(float64)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTList:
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		if len(ax) != len(bx) {
			return false
		}
		for i := range ax {
			if !valueEqual(ax[i], bx[i]) {
				return false
			}
		}
		return true
	case VTGrep:
		ah := a.Data.(*GrepHit)
		bh := b.Data.(*GrepHit)
		if ah.Match != bh.Match || ah.Line != bh.Line || ah.LineNum != bh.LineNum || ah.Index != bh.Index {
			return false
		}
		if len(ah.Groups) != len(bh.Groups) {
			return false
		}
		for i := range ah.Groups {
			if ah.Groups[i] != bh.Groups[i] {
				return false
			}
		}
		return true
	case VTFuzzy:
		ah := a.Data.(*FuzzyHit)
		bh := b.Data.(*FuzzyHit)
		return ah.Line == bh.Line && ah.LineNum == bh.LineNum && ah.Score == bh.Score
	case VTFun:
		// identity
		return a.Data.(*Fun) == b.Data.(*Fun)
	case VTRec:
		ar := a.Data.(*RecordObject)
		br := b.Data.(*RecordObject)
		if len(ar.Entries) != len(br.Entries) {
			return false
		}
		for k, av := range ar.Entries {
			bv, ok := br.Entries[k]
			if !ok || !valueEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// compareValues orders two Values. ok is false when the pair has no defined
// ordering (mixed non-numeric tags, records, lambdas, nulls).
func compareValues(a, b Value) (cmp int, ok bool) {
	if isNumeric(a) && isNumeric(b) {
		af, bf := asFloat(a), asFloat(b)
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.Tag != b.Tag {
		return 0, false
	}
	switch a.Tag {
	case VTStr:
		as, bs := a.Data.(string), b.Data.(string)
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	case VTBool:
		ab, bb := a.Data.(bool), b.Data.(bool)
		switch {
		case ab == bb:
			return 0, true
		case !ab:
			return -1, true
		default:
			return 1, true
		}
	case VTList:
		ax := a.Data.([]Value)
		bx := b.Data.([]Value)
		n := len(ax)
		if len(bx) < n {
			n = len(bx)
		}
		for i := 0; i < n; i++ {
			c, cok := compareValues(ax[i], bx[i])
			if !cok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		switch {
		case len(ax) < len(bx):
			return -1, true
		case len(ax) > len(bx):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func isNumeric(v Value) bool { return v.Tag == VTInt || v.Tag == VTNum }

func asFloat(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

// truthy implements the filter/if truth rule: false, null, 0, "", and the
// empty list are falsey; everything else is truthy.
func truthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64) != 0
	case VTNum:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTList:
		return len(v.Data.([]Value)) > 0
	default:
		return true
	}
}

// asStr extracts the string a primitive should operate on. GrepHits promote
// to their enclosing line; this is the single implicit coercion in the model.
func asStr(v Value) (string, bool) {
	switch v.Tag {
	case VTStr:
		return v.Data.(string), true
	case VTGrep:
		return v.Data.(*GrepHit).Line, true
	default:
		return "", false
	}
}
