// printer.go
//
// Rendering: FormatExpr prints a parsed tree back to source (the printed
// form re-parses to the same tree), FormatValue renders runtime values for
// logs and the REPL, and the preview helpers produce the bounded previews
// the session returns to callers.
package nucleus

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatExpr renders e as Nucleus source. For every parseable source s,
// Parse(FormatExpr(Parse(s))) equals Parse(s).
func FormatExpr(e *Expr) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e *Expr) {
	switch e.Kind {
	case EInt:
		b.WriteString(strconv.FormatInt(e.Lit.(int64), 10))
	case ENum:
		b.WriteString(formatFloatLexable(e.Lit.(float64)))
	case EStr:
		b.WriteString(quoteString(e.Lit.(string)))
	case EBool:
		b.WriteString(strconv.FormatBool(e.Lit.(bool)))
	case ESym:
		b.WriteString(e.Sym())
	case EList:
		b.WriteByte('(')
		for i, item := range e.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			writeExpr(b, item)
		}
		b.WriteByte(')')
	}
}

// formatFloatLexable always keeps a decimal point so the literal re-lexes
// as a float (the grammar has no exponent form).
func formatFloatLexable(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// FormatValue renders a full (unbounded) human-readable form.
func FormatValue(v Value) string {
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
		return quoteString(v.Data.(string))
	case VTList:
		xs := v.Data.([]Value)
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = FormatValue(x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTGrep:
		h := v.Data.(*GrepHit)
		return fmt.Sprintf("{match: %s, line: %s, lineNum: %d, index: %d}",
			quoteString(h.Match), quoteString(h.Line), h.LineNum, h.Index)
	case VTFuzzy:
		h := v.Data.(*FuzzyHit)
		return fmt.Sprintf("{line: %s, lineNum: %d, score: %s}",
			quoteString(h.Line), h.LineNum, formatNum(h.Score))
	case VTRec:
		r := v.Data.(*RecordObject)
		parts := make([]string, len(r.Keys))
		for i, k := range r.Keys {
			parts[i] = k + ": " + FormatValue(r.Entries[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case VTFun:
		return v.String()
	default:
		return "<unknown>"
	}
}

// PreviewValue renders a bounded preview: lists are capped at listCap
// elements with an explicit marker, strings are truncated at strCap bytes
// with an ellipsis suffix. The full value stays in-session.
func PreviewValue(v Value, listCap, strCap int) string {
	switch v.Tag {
	case VTStr:
		s := v.Data.(string)
		if len(s) > strCap {
			return quoteString(truncateUTF8(s, strCap)) + "…"
		}
		return quoteString(s)
	case VTList:
		xs := v.Data.([]Value)
		n := len(xs)
		shown := n
		if shown > listCap {
			shown = listCap
		}
		parts := make([]string, 0, shown+1)
		for _, x := range xs[:shown] {
			parts = append(parts, PreviewValue(x, listCap, strCap))
		}
		if shown < n {
			parts = append(parts, fmt.Sprintf("… truncated, %d total", n))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case VTRec:
		r := v.Data.(*RecordObject)
		parts := make([]string, len(r.Keys))
		for i, k := range r.Keys {
			parts[i] = k + ": " + PreviewValue(r.Entries[k], listCap, strCap)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return FormatValue(v)
	}
}

// SummarizeValue is the short form used by the bindings snapshot: container
// values render as typed size markers, never full serializations.
func SummarizeValue(v Value) string {
	switch v.Tag {
	case VTList:
		return fmt.Sprintf("<List n=%d>", len(v.Data.([]Value)))
	case VTRec:
		return fmt.Sprintf("<Record n=%d>", len(v.Data.(*RecordObject).Keys))
	case VTStr:
		s := v.Data.(string)
		if len(s) > 64 {
			return quoteString(truncateUTF8(s, 64)) + "…"
		}
		return quoteString(s)
	default:
		return FormatValue(v)
	}
}

// truncateUTF8 cuts s at no more than n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xc0 == 0x80 {
		n--
	}
	return s[:n]
}
