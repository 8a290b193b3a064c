// errors.go: the closed error taxonomy and caret-snippet rendering
//
// Every failure a caller can observe is an *EvalError carrying one of the
// ErrKind values below, a human message, and (for parse/eval errors) a
// 1-based source position. All kinds except ErrInternal are recoverable at
// the turn boundary; ErrInternal poisons the Session.
//
// RenderError turns lex/parse/eval errors into readable snippets with a
// caret pointing at the offending column:
//
//	PARSE ERROR at 1:8: unclosed '('
//
//	   1 | (count (grep "x"
//	     |        ^
package nucleus

import (
	"fmt"
	"strings"
)

// ErrKind is the closed set of error kinds from the session contract.
type ErrKind string

const (
	ErrParse             ErrKind = "ParseError"
	ErrArity             ErrKind = "ArityError"
	ErrType              ErrKind = "TypeError"
	ErrRegex             ErrKind = "RegexError"
	ErrLineOutOfRange    ErrKind = "LineOutOfRange"
	ErrNoDocument        ErrKind = "NoDocument"
	ErrReservedName      ErrKind = "ReservedName"
	ErrTimeout           ErrKind = "TimeoutError"
	ErrNeedsMoreExamples ErrKind = "NeedsMoreExamples"
	ErrNoCandidate       ErrKind = "NoCandidate"
	ErrInternal          ErrKind = "InternalError"
)

// EvalError is the structured failure every turn can surface. Line/Col are
// 1-based when positive; zero means "no useful span" (e.g. NoDocument
// raised by execute before any load). Meta carries kind-specific diagnostics such as the
// synthesizer's candidates_explored.
type EvalError struct {
	Kind ErrKind
	Msg  string
	Line int
	Col  int
	Meta map[string]Value
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Fatal reports whether the error poisons its Session.
func (e *EvalError) Fatal() bool { return e.Kind == ErrInternal }

func errf(kind ErrKind, at *Expr, format string, args ...interface{}) *EvalError {
	e := &EvalError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
	if at != nil {
		e.Line, e.Col = at.Line, at.Col+1
	}
	return e
}

// asEvalError converts lexer/parser failures into the uniform shape. Other
// errors map to ErrInternal since the engine has no further kinds.
func asEvalError(err error) *EvalError {
	switch e := err.(type) {
	case *EvalError:
		return e
	case *LexError:
		return &EvalError{Kind: ErrParse, Msg: e.Msg, Line: e.Line, Col: e.Col + 1}
	case *ParseError:
		return &EvalError{Kind: ErrParse, Msg: e.Msg, Line: e.Line, Col: e.Col + 1}
	default:
		return &EvalError{Kind: ErrInternal, Msg: err.Error()}
	}
}

// RenderError builds a caret-annotated snippet for err against src. Errors
// without a span render as a single header line. The output is plain text,
// suitable for logs and terminals.
func RenderError(err error, src string) string {
	e := asEvalError(err)
	header := string(e.Kind)
	switch e.Kind {
	case ErrParse:
		header = "PARSE ERROR"
	}
	if e.Line < 1 {
		return fmt.Sprintf("%s: %s", header, e.Msg)
	}
	return prettySnippet(src, header, e.Line, e.Col, e.Msg)
}

// prettySnippet shows at most one previous and one next line, numbers the
// lines, and places a caret under the 1-based column. Coordinates are
// clamped to the source bounds.
func prettySnippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
