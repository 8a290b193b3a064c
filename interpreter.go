// interpreter.go
//
// The Nucleus evaluator: a tree-walking interpreter over the Value model.
//
// EVALUATION SEMANTICS
// --------------------
// Arguments are evaluated eagerly, left-to-right. The arms of `if` and the
// bodies of `lambda` are lazy. Special forms (`let`, `lambda`, `if`, `do`)
// are dispatched before the primitive table; any other head symbol is looked
// up first among primitives, then in the environment (a let-bound lambda can
// sit in head position and is applied curried over the arguments).
//
// Primitives declare their arity; mismatches raise ArityError and wrong
// value kinds raise TypeError with the mismatched position. A primitive
// that receives null where a concrete type is required returns null without
// raising. Primitives never panic; every failure is a recoverable
// *EvalError, surfaced by the Session at the turn boundary.
//
// Each evaluation carries an append-only log buffer (`print` pushes to it)
// and an optional deadline checked between nodes.
package nucleus

import (
	"fmt"
	"sync"
	"time"
)

// primitive is one entry of the builtin table. maxArgs of -1 means variadic.
type primitive struct {
	name    string
	minArgs int
	maxArgs int
	fn      func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError)
}

var (
	builtinsOnce sync.Once
	builtins     map[string]*primitive
)

func builtinTable() map[string]*primitive {
	builtinsOnce.Do(func() {
		builtins = map[string]*primitive{}
		registerSearchPrims(builtins)
		registerCollectionPrims(builtins)
		registerStringPrims(builtins)
		registerParsePrims(builtins)
		registerSynthPrims(builtins)
	})
	return builtins
}

func register(table map[string]*primitive, p *primitive) {
	table[p.name] = p
}

// evaluator is the per-turn evaluation state. It is created by the Session
// for each execute call and discarded afterwards.
type evaluator struct {
	doc      *Document
	logs     []string
	deadline time.Time

	// synthesizer + search limits, copied from the session options
	maxCandidates     int
	defaultFuzzyLimit int
}

// checkDeadline raises TimeoutError once the deadline has passed. Checked on
// every node; the synthesizer additionally checks between candidates.
func (ev *evaluator) checkDeadline(at *Expr) *EvalError {
	if ev.deadline.IsZero() {
		return nil
	}
	if time.Now().After(ev.deadline) {
		return errf(ErrTimeout, at, "deadline exceeded")
	}
	return nil
}

func (ev *evaluator) deadlineExpired() bool {
	return !ev.deadline.IsZero() && time.Now().After(ev.deadline)
}

func (ev *evaluator) logf(format string, args ...interface{}) {
	ev.logs = append(ev.logs, fmt.Sprintf(format, args...))
}

// eval walks one node against env.
func (ev *evaluator) eval(e *Expr, env *Env) (Value, *EvalError) {
	if err := ev.checkDeadline(e); err != nil {
		return Null, err
	}
	switch e.Kind {
	case EInt:
		return Int(e.Lit.(int64)), nil
	case ENum:
		return Num(e.Lit.(float64)), nil
	case EStr:
		return Str(e.Lit.(string)), nil
	case EBool:
		return Bool(e.Lit.(bool)), nil
	case ESym:
		v, err := env.Get(e.Sym())
		if err != nil {
			return Null, errf(ErrType, e, "undefined variable: %s", e.Sym())
		}
		return v, nil
	case EList:
		return ev.evalForm(e, env)
	default:
		return Null, errf(ErrInternal, e, "unknown node kind %d", e.Kind)
	}
}

func (ev *evaluator) evalForm(e *Expr, env *Env) (Value, *EvalError) {
	head := e.Head()
	args := e.Args()

	switch head {
	case "let":
		return ev.evalLet(e, args, env)
	case "lambda":
		return ev.evalLambda(e, args, env)
	case "if":
		return ev.evalIf(e, args, env)
	case "do":
		return ev.evalDo(e, args, env)
	}

	if p, ok := builtinTable()[head]; ok {
		if len(args) < p.minArgs || (p.maxArgs >= 0 && len(args) > p.maxArgs) {
			return Null, ev.arityErr(e, p, len(args))
		}
		vals := make([]Value, len(args))
		for i, a := range args {
			v, err := ev.eval(a, env)
			if err != nil {
				return Null, err
			}
			vals[i] = v
		}
		return p.fn(ev, e, vals)
	}

	// Not a primitive: a bound lambda in head position, applied curried.
	fv, err := env.Get(head)
	if err != nil {
		return Null, errf(ErrType, e.Items[0], "unknown operation: %s", head)
	}
	if fv.Tag != VTFun {
		return Null, errf(ErrType, e.Items[0], "%s is not callable (got %s)", head, fv.Tag)
	}
	cur := fv
	for i, a := range args {
		av, err2 := ev.eval(a, env)
		if err2 != nil {
			return Null, err2
		}
		if cur.Tag != VTFun {
			return Null, errf(ErrType, a, "too many arguments: %s is not callable after argument %d", head, i)
		}
		cur, err2 = ev.apply(cur.Data.(*Fun), av, a)
		if err2 != nil {
			return Null, err2
		}
	}
	return cur, nil
}

func (ev *evaluator) arityErr(call *Expr, p *primitive, got int) *EvalError {
	want := fmt.Sprintf("%d", p.minArgs)
	switch {
	case p.maxArgs < 0:
		want = fmt.Sprintf("at least %d", p.minArgs)
	case p.maxArgs != p.minArgs:
		want = fmt.Sprintf("%d..%d", p.minArgs, p.maxArgs)
	}
	return errf(ErrArity, call, "%s expects %s argument(s), received %d", p.name, want, got)
}

func (ev *evaluator) evalLet(call *Expr, args []*Expr, env *Env) (Value, *EvalError) {
	if len(args) != 2 {
		return Null, errf(ErrArity, call, "let expects 2 argument(s), received %d", len(args))
	}
	if args[0].Kind != ESym {
		return Null, errf(ErrType, args[0], "let target must be a symbol")
	}
	name := args[0].Sym()
	if isReservedName(name) {
		return Null, errf(ErrReservedName, args[0], "%s is reserved and cannot be rebound", name)
	}
	v, err := ev.eval(args[1], env)
	if err != nil {
		return Null, err
	}
	env.Define(name, v)
	return v, nil
}

func (ev *evaluator) evalLambda(call *Expr, args []*Expr, env *Env) (Value, *EvalError) {
	if len(args) != 2 {
		return Null, errf(ErrArity, call, "lambda expects 2 argument(s), received %d", len(args))
	}
	if args[0].Kind != ESym {
		return Null, errf(ErrType, args[0], "lambda parameter must be a symbol")
	}
	param := args[0].Sym()

	// Capture by value-snapshot of the referenced names only, so history
	// rotation never retains a whole environment.
	free := map[string]bool{}
	freeVars(args[1], map[string]bool{param: true}, free)
	captured := map[string]Value{}
	for name := range free {
		if v, err := env.Get(name); err == nil {
			captured[name] = v
		}
	}
	return FunVal(&Fun{Param: param, Body: args[1], Captured: captured}), nil
}

func (ev *evaluator) evalIf(call *Expr, args []*Expr, env *Env) (Value, *EvalError) {
	if len(args) != 2 && len(args) != 3 {
		return Null, errf(ErrArity, call, "if expects 2..3 argument(s), received %d", len(args))
	}
	cond, err := ev.eval(args[0], env)
	if err != nil {
		return Null, err
	}
	if truthy(cond) {
		return ev.eval(args[1], env)
	}
	if len(args) == 3 {
		return ev.eval(args[2], env)
	}
	return Null, nil
}

func (ev *evaluator) evalDo(call *Expr, args []*Expr, env *Env) (Value, *EvalError) {
	if len(args) == 0 {
		return Null, errf(ErrArity, call, "do expects at least 1 argument(s), received 0")
	}
	var last Value = Null
	for _, a := range args {
		v, err := ev.eval(a, env)
		if err != nil {
			return Null, err
		}
		last = v
	}
	return last, nil
}

// apply invokes a lambda on one argument. User lambdas evaluate their body
// in a fresh frame holding only the captured snapshot and the parameter;
// synthesized extractors run their native pipeline directly.
func (ev *evaluator) apply(f *Fun, arg Value, at *Expr) (Value, *EvalError) {
	if f.Native != nil {
		return f.Native(arg), nil
	}
	frame := NewEnv(nil)
	for k, v := range f.Captured {
		frame.Define(k, v)
	}
	frame.Define(f.Param, arg)
	return ev.eval(f.Body, frame)
}

// applyCurried applies a two-argument operation F as ((F a) b).
func (ev *evaluator) applyCurried(f *Fun, a, b Value, at *Expr) (Value, *EvalError) {
	r1, err := ev.apply(f, a, at)
	if err != nil {
		return Null, err
	}
	if r1.Tag != VTFun {
		return Null, errf(ErrType, at, "operation must be curried: (lambda acc (lambda x ...)), got %s after first argument", r1.Tag)
	}
	return ev.apply(r1.Data.(*Fun), b, at)
}

// requireDoc guards the document-reading primitives.
func (ev *evaluator) requireDoc(call *Expr) *EvalError {
	if ev.doc == nil {
		return errf(ErrNoDocument, call, "no document loaded")
	}
	return nil
}

// ---- argument extraction helpers ----
//
// Each helper returns (value, isNull, err): isNull signals the null
// propagation rule (the primitive should return Null), err a hard TypeError.

func (ev *evaluator) strArg(call *Expr, args []Value, i int) (string, bool, *EvalError) {
	v := args[i]
	if v.Tag == VTNull {
		return "", true, nil
	}
	s, ok := asStr(v)
	if !ok {
		return "", false, errf(ErrType, call, "argument %d must be Str, got %s", i+1, v.Tag)
	}
	return s, false, nil
}

func (ev *evaluator) intArg(call *Expr, args []Value, i int) (int64, bool, *EvalError) {
	v := args[i]
	if v.Tag == VTNull {
		return 0, true, nil
	}
	if v.Tag != VTInt {
		return 0, false, errf(ErrType, call, "argument %d must be Int, got %s", i+1, v.Tag)
	}
	return v.Data.(int64), false, nil
}

func (ev *evaluator) listArg(call *Expr, args []Value, i int) ([]Value, bool, *EvalError) {
	v := args[i]
	if v.Tag == VTNull {
		return nil, true, nil
	}
	if v.Tag != VTList {
		return nil, false, errf(ErrType, call, "argument %d must be List, got %s", i+1, v.Tag)
	}
	return v.Data.([]Value), false, nil
}

func (ev *evaluator) funArg(call *Expr, args []Value, i int) (*Fun, bool, *EvalError) {
	v := args[i]
	if v.Tag == VTNull {
		return nil, true, nil
	}
	if v.Tag != VTFun {
		return nil, false, errf(ErrType, call, "argument %d must be Lambda, got %s", i+1, v.Tag)
	}
	return v.Data.(*Fun), false, nil
}
