// session.go
//
// A Session binds one document to an evaluator and a persistent binding
// environment, and presents the outward load / execute / bindings / reset /
// stats contract. Sessions are single-threaded with respect to themselves:
// operations serialize on an internal mutex, so no concurrent execute can
// interleave on the same Session. Independent Sessions coexist freely; a
// factory creates them and there is no process-global state.
//
// Turn discipline:
//   - TURN advances by exactly one per execute, successful or failed.
//   - On success, bindings introduced by let are committed, RESULTS is
//     updated when the value is not null, and history rotates (_1 newest).
//   - On failure, RESULTS and user bindings are untouched; the turn still
//     advances and a {error, message} record is pushed to _1. Bindings made
//     by let inside the failed evaluation are never observable, because the
//     turn evaluates in a child frame committed only on success.
package nucleus

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Options carries the engine limits. Zero fields take documented defaults.
type Options struct {
	HistoryDepth      int // reserved history slots _1.._N (default 32)
	MaxCandidates     int // synthesizer search budget (default 100)
	DefaultFuzzyLimit int // fuzzy-search limit when not given (default 10)
	PreviewListCap    int // elements shown in list previews (default 20)
	PreviewStringCap  int // bytes shown in string previews (default 4096)
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		HistoryDepth:      32,
		MaxCandidates:     100,
		DefaultFuzzyLimit: 10,
		PreviewListCap:    20,
		PreviewStringCap:  4096,
	}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.HistoryDepth < 1 {
		o.HistoryDepth = d.HistoryDepth
	}
	if o.MaxCandidates < 1 {
		o.MaxCandidates = d.MaxCandidates
	}
	if o.DefaultFuzzyLimit < 1 {
		o.DefaultFuzzyLimit = d.DefaultFuzzyLimit
	}
	if o.PreviewListCap < 1 {
		o.PreviewListCap = d.PreviewListCap
	}
	if o.PreviewStringCap < 64 {
		o.PreviewStringCap = d.PreviewStringCap
	}
	return o
}

// LoadResult reports what a load ingested.
type LoadResult struct {
	LineCount int
	Length    int
}

// Response is the uniform execute result.
type Response struct {
	OK      bool
	Result  Value  // the full value; retained in-session via RESULTS
	Preview string // bounded preview of Result
	Logs    []string
	Err     *EvalError
	Turn    int

	BindingsAdded   []string
	BindingsChanged []string
}

// Session is a stateful document analysis session.
type Session struct {
	ID string

	mu       sync.Mutex
	opts     Options
	doc      *Document
	env      *Env
	history  []Value // most recent first, bounded by HistoryDepth
	turn     int
	poisoned bool
}

// NewSession creates an empty session with the given options.
func NewSession(opts Options) *Session {
	s := &Session{ID: uuid.NewString(), opts: opts.normalized()}
	s.resetLocked()
	return s
}

func (s *Session) resetLocked() {
	s.env = NewEnv(nil)
	s.env.Define("RESULTS", Null)
	s.env.Define("TURN", Int(0))
	s.history = nil
	s.turn = 0
}

// LoadText ingests text as the session document, replacing any previous one
// and resetting bindings, history, and the turn counter. label is an
// optional origin marker shown in stats.
func (s *Session) LoadText(text, label string) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = NewDocument(text, label)
	s.resetLocked()
	return LoadResult{LineCount: s.doc.LineCount(), Length: s.doc.Length()}
}

// LoadFile reads path and loads its contents.
func (s *Session) LoadFile(path string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("load %s: %w", path, err)
	}
	res := s.LoadText(string(data), path)
	return res, nil
}

// Execute runs one turn with no deadline.
func (s *Session) Execute(source string) Response {
	return s.ExecuteDeadline(source, time.Time{})
}

// ExecuteTimeout runs one turn that is abandoned once d elapses.
func (s *Session) ExecuteTimeout(source string, d time.Duration) Response {
	return s.ExecuteDeadline(source, time.Now().Add(d))
}

// ExecuteDeadline drives parse → evaluate → bind for one turn. A zero
// deadline disables the timeout.
func (s *Session) ExecuteDeadline(source string, deadline time.Time) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.poisoned {
		return Response{
			Turn: s.turn,
			Err:  &EvalError{Kind: ErrInternal, Msg: "session is poisoned; create a fresh session"},
		}
	}

	s.turn++
	resp := Response{Turn: s.turn}

	fail := func(err *EvalError) Response {
		if err.Fatal() {
			s.poisoned = true
		}
		s.pushHistory(errorRecord(err))
		s.env.Define("TURN", Int(int64(s.turn)))
		resp.Err = err
		return resp
	}

	if s.doc == nil {
		return fail(&EvalError{Kind: ErrNoDocument, Msg: "no document loaded; call load first"})
	}

	ast, perr := Parse(source)
	if perr != nil {
		return fail(asEvalError(perr))
	}

	ev := &evaluator{
		doc:               s.doc,
		deadline:          deadline,
		maxCandidates:     s.opts.MaxCandidates,
		defaultFuzzyLimit: s.opts.DefaultFuzzyLimit,
	}
	frame := NewEnv(s.env)
	v, eerr := ev.eval(ast, frame)
	resp.Logs = ev.logs
	if eerr != nil {
		return fail(eerr)
	}

	// Commit: user bindings from the turn frame, RESULTS, history, TURN —
	// all inside the session lock, so the rotation is atomic to callers.
	names := frame.Names()
	sort.Strings(names)
	for _, name := range names {
		nv, _ := frame.Get(name)
		if old, err := s.env.Get(name); err != nil {
			resp.BindingsAdded = append(resp.BindingsAdded, name)
			s.env.Define(name, nv)
		} else if !valueEqual(old, nv) {
			resp.BindingsChanged = append(resp.BindingsChanged, name)
			s.env.Define(name, nv)
		}
	}
	if v.Tag != VTNull {
		s.env.Define("RESULTS", v)
		resp.BindingsChanged = append(resp.BindingsChanged, "RESULTS")
	}
	s.pushHistory(v)
	s.env.Define("TURN", Int(int64(s.turn)))

	resp.OK = true
	resp.Result = v
	resp.Preview = PreviewValue(v, s.opts.PreviewListCap, s.opts.PreviewStringCap)
	return resp
}

// pushHistory rotates _1.._N: _k becomes _{k+1} and the new value lands in
// _1, bounded at the configured depth.
func (s *Session) pushHistory(v Value) {
	s.history = append([]Value{v}, s.history...)
	if len(s.history) > s.opts.HistoryDepth {
		s.history = s.history[:s.opts.HistoryDepth]
	}
	for i, h := range s.history {
		s.env.Define("_"+strconv.Itoa(i+1), h)
	}
}

func errorRecord(err *EvalError) Value {
	rec := NewRecord()
	rec.Set("error", Str(string(err.Kind)))
	rec.Set("message", Str(err.Msg))
	return RecVal(rec)
}

// Bindings returns a snapshot of user and reserved names mapped to
// summarized values (containers render as size markers, never full
// serializations).
func (s *Session) Bindings() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]string{}
	for _, name := range s.env.Names() {
		v, _ := s.env.Get(name)
		out[name] = SummarizeValue(v)
	}
	return out
}

// Reset clears all bindings and history and sets TURN back to 0. The
// document is retained.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Turn returns the current turn counter.
func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

// Stats returns the document statistics.
func (s *Session) Stats() (DocStats, *EvalError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return DocStats{}, &EvalError{Kind: ErrNoDocument, Msg: "no document loaded"}
	}
	return s.doc.Stats(), nil
}
