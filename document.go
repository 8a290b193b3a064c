// document.go
//
// The document store: an immutable loaded text with a precomputed 1-based
// line index, plus the read-only search operations the evaluator builds on
// (line access, regex grep, fuzzy line matching). A Document is created by
// Session.LoadText (or LoadFile), replaced wholesale by a subsequent load, and never mutated.
package nucleus

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Document is one loaded text unit.
type Document struct {
	Text  string
	Path  string // optional label; "" for inline text
	lines []string
	// starts[i] is the byte offset of line i+1 in Text.
	starts []int
}

// NewDocument indexes text into a Document. An optional path labels the
// origin for stats and previews.
func NewDocument(text, path string) *Document {
	d := &Document{Text: text, Path: path}
	d.starts = append(d.starts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.starts = append(d.starts, i+1)
		}
	}
	d.lines = strings.Split(text, "\n")
	// A trailing newline does not open a final empty line.
	if n := len(d.lines); n > 1 && d.lines[n-1] == "" {
		d.lines = d.lines[:n-1]
		d.starts = d.starts[:n-1]
	}
	for i, ln := range d.lines {
		d.lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return d
}

// LineCount returns the number of indexed lines.
func (d *Document) LineCount() int { return len(d.lines) }

// Length returns the byte length of the original text.
func (d *Document) Length() int { return len(d.Text) }

// resolveLine maps a 1-based (or negative-from-end) index to a 0-based
// offset; ok is false when the index is out of range. 0 is never valid.
func (d *Document) resolveLine(n int) (int, bool) {
	if n < 0 {
		n = len(d.lines) + 1 + n
	}
	if n < 1 || n > len(d.lines) {
		return 0, false
	}
	return n - 1, true
}

// Line returns the text of the 1-based line n. Negative n counts from the
// end: -1 is the last line.
func (d *Document) Line(n int) (string, *EvalError) {
	i, ok := d.resolveLine(n)
	if !ok {
		return "", &EvalError{
			Kind: ErrLineOutOfRange,
			Msg:  fmt.Sprintf("line %d is outside [1, %d]", n, len(d.lines)),
		}
	}
	return d.lines[i], nil
}

// Slice returns the inclusive line range [start, end]. Arguments are
// reordered so start <= end; out-of-range endpoints clamp to valid bounds.
// When both endpoints fall outside on the same side the result is empty.
func (d *Document) Slice(start, end int) []string {
	norm := func(n int) int {
		if n < 0 {
			return len(d.lines) + 1 + n
		}
		return n
	}
	a, b := norm(start), norm(end)
	if a > b {
		a, b = b, a
	}
	if b < 1 || a > len(d.lines) {
		return nil
	}
	if a < 1 {
		a = 1
	}
	if b > len(d.lines) {
		b = len(d.lines)
	}
	out := make([]string, b-a+1)
	copy(out, d.lines[a-1:b])
	return out
}

// DocStats summarizes a document for the stats surface.
type DocStats struct {
	Length       int
	LineCount    int
	Path         string
	SampleStart  []string
	SampleMiddle []string
	SampleEnd    []string
}

// Stats returns document statistics with up to three 5-line contiguous
// samples (start, middle, end).
func (d *Document) Stats() DocStats {
	sample := func(from int) []string {
		if from < 1 {
			from = 1
		}
		to := from + 4
		if to > len(d.lines) {
			to = len(d.lines)
		}
		if from > to {
			return nil
		}
		out := make([]string, to-from+1)
		copy(out, d.lines[from-1:to])
		return out
	}
	n := len(d.lines)
	return DocStats{
		Length:       len(d.Text),
		LineCount:    n,
		Path:         d.Path,
		SampleStart:  sample(1),
		SampleMiddle: sample(n/2 - 1),
		SampleEnd:    sample(n - 4),
	}
}

// Grep runs pattern over the whole text with the engine defaults
// (case-insensitive, multi-line, global) and returns every non-overlapping
// match. Zero-width matches are counted once per position; the scanner
// relies on the regexp package advancing past empty matches, so iteration
// always terminates. Group 0 is carried in Match and not duplicated into
// Groups.
func (d *Document) Grep(pattern string) ([]*GrepHit, *EvalError) {
	re, err := regexp.Compile("(?im)" + pattern)
	if err != nil {
		return nil, &EvalError{Kind: ErrRegex, Msg: fmt.Sprintf("invalid pattern %q: %v", pattern, err)}
	}
	idxs := re.FindAllStringSubmatchIndex(d.Text, -1)
	out := make([]*GrepHit, 0, len(idxs))
	for _, m := range idxs {
		start := m[0]
		hit := &GrepHit{
			Match: d.Text[m[0]:m[1]],
			Index: start,
		}
		ln := sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > start })
		hit.LineNum = ln // starts[ln-1] <= start < starts[ln]
		if ln >= 1 && ln <= len(d.lines) {
			hit.Line = d.lines[ln-1]
		}
		for g := 1; g*2 < len(m); g++ {
			if m[2*g] < 0 {
				hit.Groups = append(hit.Groups, "")
			} else {
				hit.Groups = append(hit.Groups, d.Text[m[2*g]:m[2*g+1]])
			}
		}
		out = append(out, hit)
	}
	return out, nil
}

// Fuzzy returns the top-limit fuzzy matches of query over distinct lines.
//
// Scoring (stable, documented): a case-folded substring match scores 0;
// otherwise the score is the minimum, over contiguous rune windows of the
// line with lengths in [len(query)-2, len(query)+2], of the edit distance
// between the query and the window plus 0.25 for every rune the window is
// longer than the query. Ties break on the smaller line number.
func (d *Document) Fuzzy(query string, limit int) []*FuzzyHit {
	if limit < 1 || query == "" {
		return nil
	}
	q := []rune(strings.ToLower(query))
	seen := map[string]bool{}
	var hits []*FuzzyHit
	for i, line := range d.lines {
		if seen[line] {
			continue
		}
		seen[line] = true
		hits = append(hits, &FuzzyHit{
			Line:    line,
			LineNum: i + 1,
			Score:   fuzzyScore(q, strings.ToLower(line)),
		})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score < hits[b].Score
		}
		return hits[a].LineNum < hits[b].LineNum
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func fuzzyScore(q []rune, foldedLine string) float64 {
	if strings.Contains(foldedLine, string(q)) {
		return 0
	}
	line := []rune(foldedLine)
	best := float64(len(q)) // worst case: replace everything
	lo := len(q) - 2
	if lo < 1 {
		lo = 1
	}
	for w := lo; w <= len(q)+2; w++ {
		if w > len(line) {
			break
		}
		penalty := 0.25 * float64(w-len(q))
		if penalty < 0 {
			penalty = 0
		}
		for i := 0; i+w <= len(line); i++ {
			s := float64(editDistance(q, line[i:i+w])) + penalty
			if s < best {
				best = s
			}
		}
	}
	// Short lines: compare against the whole line when no window fit.
	if len(line) < lo {
		s := float64(editDistance(q, line))
		if s < best {
			best = s
		}
	}
	return best
}

// editDistance is the classic two-row Levenshtein distance over runes.
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m := prev[j] + 1 // deletion
			if v := cur[j-1] + 1; v < m {
				m = v // insertion
			}
			if v := prev[j-1] + cost; v < m {
				m = v // substitution
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
