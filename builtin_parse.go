// builtin_parse.go
//
// Numeric and date parsers. The pure parse* helpers are shared with the
// synthesizer, so a synthesized extractor and the primitive it was built
// from can never disagree.
//
// All parsers are total: unrecognized input yields null, never an error.
package nucleus

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

func registerParsePrims(table map[string]*primitive) {
	strIn := func(name string, f func(s string) Value) {
		register(table, &primitive{
			name: name, minArgs: 1, maxArgs: 1,
			fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
				s, isNull, err := ev.strArg(call, args, 0)
				if err != nil || isNull {
					return Null, err
				}
				return f(s), nil
			},
		})
	}

	strIn("parseInt", func(s string) Value {
		if n, ok := parseIntStr(s); ok {
			return Int(n)
		}
		return Null
	})
	strIn("parseFloat", func(s string) Value {
		if f, ok := parseFloatStr(s); ok {
			return Num(f)
		}
		return Null
	})
	strIn("parseCurrency", func(s string) Value { return parseCurrencyStr(s) })
	strIn("parseNumber", func(s string) Value {
		if f, ok := parseNumberStr(s); ok {
			return Num(f)
		}
		return Null
	})

	register(table, &primitive{
		name: "parseDate", minArgs: 1, maxArgs: 2,
		fn: func(ev *evaluator, call *Expr, args []Value) (Value, *EvalError) {
			s, isNull, err := ev.strArg(call, args, 0)
			if err != nil || isNull {
				return Null, err
			}
			hint := ""
			if len(args) == 2 {
				h, isNull, err := ev.strArg(call, args, 1)
				if err != nil || isNull {
					return Null, err
				}
				hint = h
			}
			if iso, ok := parseDateStr(s, hint); ok {
				return Str(iso), nil
			}
			return Null, nil
		},
	})
}

// parseIntStr parses a decimal integer with optional leading minus; commas
// are stripped first.
func parseIntStr(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseFloatStr is permissive: commas stripped, decimal point and scientific
// notation accepted.
func parseFloatStr(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseNumberStr applies the parseNumber rule: a trailing '%' divides by
// 100, otherwise the input parses like parseFloat.
func parseNumberStr(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		f, ok := parseFloatStr(strings.TrimSuffix(s, "%"))
		if !ok {
			return 0, false
		}
		return f / 100, true
	}
	return parseFloatStr(s)
}

var currencySymbols = []string{"$", "€", "£", "¥"}

// parseCurrencyStr parses one currency amount. One leading currency symbol
// is stripped; a parenthesized amount is negative; the US vs EU
// thousands/decimal convention is detected from the position of the last ','
// against the last '.'. Amounts without a fractional part come back as Int,
// the rest as Num. Unparseable input is Null.
func parseCurrencyStr(s string) Value {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = strings.TrimSpace(s[1:])
	}
	for _, sym := range currencySymbols {
		if strings.HasPrefix(s, sym) {
			s = strings.TrimSpace(strings.TrimPrefix(s, sym))
			break
		}
	}
	if s == "" {
		return Null
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	hasFraction := false
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// EU: '.' groups thousands, ',' is the decimal mark
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
			hasFraction = true
		} else {
			s = strings.ReplaceAll(s, ",", "")
			hasFraction = true
		}
	case lastComma >= 0:
		// Commas only: grouping when every comma opens a 3-digit group,
		// otherwise the last comma is an EU decimal mark.
		if commasAreGrouping(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s[:lastComma], ",", "") + "." + s[lastComma+1:]
			hasFraction = true
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			// Multiple dots can only be EU grouping
			s = strings.ReplaceAll(s, ".", "")
		} else {
			hasFraction = true
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null
	}
	if neg {
		f = -f
	}
	if !hasFraction && f == float64(int64(f)) {
		return Int(int64(f))
	}
	return Num(f)
}

func commasAreGrouping(s string) bool {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		if i == 0 {
			if p == "" {
				return false
			}
			continue
		}
		if len(p) != 3 {
			return false
		}
	}
	return true
}

var (
	reISODate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reSlashDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reDMonY     = regexp.MustCompile(`^(\d{1,2})-([A-Za-z]{3})-(\d{2})$`)
)

var monthAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// parseDateStr recognizes ISO YYYY-MM-DD, MM/DD/YYYY (hint "US", the
// default), DD/MM/YYYY (hint "EU"), "Month D, YYYY", "D Month YYYY", and
// "D-Mon-YY" (two-digit years below 50 are 20YY, the rest 19YY). The result
// is always YYYY-MM-DD; impossible dates fail.
func parseDateStr(s, hint string) (string, bool) {
	s = strings.TrimSpace(s)

	if reISODate.MatchString(s) {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return "", false
		}
		return t.Format("2006-01-02"), true
	}

	if m := reSlashDate.FindStringSubmatch(s); m != nil {
		a, _ := strconv.Atoi(m[1])
		b, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		mo, d := a, b
		if strings.EqualFold(hint, "EU") {
			mo, d = b, a
		}
		return formatYMD(y, time.Month(mo), d)
	}

	if m := reDMonY.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, ok := monthAbbrev[strings.ToLower(m[2])]
		if !ok {
			return "", false
		}
		yy, _ := strconv.Atoi(m[3])
		y := 1900 + yy
		if yy < 50 {
			y = 2000 + yy
		}
		return formatYMD(y, mo, d)
	}

	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006", "2 January 2006", "2 Jan 2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// formatYMD validates the calendar date (rejecting normalized overflows like
// Feb 30) and renders ISO form.
func formatYMD(y int, mo time.Month, d int) (string, bool) {
	if y < 1 || mo < time.January || mo > time.December || d < 1 {
		return "", false
	}
	t := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != mo || t.Day() != d {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
