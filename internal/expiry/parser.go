package expiry

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// prefixPattern strips the label phrases that usually precede a date.
// Longer phrases come first so "expiry date" is not reduced to " date".
var prefixPattern = regexp.MustCompile(
	`(?i)\b(?:best before end|best before|use by|use-before|expires on|expires|expiry date|exp\.?\s*date|expiry|exp|bbd)[:.\s]*`,
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)

	isoNumericPattern       = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})$`)
	dayFirstPattern         = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})$`)
	dayMonthNamePattern     = regexp.MustCompile(`(?:^|[^0-9])(\d{1,2})\s*([A-Za-z]{3,})\s*(\d{4}|\d{2})(?:[^0-9]|$)`)
	yearMonthNamePattern    = regexp.MustCompile(`(?:^|[^0-9])(\d{4}|\d{2})\s*([A-Za-z]{3,})\s*(\d{1,2})(?:[^0-9]|$)`)
	isoDateTimePattern      = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T`)
	monthDayYearPattern     = regexp.MustCompile(`^([A-Za-z]{3,})\s*(\d{1,2})\s+(\d{4}|\d{2})$`)
	monthYearPattern        = regexp.MustCompile(`^([A-Za-z]{3,})\s*(\d{4})$`)
	numericMonthYearPattern = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
	dayMonthPattern         = regexp.MustCompile(`^(\d{1,2})\s*([A-Za-z]{3,})$`)
	monthDayPattern         = regexp.MustCompile(`^([A-Za-z]{3,})\s*(\d{1,2})$`)
	numericFallbackPattern  = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})$`)
)

// input carries one parse attempt through the rules.
type input struct {
	raw           string
	cleaned       string
	referenceYear int
}

// rule is one date-text heuristic. A rule that doesn't recognise the text,
// or recognises it but yields an impossible date, reports false.
type rule struct {
	Name  string
	match func(in input) (Date, bool)
}

// rules is the ordered list tried by Parse. Stricter numeric shapes come first
// so a loose rule never claims a string a specific one can read.
var rules = []rule{
	{Name: "iso-numeric", match: matchISONumeric},
	{Name: "day-first-numeric", match: matchDayFirst},
	{Name: "day-month-name-year", match: matchDayMonthName},
	{Name: "year-month-name-day", match: matchYearMonthName},
	{Name: "fallback", match: matchFallback},
	{Name: "iso-datetime-prefix", match: matchISODateTime},
}

// Parse converts label text into a calendar date. referenceYear only fills in
// the year for fallback shapes that carry none ("30 NOV"); the two-digit year
// pivot never depends on it.
func Parse(raw string, referenceYear int) (Date, bool) {
	d, _, ok := ParseWithRule(raw, referenceYear)
	return d, ok
}

// ParseWithRule is Parse that also reports the name of the rule that matched.
func ParseWithRule(raw string, referenceYear int) (Date, string, bool) {
	raw = norm.NFKC.String(raw)
	if strings.TrimSpace(raw) == "" {
		return Unparseable, "", false
	}

	in := input{
		raw:           strings.TrimSpace(raw),
		cleaned:       Clean(raw),
		referenceYear: referenceYear,
	}

	for _, r := range rules {
		if d, ok := r.match(in); ok {
			return d, r.Name, true
		}
	}

	return Unparseable, "", false
}

// Clean strips known label prefixes, turns commas into spaces and collapses
// whitespace.
func Clean(raw string) string {
	s := prefixPattern.ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, ",", " ")
	s = whitespacePattern.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

func matchISONumeric(in input) (Date, bool) {
	m := isoNumericPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	return numericDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

func matchDayFirst(in input) (Date, bool) {
	m := dayFirstPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	return numericDate(normalizeYear(atoi(m[3])), atoi(m[2]), atoi(m[1]))
}

func matchDayMonthName(in input) (Date, bool) {
	m := dayMonthNamePattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	month, ok := LookupMonth(m[2])
	if !ok {
		return Unparseable, false
	}

	return NewDate(normalizeYear(atoi(m[3])), month, atoi(m[1]))
}

func matchYearMonthName(in input) (Date, bool) {
	m := yearMonthNamePattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	month, ok := LookupMonth(m[2])
	if !ok {
		return Unparseable, false
	}

	return NewDate(normalizeYear(atoi(m[1])), month, atoi(m[3]))
}

func matchISODateTime(in input) (Date, bool) {
	m := isoDateTimePattern.FindStringSubmatch(in.raw)
	if m == nil {
		return Unparseable, false
	}

	return numericDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

func numericDate(year, month, day int) (Date, bool) {
	if month < 1 || month > 12 {
		return Unparseable, false
	}

	return NewDate(year, time.Month(month), day)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}

	return n
}
