package expiry

// NumericOrder says how an all-numeric A/B/Y string is read.
type NumericOrder int

const (
	DayFirst NumericOrder = iota
	MonthFirst
)

// FallbackNumericOrder is how the fallback rule reads numeric dates that the
// day-first rule already rejected (e.g. "12/31/2025"). The day-first rule
// claims every string that is valid day-first, so only strings that are
// impossible that way ever reach this.
const FallbackNumericOrder = MonthFirst

// fallbackShapes are the looser expressions accepted after the strict rules,
// tried in order:
//
//	MON D YYYY   "NOV 30 2025", "November 30 25"
//	MON YYYY     "NOV 2026" (first day of the month)
//	MM.YYYY      "03.2026"  (first day of the month, month always first)
//	D MON        "30 NOV"   (reference year)
//	MON D        "NOV 30"   (reference year)
//	A/B/Y        read per FallbackNumericOrder
var fallbackShapes = []func(in input) (Date, bool){
	matchMonthDayYear,
	matchMonthYear,
	matchNumericMonthYear,
	matchDayMonth,
	matchMonthDay,
	matchNumericFallback,
}

func matchFallback(in input) (Date, bool) {
	for _, shape := range fallbackShapes {
		if d, ok := shape(in); ok {
			return d, true
		}
	}

	return Unparseable, false
}

func matchMonthDayYear(in input) (Date, bool) {
	m := monthDayYearPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	month, ok := LookupMonth(m[1])
	if !ok {
		return Unparseable, false
	}

	return NewDate(normalizeYear(atoi(m[3])), month, atoi(m[2]))
}

func matchMonthYear(in input) (Date, bool) {
	m := monthYearPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	month, ok := LookupMonth(m[1])
	if !ok {
		return Unparseable, false
	}

	return NewDate(atoi(m[2]), month, 1)
}

// matchNumericMonthYear reads the "best before end" form, where only a month
// and a four-digit year are printed.
func matchNumericMonthYear(in input) (Date, bool) {
	m := numericMonthYearPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	return numericDate(atoi(m[2]), atoi(m[1]), 1)
}

func matchDayMonth(in input) (Date, bool) {
	if in.referenceYear <= 0 {
		return Unparseable, false
	}

	m := dayMonthPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	month, ok := LookupMonth(m[2])
	if !ok {
		return Unparseable, false
	}

	return NewDate(in.referenceYear, month, atoi(m[1]))
}

func matchMonthDay(in input) (Date, bool) {
	if in.referenceYear <= 0 {
		return Unparseable, false
	}

	m := monthDayPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	month, ok := LookupMonth(m[1])
	if !ok {
		return Unparseable, false
	}

	return NewDate(in.referenceYear, month, atoi(m[2]))
}

func matchNumericFallback(in input) (Date, bool) {
	m := numericFallbackPattern.FindStringSubmatch(in.cleaned)
	if m == nil {
		return Unparseable, false
	}

	a, b, year := atoi(m[1]), atoi(m[2]), normalizeYear(atoi(m[3]))

	if FallbackNumericOrder == MonthFirst {
		return numericDate(year, a, b)
	}

	return numericDate(year, b, a)
}
