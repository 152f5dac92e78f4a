package expiry

import (
	"strings"
	"time"
)

// monthLexicon maps upper-cased English month tokens, abbreviated or full,
// to their month. It is never written after init.
var monthLexicon = map[string]time.Month{
	"JAN":       time.January,
	"JANUARY":   time.January,
	"FEB":       time.February,
	"FEBRUARY":  time.February,
	"MAR":       time.March,
	"MARCH":     time.March,
	"APR":       time.April,
	"APRIL":     time.April,
	"MAY":       time.May,
	"JUN":       time.June,
	"JUNE":      time.June,
	"JUL":       time.July,
	"JULY":      time.July,
	"AUG":       time.August,
	"AUGUST":    time.August,
	"SEP":       time.September,
	"SEPT":      time.September,
	"SEPTEMBER": time.September,
	"OCT":       time.October,
	"OCTOBER":   time.October,
	"NOV":       time.November,
	"NOVEMBER":  time.November,
	"DEC":       time.December,
	"DECEMBER":  time.December,
}

// LookupMonth resolves a month-name token case-insensitively.
func LookupMonth(token string) (time.Month, bool) {
	m, ok := monthLexicon[strings.ToUpper(token)]
	return m, ok
}

// normalizeYear applies the fixed century pivot to two-digit years:
// 00-49 become 2000-2049 and 50-99 become 1950-1999.
func normalizeYear(y int) int {
	if y >= 100 {
		return y
	}

	if y <= 49 {
		return 2000 + y
	}

	return 1900 + y
}
