package importer

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// parseQuantity splits a size such as "1,5 kg", "500g" or "1.000,5 ml" into
// its amount and unit. Both comma and dot decimal separators are accepted;
// when both appear the dot is a thousands separator.
func parseQuantity(s string) (decimal.NullDecimal, string) {
	s = strings.TrimSpace(s)

	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ','
	})
	if end == -1 {
		end = len(s)
	}

	number, unit := s[:end], strings.TrimSpace(s[end:])
	if number == "" {
		return decimal.NullDecimal{}, ""
	}

	if strings.Contains(number, ",") {
		number = strings.ReplaceAll(number, ".", "")
		number = strings.ReplaceAll(number, ",", ".")
	}

	d, err := decimal.NewFromString(number)
	if err != nil {
		return decimal.NullDecimal{}, ""
	}

	return decimal.NewNullDecimal(d), strings.ToLower(unit)
}
