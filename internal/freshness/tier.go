// Package freshness classifies an expiry date relative to a reference day.
package freshness

import (
	"time"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
)

// SoonThresholdDays is the largest number of days left that still counts as
// expiring soon.
const SoonThresholdDays = 3

// Tier is the urgency of an expiry date. The set of variants is closed:
// Expired, ExpiresToday, ExpiresSoon, Fresh and Unknown.
type Tier interface {
	// Name is a stable identifier for serialisation.
	Name() string
	tier()
}

type Expired struct {
	DaysPast int
}

type ExpiresToday struct{}

type ExpiresSoon struct {
	DaysLeft int
}

type Fresh struct {
	DaysLeft int
}

// Unknown is the tier of an item whose date couldn't be read.
type Unknown struct{}

func (Expired) Name() string      { return "expired" }
func (ExpiresToday) Name() string { return "expires_today" }
func (ExpiresSoon) Name() string  { return "expires_soon" }
func (Fresh) Name() string        { return "fresh" }
func (Unknown) Name() string      { return "unknown" }

func (Expired) tier()      {}
func (ExpiresToday) tier() {}
func (ExpiresSoon) tier()  {}
func (Fresh) tier()        {}
func (Unknown) tier()      {}

// Classify maps an expiry date to its tier as of the given day.
// The zero date (expiry.Unparseable) is Unknown.
func Classify(date, asOf expiry.Date) Tier {
	if date.IsZero() {
		return Unknown{}
	}

	diff := expiry.DaysBetween(date, asOf)

	switch {
	case diff < 0:
		return Expired{DaysPast: -diff}
	case diff == 0:
		return ExpiresToday{}
	case diff <= SoonThresholdDays:
		return ExpiresSoon{DaysLeft: diff}
	default:
		return Fresh{DaysLeft: diff}
	}
}

// ClassifyAt classifies against the local calendar day of now.
func ClassifyAt(date expiry.Date, now time.Time) Tier {
	return Classify(date, expiry.DateOf(now))
}

// Days returns the signed day count carried by a tier: negative for expired,
// zero for today, and false for Unknown.
func Days(t Tier) (int, bool) {
	switch v := t.(type) {
	case Expired:
		return -v.DaysPast, true
	case ExpiresToday:
		return 0, true
	case ExpiresSoon:
		return v.DaysLeft, true
	case Fresh:
		return v.DaysLeft, true
	}

	return 0, false
}
