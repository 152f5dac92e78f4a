package freshness

import "fmt"

// Color is the badge colour a listing should use for a tier.
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorGreen  Color = "green"
	ColorGray   Color = "gray"
)

type Badge struct {
	Text  string `json:"text"`
	Color Color  `json:"color"`
}

func BadgeFor(t Tier) Badge {
	switch v := t.(type) {
	case Expired:
		return Badge{Text: fmt.Sprintf("Expired %d %s ago", v.DaysPast, plural(v.DaysPast)), Color: ColorRed}
	case ExpiresToday:
		return Badge{Text: "Expires today", Color: ColorOrange}
	case ExpiresSoon:
		return Badge{Text: fmt.Sprintf("Expires in %d %s", v.DaysLeft, plural(v.DaysLeft)), Color: ColorOrange}
	case Fresh:
		return Badge{Text: fmt.Sprintf("Expires in %d %s", v.DaysLeft, plural(v.DaysLeft)), Color: ColorGreen}
	}

	return Badge{Text: "No expiry", Color: ColorGray}
}

func plural(n int) string {
	if n == 1 {
		return "day"
	}

	return "days"
}
