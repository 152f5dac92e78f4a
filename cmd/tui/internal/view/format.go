package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
	"github.com/MrJamesThe3rd/shelflife/internal/freshness"
)

const dbTimeout = 5 * time.Second

var badgeColors = map[freshness.Color]lipgloss.Color{
	freshness.ColorRed:    lipgloss.Color("196"),
	freshness.ColorOrange: lipgloss.Color("208"),
	freshness.ColorGreen:  lipgloss.Color("46"),
	freshness.ColorGray:   lipgloss.Color("245"),
}

// FormatExpiry renders an expiry date, or a dash when none was read.
func FormatExpiry(d expiry.Date) string {
	if d.IsZero() {
		return "-"
	}

	return d.String()
}

// RenderBadge colours a freshness badge for the terminal.
func RenderBadge(b freshness.Badge) string {
	return lipgloss.NewStyle().Foreground(badgeColors[b.Color]).Render(b.Text)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
