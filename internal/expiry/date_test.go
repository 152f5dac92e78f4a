package expiry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/shelflife/internal/expiry"
)

func TestNewDate(t *testing.T) {
	d, ok := expiry.NewDate(2025, time.April, 30)
	require.True(t, ok)
	assert.Equal(t, "2025-04-30", d.String())

	_, ok = expiry.NewDate(2025, time.April, 31)
	assert.False(t, ok)

	_, ok = expiry.NewDate(2025, 13, 1)
	assert.False(t, ok)

	_, ok = expiry.NewDate(0, time.January, 1)
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	asOf := date(2025, time.December, 30)

	assert.Equal(t, 0, expiry.DaysBetween(asOf, asOf))
	assert.Equal(t, 3, expiry.DaysBetween(date(2026, time.January, 2), asOf))
	assert.Equal(t, -30, expiry.DaysBetween(date(2025, time.November, 30), asOf))
	assert.Equal(t, date(2026, time.January, 2), asOf.AddDays(3))
	assert.True(t, asOf.Before(asOf.AddDays(1)))
	assert.False(t, asOf.Before(asOf))
}

func TestDateOf_UsesCalendarDayOfLocation(t *testing.T) {
	kiritimati := time.FixedZone("LINT", 14*60*60)
	instant := time.Date(2025, time.November, 30, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, date(2025, time.November, 30), expiry.DateOf(instant))
	assert.Equal(t, date(2025, time.December, 1), expiry.DateOf(instant.In(kiritimati)))
}

func TestDate_TextAndSQL(t *testing.T) {
	d := date(2025, time.December, 1)

	b, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", string(b))

	var got expiry.Date
	require.NoError(t, got.UnmarshalText(b))
	assert.Equal(t, d, got)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", v)

	var scanned expiry.Date
	require.NoError(t, scanned.Scan([]byte("2025-12-01")))
	assert.Equal(t, d, scanned)

	require.NoError(t, scanned.Scan(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, date(2026, time.March, 2), scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	assert.Error(t, scanned.Scan(42))

	zero, err := expiry.Unparseable.Value()
	require.NoError(t, err)
	assert.Nil(t, zero)
}

func TestParseISO(t *testing.T) {
	d, err := expiry.ParseISO("2025-12-01")
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.December, 1), d)

	_, err = expiry.ParseISO("01/12/2025")
	assert.Error(t, err)
}
