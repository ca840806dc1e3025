package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("08:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 8, Minute: 30}, tod)

	tod, err = ParseTimeOfDay("23:59:59")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 23, Minute: 59, Second: 59}, tod)

	_, err = ParseTimeOfDay("25:00")
	require.Error(t, err)
}

func TestTimeOfDayOnAnchorsUTC(t *testing.T) {
	tod := TimeOfDay{Hour: 6, Minute: 15}
	date := time.Date(2024, 5, 20, 17, 42, 0, 0, time.UTC)

	anchored := tod.On(date)
	assert.Equal(t, time.Date(2024, 5, 20, 6, 15, 0, 0, time.UTC), anchored)
}

func TestTimeOfDayBefore(t *testing.T) {
	early := TimeOfDay{Hour: 5}
	late := TimeOfDay{Hour: 5, Second: 1}
	assert.True(t, early.Before(late))
	assert.False(t, late.Before(early))
	assert.False(t, early.Before(early))
}

func TestTimeOfDayScanRoundTrip(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan("14:05:00"))
	val, err := tod.Value()
	require.NoError(t, err)
	assert.Equal(t, "14:05:00", val)
}
