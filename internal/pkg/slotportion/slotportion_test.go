package slotportion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnd_WithPortionMarker(t *testing.T) {
	c, err := ParseEnd("6:12 PM - 6:42 PM portion")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 18, Minute: 42}, c)
}

func TestParseEnd_MarkerIsCaseInsensitiveAndOptional(t *testing.T) {
	c, err := ParseEnd("9:00 am - 9:30 am PORTION")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9, Minute: 30}, c)

	c, err = ParseEnd("9:00 AM - 9:30 AM")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9, Minute: 30}, c)
}

func TestParseEnd_MidnightAndNoon(t *testing.T) {
	c, err := ParseEnd("11:45 AM - 12:15 PM portion")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 12, Minute: 15}, c)

	c, err = ParseEnd("11:30 PM - 12:00 AM portion")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 0, Minute: 0}, c)
}

func TestParseEnd_IgnoresStart(t *testing.T) {
	for _, in := range []string{
		"later - 6:42 PM portion",
		"Slot 1 - 6:42 PM portion",
		"6:12PM - 6:42 PM portion",
	} {
		c, err := ParseEnd(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, Clock{Hour: 18, Minute: 42}, c, "input %q", in)
	}
}

func TestParseEnd_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"6:12 PM",
		"6:12 PM-6:42 PM portion",
		"6:12 PM - 6:42 portion",
		"6:12 PM - 6:42PM portion",
		"6:12 PM - six:42 PM portion",
		"6:12 PM - 13:42 PM portion",
		"6:12 PM - 0:42 AM portion",
		"6:12 PM - 6:61 PM portion",
		"6:12 PM - 6:4 PM portion",
		"6:12 PM - 6:42 XM portion",
		"6:12 PM - 642 PM portion",
	}
	for _, in := range inputs {
		_, err := ParseEnd(in)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", in)
	}
}

func TestClock_OnUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := Clock{Hour: 18, Minute: 42}.On(date, loc)
	assert.Equal(t, time.Date(2024, 6, 1, 13, 42, 0, 0, time.UTC), got.UTC())
}
