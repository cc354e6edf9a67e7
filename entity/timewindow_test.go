package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeWindow(t *testing.T) {
	_, err := NewTimeWindow("17:00", "08:00", nil)
	assert.Error(t, err, "earliest after latest must be rejected")

	tw, err := NewTimeWindow("08:00", "17:00", nil)
	require.NoError(t, err)
	assert.Nil(t, tw.Day)
}

func TestTimeWindow_Contains(t *testing.T) {
	tw, err := NewTimeWindow("08:00", "17:00", nil)
	require.NoError(t, err)

	inside, err := ParseClock("12:00")
	require.NoError(t, err)
	before, err := ParseClock("07:00")
	require.NoError(t, err)
	after, err := ParseClock("18:00")
	require.NoError(t, err)

	assert.True(t, tw.Contains(inside))
	assert.False(t, tw.Contains(before))
	assert.False(t, tw.Contains(after))
}

func TestTimeWindow_DurationMinutes(t *testing.T) {
	tw, err := NewTimeWindow("08:00", "09:30", nil)
	require.NoError(t, err)
	assert.Equal(t, 90.0, tw.DurationMinutes())
}

func TestTimeWindow_String(t *testing.T) {
	mon := Mon
	tw, err := NewTimeWindow("08:00", "17:00", &mon)
	require.NoError(t, err)
	assert.Equal(t, "Mon 08:00-17:00", tw.String())
}

func TestForbiddenInterval_Conflicts(t *testing.T) {
	f, err := NewForbiddenInterval("12:00", "13:00", "")
	require.NoError(t, err)
	assert.Equal(t, "Blackout period", f.Reason, "empty reason defaults")

	inside, err := ParseClock("12:30")
	require.NoError(t, err)
	outside, err := ParseClock("09:00")
	require.NoError(t, err)

	assert.True(t, f.Conflicts(inside))
	assert.False(t, f.Conflicts(outside))
}
