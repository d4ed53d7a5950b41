package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("ISO range", func(t *testing.T) {
		r, err := Parse("2026-09-01 to 2026-09-07")
		require.NoError(t, err)
		assert.Equal(t, 7, r.Days())
		assert.Equal(t, 6, r.Nights())
	})

	t.Run("long month names with en dash", func(t *testing.T) {
		r, err := Parse("1 September 2026 – 7 September 2026")
		require.NoError(t, err)
		assert.Equal(t, 7, r.Days())
	})

	t.Run("US style with hyphen", func(t *testing.T) {
		r, err := Parse("Sep 1, 2026 - Sep 7, 2026")
		require.NoError(t, err)
		assert.Equal(t, time.September, r.Start.Month())
		assert.Equal(t, 1, r.Start.Day())
	})

	t.Run("single date is a one-day trip", func(t *testing.T) {
		r, err := Parse("2026-09-01")
		require.NoError(t, err)
		assert.Equal(t, 1, r.Days())
		assert.Equal(t, 0, r.Nights())
	})

	t.Run("end before start fails", func(t *testing.T) {
		_, err := Parse("2026-09-07 to 2026-09-01")
		require.Error(t, err)
	})

	t.Run("empty input fails", func(t *testing.T) {
		_, err := Parse("  ")
		require.Error(t, err)
	})

	t.Run("garbage fails", func(t *testing.T) {
		_, err := Parse("next week sometime")
		require.Error(t, err)
	})
}

func TestRange_InPast(t *testing.T) {
	now := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)

	past, err := Parse("2026-09-01 to 2026-09-07")
	require.NoError(t, err)
	assert.True(t, past.InPast(now))

	spanning, err := Parse("2026-09-05 to 2026-09-12")
	require.NoError(t, err)
	assert.False(t, spanning.InPast(now))

	future, err := Parse("2026-10-01 to 2026-10-05")
	require.NoError(t, err)
	assert.False(t, future.InPast(now))
}
