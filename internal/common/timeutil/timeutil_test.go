package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestZoneFallsBackToUTC(t *testing.T) {
	require.Equal(t, time.UTC, Zone("Not/AZone"))
	require.Equal(t, "Asia/Kolkata", Zone("Asia/Kolkata").String())
}

func TestParseLocalRoundTrip(t *testing.T) {
	loc := Zone("Asia/Kolkata")

	parsed, err := ParseLocal("2026-09-01 08:30 PM", loc)
	require.NoError(t, err)
	require.Equal(t, time.UTC, parsed.Location())
	// IST is UTC+5:30.
	require.Equal(t, "2026-09-01T15:00:00Z", parsed.Format(time.RFC3339))

	require.Equal(t, "2026-09-01 08:30 PM", FormatLocal(parsed, loc))
}

func TestParseLocalNormalizesInput(t *testing.T) {
	parsed, err := ParseLocal("  2026-09-01 08:30 pm ", time.UTC)
	require.NoError(t, err)
	require.Equal(t, 20, parsed.Hour())

	_, err = ParseLocal("tomorrow evening", time.UTC)
	require.Error(t, err)
	_, err = ParseLocal("2026-09-01 20:30", time.UTC)
	require.Error(t, err)
}

func TestUntil(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "Ended", Until(now, now))
	require.Equal(t, "Ended", Until(now, now.Add(-time.Minute)))
	require.Equal(t, "2h 30m", Until(now, now.Add(2*time.Hour+30*time.Minute)))
}

func TestCompactDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{49*time.Hour + 15*time.Minute, "2d 1h 15m"},
		{3 * time.Hour, "3h"},
		{90 * time.Minute, "1h 30m"},
		{45 * time.Second, "45s"},
		{0, "less than a minute"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CompactDuration(tt.d))
	}
}
