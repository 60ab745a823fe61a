package bracket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairingsOf(n int) []Pairing {
	ps := make([]Pairing, n)
	for i := range ps {
		ps[i] = Pairing{Round: 1, MatchNumber: i + 1}
	}
	return ps
}

func TestSlotWindowDays(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		end      time.Time
		expected int
	}{
		{name: "same instant", end: start, expected: 1},
		{name: "half a day", end: start.Add(12 * time.Hour), expected: 1},
		{name: "exactly two days", end: start.AddDate(0, 0, 2), expected: 2},
		{name: "two and a bit", end: start.AddDate(0, 0, 2).Add(time.Hour), expected: 3},
		{name: "end before start", end: start.Add(-48 * time.Hour), expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SlotWindow{Start: start, End: tc.end}.Days())
		})
	}
}

func TestAllocateSlotsSpreadsAcrossDays(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	window := SlotWindow{Start: start, End: start.AddDate(0, 0, 3)}

	scheduled := AllocateSlots(pairingsOf(10), window, 45, SlotOptions{})
	require.Len(t, scheduled, 10)

	// ceil(10/3) = 4 matches a day
	perDay := make(map[int]int)
	for _, s := range scheduled {
		perDay[s.StartTime.Day()]++
	}
	assert.Equal(t, map[int]int{1: 4, 2: 4, 3: 2}, perDay)

	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), scheduled[0].StartTime)
	assert.Equal(t, time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC), scheduled[3].StartTime)
	assert.Equal(t, time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC), scheduled[4].StartTime)
	assert.Equal(t, time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC), scheduled[9].StartTime)

	for i, s := range scheduled {
		assert.Equal(t, 45*time.Minute, s.EndTime.Sub(s.StartTime))
		assert.Equal(t, i+1, s.MatchNumber, "order is preserved")
		assert.NotEmpty(t, s.Field)
	}
}

func TestAllocateSlotsWrapsAfterDailySlots(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	window := SlotWindow{Start: start, End: start.AddDate(0, 0, 1)}

	scheduled := AllocateSlots(pairingsOf(10), window, 30, SlotOptions{})
	require.Len(t, scheduled, 10)

	assert.Equal(t, 16, scheduled[7].StartTime.Hour())
	assert.Equal(t, 9, scheduled[8].StartTime.Hour())
	assert.Equal(t, 10, scheduled[9].StartTime.Hour())
	for _, s := range scheduled {
		assert.Equal(t, 1, s.StartTime.Day())
	}
}

func TestAllocateSlotsContainment(t *testing.T) {
	testCases := []struct {
		name   string
		start  time.Time
		end    time.Time
		count  int
		length int
	}{
		{
			name:   "multi day window",
			start:  time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
			end:    time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC),
			count:  28,
			length: 60,
		},
		{
			name:   "window opens mid morning",
			start:  time.Date(2026, 6, 1, 11, 30, 0, 0, time.UTC),
			end:    time.Date(2026, 6, 2, 14, 0, 0, 0, time.UTC),
			count:  12,
			length: 90,
		},
		{
			name:   "window shorter than a day",
			start:  time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC),
			end:    time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
			count:  6,
			length: 40,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scheduled := AllocateSlots(pairingsOf(tc.count), SlotWindow{Start: tc.start, End: tc.end}, tc.length, SlotOptions{})
			require.Len(t, scheduled, tc.count)

			latestEnd := tc.end.Add(time.Duration(tc.length) * time.Minute)
			for _, s := range scheduled {
				assert.False(t, s.StartTime.Before(tc.start), "start %s before window", s.StartTime)
				assert.False(t, s.StartTime.After(tc.end), "start %s after window", s.StartTime)
				assert.False(t, s.EndTime.After(latestEnd), "end %s after window", s.EndTime)
			}
		})
	}
}

func TestAllocateSlotsFields(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	window := SlotWindow{Start: start, End: start.AddDate(0, 0, 1)}

	scheduled := AllocateSlots(pairingsOf(4), window, 60, SlotOptions{Fields: []string{"North", "South"}})
	require.Len(t, scheduled, 4)
	assert.Equal(t, []string{"North", "South", "North", "South"},
		[]string{scheduled[0].Field, scheduled[1].Field, scheduled[2].Field, scheduled[3].Field})
}

func TestAllocateSlotsNoPairings(t *testing.T) {
	start := time.Now()
	assert.Nil(t, AllocateSlots(nil, SlotWindow{Start: start, End: start}, 60, SlotOptions{}))
}

func TestAllocateSlotsNoDoubleBooking(t *testing.T) {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		days  int
		count int
	}{
		{name: "two passes a day", days: 2, count: 28},
		{name: "one pass per field", days: 1, count: 32},
		{name: "single pass", days: 3, count: 12},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window := SlotWindow{Start: start, End: start.AddDate(0, 0, tc.days)}
			scheduled := AllocateSlots(pairingsOf(tc.count), window, 60, SlotOptions{})
			require.Len(t, scheduled, tc.count)

			booked := make(map[string]int)
			for _, s := range scheduled {
				key := s.StartTime.Format(time.RFC3339) + "|" + s.Field
				if other, taken := booked[key]; taken {
					t.Errorf("matches %d and %d both at %s", other, s.MatchNumber, key)
				}
				booked[key] = s.MatchNumber
			}
		})
	}
}

func TestAllocateSlotsDayStartHour(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	window := SlotWindow{Start: start, End: start.AddDate(0, 0, 1)}
	hour := func(h int) *int { return &h }

	testCases := []struct {
		name     string
		startAt  *int
		expected int
	}{
		{name: "unset", startAt: nil, expected: DefaultDayStartHour},
		{name: "midnight", startAt: hour(0), expected: 0},
		{name: "evening", startAt: hour(18), expected: 18},
		{name: "out of range", startAt: hour(24), expected: DefaultDayStartHour},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scheduled := AllocateSlots(pairingsOf(1), window, 60, SlotOptions{DayStartHour: tc.startAt})
			require.Len(t, scheduled, 1)
			assert.Equal(t, tc.expected, scheduled[0].StartTime.Hour())
		})
	}
}
