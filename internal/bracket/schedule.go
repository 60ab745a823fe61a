package bracket

import (
	"math"
	"time"
)

const (
	DefaultDayStartHour = 9
	DefaultDailySlots   = 8
	DefaultSlotMinutes  = 60
)

var DefaultFields = []string{"Field 1", "Field 2", "Field 3", "Field 4"}

type SlotWindow struct {
	Start time.Time
	End   time.Time
}

// Days is the number of calendar days matches are spread across, never less than one.
func (w SlotWindow) Days() int {
	days := int(math.Ceil(w.End.Sub(w.Start).Hours() / 24))
	return max(1, days)
}

type SlotOptions struct {
	// DayStartHour is the hour of the first daily slot. Nil means DefaultDayStartHour.
	DayStartHour *int
	DailySlots   int
	SlotMinutes  int
	Fields       []string
}

func (o SlotOptions) startHour() int {
	if o.DayStartHour == nil || *o.DayStartHour < 0 || *o.DayStartHour > 23 {
		return DefaultDayStartHour
	}
	return *o.DayStartHour
}

func (o SlotOptions) withDefaults() SlotOptions {
	if o.DailySlots <= 0 {
		o.DailySlots = DefaultDailySlots
	}
	if o.SlotMinutes <= 0 {
		o.SlotMinutes = DefaultSlotMinutes
	}
	if len(o.Fields) == 0 {
		o.Fields = DefaultFields
	}
	return o
}

type ScheduledPairing struct {
	Pairing
	StartTime time.Time
	EndTime   time.Time
	Field     string
}

// AllocateSlots spreads pairings evenly over the window's days, in the order
// they were generated. Each day's slots start at DayStartHour and wrap after
// DailySlots matches. Every wrap moves a slot onto the next field, so a field
// is booked once per start time for as many passes as there are fields.
// Start times are kept inside the window.
func AllocateSlots(pairings []Pairing, window SlotWindow, durationMinutes int, opts SlotOptions) []ScheduledPairing {
	if len(pairings) == 0 {
		return nil
	}
	opts = opts.withDefaults()
	if window.End.Before(window.Start) {
		window.End = window.Start
	}

	perDay := int(math.Ceil(float64(len(pairings)) / float64(window.Days())))
	duration := time.Duration(durationMinutes) * time.Minute
	slotLength := time.Duration(opts.SlotMinutes) * time.Minute

	y, mo, d := window.Start.Date()
	firstDay := time.Date(y, mo, d, opts.startHour(), 0, 0, 0, window.Start.Location())

	scheduled := make([]ScheduledPairing, 0, len(pairings))
	day, onDay := 0, 0
	for _, p := range pairings {
		if onDay == perDay {
			day++
			onDay = 0
		}

		slot, pass := onDay%opts.DailySlots, onDay/opts.DailySlots
		start := firstDay.AddDate(0, 0, day).Add(time.Duration(slot) * slotLength)
		start = clampTime(start, window.Start, window.End)

		scheduled = append(scheduled, ScheduledPairing{
			Pairing:   p,
			StartTime: start,
			EndTime:   start.Add(duration),
			Field:     opts.Fields[(slot+pass)%len(opts.Fields)],
		})
		onDay++
	}

	return scheduled
}

func clampTime(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
