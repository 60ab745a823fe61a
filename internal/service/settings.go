package service

import (
	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/utils"
)

// Settings carries the scheduling defaults shared by draw generation and progression.
type Settings struct {
	Slots        bracket.SlotOptions
	MatchMinutes int
	PoolCount    int
}

func DefaultSettings() Settings {
	return Settings{
		Slots: bracket.SlotOptions{
			DayStartHour: utils.Ptr(bracket.DefaultDayStartHour),
			DailySlots:   bracket.DefaultDailySlots,
			SlotMinutes:  bracket.DefaultSlotMinutes,
			Fields:       bracket.DefaultFields,
		},
		MatchMinutes: 60,
		PoolCount:    bracket.DefaultPoolCount,
	}
}

func (s Settings) matchMinutes() int {
	if s.MatchMinutes <= 0 {
		return 60
	}
	return s.MatchMinutes
}
