package bracket

import (
	"sort"

	"github.com/google/uuid"
)

type Round struct {
	Number   int     `json:"round"`
	Name     string  `json:"name"`
	Complete bool    `json:"complete"`
	Matches  []Match `json:"matches"`
}

// GroupRounds buckets matches by round number, rounds ascending and matches
// in bracket order within each round.
func GroupRounds(matches []Match) []Round {
	byNumber := make(map[int][]Match)
	var numbers []int
	for _, m := range matches {
		if _, exists := byNumber[m.RoundNumber]; !exists {
			numbers = append(numbers, m.RoundNumber)
		}
		byNumber[m.RoundNumber] = append(byNumber[m.RoundNumber], m)
	}
	sort.Ints(numbers)

	rounds := make([]Round, 0, len(numbers))
	for _, n := range numbers {
		ms := byNumber[n]
		sort.SliceStable(ms, func(i, j int) bool {
			pi, pj := position(ms[i]), position(ms[j])
			if pi != pj {
				return pi < pj
			}
			return ms[i].MatchNumber < ms[j].MatchNumber
		})
		rounds = append(rounds, Round{
			Number:   n,
			Name:     ms[0].RoundName,
			Complete: RoundComplete(ms),
			Matches:  ms,
		})
	}
	return rounds
}

func position(m Match) int {
	if m.BracketPosition == nil {
		return 0
	}
	return *m.BracketPosition
}

// TeamNames maps team IDs to names for rendering matches.
func TeamNames(teams []Team) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	return names
}
