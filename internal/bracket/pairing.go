package bracket

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	PoolPlayRoundName = "Pool Play"
	FinalsRoundName   = "Finals"
	DefaultPoolCount  = 2
)

// Pairing is a match before it has been given a time and a field.
type Pairing struct {
	TeamA           uuid.UUID
	TeamB           uuid.UUID
	Round           int
	RoundName       string
	Pool            *int
	BracketPosition *int
	MatchNumber     int
}

type PairingOptions struct {
	PoolCount int
	// Rand drives single elimination seeding. A nil Rand uses the global source.
	Rand *rand.Rand
}

// GeneratePairings produces the opening pairings of a draw. Team order matters
// for round robin and pool play. Match numbers run from 1 in output order.
func GeneratePairings(teams []uuid.UUID, format Format, opts PairingOptions) []Pairing {
	if len(teams) < 2 {
		return nil
	}

	var pairings []Pairing
	switch format {
	case PoolPlay:
		pairings = poolPlayPairings(teams, opts.PoolCount)
	case SingleElimination:
		pairings = firstEliminationRound(teams, opts.Rand)
	default:
		pairings = roundRobinPairings(teams)
	}

	for i := range pairings {
		pairings[i].MatchNumber = i + 1
	}
	return pairings
}

// Circle method: fix the first team and rotate the rest one step per round.
// A uuid.Nil bye evens out odd counts and its pairings are dropped.
func roundRobinPairings(teams []uuid.UUID) []Pairing {
	players := make([]uuid.UUID, len(teams))
	copy(players, teams)
	if len(players)%2 != 0 {
		players = append(players, uuid.Nil)
	}

	m := len(players)
	half := m / 2
	pairings := make([]Pairing, 0, m*(m-1)/2)

	for round := 1; round < m; round++ {
		name := fmt.Sprintf("Round %d", round)
		for i := 0; i < half; i++ {
			a, b := players[i], players[m-1-i]
			if a == uuid.Nil || b == uuid.Nil {
				continue
			}
			pairings = append(pairings, Pairing{TeamA: a, TeamB: b, Round: round, RoundName: name})
		}

		rotated := make([]uuid.UUID, 0, m)
		rotated = append(rotated, players[0], players[m-1])
		rotated = append(rotated, players[1:m-1]...)
		players = rotated
	}

	return pairings
}

// SplitPools cuts teams into contiguous pools of ceil(n/p) teams each.
func SplitPools(teams []uuid.UUID, poolCount int) [][]uuid.UUID {
	n := len(teams)
	if n == 0 {
		return nil
	}
	if poolCount <= 0 {
		poolCount = DefaultPoolCount
	}
	if poolCount > n {
		poolCount = n
	}

	size := int(math.Ceil(float64(n) / float64(poolCount)))
	pools := make([][]uuid.UUID, 0, poolCount)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		pools = append(pools, teams[start:end])
	}
	return pools
}

func poolPlayPairings(teams []uuid.UUID, poolCount int) []Pairing {
	var pairings []Pairing
	for p, pool := range SplitPools(teams, poolCount) {
		poolNumber := p + 1
		for i := 0; i < len(pool); i++ {
			for j := i + 1; j < len(pool); j++ {
				pairings = append(pairings, Pairing{
					TeamA:     pool[i],
					TeamB:     pool[j],
					Round:     1,
					RoundName: PoolPlayRoundName,
					Pool:      &poolNumber,
				})
			}
		}
	}
	return pairings
}

// An odd trailing team after the shuffle is left without a first round match.
func firstEliminationRound(teams []uuid.UUID, rng *rand.Rand) []Pairing {
	seeded := make([]uuid.UUID, len(teams))
	copy(seeded, teams)
	swap := func(i, j int) { seeded[i], seeded[j] = seeded[j], seeded[i] }
	if rng != nil {
		rng.Shuffle(len(seeded), swap)
	} else {
		rand.Shuffle(len(seeded), swap)
	}

	name := EliminationRoundName(1, len(seeded))
	pairings := make([]Pairing, 0, len(seeded)/2)
	for i := 0; i+1 < len(seeded); i += 2 {
		position := i/2 + 1
		pairings = append(pairings, Pairing{
			TeamA:           seeded[i],
			TeamB:           seeded[i+1],
			Round:           1,
			RoundName:       name,
			BracketPosition: &position,
		})
	}
	return pairings
}

// RoundsToFinal is how many elimination rounds, this one included, it takes
// to reduce entrants to a single winner.
func RoundsToFinal(entrants int) int {
	if entrants < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(entrants))))
}

// EliminationRoundName names a round by how far it is from the final.
func EliminationRoundName(round, entrants int) string {
	switch RoundsToFinal(entrants) {
	case 1:
		return FinalsRoundName
	case 2:
		return "Semifinals"
	case 3:
		return "Quarterfinals"
	case 4:
		return "Round of 16"
	case 5:
		return "Round of 32"
	default:
		return fmt.Sprintf("Round %d", round)
	}
}
