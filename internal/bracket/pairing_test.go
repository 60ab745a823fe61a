package bracket

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTeams(n int) []uuid.UUID {
	teams := make([]uuid.UUID, n)
	for i := range teams {
		teams[i] = uuid.New()
	}
	return teams
}

type pairKey [2]uuid.UUID

func keyOf(a, b uuid.UUID) pairKey {
	if a.String() > b.String() {
		a, b = b, a
	}
	return pairKey{a, b}
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in       string
		expected Format
	}{
		{"round-robin", RoundRobin},
		{"pool-play", PoolPlay},
		{"single-elimination", SingleElimination},
		{"", RoundRobin},
		{"double-elimination", RoundRobin},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseFormat(tc.in))
		})
	}
}

func TestRoundRobinCompleteness(t *testing.T) {
	for n := 2; n <= 11; n++ {
		teams := makeTeams(n)
		pairings := GeneratePairings(teams, RoundRobin, PairingOptions{})

		require.Len(t, pairings, n*(n-1)/2, "teams=%d", n)

		seen := make(map[pairKey]int)
		for _, p := range pairings {
			assert.NotEqual(t, p.TeamA, p.TeamB)
			assert.NotEqual(t, uuid.Nil, p.TeamA)
			assert.NotEqual(t, uuid.Nil, p.TeamB)
			seen[keyOf(p.TeamA, p.TeamB)]++
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				assert.Equal(t, 1, seen[keyOf(teams[i], teams[j])], "teams=%d pair %d-%d", n, i, j)
			}
		}
	}
}

func TestRoundRobinFourTeams(t *testing.T) {
	teams := makeTeams(4)
	pairings := GeneratePairings(teams, RoundRobin, PairingOptions{})
	require.Len(t, pairings, 6)

	perRound := make(map[int]int)
	for _, p := range pairings {
		perRound[p.Round]++
	}
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 2}, perRound)

	// round 1 with the first team fixed: 0v3, 1v2
	assert.Equal(t, teams[0], pairings[0].TeamA)
	assert.Equal(t, teams[3], pairings[0].TeamB)
	assert.Equal(t, teams[1], pairings[1].TeamA)
	assert.Equal(t, teams[2], pairings[1].TeamB)
	assert.Equal(t, "Round 1", pairings[0].RoundName)
	assert.Equal(t, "Round 3", pairings[5].RoundName)
}

func TestRoundRobinFiveTeamsUsesBye(t *testing.T) {
	teams := makeTeams(5)
	pairings := GeneratePairings(teams, RoundRobin, PairingOptions{})
	require.Len(t, pairings, 10)

	perRound := make(map[int][]Pairing)
	for _, p := range pairings {
		perRound[p.Round] = append(perRound[p.Round], p)
	}
	require.Len(t, perRound, 5)

	for round, ps := range perRound {
		assert.Len(t, ps, 2, "round %d", round)

		playing := make(map[uuid.UUID]bool)
		for _, p := range ps {
			assert.False(t, playing[p.TeamA], "team plays twice in round %d", round)
			assert.False(t, playing[p.TeamB], "team plays twice in round %d", round)
			playing[p.TeamA] = true
			playing[p.TeamB] = true
		}
		assert.Len(t, playing, 4, "exactly one team sits out round %d", round)
	}
}

func TestRoundRobinIsDeterministic(t *testing.T) {
	teams := makeTeams(6)
	first := GeneratePairings(teams, RoundRobin, PairingOptions{})
	second := GeneratePairings(teams, RoundRobin, PairingOptions{})
	assert.Equal(t, first, second)
}

func TestMatchNumbersAreSequential(t *testing.T) {
	for _, format := range []Format{RoundRobin, PoolPlay, SingleElimination} {
		t.Run(string(format), func(t *testing.T) {
			pairings := GeneratePairings(makeTeams(8), format, PairingOptions{PoolCount: 2})
			require.NotEmpty(t, pairings)
			for i, p := range pairings {
				assert.Equal(t, i+1, p.MatchNumber)
			}
		})
	}
}

func TestPoolPlayPartition(t *testing.T) {
	testCases := []struct {
		name      string
		teams     int
		pools     int
		poolSizes []int
	}{
		{name: "even split", teams: 8, pools: 2, poolSizes: []int{4, 4}},
		{name: "uneven split", teams: 7, pools: 2, poolSizes: []int{4, 3}},
		{name: "three pools", teams: 10, pools: 3, poolSizes: []int{4, 4, 2}},
		{name: "default pool count", teams: 6, pools: 0, poolSizes: []int{3, 3}},
		{name: "more pools than teams", teams: 3, pools: 5, poolSizes: []int{1, 1, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			teams := makeTeams(tc.teams)
			pools := SplitPools(teams, tc.pools)

			sizes := make([]int, len(pools))
			inPool := make(map[uuid.UUID]int)
			for i, pool := range pools {
				sizes[i] = len(pool)
				for _, team := range pool {
					inPool[team]++
				}
			}
			assert.Equal(t, tc.poolSizes, sizes)
			require.Len(t, inPool, tc.teams)
			for _, count := range inPool {
				assert.Equal(t, 1, count)
			}

			expected := 0
			for _, k := range tc.poolSizes {
				expected += k * (k - 1) / 2
			}

			pairings := GeneratePairings(teams, PoolPlay, PairingOptions{PoolCount: tc.pools})
			assert.Len(t, pairings, expected)

			poolOf := make(map[uuid.UUID]int)
			for i, pool := range pools {
				for _, team := range pool {
					poolOf[team] = i + 1
				}
			}
			for _, p := range pairings {
				require.NotNil(t, p.Pool)
				assert.Equal(t, 1, p.Round)
				assert.Equal(t, PoolPlayRoundName, p.RoundName)
				assert.Equal(t, *p.Pool, poolOf[p.TeamA])
				assert.Equal(t, *p.Pool, poolOf[p.TeamB])
			}
		})
	}
}

func TestSingleEliminationFirstRound(t *testing.T) {
	testCases := []struct {
		teams     int
		matches   int
		roundName string
	}{
		{teams: 2, matches: 1, roundName: "Finals"},
		{teams: 4, matches: 2, roundName: "Semifinals"},
		{teams: 8, matches: 4, roundName: "Quarterfinals"},
		{teams: 16, matches: 8, roundName: "Round of 16"},
		{teams: 32, matches: 16, roundName: "Round of 32"},
		{teams: 64, matches: 32, roundName: "Round 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.roundName, func(t *testing.T) {
			rng := rand.New(rand.NewPCG(1, 2))
			pairings := GeneratePairings(makeTeams(tc.teams), SingleElimination, PairingOptions{Rand: rng})
			require.Len(t, pairings, tc.matches)
			for i, p := range pairings {
				require.NotNil(t, p.BracketPosition)
				assert.Equal(t, i+1, *p.BracketPosition)
				assert.Equal(t, 1, p.Round)
				assert.Equal(t, tc.roundName, p.RoundName)
			}
		})
	}
}

func TestSingleEliminationSeedingUsesInjectedRand(t *testing.T) {
	teams := makeTeams(8)
	original := make([]uuid.UUID, len(teams))
	copy(original, teams)

	expected := make([]uuid.UUID, len(teams))
	copy(expected, teams)
	rand.New(rand.NewPCG(7, 11)).Shuffle(len(expected), func(i, j int) {
		expected[i], expected[j] = expected[j], expected[i]
	})

	pairings := GeneratePairings(teams, SingleElimination, PairingOptions{Rand: rand.New(rand.NewPCG(7, 11))})
	require.Len(t, pairings, 4)
	for i, p := range pairings {
		assert.Equal(t, expected[2*i], p.TeamA)
		assert.Equal(t, expected[2*i+1], p.TeamB)
	}

	again := GeneratePairings(teams, SingleElimination, PairingOptions{Rand: rand.New(rand.NewPCG(7, 11))})
	assert.Equal(t, pairings, again)

	assert.Equal(t, original, teams, "caller's order must not change")
}

// Odd team counts leave the last shuffled team without a first round match.
// This mirrors the behaviour the draw has always had; it is not a bye.
func TestSingleEliminationOddCountDropsTrailingTeam(t *testing.T) {
	teams := makeTeams(7)
	expected := make([]uuid.UUID, len(teams))
	copy(expected, teams)
	rand.New(rand.NewPCG(3, 3)).Shuffle(len(expected), func(i, j int) {
		expected[i], expected[j] = expected[j], expected[i]
	})

	pairings := GeneratePairings(teams, SingleElimination, PairingOptions{Rand: rand.New(rand.NewPCG(3, 3))})
	require.Len(t, pairings, 3)

	for _, p := range pairings {
		assert.NotEqual(t, expected[6], p.TeamA)
		assert.NotEqual(t, expected[6], p.TeamB)
	}
}

func TestGeneratePairingsNeedsTwoTeams(t *testing.T) {
	assert.Empty(t, GeneratePairings(nil, RoundRobin, PairingOptions{}))
	assert.Empty(t, GeneratePairings(makeTeams(1), SingleElimination, PairingOptions{}))
}

func TestEliminationRoundName(t *testing.T) {
	assert.Equal(t, "Finals", EliminationRoundName(3, 2))
	assert.Equal(t, "Semifinals", EliminationRoundName(2, 4))
	assert.Equal(t, "Semifinals", EliminationRoundName(2, 3))
	assert.Equal(t, "Quarterfinals", EliminationRoundName(1, 5))
	assert.Equal(t, "Round 4", EliminationRoundName(4, 1))
	assert.Equal(t, 0, RoundsToFinal(1))
	assert.Equal(t, 3, RoundsToFinal(8))
}
