package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchScheduled, MatchOngoing, MatchCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a match may move from s to next.
// Completed matches may be re-recorded as completed to correct a score.
func (s MatchStatus) CanTransition(next MatchStatus) bool {
	switch s {
	case MatchScheduled:
		return next.Valid()
	case MatchOngoing:
		return next == MatchOngoing || next == MatchCompleted
	case MatchCompleted:
		return next == MatchCompleted
	}
	return false
}

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	// teamA/teamB order carries no seeding meaning
	TeamAID uuid.UUID `db:"team_a_id" json:"team_a_id"`
	TeamBID uuid.UUID `db:"team_b_id" json:"team_b_id"`

	RoundNumber     int    `db:"round_number" json:"round"`
	RoundName       string `db:"round_name" json:"round_name"`
	PoolNumber      *int   `db:"pool_number" json:"pool,omitempty"`
	BracketPosition *int   `db:"bracket_position" json:"bracket_position,omitempty"`
	MatchNumber     int    `db:"match_number" json:"match_number"`

	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Field     string    `db:"field" json:"field"`

	Status   MatchStatus `db:"status" json:"status"`
	ScoreA   int         `db:"score_a" json:"score_a"`
	ScoreB   int         `db:"score_b" json:"score_b"`
	WinnerID *uuid.UUID  `db:"winner_id" json:"winner_id,omitempty"`

	ParentMatchAID *uuid.UUID `db:"parent_match_a_id" json:"parent_match_a_id,omitempty"`
	ParentMatchBID *uuid.UUID `db:"parent_match_b_id" json:"parent_match_b_id,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (m *Match) HasTeam(id uuid.UUID) bool {
	return m.TeamAID == id || m.TeamBID == id
}

// ScoreWinner returns the team with the higher score, or nil on a tie.
func (m *Match) ScoreWinner() *uuid.UUID {
	switch {
	case m.ScoreA > m.ScoreB:
		id := m.TeamAID
		return &id
	case m.ScoreB > m.ScoreA:
		id := m.TeamBID
		return &id
	}
	return nil
}

// MatchCompletedEvent is published once a match has transitioned into MatchCompleted.
type MatchCompletedEvent struct {
	TournamentID uuid.UUID
	MatchID      uuid.UUID
	Round        int
}

// RoundComplete reports whether every match passed in is completed.
// An empty round is never complete.
func RoundComplete(matches []Match) bool {
	if len(matches) == 0 {
		return false
	}
	for _, m := range matches {
		if m.Status != MatchCompleted {
			return false
		}
	}
	return true
}
