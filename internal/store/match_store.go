package store

import (
	"context"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Keeps each multi-row insert well below SQLite's bound parameter limit.
const insertBatchSize = 100

const matchColumns = `id, tournament_id, team_a_id, team_b_id, round_number, round_name, pool_number, bracket_position,
		match_number, start_time, end_time, field, status, score_a, score_b, winner_id, parent_match_a_id, parent_match_b_id, created_at`

func (s *TournamentStore) CreateMatches(ctx context.Context, q sqlx.ExtContext, matches []bracket.Match) error {
	for start := 0; start < len(matches); start += insertBatchSize {
		end := min(start+insertBatchSize, len(matches))
		_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO matches (`+matchColumns+`)
		VALUES (:id, :tournament_id, :team_a_id, :team_b_id, :round_number, :round_name, :pool_number, :bracket_position,
		:match_number, :start_time, :end_time, :field, :status, :score_a, :score_b, :winner_id, :parent_match_a_id, :parent_match_b_id, :created_at)`,
			matches[start:end])
		if err != nil {
			return wrapDuplicate(err)
		}
	}
	return nil
}

func (s *TournamentStore) GetMatch(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	if err := sqlx.GetContext(ctx, q, &match, "SELECT "+matchColumns+" FROM matches WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) GetMatches(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) ([]bracket.Match, error) {
	matches := []bracket.Match{}
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT "+matchColumns+` FROM matches WHERE tournament_id = ?
		ORDER BY round_number ASC, bracket_position ASC, start_time ASC, match_number ASC`, tournamentID)
	return matches, err
}

// GetRoundMatches returns one round in bracket order.
func (s *TournamentStore) GetRoundMatches(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID, round int) ([]bracket.Match, error) {
	matches := []bracket.Match{}
	err := sqlx.SelectContext(ctx, q, &matches, "SELECT "+matchColumns+` FROM matches WHERE tournament_id = ? AND round_number = ?
		ORDER BY bracket_position ASC, match_number ASC`, tournamentID, round)
	return matches, err
}

func (s *TournamentStore) CountMatches(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, "SELECT COUNT(*) FROM matches WHERE tournament_id = ?", tournamentID)
	return count, err
}

func (s *TournamentStore) MaxMatchNumber(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, "SELECT COALESCE(MAX(match_number), 0) FROM matches WHERE tournament_id = ?", tournamentID)
	return n, err
}

// CreateRound claims a round for synthesis. A second claim fails with ErrDuplicate.
func (s *TournamentStore) CreateRound(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID, round int) error {
	_, err := q.ExecContext(ctx, "INSERT INTO rounds (tournament_id, round_number) VALUES (?, ?)", tournamentID, round)
	return wrapDuplicate(err)
}

func (s *TournamentStore) UpdateMatchResult(ctx context.Context, q sqlx.ExtContext, match *bracket.Match) error {
	_, err := sqlx.NamedExecContext(ctx, q, `UPDATE matches SET
		status = :status,
		score_a = :score_a,
		score_b = :score_b,
		winner_id = :winner_id
		WHERE id = :id`, match)
	return err
}

// HasChildMatch reports whether a later round was built from this match's winner.
func (s *TournamentStore) HasChildMatch(ctx context.Context, q sqlx.ExtContext, matchID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists,
		"SELECT EXISTS (SELECT 1 FROM matches WHERE parent_match_a_id = ? OR parent_match_b_id = ?)", matchID, matchID)
	return exists, err
}
