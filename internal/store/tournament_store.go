package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// ErrDuplicate wraps primary key and unique constraint violations.
var ErrDuplicate = errors.New("duplicate record")

// Every method takes the sqlx.ExtContext it should run on, so callers can pass
// either the database or an open transaction.
type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) DB() *sqlx.DB {
	return s.db
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func wrapDuplicate(err error) error {
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func (s *TournamentStore) CreateTournament(ctx context.Context, q sqlx.ExtContext, tournament *bracket.Tournament) error {
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO tournaments (id, name, format, start_date, end_date, pool_count, created_at)
        VALUES (:id, :name, :format, :start_date, :end_date, :pool_count, :created_at)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) CreateTeams(ctx context.Context, q sqlx.ExtContext, teams []bracket.Team) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO teams (id, tournament_id, name, seed, created_at)
            VALUES (:id, :tournament_id, :name, :seed, :created_at)`, teams)
	return wrapDuplicate(err)
}

// GetTeams returns the registered teams in seed order.
func (s *TournamentStore) GetTeams(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) ([]bracket.Team, error) {
	teams := []bracket.Team{}
	err := sqlx.SelectContext(ctx, q, &teams, "SELECT * FROM teams WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return teams, err
}

func (s *TournamentStore) MaxSeed(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) (int, error) {
	var seed int
	err := sqlx.GetContext(ctx, q, &seed, "SELECT COALESCE(MAX(seed), 0) FROM teams WHERE tournament_id = ?", tournamentID)
	return seed, err
}

// CreateDraw claims the tournament's single draw. A second claim fails with ErrDuplicate.
func (s *TournamentStore) CreateDraw(ctx context.Context, q sqlx.ExtContext, draw *bracket.Draw) error {
	_, err := sqlx.NamedExecContext(ctx, q, `INSERT INTO draws (tournament_id, format, created_at)
		VALUES (:tournament_id, :format, :created_at)`, draw)
	return wrapDuplicate(err)
}

func (s *TournamentStore) GetDraw(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) (*bracket.Draw, error) {
	var draw bracket.Draw
	if err := sqlx.GetContext(ctx, q, &draw, "SELECT * FROM draws WHERE tournament_id = ?", tournamentID); err != nil {
		return nil, err
	}
	return &draw, nil
}

// DeleteDraw removes every match, round marker and the draw marker of a
// tournament and reports how many matches were deleted.
func (s *TournamentStore) DeleteDraw(ctx context.Context, q sqlx.ExtContext, tournamentID uuid.UUID) (int64, error) {
	res, err := q.ExecContext(ctx, "DELETE FROM matches WHERE tournament_id = ?", tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM rounds WHERE tournament_id = ?", tournamentID); err != nil {
		return 0, fmt.Errorf("failed to delete rounds: %w", err)
	}
	if _, err := q.ExecContext(ctx, "DELETE FROM draws WHERE tournament_id = ?", tournamentID); err != nil {
		return 0, fmt.Errorf("failed to delete draw: %w", err)
	}
	return deleted, nil
}
