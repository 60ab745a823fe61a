package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/store"
	"github.com/AdamBeresnev/tourney-draw/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DrawService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	settings Settings
	newRand  func() *rand.Rand
}

func NewDrawService(db *sqlx.DB, store *store.TournamentStore, settings Settings) *DrawService {
	return &DrawService{
		db:       db,
		store:    store,
		settings: settings,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
}

// WithRand replaces the source used to seed single elimination draws.
func (s *DrawService) WithRand(newRand func() *rand.Rand) *DrawService {
	s.newRand = newRand
	return s
}

type DrawOptions struct {
	// Format overrides the tournament's declared format when set
	Format               string
	PoolCount            *int
	MatchDurationMinutes *int
}

// GenerateDraw creates every opening match of a tournament. The checks and the
// inserts share one transaction, and the draw marker's primary key rejects a
// concurrent second draw.
func (s *DrawService) GenerateDraw(ctx context.Context, tournamentID uuid.UUID, opts DrawOptions) ([]bracket.Match, error) {
	duration := s.settings.matchMinutes()
	if opts.MatchDurationMinutes != nil {
		if *opts.MatchDurationMinutes <= 0 {
			return nil, ErrInvalidDuration
		}
		duration = *opts.MatchDurationMinutes
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournament(ctx, tx, tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	existing, err := s.store.CountMatches(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	if existing > 0 {
		return nil, ErrDrawAlreadyExists
	}

	teams, err := s.store.GetTeams(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	if len(teams) < 2 {
		return nil, ErrInsufficientTeams
	}

	format := tournament.Format
	if opts.Format != "" {
		format = bracket.ParseFormat(opts.Format)
	}

	poolCount := utils.Coalesce(s.settings.PoolCount, opts.PoolCount, tournament.PoolCount)

	teamIDs := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		teamIDs[i] = t.ID
	}

	pairings := bracket.GeneratePairings(teamIDs, format, bracket.PairingOptions{
		PoolCount: poolCount,
		Rand:      s.newRand(),
	})
	window := bracket.SlotWindow{Start: tournament.StartDate, End: tournament.EndDate}
	scheduled := bracket.AllocateSlots(pairings, window, duration, s.settings.Slots)

	now := time.Now().UTC()
	draw := &bracket.Draw{TournamentID: tournamentID, Format: format, CreatedAt: now}
	if err := s.store.CreateDraw(ctx, tx, draw); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDrawAlreadyExists
		}
		return nil, fmt.Errorf("failed to create draw: %w", err)
	}

	matches := make([]bracket.Match, len(scheduled))
	for i, sp := range scheduled {
		matches[i] = newMatch(tournamentID, sp, now)
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("draw generated",
		"tournament_id", tournamentID,
		"format", format,
		"teams", len(teams),
		"matches", len(matches))
	return matches, nil
}

func newMatch(tournamentID uuid.UUID, sp bracket.ScheduledPairing, now time.Time) bracket.Match {
	return bracket.Match{
		ID:              uuid.New(),
		TournamentID:    tournamentID,
		TeamAID:         sp.TeamA,
		TeamBID:         sp.TeamB,
		RoundNumber:     sp.Round,
		RoundName:       sp.RoundName,
		PoolNumber:      sp.Pool,
		BracketPosition: sp.BracketPosition,
		MatchNumber:     sp.MatchNumber,
		StartTime:       sp.StartTime.UTC(),
		EndTime:         sp.EndTime.UTC(),
		Field:           sp.Field,
		Status:          bracket.MatchScheduled,
		CreatedAt:       now,
	}
}

// ClearDraw deletes every match of a tournament so a new draw can be generated.
func (s *DrawService) ClearDraw(ctx context.Context, tournamentID uuid.UUID) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := s.store.GetTournament(ctx, tx, tournamentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrTournamentNotFound
		}
		return 0, fmt.Errorf("failed to get tournament: %w", err)
	}

	deleted, err := s.store.DeleteDraw(ctx, tx, tournamentID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	slog.Info("draw cleared", "tournament_id", tournamentID, "deleted", deleted)
	return deleted, nil
}

// ListMatches returns a tournament's matches ordered by round, bracket position and start time.
func (s *DrawService) ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	if _, err := s.store.GetTournament(ctx, s.db, tournamentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return s.store.GetMatches(ctx, s.db, tournamentID)
}
