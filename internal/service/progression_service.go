package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
)

// ProgressionService builds the next single elimination round once the
// previous one is fully decided.
type ProgressionService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	settings Settings
	inflight singleflight.Group
	now      func() time.Time
}

func NewProgressionService(db *sqlx.DB, store *store.TournamentStore, settings Settings) *ProgressionService {
	return &ProgressionService{db: db, store: store, settings: settings, now: time.Now}
}

// WithClock replaces the clock that dates provisional rounds.
func (s *ProgressionService) WithClock(now func() time.Time) *ProgressionService {
	s.now = now
	return s
}

// HandleMatchCompleted makes ProgressionService a CompletionHandler.
func (s *ProgressionService) HandleMatchCompleted(ctx context.Context, event bracket.MatchCompletedEvent) error {
	_, err := s.Progress(ctx, event)
	return err
}

// Progress advances the event's round if the draw is single elimination and
// the round is now complete. It returns the next round, or nil when nothing
// was due.
func (s *ProgressionService) Progress(ctx context.Context, event bracket.MatchCompletedEvent) ([]bracket.Match, error) {
	draw, err := s.store.GetDraw(ctx, s.db, event.TournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw.Format != bracket.SingleElimination {
		return nil, nil
	}

	round, err := s.store.GetRoundMatches(ctx, s.db, event.TournamentID, event.Round)
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", event.Round, err)
	}
	if !bracket.RoundComplete(round) {
		return nil, nil
	}

	return s.AdvanceRound(ctx, event.TournamentID, event.Round)
}

// AdvanceRound pairs the winners of a completed round into the next one.
// Calling it again for the same round returns the round already created.
// Fewer than two winners leaves the bracket where it is and returns no matches.
func (s *ProgressionService) AdvanceRound(ctx context.Context, tournamentID uuid.UUID, round int) ([]bracket.Match, error) {
	key := fmt.Sprintf("%s/%d", tournamentID, round)
	v, err, _ := s.inflight.Do(key, func() (any, error) {
		return s.advanceRound(ctx, tournamentID, round)
	})
	if err != nil {
		return nil, err
	}
	return v.([]bracket.Match), nil
}

type advancement struct {
	winner uuid.UUID
	source bracket.Match
}

func (s *ProgressionService) advanceRound(ctx context.Context, tournamentID uuid.UUID, round int) ([]bracket.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	draw, err := s.store.GetDraw(ctx, tx, tournamentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw.Format != bracket.SingleElimination {
		return nil, ErrNotElimination
	}

	completed, err := s.store.GetRoundMatches(ctx, tx, tournamentID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", round, err)
	}
	if len(completed) == 0 {
		return nil, ErrRoundNotFound
	}
	if !bracket.RoundComplete(completed) {
		return nil, ErrRoundIncomplete
	}

	nextRound := round + 1
	existing, err := s.store.GetRoundMatches(ctx, tx, tournamentID, nextRound)
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", nextRound, err)
	}
	if len(existing) > 0 {
		return existing, nil
	}

	var advancing []advancement
	for _, m := range completed {
		if m.WinnerID != nil {
			advancing = append(advancing, advancement{winner: *m.WinnerID, source: m})
		}
	}
	if len(advancing) < 2 {
		if len(advancing) == 1 && completed[0].RoundName == bracket.FinalsRoundName {
			slog.Info("final decided",
				"tournament_id", tournamentID,
				"round", round,
				"winner_id", advancing[0].winner)
			return []bracket.Match{}, nil
		}
		slog.Warn("bracket stalled",
			"tournament_id", tournamentID,
			"round", round,
			"winners", len(advancing))
		return []bracket.Match{}, nil
	}
	if len(advancing)%2 != 0 {
		slog.Warn("odd number of winners, last winner not paired",
			"tournament_id", tournamentID,
			"round", round,
			"team_id", advancing[len(advancing)-1].winner)
	}

	if err := s.store.CreateRound(ctx, tx, tournamentID, nextRound); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			tx.Rollback()
			return s.store.GetRoundMatches(ctx, s.db, tournamentID, nextRound)
		}
		return nil, fmt.Errorf("failed to claim round %d: %w", nextRound, err)
	}

	lastNumber, err := s.store.MaxMatchNumber(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match number: %w", err)
	}

	name := bracket.EliminationRoundName(nextRound, len(advancing))
	pairings := make([]bracket.Pairing, 0, len(advancing)/2)
	parents := make([][2]uuid.UUID, 0, len(advancing)/2)
	for i := 0; i+1 < len(advancing); i += 2 {
		position := i/2 + 1
		pairings = append(pairings, bracket.Pairing{
			TeamA:           advancing[i].winner,
			TeamB:           advancing[i+1].winner,
			Round:           nextRound,
			RoundName:       name,
			BracketPosition: &position,
			MatchNumber:     lastNumber + position,
		})
		parents = append(parents, [2]uuid.UUID{advancing[i].source.ID, advancing[i+1].source.ID})
	}

	now := s.now().UTC()
	scheduled := bracket.AllocateSlots(pairings, provisionalWindow(completed, now), s.settings.matchMinutes(), s.settings.Slots)

	matches := make([]bracket.Match, len(scheduled))
	for i, sp := range scheduled {
		m := newMatch(tournamentID, sp, now)
		m.ParentMatchAID = &parents[i][0]
		m.ParentMatchBID = &parents[i][1]
		matches[i] = m
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		return nil, fmt.Errorf("failed to create round %d: %w", nextRound, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("round advanced",
		"tournament_id", tournamentID,
		"round", nextRound,
		"round_name", name,
		"matches", len(matches))
	return matches, nil
}

// The next round is pencilled in for the calendar day after the previous
// round's last match, or after today when that round ran late.
func provisionalWindow(previous []bracket.Match, now time.Time) bracket.SlotWindow {
	last := now
	for _, m := range previous {
		if m.EndTime.After(last) {
			last = m.EndTime
		}
	}
	last = last.UTC()
	y, mo, d := last.Date()
	day := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return bracket.SlotWindow{Start: day, End: day.AddDate(0, 0, 1)}
}
