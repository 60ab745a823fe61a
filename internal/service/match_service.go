package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// CompletionHandler is notified after a match has been recorded as completed.
type CompletionHandler interface {
	HandleMatchCompleted(ctx context.Context, event bracket.MatchCompletedEvent) error
}

type MatchService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	handlers []CompletionHandler
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, handlers ...CompletionHandler) *MatchService {
	return &MatchService{db: db, store: store, handlers: handlers}
}

type ResultInput struct {
	ScoreA int
	ScoreB int
	Status bracket.MatchStatus
	// WinnerID overrides the score comparison, e.g. to settle a tie. Only used when completing.
	WinnerID *uuid.UUID
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	match, err := s.store.GetMatch(ctx, s.db, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

// RecordResult stores a score and status. When the match moves into
// completed, every CompletionHandler runs after the result is committed; their
// failures are returned wrapped in ErrProgressionFailed alongside the saved match.
// A completed match can be corrected, but its winner is fixed once a later
// round holds a match built from it.
func (s *MatchService) RecordResult(ctx context.Context, matchID uuid.UUID, input ResultInput) (*bracket.Match, error) {
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, ErrInvalidScore
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatch(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	if !match.Status.CanTransition(input.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, match.Status, input.Status)
	}
	wasCompleted := match.Status == bracket.MatchCompleted
	previousWinner := match.WinnerID

	match.ScoreA = input.ScoreA
	match.ScoreB = input.ScoreB
	match.Status = input.Status
	match.WinnerID = nil

	if match.Status == bracket.MatchCompleted {
		byScore := match.ScoreWinner()
		if input.WinnerID != nil {
			if !match.HasTeam(*input.WinnerID) {
				return nil, ErrWinnerNotInMatch
			}
			if byScore != nil && *byScore != *input.WinnerID {
				return nil, ErrWinnerConflictsScore
			}
			winner := *input.WinnerID
			match.WinnerID = &winner
		} else {
			match.WinnerID = byScore
		}
	}

	if wasCompleted && !sameWinner(previousWinner, match.WinnerID) {
		locked, err := s.store.HasChildMatch(ctx, tx, match.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check next round: %w", err)
		}
		if locked {
			return nil, ErrResultLocked
		}
	}

	if err := s.store.UpdateMatchResult(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if !wasCompleted && match.Status == bracket.MatchCompleted {
		event := bracket.MatchCompletedEvent{
			TournamentID: match.TournamentID,
			MatchID:      match.ID,
			Round:        match.RoundNumber,
		}
		if err := s.publish(ctx, event); err != nil {
			return match, err
		}
	}

	return match, nil
}

func sameWinner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *MatchService) publish(ctx context.Context, event bracket.MatchCompletedEvent) error {
	var errs []error
	for _, h := range s.handlers {
		if err := h.HandleMatchCompleted(ctx, event); err != nil {
			slog.Error("match completion handler failed",
				"tournament_id", event.TournamentID,
				"match_id", event.MatchID,
				"round", event.Round,
				"error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrProgressionFailed, errors.Join(errs...))
	}
	return nil
}
