package service

import "errors"

var (
	// Preconditions, reported back to the caller as-is
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrInsufficientTeams  = errors.New("at least two teams are required")
	ErrDrawAlreadyExists  = errors.New("a draw already exists for this tournament")
	ErrInvalidDuration    = errors.New("match duration must be positive")
	ErrInvalidTournament  = errors.New("invalid tournament")
	ErrTeamNameRequired   = errors.New("team name is required")
	ErrTeamNameTooLong    = errors.New("team name is too long")
	ErrTeamsLocked        = errors.New("teams cannot change once a draw exists")

	// Results
	ErrMatchNotFound           = errors.New("match not found")
	ErrInvalidScore            = errors.New("scores must be non-negative")
	ErrInvalidStatus           = errors.New("invalid match status")
	ErrInvalidStatusTransition = errors.New("invalid match status transition")
	ErrWinnerNotInMatch        = errors.New("winner is not part of this match")
	ErrWinnerConflictsScore    = errors.New("winner contradicts the recorded score")
	ErrResultLocked            = errors.New("winner cannot change once the next round is drawn from it")

	// Progression
	ErrRoundNotFound     = errors.New("round not found")
	ErrRoundIncomplete   = errors.New("round has unfinished matches")
	ErrNotElimination    = errors.New("rounds only advance in single elimination draws")
	ErrProgressionFailed = errors.New("result recorded but bracket progression failed")
)
