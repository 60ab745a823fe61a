package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

const maxTeamNameLength = 50

// TournamentService owns the rosters the draw is generated from.
type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type TournamentInput struct {
	Name      string
	Format    string
	StartDate time.Time
	EndDate   time.Time
	PoolCount *int
}

type TournamentData struct {
	Tournament *bracket.Tournament `json:"tournament"`
	Teams      []bracket.Team      `json:"teams"`
	Matches    []bracket.Match     `json:"matches"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*bracket.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTournament)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrInvalidTournament)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidTournament)
	}
	if input.PoolCount != nil && *input.PoolCount < 1 {
		return nil, fmt.Errorf("%w: pool count must be at least 1", ErrInvalidTournament)
	}

	tournament := &bracket.Tournament{
		ID:        uuid.New(),
		Name:      name,
		Format:    bracket.ParseFormat(input.Format),
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		PoolCount: input.PoolCount,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateTournament(ctx, s.db, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return tournament, nil
}

// RegisterTeams appends teams after the current highest seed. The roster is
// frozen once a draw exists.
func (s *TournamentService) RegisterTeams(ctx context.Context, tournamentID uuid.UUID, names []string) ([]bracket.Team, error) {
	var cleaned []string
	for _, n := range names {
		name := strings.TrimSpace(n)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		if len(name) > maxTeamNameLength {
			return nil, fmt.Errorf("%w: '%s' exceeds %d characters", ErrTeamNameTooLong, name, maxTeamNameLength)
		}
		cleaned = append(cleaned, name)
	}
	if len(cleaned) == 0 {
		return nil, ErrTeamNameRequired
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := s.store.GetTournament(ctx, tx, tournamentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}

	_, err = s.store.GetDraw(ctx, tx, tournamentID)
	if err == nil {
		return nil, ErrTeamsLocked
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}

	maxSeed, err := s.store.MaxSeed(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seed: %w", err)
	}

	now := time.Now().UTC()
	teams := make([]bracket.Team, len(cleaned))
	for i, name := range cleaned {
		teams[i] = bracket.Team{
			ID:           uuid.New(),
			TournamentID: tournamentID,
			Name:         name,
			Seed:         maxSeed + i + 1,
			CreatedAt:    now,
		}
	}

	if err := s.store.CreateTeams(ctx, tx, teams); err != nil {
		return nil, fmt.Errorf("failed to create teams: %w", err)
	}

	return teams, tx.Commit()
}

// GetRegisteredTeams returns the roster in seed order, the order the draw consumes it in.
func (s *TournamentService) GetRegisteredTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Team, error) {
	if _, err := s.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.store.GetTeams(ctx, s.db, tournamentID)
}

func (s *TournamentService) GetTournamentWindow(ctx context.Context, tournamentID uuid.UUID) (time.Time, time.Time, error) {
	tournament, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return tournament.StartDate, tournament.EndDate, nil
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	data := &TournamentData{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		tournament, err := s.GetTournament(gCtx, id)
		data.Tournament = tournament
		return err
	})
	g.Go(func() error {
		teams, err := s.store.GetTeams(gCtx, s.db, id)
		data.Teams = teams
		return err
	})
	g.Go(func() error {
		matches, err := s.store.GetMatches(gCtx, s.db, id)
		data.Matches = matches
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

type BracketView struct {
	Rounds []bracket.Round      `json:"rounds"`
	Teams  map[uuid.UUID]string `json:"teams"`
}

// GetBracket returns a tournament's matches grouped into rounds, with team names.
func (s *TournamentService) GetBracket(ctx context.Context, id uuid.UUID) (*BracketView, error) {
	data, err := s.GetTournamentData(ctx, id)
	if err != nil {
		return nil, err
	}
	return &BracketView{
		Rounds: bracket.GroupRounds(data.Matches),
		Teams:  bracket.TeamNames(data.Teams),
	}, nil
}
