package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// SetupTestDB creates an in-memory SQLite database and applies migrations.
// The pool is pinned to one connection: every connection to :memory: is a new database.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on&_txlock=immediate")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	_, err = database.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

// WindowStart is the first day of every tournament created by CreateTournament.
var WindowStart = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

// CreateTournament inserts a tournament spanning days days from WindowStart
// and registers teamCount teams named "Team 1".."Team n" in seed order.
func CreateTournament(t *testing.T, database *sqlx.DB, format bracket.Format, days, teamCount int) (uuid.UUID, []bracket.Team) {
	t.Helper()
	ctx := context.Background()

	tournament := bracket.Tournament{
		ID:        uuid.New(),
		Name:      "Test Tournament",
		Format:    format,
		StartDate: WindowStart,
		EndDate:   WindowStart.AddDate(0, 0, days),
		CreatedAt: time.Now().UTC(),
	}
	_, err := database.NamedExecContext(ctx, `INSERT INTO tournaments (id, name, format, start_date, end_date, pool_count, created_at)
		VALUES (:id, :name, :format, :start_date, :end_date, :pool_count, :created_at)`, tournament)
	require.NoError(t, err)

	teams := make([]bracket.Team, teamCount)
	for i := range teams {
		teams[i] = bracket.Team{
			ID:           uuid.New(),
			TournamentID: tournament.ID,
			Name:         fmt.Sprintf("Team %d", i+1),
			Seed:         i + 1,
			CreatedAt:    time.Now().UTC(),
		}
	}
	if teamCount > 0 {
		_, err = database.NamedExecContext(ctx, `INSERT INTO teams (id, tournament_id, name, seed, created_at)
			VALUES (:id, :tournament_id, :name, :seed, :created_at)`, teams)
		require.NoError(t, err)
	}

	return tournament.ID, teams
}
