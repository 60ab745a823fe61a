package bracket

import (
	"time"

	"github.com/google/uuid"
)

type Format string

const (
	RoundRobin        Format = "round-robin"
	PoolPlay          Format = "pool-play"
	SingleElimination Format = "single-elimination"
)

// ParseFormat is lenient: anything it does not recognise is played as a round robin.
func ParseFormat(s string) Format {
	switch Format(s) {
	case PoolPlay:
		return PoolPlay
	case SingleElimination:
		return SingleElimination
	default:
		return RoundRobin
	}
}

type Tournament struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Format    Format    `db:"format" json:"format"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	PoolCount *int      `db:"pool_count" json:"pool_count,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Team struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
	Seed         int       `db:"seed" json:"seed"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Draw marks that a tournament's matches have been generated, and with which format.
type Draw struct {
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Format       Format    `db:"format" json:"format"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
