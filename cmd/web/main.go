package main

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tourney-draw/internal/config"
	"github.com/AdamBeresnev/tourney-draw/internal/db"
	"github.com/AdamBeresnev/tourney-draw/internal/service"
	"github.com/AdamBeresnev/tourney-draw/internal/store"
	"github.com/jmoiron/sqlx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if err := db.RunMigrations(database.DB); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	router := newRouter(newApplication(database, cfg.Settings()))

	slog.Info("server starting", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatal(err)
	}
}

func newApplication(database *sqlx.DB, settings service.Settings) *application {
	tournamentStore := store.NewTournamentStore(database)
	progression := service.NewProgressionService(database, tournamentStore, settings)

	return &application{
		tournaments: service.NewTournamentService(database, tournamentStore),
		draws:       service.NewDrawService(database, tournamentStore, settings),
		matches:     service.NewMatchService(database, tournamentStore, progression),
		progression: progression,
	}
}
