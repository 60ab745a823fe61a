package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AdamBeresnev/tourney-draw/internal/bracket"
	"github.com/AdamBeresnev/tourney-draw/internal/httputil"
	"github.com/AdamBeresnev/tourney-draw/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type application struct {
	tournaments *service.TournamentService
	draws       *service.DrawService
	matches     *service.MatchService
	progression *service.ProgressionService
}

type createTournamentRequest struct {
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	PoolCount *int      `json:"pool_count"`
}

type registerTeamsRequest struct {
	Names []string `json:"names"`
}

type generateDrawRequest struct {
	Format               string `json:"format"`
	PoolCount            *int   `json:"pool_count"`
	MatchDurationMinutes *int   `json:"match_duration_minutes"`
}

type recordResultRequest struct {
	ScoreA   int                 `json:"score_a"`
	ScoreB   int                 `json:"score_b"`
	Status   bracket.MatchStatus `json:"status"`
	WinnerID *uuid.UUID          `json:"winner_id"`
}

type recordResultResponse struct {
	Match            *bracket.Match `json:"match"`
	ProgressionError string         `json:"progression_error,omitempty"`
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		var req createTournamentRequest
		if err := httputil.ReadJSON(w, r, &req, false); err != nil {
			httputil.BadRequest(w, err.Error(), err)
			return
		}

		tournament, err := app.tournaments.CreateTournament(r.Context(), service.TournamentInput{
			Name:      req.Name,
			Format:    req.Format,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			PoolCount: req.PoolCount,
		})
		if err != nil {
			serviceError(w, "Failed to create tournament", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, tournament)
	})

	r.Route("/tournaments/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			data, err := app.tournaments.GetTournamentData(r.Context(), id)
			if err != nil {
				serviceError(w, "Failed to get tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, data)
		})

		r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			var req registerTeamsRequest
			if err := httputil.ReadJSON(w, r, &req, false); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			teams, err := app.tournaments.RegisterTeams(r.Context(), id, req.Names)
			if err != nil {
				serviceError(w, "Failed to register teams", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, teams)
		})

		r.Get("/teams", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			teams, err := app.tournaments.GetRegisteredTeams(r.Context(), id)
			if err != nil {
				serviceError(w, "Failed to get teams", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, teams)
		})

		r.Post("/draw", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			var req generateDrawRequest
			if err := httputil.ReadJSON(w, r, &req, true); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}
			matches, err := app.draws.GenerateDraw(r.Context(), id, service.DrawOptions{
				Format:               req.Format,
				PoolCount:            req.PoolCount,
				MatchDurationMinutes: req.MatchDurationMinutes,
			})
			if err != nil {
				serviceError(w, "Failed to generate draw", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, matches)
		})

		r.Delete("/draw", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			deleted, err := app.draws.ClearDraw(r.Context(), id)
			if err != nil {
				serviceError(w, "Failed to clear draw", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
		})

		r.Get("/matches", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			matches, err := app.draws.ListMatches(r.Context(), id)
			if err != nil {
				serviceError(w, "Failed to list matches", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, matches)
		})

		r.Get("/rounds", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			view, err := app.tournaments.GetBracket(r.Context(), id)
			if err != nil {
				serviceError(w, "Failed to get bracket", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, view)
		})

		// Re-runs progression by hand, e.g. after a failed trigger.
		r.Post("/rounds/{round}/advance", func(w http.ResponseWriter, r *http.Request) {
			id, ok := uuidParam(w, r, "id")
			if !ok {
				return
			}
			round, err := strconv.Atoi(chi.URLParam(r, "round"))
			if err != nil || round < 1 {
				httputil.BadRequest(w, "Invalid round", err)
				return
			}
			matches, err := app.progression.AdvanceRound(r.Context(), id, round)
			if err != nil {
				serviceError(w, "Failed to advance round", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, matches)
		})
	})

	r.Get("/matches/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}
		match, err := app.matches.GetMatch(r.Context(), id)
		if err != nil {
			serviceError(w, "Failed to get match", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, match)
	})

	r.Put("/matches/{id}/result", func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}
		var req recordResultRequest
		if err := httputil.ReadJSON(w, r, &req, false); err != nil {
			httputil.BadRequest(w, err.Error(), err)
			return
		}

		match, err := app.matches.RecordResult(r.Context(), id, service.ResultInput{
			ScoreA:   req.ScoreA,
			ScoreB:   req.ScoreB,
			Status:   req.Status,
			WinnerID: req.WinnerID,
		})
		if err != nil && !errors.Is(err, service.ErrProgressionFailed) {
			serviceError(w, "Failed to record result", err)
			return
		}

		// the result is saved even when progression failed
		resp := recordResultResponse{Match: match}
		if err != nil {
			resp.ProgressionError = err.Error()
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	})

	return r
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		httputil.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func serviceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrTournamentNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrRoundNotFound):
		httputil.NotFound(w, err.Error(), err)

	case errors.Is(err, service.ErrDrawAlreadyExists),
		errors.Is(err, service.ErrTeamsLocked),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrRoundIncomplete),
		errors.Is(err, service.ErrResultLocked):
		httputil.Conflict(w, err.Error(), err)

	case errors.Is(err, service.ErrInsufficientTeams),
		errors.Is(err, service.ErrNotElimination),
		errors.Is(err, service.ErrWinnerNotInMatch),
		errors.Is(err, service.ErrWinnerConflictsScore):
		httputil.UnprocessableEntity(w, err.Error(), err)

	case errors.Is(err, service.ErrInvalidTournament),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrTeamNameRequired),
		errors.Is(err, service.ErrTeamNameTooLong),
		errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrInvalidStatus):
		httputil.BadRequest(w, err.Error(), err)

	default:
		httputil.InternalServerError(w, msg, err)
	}
}
