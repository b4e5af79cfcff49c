// internal/httpserver/routes_game.go
//
// HTTP routes for playing the word-bridge game.
// Endpoints (all optional-auth; guests play with an anon cookie):
//   - POST /game/new      → start a session (daily=true for the seeded daily run)
//   - POST /game/submit   → submit a bridge word for the active round
//   - POST /game/skip     → skip the active round (score penalty)
//   - GET  /game/state    → snapshot of a live session
//   - GET  /leaderboard   → top finished sessions (all-time or per daily date)
//
// Engine events drive persistence: the game_over sink writes the session
// row and bumps user aggregates, best effort.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/wordbridge/go-server/internal/game"
	"github.com/wordbridge/go-server/internal/results"
	"github.com/wordbridge/go-server/internal/words"
)

// mountGame registers the /game and /leaderboard routes.
func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/submit", s.handleSubmit)
		r.Post("/skip", s.handleSkip)
		r.Get("/state", s.handleState)
	})
	r.Get("/leaderboard", s.handleLeaderboard)
}

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Daily bool  `json:"daily"` // deterministic daily-challenge run
	Seed  int64 `json:"seed"`  // optional fixed seed (testing)
}

// handleNewGame creates a live session owned by the caller.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	anon := s.ensureAnonID(w, r)

	var selector *words.Selector
	var date string
	switch {
	case req.Daily:
		date = results.DateKey(time.Now())
		if me != nil {
			played, err := s.results.AlreadyPlayed(r.Context(), me.ID, date)
			if err != nil {
				log.Warn().Err(err).Msg("daily played check")
			} else if played {
				http.Error(w, `{"error":"daily_already_played"}`, http.StatusConflict)
				return
			}
		}
		selector = words.NewSeeded(results.DailySeed(time.Now(), getEnv("DAILY_SALT", "local_dev_salt")))
	case req.Seed != 0:
		selector = words.NewSeeded(req.Seed)
	default:
		selector = words.NewSelector()
	}

	eng := game.NewEngine(selector, s.validator, game.WithSink(s.gameEventSink))

	owner := sessionOwner{anonID: anon, date: date}
	if me != nil {
		owner.userID = me.ID
	}
	s.ownersMu.Lock()
	s.owners[eng.ID()] = owner
	s.ownersMu.Unlock()

	snap, err := eng.Start()
	if err != nil {
		http.Error(w, `{"error":"start_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), eng); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// submitReq is the payload for POST /game/submit and /game/skip.
type submitReq struct {
	SessionID string `json:"sessionId"`
	Word      string `json:"word"`
}

// handleSubmit applies a candidate word to a live session.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	eng, err := s.store.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	res, err := eng.Submit(r.Context(), req.Word)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleSkip skips the active round of a live session.
func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	eng, err := s.store.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	snap, err := eng.Skip()
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// handleState returns a live session snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("sessionId")
	eng, err := s.store.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(eng.Snapshot())
}

// handleLeaderboard serves the top finished sessions.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	rows, err := s.results.Leaderboard(r.Context(), date, limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []results.LBRow{}
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// writeEngineError maps expected engine refusals to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrTooLate):
		http.Error(w, `{"error":"round_already_resolved"}`, http.StatusConflict)
	case errors.Is(err, game.ErrBusy):
		http.Error(w, `{"error":"submission_in_flight"}`, http.StatusConflict)
	case errors.Is(err, game.ErrNotActive):
		http.Error(w, `{"error":"no_active_round"}`, http.StatusConflict)
	case errors.Is(err, game.ErrSkipUnavailable):
		http.Error(w, `{"error":"skip_unavailable_in_bonus"}`, http.StatusConflict)
	case errors.Is(err, game.ErrAwaitingPuzzle):
		http.Error(w, `{"error":"awaiting_synchronized_puzzle"}`, http.StatusConflict)
	default:
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
	}
}

// gameEventSink receives engine events. Persistence is best effort and
// never feeds back into the engine.
func (s *Server) gameEventSink(ev game.Event) {
	if ev.Type != game.EventGameOver {
		return
	}

	s.ownersMu.Lock()
	owner, ok := s.owners[ev.SessionID]
	delete(s.owners, ev.SessionID)
	s.ownersMu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	eng, err := s.store.Get(ctx, ev.SessionID)
	var solved, rounds int
	var bonus bool
	if err == nil {
		snap := eng.Snapshot()
		solved = snap.Session.Solved
		rounds = snap.RoundIndex + 1
		bonus = snap.Session.BonusPhase
	}

	res := results.SessionResult{
		SessionID: ev.SessionID,
		UserID:    owner.userID,
		AnonID:    owner.anonID,
		Date:      owner.date,
		Score:     ev.Score,
		Solved:    solved,
		Level:     ev.Level,
		Rounds:    rounds,
		Bonus:     bonus,
	}
	if err := s.results.Insert(ctx, res); err != nil {
		log.Warn().Err(err).Str("session", ev.SessionID).Msg("persist session result")
	}

	if owner.userID != "" {
		tx, err := s.db.Begin()
		if err != nil {
			log.Warn().Err(err).Msg("begin stats tx")
			return
		}
		defer func() { _ = tx.Rollback() }()
		if err := s.bumpStats(tx, owner.userID, ev.Score, bonus); err != nil {
			log.Warn().Err(err).Str("user", owner.userID).Msg("bump stats")
			return
		}
		_ = tx.Commit()
	}
}
