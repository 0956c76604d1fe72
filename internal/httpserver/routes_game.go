// internal/httpserver/routes_game.go
//
// HTTP routes for free-play puzzles.
//   - POST /game/new               → start a puzzle (given, counted or random digits)
//   - GET  /game/{id}              → current view
//   - GET  /game/{id}/eligibility  → legal drop targets for a class
//   - POST /game/{id}/pickup       → take a palette tile or a placed operator
//   - POST /game/{id}/drop         → release the held tile on a slot or number
//   - POST /game/{id}/cancel       → release the held tile without dropping
//   - POST /game/{id}/remove       → delete a placed binary operator
//   - POST /game/{id}/revert       → undo a number's unary transform
//
// Every interaction answers with the full view. Rejected interactions answer
// 4xx with the view attached, since a rejected drop still ends the hold.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/equate/internal/digits"
	"github.com/robalobadob/equate/internal/game"
	"github.com/robalobadob/equate/internal/store"
)

func (s *Server) mountGame(r chi.Router) {
	r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.loadGame)
			r.Get("/", s.handleView)
			r.Get("/eligibility", s.handleEligibility)
			r.Post("/pickup", s.handlePickUp)
			r.Post("/drop", s.handleDrop)
			r.Post("/cancel", s.handleCancel)
			r.Post("/remove", s.handleRemove)
			r.Post("/revert", s.handleRevert)
		})
	})
}

type ctxGameKey struct{}

// loadGame resolves {id} from the store or answers 404.
func (s *Server) loadGame(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				hlog.FromRequest(r).Error().Err(err).Msg("load game")
			}
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxGameKey{}, g)))
	})
}

func gameFrom(r *http.Request) *game.Game {
	g, _ := r.Context().Value(ctxGameKey{}).(*game.Game)
	return g
}

// ------------------------------ new game -----------------------------------

type newGameReq struct {
	Digits   []int  `json:"digits" validate:"omitempty,max=9,dive,min=0,max=9"`
	Sequence string `json:"sequence" validate:"omitempty,max=32"` // "4321" or "4,3,2,1"
	Count    int    `json:"count" validate:"omitempty,min=1,max=9"`
}

type newGameRes struct {
	GameID string    `json:"gameId"`
	View   game.View `json:"view"`
}

// handleNewGame creates an in-memory game and persists an owner row
// (either user_id or anonymous_id) for history/stats.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	ds := req.Digits
	switch {
	case len(ds) > 0:
	case req.Sequence != "":
		var err error
		if ds, err = digits.Parse(req.Sequence); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "bad_digits", Detail: err.Error()})
			return
		}
	case req.Count > 0:
		ds = digits.Random(req.Count)
	default:
		ds = digits.Default(s.cfg.DigitCount)
	}
	if !digits.Valid(ds) {
		writeError(w, http.StatusBadRequest, "bad_digits")
		return
	}

	g, err := game.New(ds)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "bad_digits", Detail: err.Error()})
		return
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.metrics.GamesStarted.WithLabelValues("normal").Inc()
	s.recordGame(w, r, g, "normal")

	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, View: g.Snapshot()})
}

// ---------------------------- interactions ---------------------------------

type viewRes struct {
	View game.View `json:"view"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewRes{View: gameFrom(r).Snapshot()})
}

type eligibilityRes struct {
	Class   string        `json:"class"`
	Targets []game.Target `json:"targets"`
}

// handleEligibility lists legal targets for ?class=, defaulting to the held tile.
func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r)
	c := g.Holding()
	if q := r.URL.Query().Get("class"); q != "" {
		var err error
		if c, err = game.ParseClass(q); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "unknown_class", Detail: err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, eligibilityRes{Class: c.String(), Targets: g.Eligibility(c)})
}

type pickUpReq struct {
	OperatorID *int   `json:"operatorId" validate:"required_without=Symbol"`
	Symbol     string `json:"symbol" validate:"required_without=OperatorID"`
}

func (s *Server) handlePickUp(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r)
	var req pickUpReq
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	var err error
	if req.OperatorID != nil {
		_, err = g.PickUp(game.OperatorID(*req.OperatorID))
	} else {
		var sym game.Symbol
		if sym, err = game.ParseSymbol(req.Symbol); err == nil {
			_, err = g.PickUpSymbol(sym)
		}
	}
	s.respond(w, r, g, "pickup", false, err)
}

type dropReq struct {
	Kind string `json:"kind" validate:"required,oneof=slot number"`
	ID   *int   `json:"id" validate:"required,min=0"`
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r)
	var req dropReq
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	_, err := g.Drop(game.Target{Kind: game.TargetKind(req.Kind), ID: *req.ID})
	s.respond(w, r, g, "drop", true, err)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r)
	g.Cancel()
	s.respond(w, r, g, "cancel", false, nil)
}

type removeReq struct {
	OperatorID *int `json:"operatorId" validate:"required,min=0"`
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r)
	var req removeReq
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	_, err := g.Remove(game.OperatorID(*req.OperatorID))
	s.respond(w, r, g, "remove", true, err)
}

type revertReq struct {
	NumberID *int `json:"numberId" validate:"required,min=0"`
}

func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request) {
	g := gameFrom(r)
	var req revertReq
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	_, err := g.Revert(*req.NumberID)
	s.respond(w, r, g, "revert", true, err)
}

// respond records metrics, runs post-move bookkeeping and writes the view.
// mutating marks actions that re-evaluate the equation when accepted.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, g *game.Game, action string, mutating bool, err error) {
	s.metrics.RecordInteraction(action, err)
	view := g.Snapshot()
	if err != nil {
		status, code := statusFor(err)
		writeJSON(w, status, apiError{Error: code, Detail: err.Error(), View: view})
		return
	}
	if mutating {
		s.metrics.RecordOutcome(string(view.Outcome.State))
		s.afterMove(r, g)
	}
	writeJSON(w, http.StatusOK, viewRes{View: view})
}

// statusFor maps engine errors to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrNotHolding):
		return http.StatusConflict, "not_holding"
	case errors.Is(err, game.ErrEqualityFixed):
		return http.StatusConflict, "equality_fixed"
	case errors.Is(err, game.ErrIllegalTarget):
		return http.StatusUnprocessableEntity, "illegal_target"
	case errors.Is(err, game.ErrUnknownOperator):
		return http.StatusNotFound, "unknown_operator"
	case errors.Is(err, game.ErrUnknownSlot):
		return http.StatusNotFound, "unknown_slot"
	case errors.Is(err, game.ErrUnknownNumber):
		return http.StatusNotFound, "unknown_number"
	case errors.Is(err, game.ErrUnknownSymbol):
		return http.StatusBadRequest, "unknown_symbol"
	}
	return http.StatusBadRequest, "rejected"
}

// ----------------------------- persistence ---------------------------------

// recordGame persists the owner row for a new game. Best effort.
func (s *Server) recordGame(w http.ResponseWriter, r *http.Request, g *game.Game, mode string) {
	if s.db == nil {
		return
	}
	now := g.CreatedAt.Format(time.RFC3339)
	ds := joinDigits(g.Digits)

	if me := userFrom(r); me != nil {
		tx, err := s.db.BeginTx(r.Context(), nil)
		if err != nil {
			log.Warn().Err(err).Msg("begin game tx")
			return
		}
		defer func() { _ = tx.Rollback() }()
		if err := startStats(tx, me.ID); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("start stats")
		}
		if _, err := tx.Exec(`INSERT INTO games (id, user_id, digits, mode, started_at)
		                     VALUES (?,?,?,?,?)`, g.ID, me.ID, ds, mode, now); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("insert user game row")
			return
		}
		_ = tx.Commit()
		return
	}

	anon := s.ensureAnonID(w, r)
	if _, err := s.db.Exec(`INSERT INTO games (id, anonymous_id, digits, mode, started_at)
	                        VALUES (?,?,?,?,?)`, g.ID, anon, ds, mode, now); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert anon game row")
	}
}

// afterMove persists the move counter and, on the first Success, finishes
// the game row, bumps user stats and records a daily result.
func (s *Server) afterMove(r *http.Request, g *game.Game) {
	logger := hlog.FromRequest(r)
	if s.db != nil {
		if _, err := s.db.Exec(`UPDATE games SET moves=? WHERE id=?`, g.Moves(), g.ID); err != nil {
			logger.Warn().Err(err).Str("gameId", g.ID).Msg("update moves")
		}
	}

	solve, ok := g.ClaimSolve()
	if !ok {
		return
	}
	s.metrics.Solves.Inc()
	logger.Info().Str("gameId", g.ID).Int("moves", solve.Moves).
		Str("statement", solve.Statement).Dur("elapsed", solve.Elapsed).Msg("solved")

	if s.db != nil {
		tx, err := s.db.BeginTx(r.Context(), nil)
		if err != nil {
			logger.Warn().Err(err).Msg("begin solve tx")
		} else {
			if _, err := tx.Exec(`UPDATE games SET status='solved', statement=?, moves=?, finished_at=? WHERE id=?`,
				solve.Statement, solve.Moves, time.Now().UTC().Format(time.RFC3339), g.ID); err != nil {
				logger.Warn().Err(err).Msg("finish game")
			}
			if me := userFrom(r); me != nil {
				if err := solveStats(tx, me.ID); err != nil {
					logger.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
				}
			}
			_ = tx.Commit()
		}
	}
	if s.daily != nil {
		s.daily.recordSolve(r, g.ID, solve)
	}
}

// joinDigits renders digits compactly for storage: [4 3 2 1] → "4321".
func joinDigits(ds []int) string {
	var b strings.Builder
	for _, d := range ds {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}
