// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Puzzle" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's puzzle (creates or reuses a session)
//   - GET  /daily/leaderboard → fetch top 20 results for today (or a given date)
//
// Play happens through the regular /game/{id}/* routes; the first Success of a
// daily game records the result. Each player records once per day (enforced by
// DB). Digits are derived from date + salt so everyone gets the same puzzle.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/equate/internal/daily"
	"github.com/robalobadob/equate/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	count    int
	mu       sync.Mutex               // guards sessions and byGame
	sessions map[string]*dailySession // keyed by userID|date
	byGame   map[string]*dailySession // keyed by game ID
}

// dailySession links a player's game to the date it was issued for.
type dailySession struct {
	GameID string
	UserID string
	Date   string
	Digits []int
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	s.daily = &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.db),
		salt:     s.cfg.DailySalt,
		count:    s.cfg.DigitCount,
		sessions: make(map[string]*dailySession),
		byGame:   make(map[string]*dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.daily.handleNew)
		r.Get("/leaderboard", s.daily.handleLeaderboard)
	})
}

// today returns today's date key and digits.
func (d *dailyServer) today() (string, []int) {
	now := time.Now().UTC()
	return daily.DateKey(now), daily.Digits(now, d.salt, d.count)
}

// userIDWithAnon returns the authenticated user ID if logged in,
// otherwise an anonymous ID via Server.ensureAnonID.
func (d *dailyServer) userIDWithAnon(w http.ResponseWriter, r *http.Request) string {
	if me := userFrom(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string     `json:"gameId,omitempty"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	View   *game.View `json:"view,omitempty"`
}

// handleNew creates or reuses a daily session for the current date.
//   - If the player already has a result for today → Played=true.
//   - Otherwise reuse the live session or start a new game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userIDWithAnon(w, r)
	date, ds := d.today()
	logger := hlog.FromRequest(r)

	played, err := d.store.AlreadyPlayed(r.Context(), uid, date)
	if err != nil && !errors.Is(err, daily.ErrNoDB) {
		logger.Warn().Err(err).Msg("daily already played")
	}
	if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()

	if sess, ok := d.sessions[key]; ok {
		if g, err := d.srv.store.Get(r.Context(), sess.GameID); err == nil {
			v := g.Snapshot()
			writeJSON(w, http.StatusOK, dailyNewRes{GameID: g.ID, Date: date, View: &v})
			return
		}
		delete(d.byGame, sess.GameID)
	}

	g, err := game.New(ds)
	if err != nil {
		logger.Error().Err(err).Ints("digits", ds).Msg("daily game")
		writeError(w, http.StatusInternalServerError, "daily_failed")
		return
	}
	if err := d.srv.store.Save(r.Context(), g); err != nil {
		logger.Error().Err(err).Msg("save daily game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	sess := &dailySession{GameID: g.ID, UserID: uid, Date: date, Digits: ds}
	d.sessions[key] = sess
	d.byGame[g.ID] = sess

	d.srv.metrics.GamesStarted.WithLabelValues("daily").Inc()
	d.srv.recordGame(w, r, g, "daily")

	v := g.Snapshot()
	writeJSON(w, http.StatusOK, dailyNewRes{GameID: g.ID, Date: date, View: &v})
}

// recordSolve stores the result when gameID is a daily game. Best effort.
func (d *dailyServer) recordSolve(r *http.Request, gameID string, solve game.Solve) {
	d.mu.Lock()
	sess, ok := d.byGame[gameID]
	d.mu.Unlock()
	if !ok {
		return
	}
	err := d.store.InsertResult(r.Context(), daily.Result{
		UserID:    sess.UserID,
		Date:      sess.Date,
		Digits:    joinDigits(sess.Digits),
		Statement: solve.Statement,
		Moves:     solve.Moves,
		ElapsedMs: int(solve.Elapsed.Milliseconds()),
	})
	if err != nil && !errors.Is(err, daily.ErrNoDB) {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", gameID).Msg("insert daily result")
	}
}

// forget drops sessions whose game was evicted, and sessions issued before
// yesterday along with their games. It returns how many sessions went.
func (d *dailyServer) forget(ctx context.Context, evicted []string, now time.Time) int {
	gone := make(map[string]bool, len(evicted))
	for _, id := range evicted {
		gone[id] = true
	}
	oldest := daily.DateKey(now.UTC().AddDate(0, 0, -1))

	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for key, sess := range d.sessions {
		stale := sess.Date < oldest
		if !stale && !gone[sess.GameID] {
			continue
		}
		if stale {
			_ = d.srv.store.Delete(ctx, sess.GameID)
		}
		delete(d.sessions, key)
		delete(d.byGame, sess.GameID)
		n++
	}
	return n
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date, _ = d.today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeError(w, http.StatusBadRequest, "bad_date")
		return
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	switch {
	case errors.Is(err, daily.ErrNoDB):
		writeError(w, http.StatusServiceUnavailable, "no_database")
		return
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
