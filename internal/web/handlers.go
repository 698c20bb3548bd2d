// Package web serves the game as a JSON API. Live sessions are held in
// memory and every change is written through to a durable save store.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"taleforge/internal/game"
	"taleforge/internal/metrics"
	"taleforge/internal/session"
)

const (
	cookieName   = "taleforge_sid"
	maxBodyBytes = 1 << 16
	saveTimeout  = 2 * time.Second
)

type Server struct {
	Engine *game.Engine
	Saves  session.Store[game.Session]
	Log    *slog.Logger

	live *session.MemoryStore[*liveSession]
}

// liveSession serialises requests for one play-through.
type liveSession struct {
	mu sync.Mutex
	s  *game.Session
}

func NewServer(e *game.Engine, saves session.Store[game.Session], log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		Engine: e,
		Saves:  saves,
		Log:    log,
		live:   session.NewMemoryStore[*liveSession](),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /options", s.handleOptions)
	mux.HandleFunc("POST /new", s.handleNew)
	mux.HandleFunc("POST /resume", s.handleResume)
	mux.HandleFunc("GET /state", s.handleState)

	mux.HandleFunc("POST /roll", s.handleRoll)
	mux.HandleFunc("POST /choose", s.handleChoose)
	mux.HandleFunc("POST /combat/enter", s.handleEnterCombat)
	mux.HandleFunc("POST /combat/action", s.handleCombatAction)
	mux.HandleFunc("POST /level-up/stats", s.handleAllocate)
	mux.HandleFunc("POST /level-up/pick", s.handlePick)
	mux.HandleFunc("POST /level-up/class", s.handleClass)
	mux.HandleFunc("POST /items/use", s.handleUseItem)
	mux.HandleFunc("POST /items/equip", s.handleEquip)
	mux.HandleFunc("POST /items/unequip", s.handleUnequip)
	mux.HandleFunc("POST /shop/buy", s.handleBuy)
	mux.HandleFunc("POST /shop/sell", s.handleSell)

	mux.HandleFunc("GET /journal.pdf", s.handleJournal)
	mux.Handle("GET /metrics", metrics.Handler())
	return countRequests(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/state", http.StatusFound)
}

// response is the body of every game endpoint.
type response struct {
	Result game.StepResult `json:"result"`
	View   *game.View      `json:"view,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

// decode reads a JSON request body into v. An empty body leaves v unchanged.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
}

func (s *Server) lookup(ctx context.Context, r *http.Request) (string, *liveSession, bool) {
	id := s.sessionID(r)
	if id == "" {
		return "", nil, false
	}
	ls, ok, _ := s.live.Get(ctx, id)
	return id, ls, ok
}

// save writes the session through to the durable store. Failures are logged
// and counted; the live session stays authoritative. The write outlives a
// cancelled request but not saveTimeout.
func (s *Server) save(ctx context.Context, id string, gs *game.Session) {
	if s.Saves == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if err := s.Saves.Put(ctx, id, gs.Snapshot()); err != nil {
		metrics.SaveFailures.Inc()
		s.Log.Warn("save failed", "session", id, "error", err)
	}
}

// forget drops a dead character from both stores.
func (s *Server) forget(ctx context.Context, w http.ResponseWriter, id string) {
	_ = s.live.Delete(ctx, id)
	if s.Saves != nil {
		if err := s.Saves.Delete(ctx, id); err != nil {
			s.Log.Warn("delete save failed", "session", id, "error", err)
		}
	}
	clearSessionCookie(w)
}

// act runs op against the caller's live session, then saves and answers with
// the step result and the new view.
func (s *Server) act(w http.ResponseWriter, r *http.Request, op func(gs *game.Session) (game.StepResult, error)) {
	ctx := r.Context()
	id, ls, ok := s.lookup(ctx, r)
	if !ok {
		writeError(w, http.StatusNotFound, "no active game; create a character first")
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	res, err := op(ls.s)
	if err != nil {
		s.Log.Error("game step failed", "session", id, "story", ls.s.StoryID, "node", ls.s.Player.CurrentNode, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	record(res)

	view, verr := s.Engine.View(ls.s)
	if verr != nil {
		s.Log.Warn("view failed", "session", id, "error", verr)
	}
	if res.Died {
		s.forget(ctx, w, id)
	} else {
		s.save(ctx, id, ls.s)
	}
	writeJSON(w, http.StatusOK, response{Result: res, View: &view})
}

func record(res game.StepResult) {
	if res.Outcome != "" {
		metrics.CombatsTotal.WithLabelValues(string(res.Outcome)).Inc()
	}
	if res.Levels > 0 {
		metrics.LevelUps.Add(float64(res.Levels))
	}
	if res.Died {
		metrics.Deaths.Inc()
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	_, ls, ok := s.lookup(r.Context(), r)
	if !ok {
		writeError(w, http.StatusNotFound, "no active game; create a character first")
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	view, err := s.Engine.View(ls.s)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response{Result: game.StepResult{Phase: ls.s.Phase}, View: &view})
}

func (s *Server) handleRoll(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		return s.Engine.Roll(gs), nil
	})
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index *int `json:"index"`
	}
	if err := decode(r, &req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "expected {\"index\": n}")
		return
	}
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		res, err := s.Engine.Choose(gs, *req.Index)
		if err == nil {
			result := "advanced"
			if !res.Advanced {
				result = "refused"
			}
			metrics.ChoicesTotal.WithLabelValues(result).Inc()
		}
		return res, err
	})
}

func (s *Server) handleEnterCombat(w http.ResponseWriter, r *http.Request) {
	s.act(w, r, s.Engine.EnterCombat)
}

func (s *Server) handleCombatAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action game.Action `json:"action"`
		Spell  string      `json:"spell"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		return s.Engine.CombatAction(gs, req.Action, req.Spell)
	})
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Allocations game.StatBlock `json:"allocations"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		return s.Engine.AllocateStats(gs, req.Allocations), nil
	})
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind game.PickKind `json:"kind"`
		ID   string        `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		return s.Engine.PickSpellSkill(gs, req.Kind, req.ID), nil
	})
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Class string `json:"class"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		return s.Engine.SelectClass(gs, req.Class), nil
	})
}

type itemRequest struct {
	Item string `json:"item"`
}

func (s *Server) itemAction(w http.ResponseWriter, r *http.Request, op func(gs *game.Session, id string) (game.StepResult, error)) {
	var req itemRequest
	if err := decode(r, &req); err != nil || req.Item == "" {
		writeError(w, http.StatusBadRequest, "expected {\"item\": id}")
		return
	}
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		return op(gs, req.Item)
	})
}

func (s *Server) handleUseItem(w http.ResponseWriter, r *http.Request) {
	s.itemAction(w, r, func(gs *game.Session, id string) (game.StepResult, error) {
		return s.Engine.UseItem(gs, id), nil
	})
}

func (s *Server) handleEquip(w http.ResponseWriter, r *http.Request) {
	s.itemAction(w, r, func(gs *game.Session, id string) (game.StepResult, error) {
		return s.Engine.EquipItem(gs, id), nil
	})
}

func (s *Server) handleUnequip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slot string `json:"slot"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slot, ok := game.ParseSlot(req.Slot)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown slot "+strconv.Quote(req.Slot))
		return
	}
	s.act(w, r, func(gs *game.Session) (game.StepResult, error) {
		return s.Engine.UnequipSlot(gs, slot), nil
	})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	s.itemAction(w, r, s.Engine.Buy)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	s.itemAction(w, r, s.Engine.Sell)
}

// statusRecorder captures the response code for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func countRequests(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		_, pattern := next.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(pattern, strconv.Itoa(rec.code)).Inc()
	})
}
