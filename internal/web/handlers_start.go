package web

import (
	"net/http"
	"slices"
	"strings"

	"taleforge/internal/game"
	"taleforge/internal/metrics"
)

const maxNameLen = 64

type classOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type storyOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type options struct {
	Races   []string      `json:"races"`
	Classes []classOption `json:"classes"`
	Stories []storyOption `json:"stories"`
	Genders []game.Gender `json:"genders"`
}

// GET /options lists what character creation accepts. Only tier 0 classes
// can be picked at the start.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	c := s.Engine.Catalog
	var out options
	for name := range c.Races {
		out.Races = append(out.Races, name)
	}
	slices.Sort(out.Races)
	for id, def := range c.Classes {
		if def.Tier == 0 {
			out.Classes = append(out.Classes, classOption{ID: id, Name: def.Name, Description: def.Description})
		}
	}
	slices.SortFunc(out.Classes, func(a, b classOption) int { return strings.Compare(a.ID, b.ID) })
	for _, id := range c.StoryIDs() {
		out.Stories = append(out.Stories, storyOption{ID: id, Title: c.Stories[id].Title})
	}
	out.Genders = []game.Gender{game.GenderMale, game.GenderFemale, game.GenderOther}
	writeJSON(w, http.StatusOK, out)
}

type newRequest struct {
	Name   string      `json:"name"`
	Gender game.Gender `json:"gender"`
	Race   string      `json:"race"`
	Class  string      `json:"class"`
	Story  string      `json:"story"`
}

// POST /new creates a character and starts the story.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req newRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if runes := []rune(name); len(runes) > maxNameLen {
		name = string(runes[:maxNameLen])
	}
	switch req.Gender {
	case game.GenderMale, game.GenderFemale, game.GenderOther, "":
	default:
		writeError(w, http.StatusBadRequest, "unknown gender "+string(req.Gender))
		return
	}
	if def, ok := s.Engine.Catalog.Classes[req.Class]; ok && def.Tier != 0 {
		writeError(w, http.StatusBadRequest, "class "+req.Class+" can't be chosen at the start")
		return
	}
	storyID := req.Story
	if storyID == "" {
		if ids := s.Engine.Catalog.StoryIDs(); len(ids) > 0 {
			storyID = ids[0]
		}
	}

	p, err := game.NewPlayer(s.Engine.Catalog, name, req.Gender, req.Race, req.Class)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := s.newID()
	p.ID = id
	gs := game.NewSession(p)
	if err := s.Engine.Start(gs, storyID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_ = s.live.Put(ctx, id, &liveSession{s: gs})
	s.save(ctx, id, gs)
	setSessionCookie(w, id)
	metrics.SessionsStarted.WithLabelValues(storyID).Inc()
	s.Log.Info("session started", "session", id, "player", name, "race", req.Race, "class", req.Class, "story", storyID)

	view, err := s.Engine.View(gs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, response{Result: game.StepResult{Phase: gs.Phase}, View: &view})
}

func (s *Server) newID() string {
	if s.Saves != nil {
		return s.Saves.NewID()
	}
	return s.live.NewID()
}

// POST /resume loads a saved game into a live session. A fight that was in
// progress is not restored.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "expected {\"id\": saveId}")
		return
	}
	if s.Saves == nil {
		writeError(w, http.StatusNotFound, "saved games are not enabled")
		return
	}
	saved, ok, err := s.Saves.Get(ctx, req.ID)
	if err != nil {
		s.Log.Warn("load save failed", "session", req.ID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "could not load that game; start a new one")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no saved game with that id")
		return
	}
	gs := &saved
	s.Engine.Resume(gs)
	view, err := s.Engine.View(gs)
	if err != nil {
		writeError(w, http.StatusConflict, "saved game no longer matches the content: "+err.Error())
		return
	}
	_ = s.live.Put(ctx, req.ID, &liveSession{s: gs})
	setSessionCookie(w, req.ID)
	s.Log.Info("session resumed", "session", req.ID, "player", gs.Player.Name, "story", gs.StoryID)
	writeJSON(w, http.StatusOK, response{Result: game.StepResult{Phase: gs.Phase}, View: &view})
}
