package web

import (
	"fmt"
	"net/http"

	"taleforge/internal/mapgen"
)

// GET /journal.pdf draws the journey so far.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	_, ls, ok := s.lookup(r.Context(), r)
	if !ok {
		http.Redirect(w, r, "/state", http.StatusFound)
		return
	}
	ls.mu.Lock()
	gs := ls.s.Snapshot()
	ls.mu.Unlock()

	st, ok := s.Engine.Catalog.Story(gs.StoryID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown story "+gs.StoryID)
		return
	}
	pdf, err := mapgen.Generate(st, mapgen.Journal{
		Title:   fmt.Sprintf("%s: %s", st.Title, gs.Player.Name),
		Visited: gs.Visited,
		Current: gs.Player.CurrentNode,
		Player:  gs.Player,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="taleforge-journal.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		s.Log.Warn("write journal failed", "error", err)
	}
}
