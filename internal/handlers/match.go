// internal/handlers/match.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jason-s-yu/spellclash/internal/catalog"
	"github.com/jason-s-yu/spellclash/internal/database"
	"github.com/jason-s-yu/spellclash/internal/game"
)

// CreateMatchHandler handles POST /match/create.
func CreateMatchHandler(s *MatchServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req CreateMatchRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
		}
		resp, err := s.CreateMatch(r.Context(), req)
		if errors.Is(err, ErrBadRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err != nil {
			s.logger.WithError(err).Error("failed to create match")
			http.Error(w, "failed to create match", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// MatchStateHandler handles GET /match/state/{id}, returning the snapshot as
// the caller's seat may see it.
func MatchStateHandler(s *MatchServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := matchIDFromPath(r.URL.Path, "/match/state/")
		if !ok {
			http.Error(w, "Invalid match_id in path (/match/state/{match_id})", http.StatusBadRequest)
			return
		}
		m, ok := s.Store.GetMatch(id)
		if !ok {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}
		side, err := s.authorize(seatToken(r), id)
		if err != nil {
			http.Error(w, "invalid seat token", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, m.Snapshot(side))
	}
}

// CatalogHandler handles GET /catalog.
func CatalogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cards := make([]game.Card, 0)
		for _, id := range catalog.IDs() {
			c, _ := catalog.Lookup(id)
			cards = append(cards, c)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"cards":   cards,
			"starter": catalog.StarterDeck(),
		})
	}
}

// CreateDeckHandler handles POST /deck/create when a database is configured.
func CreateDeckHandler(s *MatchServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !s.Persist {
			http.Error(w, "decks are not stored on this server", http.StatusNotImplemented)
			return
		}
		var body struct {
			Name  string   `json:"name"`
			Cards []string `json:"cards"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if _, err := catalog.BuildDeck(body.Cards); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		d, err := database.CreateDeck(r.Context(), body.Name, body.Cards)
		if err != nil {
			s.logger.WithError(err).Error("failed to create deck")
			http.Error(w, "failed to create deck", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}
