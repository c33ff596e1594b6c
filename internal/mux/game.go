package mux

import (
	"errors"
	"net/http"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/room"
)

var statusLeft = map[string]string{
	"status": "left",
}

type actionPayload struct {
	Action string `json:"action"`
	Value  int    `json:"value"`
}

func (m *Mux) getGameList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := m.engine.GameList(r.Context())
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, games)
	}
}

func (m *Mux) writeTableState(w http.ResponseWriter, r *http.Request) {
	player := contextPlayer(r)

	game, err := m.engine.GameView(r.Context(), player.GameID, player.Username)
	if errors.Is(err, holdem.ErrPlayerNotInGame) {
		// busted out on the hand that just settled
		writeJSON(w, http.StatusOK, statusLeft)
		return
	} else if err != nil {
		writeGameError(w, err)
		return
	}

	self, err := m.engine.SelfView(r.Context(), player.GameID, player.Username)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room.TableState{
		Game: game,
		Self: self,
	})
}

func (m *Mux) getGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.writeTableState(w, r)
	}
}

func (m *Mux) postGameAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ap actionPayload
		if !decodeRequest(w, r, &ap) {
			return
		}

		action, err := holdem.ActionFromString(ap.Action)
		if err != nil {
			writeGameError(w, err)
			return
		}

		player := contextPlayer(r)
		if err := m.pitBoss.Act(r.Context(), player.GameID, player.Username, action, ap.Value); err != nil {
			writeGameError(w, err)
			return
		}

		m.writeTableState(w, r)
	}
}
