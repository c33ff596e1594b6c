package mux

import (
	"net/http"

	"holdem-server/internal/jwt"
	"holdem-server/internal/util"
	"holdem-server/pkg/holdem"
)

type joinPayload struct {
	Username   string `json:"username"`
	Avatar     int    `json:"avatar"`
	GameChoice int64  `json:"game_choice"`
	Token      string `json:"token"`
}

type joinResponse struct {
	Player *holdem.PlayerView `json:"player"`
	Token  string             `json:"token"`
}

func playerCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Mux) postJoin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var jp joinPayload
		if !decodeRequest(w, r, &jp) {
			return
		}

		if m.recaptcha != nil {
			if err := m.recaptcha.Verify(jp.Token); err != nil {
				writeJSONError(w, http.StatusBadRequest, err)
				return
			}
		}

		if jp.Username == "" {
			jp.Username = util.GetRandomName()
		}

		player, err := m.pitBoss.Join(r.Context(), jp.GameChoice, jp.Username, jp.Avatar)
		if err != nil {
			writeGameError(w, err)
			return
		}

		token, err := jwt.Sign(player.GameID, player.Username, player.Session)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		self, err := m.engine.SelfView(r.Context(), player.GameID, player.Username)
		if err != nil {
			writeGameError(w, err)
			return
		}

		http.SetCookie(w, playerCookie(token, int(jwt.Lifetime.Seconds())))
		writeJSON(w, http.StatusCreated, joinResponse{
			Player: self,
			Token:  token,
		})
	}
}

func (m *Mux) getMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := contextPlayer(r)
		self, err := m.engine.SelfView(r.Context(), player.GameID, player.Username)
		if err != nil {
			writeGameError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, self)
	}
}

func (m *Mux) postLeave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := contextPlayer(r)
		if err := m.pitBoss.Leave(r.Context(), player.GameID, player.Username); err != nil {
			writeGameError(w, err)
			return
		}

		http.SetCookie(w, playerCookie("", -1))
		writeJSON(w, http.StatusOK, statusOK)
	}
}
