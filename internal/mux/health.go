package mux

import "net/http"

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Rooms   int    `json:"rooms"`
}

// getHealth reports 503 when the store cannot list the rooms
func (m *Mux) getHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := m.engine.Store().ListGames(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, err)
			return
		}

		writeJSON(w, http.StatusOK, healthResponse{
			Status:  "OK",
			Version: m.version,
			Rooms:   len(games),
		})
	}
}
