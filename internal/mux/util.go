package mux

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"holdem-server/pkg/holdem"

	gmux "github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

var statusOK = map[string]string{
	"status": "OK",
}

func gameIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(gmux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func isUserError(err error) bool {
	var userErr holdem.UserError
	return errors.As(err, &userErr)
}

// writeGameError maps engine errors onto a status code
// anything that is not a holdem.UserError is a 500
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, holdem.ErrGameNotFound):
		writeJSONError(w, http.StatusNotFound, err)
	case errors.Is(err, holdem.ErrPlayerNotInGame), errors.Is(err, holdem.ErrNotYourTurn):
		writeJSONError(w, http.StatusForbidden, err)
	case errors.Is(err, holdem.ErrDuplicateUsername), errors.Is(err, holdem.ErrGameFull):
		writeJSONError(w, http.StatusConflict, err)
	case isUserError(err):
		writeJSONError(w, http.StatusBadRequest, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	})
}
