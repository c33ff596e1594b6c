package mux

import (
	"context"
	"net/http"
	"strings"
	"time"

	"holdem-server/internal/jwt"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/room"
	"holdem-server/pkg/store"

	"github.com/go-chi/httprate"
	gmux "github.com/gorilla/mux"
)

type ctxKey int

const (
	ctxPlayerKey ctxKey = iota
)

// cookieName carries the signed player token
const cookieName = "player"

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version   string
	recaptcha recaptcha
	engine    *holdem.Engine
	pitBoss   *room.PitBoss

	// store for testing purposes
	authRouter *gmux.Router
	gameRouter *gmux.Router
}

// Options configure the mux
type Options struct {
	Version string

	// RecaptchaSecret enables the bot check on join when set
	RecaptchaSecret string

	// JoinRateLimit is the number of joins allowed per minute from one address, zero disables it
	JoinRateLimit int
}

// NewMux returns a new HTTP mux
func NewMux(engine *holdem.Engine, pitBoss *room.PitBoss, opts Options) *Mux {
	this := &Mux{
		Router:    gmux.NewRouter(),
		version:   opts.Version,
		engine:    engine,
		pitBoss:   pitBoss,
		recaptcha: newRecaptcha(opts.RecaptchaSecret),
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodGet).Path("/api/game_list").Handler(this.getGameList())

		var join http.Handler = this.postJoin()
		if opts.JoinRateLimit > 0 {
			join = httprate.LimitByIP(opts.JoinRateLimit, time.Minute)(join)
		}
		r.Methods(http.MethodPost).Path("/api/join").Handler(join)
	}

	// requires a seat
	{
		r := this.authRouter
		r.Methods(http.MethodGet).Path("/api/me").Handler(this.getMe())
		r.Methods(http.MethodPost).Path("/api/leave").Handler(this.postLeave())

		this.gameRouter = r.PathPrefix("/api/game/{id:[0-9]+}").Subrouter()
		this.gameRouter.Use(this.gameMiddleware)

		this.gameRouter.Methods(http.MethodGet).Path("").Handler(this.getGame())
		this.gameRouter.Methods(http.MethodPost).Path("/action").Handler(this.postGameAction())
		this.gameRouter.Methods(http.MethodGet).Path("/ws").Handler(this.getGameWS())
	}

	return this
}

// playerToken finds the signed token in the cookie, the query string, or the Authorization header
func playerToken(r *http.Request) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if token := r.FormValue("access_token"); token != "" {
		return token
	}

	authHeader := strings.Split(r.Header.Get("Authorization"), " ")
	if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
		return ""
	}

	return authHeader[1]
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := playerToken(r)
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		claims, err := jwt.ValidPlayer(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		player, err := m.engine.Authenticate(r.Context(), claims.GameID, claims.Username, claims.Session)
		if err != nil {
			if isUserError(err) {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxPlayerKey, player)
		w.Header().Set("Holdem-Username", player.Username)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

// gameMiddleware requires authMiddleware to execute first
func (m *Mux) gameMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := gameIDFromPath(r)
		if !ok {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		if contextPlayer(r).GameID != gameID {
			writeJSONError(w, http.StatusForbidden, holdem.ErrPlayerNotInGame)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func contextPlayer(r *http.Request) *store.Player {
	return r.Context().Value(ctxPlayerKey).(*store.Player)
}
