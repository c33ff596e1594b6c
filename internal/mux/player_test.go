package mux

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"holdem-server/pkg/holdem"

	"github.com/stretchr/testify/assert"
)

func TestMux_postJoin(t *testing.T) {
	_, ts := setupMux(t, Options{})
	a := assert.New(t)

	var resp joinResponse
	httpResp := assertPostWithResp(t, ts, "/api/join", joinPayload{
		Username:   "alice",
		Avatar:     3,
		GameChoice: 1,
	}, &resp, http.StatusCreated)

	a.NotEmpty(resp.Token)
	a.Equal("alice", resp.Player.Username)
	a.Equal("/static/img/avatars/avatar_3.png", resp.Player.AvatarURL)
	a.Equal(int64(1), resp.Player.GameID)
	a.Equal(1, resp.Player.Seat)
	a.Equal(100, resp.Player.Money)

	var cookie *http.Cookie
	for _, c := range httpResp.Cookies() {
		if c.Name == cookieName {
			cookie = c
		}
	}

	if a.NotNil(cookie) {
		a.Equal(resp.Token, cookie.Value)
		a.True(cookie.HttpOnly)
	}

	var errObj errorResponse
	assertPost(t, ts, "/api/join", joinPayload{Username: "ALICE", Avatar: 1, GameChoice: 1}, &errObj, http.StatusConflict)
	a.Equal(holdem.ErrDuplicateUsername.Error(), errObj.Message)

	assertPost(t, ts, "/api/join", joinPayload{Username: "<script>", Avatar: 1, GameChoice: 1}, &errObj, http.StatusBadRequest)
	a.Equal(holdem.ErrInvalidUsername.Error(), errObj.Message)

	assertPost(t, ts, "/api/join", joinPayload{Username: "bob", Avatar: 0, GameChoice: 1}, &errObj, http.StatusBadRequest)
	a.Equal(holdem.ErrInvalidAvatar.Error(), errObj.Message)

	assertPost(t, ts, "/api/join", joinPayload{Username: "bob", Avatar: 1, GameChoice: 99}, &errObj, http.StatusNotFound)
	a.Equal(holdem.ErrGameNotFound.Error(), errObj.Message)

	assertPost(t, ts, "/api/join", "{", &errObj, http.StatusBadRequest)
}

func TestMux_postJoin_unsupportedMediaType(t *testing.T) {
	_, ts := setupMux(t, Options{})

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/join", strings.NewReader(`{"username":"alice"}`))
	req.Header.Set("Content-Type", "text/plain")
	assertDo(t, req, nil, http.StatusUnsupportedMediaType)
}

func TestMux_postJoin_full(t *testing.T) {
	_, ts := setupMux(t, Options{})

	for i := 1; i <= holdem.DefaultMaxPlayers; i++ {
		join(t, ts, 1, fmt.Sprintf("player%d", i))
	}

	var errObj errorResponse
	assertPost(t, ts, "/api/join", joinPayload{Username: "late", Avatar: 1, GameChoice: 1}, &errObj, http.StatusConflict)
	assert.Equal(t, holdem.ErrGameFull.Error(), errObj.Message)

	// the other room still has space
	join(t, ts, 2, "late")
}

func TestMux_postJoin_randomName(t *testing.T) {
	_, ts := setupMux(t, Options{})

	var resp joinResponse
	assertPost(t, ts, "/api/join", joinPayload{Avatar: 1, GameChoice: 1}, &resp, http.StatusCreated)
	assert.True(t, holdem.ValidUsername(resp.Player.Username))
}

func TestMux_postJoin_rateLimit(t *testing.T) {
	_, ts := setupMux(t, Options{JoinRateLimit: 2})

	join(t, ts, 1, "alice")
	join(t, ts, 1, "bob")
	assertPost(t, ts, "/api/join", joinPayload{Username: "carol", Avatar: 1, GameChoice: 1}, nil, http.StatusTooManyRequests)
}

type fakeRecaptcha struct {
	tokens []string
}

func (f *fakeRecaptcha) Verify(token string) error {
	f.tokens = append(f.tokens, token)
	if token != "human" {
		return fmt.Errorf("invalid challenge solution")
	}

	return nil
}

func TestMux_postJoin_recaptcha(t *testing.T) {
	m, ts := setupMux(t, Options{})
	captcha := &fakeRecaptcha{}
	m.recaptcha = captcha

	var errObj errorResponse
	assertPost(t, ts, "/api/join", joinPayload{Username: "alice", Avatar: 1, GameChoice: 1, Token: "bot"}, &errObj, http.StatusBadRequest)
	assert.Equal(t, "invalid challenge solution", errObj.Message)

	assertPost(t, ts, "/api/join", joinPayload{Username: "alice", Avatar: 1, GameChoice: 1, Token: "human"}, nil, http.StatusCreated)
	assert.Equal(t, []string{"bot", "human"}, captcha.tokens)
}

func TestMux_getMe(t *testing.T) {
	_, ts := setupMux(t, Options{})
	token := join(t, ts, 1, "alice")

	var self holdem.PlayerView
	assertGet(t, ts, "/api/me", &self, http.StatusOK, token)
	assert.Equal(t, "alice", self.Username)
	assert.Equal(t, 100, self.Money)
	assert.Empty(t, self.Flag)
}

func TestMux_postLeave(t *testing.T) {
	_, ts := setupMux(t, Options{})
	aliceToken := join(t, ts, 1, "alice")
	bobToken := join(t, ts, 1, "bob")

	resp := assertPostWithResp(t, ts, "/api/leave", "", nil, http.StatusOK, bobToken)
	if assert.NotNil(t, resp) {
		for _, c := range resp.Cookies() {
			if c.Name == cookieName {
				assert.Empty(t, c.Value)
				assert.True(t, c.MaxAge < 0)
			}
		}
	}

	assertGet(t, ts, "/api/me", nil, http.StatusUnauthorized, bobToken)

	var state struct {
		Game holdem.GameView `json:"game"`
	}
	assertGet(t, ts, "/api/game/1", &state, http.StatusOK, aliceToken)
	assert.Empty(t, state.Game.Playing)
	assert.Empty(t, state.Game.Opponents)
}
