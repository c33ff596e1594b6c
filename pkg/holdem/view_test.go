package holdem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_GameList(t *testing.T) {
	a := assert.New(t)
	e, gameID := setupEngine(t, DefaultOptions(), 100, 100)
	other, err := e.store.CreateGame(cbg, "Room 2")
	require.NoError(t, err)

	list, err := e.GameList(cbg)
	a.NoError(err)
	a.Equal([]*GameSummary{
		{ID: gameID, Name: "Room 1", Players: 2},
		{ID: other.ID, Name: "Room 2", Players: 0},
	}, list)
}

func TestEngine_GameView(t *testing.T) {
	a := assert.New(t)
	e, gameID := setupStartedEngine(t, 100, 100, 100)
	require.NoError(t, e.store.SetPot(cbg, gameID, 4, false))

	view, err := e.GameView(cbg, gameID, "Bob")
	a.NoError(err)
	a.Equal("alice", view.Playing)
	a.Equal(4, view.Pot)
	a.Len(view.Board, 0)
	if a.Len(view.Opponents, 2) {
		a.Equal("alice", view.Opponents[0].Username)
		a.Equal("carol", view.Opponents[1].Username)
		a.Equal("/static/img/avatars/avatar_3.png", view.Opponents[1].AvatarURL)

		for _, p := range view.Opponents {
			a.Len(p.Hand, 0, "opponent hands are hidden")
			a.Empty(p.Flag)
		}
	}

	_, err = e.GameView(cbg, gameID, "zed")
	a.ErrorIs(err, ErrPlayerNotInGame)

	_, err = e.GameView(cbg, gameID+1, "bob")
	a.ErrorIs(err, ErrGameNotFound)
}

func TestEngine_GameView_notStarted(t *testing.T) {
	e, gameID := setupEngine(t, DefaultOptions(), 100)
	require.NoError(t, e.store.SetPlayerTurn(cbg, gameID, "alice"))

	view, err := e.GameView(cbg, gameID, "alice")
	assert.NoError(t, err)
	assert.Equal(t, "", view.Playing)
	assert.Len(t, view.Opponents, 0)
}

func TestEngine_SelfView(t *testing.T) {
	a := assert.New(t)
	opts := DefaultOptions()
	opts.Flag = "FLAG{high-roller}"
	opts.HighRollerThreshold = 1000

	e, gameID := setupEngine(t, opts, 1000, 999)
	require.NoError(t, e.Start(cbg, gameID))

	view, err := e.SelfView(cbg, gameID, "alice")
	a.NoError(err)
	a.Equal("alice", view.Username)
	a.Equal("/static/img/avatars/avatar_1.png", view.AvatarURL)
	a.Equal(1000, view.Money)
	a.Equal(1, view.Seat)
	a.Len(view.Hand, 2)
	a.Equal("FLAG{high-roller}", view.Flag)

	view, err = e.SelfView(cbg, gameID, "bob")
	a.NoError(err)
	a.Empty(view.Flag)

	_, err = e.SelfView(cbg, gameID, "zed")
	a.ErrorIs(err, ErrPlayerNotInGame)
}

func TestEngine_SelfView_noFlagConfigured(t *testing.T) {
	e, gameID := setupEngine(t, DefaultOptions(), 5000000)

	view, err := e.SelfView(cbg, gameID, "alice")
	assert.NoError(t, err)
	assert.Empty(t, view.Flag)
}
