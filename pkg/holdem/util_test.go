package holdem

import (
	"context"
	"testing"

	"holdem-server/internal/rng"
	"holdem-server/pkg/deck"
	"holdem-server/pkg/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

var usernames = []string{"alice", "bob", "carol", "dave", "erin", "frank"}

// fakeEvaluator scores hands by their card codes, anything unknown scores 1000
type fakeEvaluator map[string]int

func (f fakeEvaluator) Score(board, hand deck.Hand) int {
	if score, ok := f[hand.String()]; ok {
		return score
	}

	return 1000
}

// setupEngine seats one player per balance without starting the game
func setupEngine(t *testing.T, opts Options, money ...int) (*Engine, int64) {
	t.Helper()

	s := store.NewMemoryStore()
	game, err := s.CreateGame(cbg, "Room 1")
	require.NoError(t, err)

	for i, m := range money {
		require.NoError(t, s.CreatePlayer(cbg, &store.Player{
			GameID:    game.ID,
			Username:  usernames[i],
			AvatarID:  i + 1,
			SeatIndex: i + 1,
			Money:     m,
			Session:   usernames[i] + "-session",
		}))
	}

	if opts.Logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		opts.Logger = logger
	}

	e := NewEngine(s, fakeEvaluator{}, deck.NewDealer(rng.NewSequence(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)), opts)
	return e, game.ID
}

// setupStartedEngine is setupEngine followed by Start
func setupStartedEngine(t *testing.T, money ...int) (*Engine, int64) {
	t.Helper()

	e, gameID := setupEngine(t, DefaultOptions(), money...)
	require.NoError(t, e.Start(cbg, gameID))
	return e, gameID
}

func getGame(t *testing.T, e *Engine, gameID int64) *store.Game {
	t.Helper()

	game, err := e.store.GetGame(cbg, gameID)
	require.NoError(t, err)
	return game
}

func getPlayer(t *testing.T, e *Engine, gameID int64, username string) *store.Player {
	t.Helper()

	player, err := e.store.GetPlayer(cbg, gameID, username)
	require.NoError(t, err)
	return player
}

func listPlayers(t *testing.T, e *Engine, gameID int64) []*store.Player {
	t.Helper()

	players, err := e.store.ListPlayers(cbg, gameID, true)
	require.NoError(t, err)
	return players
}

func assertTurn(t *testing.T, e *Engine, gameID int64, turn, closer string, msgAndArgs ...interface{}) {
	t.Helper()

	game := getGame(t, e, gameID)
	assert.Equal(t, turn, game.PlayerTurn, msgAndArgs...)
	assert.Equal(t, closer, game.PlayerEndRound, msgAndArgs...)
}

func assertMoneyAndBet(t *testing.T, e *Engine, gameID int64, username string, money, bet int, msgAndArgs ...interface{}) {
	t.Helper()

	p := getPlayer(t, e, gameID, username)
	assert.Equal(t, money, p.Money, msgAndArgs...)
	assert.Equal(t, bet, p.Bet, msgAndArgs...)
}

func assertAct(t *testing.T, e *Engine, gameID int64, username string, action Action, value int, msgAndArgs ...interface{}) {
	t.Helper()
	assert.NoError(t, e.Act(cbg, gameID, username, action, value), msgAndArgs...)
}

// setTable puts the game mid-hand with username holding the turn
func setTable(t *testing.T, e *Engine, gameID int64, turn, closer string, lastBet int) {
	t.Helper()

	require.NoError(t, e.store.SetStarted(cbg, gameID, true))
	require.NoError(t, e.store.SetPlayerTurn(cbg, gameID, turn))
	require.NoError(t, e.store.SetPlayerEndRound(cbg, gameID, closer))
	require.NoError(t, e.store.SetLastBet(cbg, gameID, lastBet))
}

// snapshot captures every record so a failed call can be checked for side effects
func snapshot(t *testing.T, e *Engine, gameID int64) (*store.Game, []*store.Player) {
	t.Helper()
	return getGame(t, e, gameID), listPlayers(t, e, gameID)
}
