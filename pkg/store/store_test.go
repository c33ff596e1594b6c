package store

import (
	"context"
	"testing"

	"holdem-server/pkg/deck"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

// testStore runs the same checks against any Store implementation
func testStore(t *testing.T, s Store) {
	t.Helper()

	game, err := s.CreateGame(cbg, "Room Test")
	require.NoError(t, err)
	require.NotNil(t, game)

	t.Run("game fields", func(t *testing.T) {
		a := assert.New(t)

		exists, err := s.GameExists(cbg, game.ID)
		a.NoError(err)
		a.True(exists)

		exists, err = s.GameExists(cbg, game.ID+1000)
		a.NoError(err)
		a.False(exists)

		g, err := s.GetGame(cbg, game.ID)
		a.NoError(err)
		a.Equal("Room Test", g.Name)
		a.False(g.Started)
		a.Len(g.Board, 0)
		a.Equal(1, g.LastBet)

		_, err = s.GetGame(cbg, game.ID+1000)
		a.ErrorIs(err, ErrNotFound)

		a.NoError(s.SetStarted(cbg, game.ID, true))
		a.NoError(s.SetPot(cbg, game.ID, 10, false))
		a.NoError(s.SetPot(cbg, game.ID, 5, true))
		pot, err := s.GetPot(cbg, game.ID)
		a.NoError(err)
		a.Equal(15, pot)

		// calls under the caller's own bet sweep negative chips into the pot
		a.NoError(s.SetPot(cbg, game.ID, -35, true))
		pot, err = s.GetPot(cbg, game.ID)
		a.NoError(err)
		a.Equal(-20, pot)
		a.NoError(s.SetPot(cbg, game.ID, 15, false))

		a.NoError(s.SetBoard(cbg, game.ID, deck.Hand{deck.MustCard("2c"), deck.MustCard("Ah"), deck.MustCard("Td")}, false))
		a.NoError(s.SetBoard(cbg, game.ID, deck.Hand{deck.MustCard("Ks")}, true))
		board, err := s.GetBoard(cbg, game.ID)
		a.NoError(err)
		a.Equal("2c,Ah,Td,Ks", board.String())

		a.NoError(s.SetBoard(cbg, game.ID, deck.Hand{}, false))
		board, _ = s.GetBoard(cbg, game.ID)
		a.Len(board, 0)

		a.NoError(s.SetPlayerTurn(cbg, game.ID, "alice"))
		a.NoError(s.SetPlayerEndRound(cbg, game.ID, "bob"))
		a.NoError(s.SetLastBet(cbg, game.ID, 7))

		turn, _ := s.GetPlayerTurn(cbg, game.ID)
		a.Equal("alice", turn)
		endRound, _ := s.GetPlayerEndRound(cbg, game.ID)
		a.Equal("bob", endRound)
		lastBet, _ := s.GetLastBet(cbg, game.ID)
		a.Equal(7, lastBet)

		g, _ = s.GetGame(cbg, game.ID)
		a.True(g.Started)

		a.ErrorIs(s.SetPot(cbg, game.ID+1000, 1, false), ErrNotFound)
	})

	t.Run("player fields", func(t *testing.T) {
		a := assert.New(t)

		for i, name := range []string{"Carol", "alice", "Bob"} {
			a.NoError(s.CreatePlayer(cbg, &Player{
				GameID:    game.ID,
				Username:  name,
				AvatarID:  i + 1,
				SeatIndex: []int{3, 1, 2}[i],
				Money:     100,
			}))
		}

		a.ErrorIs(s.CreatePlayer(cbg, &Player{GameID: game.ID, Username: "ALICE", AvatarID: 1, SeatIndex: 4}), ErrDuplicateKey)

		count, err := s.CountPlayers(cbg, game.ID)
		a.NoError(err)
		a.Equal(3, count)

		exists, _ := s.PlayerExists(cbg, game.ID, "CAROL")
		a.True(exists)
		exists, _ = s.PlayerExists(cbg, game.ID, "dave")
		a.False(exists)

		players, err := s.ListPlayers(cbg, game.ID, true)
		a.NoError(err)
		if a.Len(players, 3) {
			a.Equal("alice", players[0].Username)
			a.Equal("Bob", players[1].Username)
			a.Equal("Carol", players[2].Username)
		}

		a.NoError(s.SetMoney(cbg, game.ID, "bob", 40, false))
		a.NoError(s.SetMoney(cbg, game.ID, "bob", -15, true))
		a.NoError(s.SetBet(cbg, game.ID, "bob", 3, false))
		a.NoError(s.SetBet(cbg, game.ID, "bob", 4, true))
		a.NoError(s.SetHand(cbg, game.ID, "bob", deck.Hand{deck.MustCard("9h"), deck.MustCard("9h")}))
		a.NoError(s.SetFolded(cbg, game.ID, "carol", true))

		bob, err := s.GetPlayer(cbg, game.ID, "BOB")
		a.NoError(err)
		a.Equal("Bob", bob.Username)
		a.Equal(25, bob.Money)
		a.Equal(7, bob.Bet)
		a.Equal("9h,9h", bob.Hand.String())

		active, _ := s.ListPlayers(cbg, game.ID, false)
		a.Len(active, 2)

		a.NoError(s.SetBet(cbg, game.ID, "alice", 2, false))
		all, _ := s.ListPlayers(cbg, game.ID, true)
		a.Equal(9, SumBets(all))

		a.NoError(s.ResetBets(cbg, game.ID))
		a.NoError(s.UnfoldAll(cbg, game.ID))
		all, _ = s.ListPlayers(cbg, game.ID, false)
		a.Len(all, 3)
		a.Equal(0, SumBets(all))

		a.NoError(s.RemovePlayer(cbg, game.ID, "ALICE"))
		count, _ = s.CountPlayers(cbg, game.ID)
		a.Equal(2, count)

		_, err = s.GetPlayer(cbg, game.ID, "alice")
		a.ErrorIs(err, ErrNotFound)
		a.ErrorIs(s.SetMoney(cbg, game.ID, "alice", 1, true), ErrNotFound)
	})

	t.Run("list games", func(t *testing.T) {
		other, err := s.CreateGame(cbg, "Room Other")
		require.NoError(t, err)

		games, err := s.ListGames(cbg)
		assert.NoError(t, err)

		ids := make([]int64, len(games))
		for i, g := range games {
			ids[i] = g.ID
		}
		assert.Contains(t, ids, game.ID)
		assert.Contains(t, ids, other.ID)
	})
}
