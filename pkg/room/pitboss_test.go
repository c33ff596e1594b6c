package room

import (
	"fmt"
	"sync"
	"testing"

	"holdem-server/pkg/holdem"

	"github.com/stretchr/testify/assert"
)

func TestPitBoss_Bootstrap(t *testing.T) {
	a := assert.New(t)
	pb, games := setupPitBoss(t, Options{Serialize: true})

	again, err := pb.Bootstrap(cbg, []string{"Room 1", "Room 2", "Room 3"})
	a.NoError(err)
	if a.Len(again, 3) {
		a.Equal(games[0].ID, again[0].ID)
		a.Equal(games[1].ID, again[1].ID)
		a.Equal("Room 3", again[2].Name)
	}
}

func TestPitBoss_Dealer(t *testing.T) {
	a := assert.New(t)
	pb, games := setupPitBoss(t, Options{Serialize: true})

	d1, err := pb.Dealer(cbg, games[0].ID)
	a.NoError(err)
	d2, err := pb.Dealer(cbg, games[0].ID)
	a.NoError(err)
	a.Same(d1, d2, "one dealer per game")

	_, err = pb.Dealer(cbg, 404)
	a.ErrorIs(err, holdem.ErrGameNotFound)

	_, err = pb.Join(cbg, 404, "alice", 1)
	a.ErrorIs(err, holdem.ErrGameNotFound)
}

func TestPitBoss_Join_concurrent(t *testing.T) {
	a := assert.New(t)
	pb, games := setupPitBoss(t, Options{Serialize: true})
	gameID := games[0].ID

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = pb.Join(cbg, gameID, fmt.Sprintf("player%d", i), 1)
		}(i)
	}
	wg.Wait()

	joined, full := 0, 0
	for _, err := range errs {
		switch err {
		case nil:
			joined++
		case holdem.ErrGameFull:
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	a.Equal(6, joined)
	a.Equal(4, full)

	seats := map[int]bool{}
	for _, p := range getPlayers(t, pb, gameID) {
		a.False(seats[p.SeatIndex], "seat %d taken twice", p.SeatIndex)
		seats[p.SeatIndex] = true
	}
	a.Len(seats, 6)

	game, err := pb.engine.Store().GetGame(cbg, gameID)
	a.NoError(err)
	a.True(game.Started)
}

func TestPitBoss_gamesAreIndependent(t *testing.T) {
	a := assert.New(t)
	pb, games := setupPitBoss(t, Options{Serialize: true})

	for _, g := range games {
		_, err := pb.Join(cbg, g.ID, "alice", 1)
		a.NoError(err, "the same name can sit in another room")
	}

	a.NoError(pb.Leave(cbg, games[0].ID, "alice"))
	a.Len(getPlayers(t, pb, games[0].ID), 0)
	a.Len(getPlayers(t, pb, games[1].ID), 1)
}

func TestPitBoss_unserialized(t *testing.T) {
	a := assert.New(t)
	pb, games := setupPitBoss(t, Options{Serialize: false})
	gameID := games[0].ID

	_, err := pb.Join(cbg, gameID, "alice", 1)
	a.NoError(err)
	_, err = pb.Join(cbg, gameID, "bob", 2)
	a.NoError(err)

	a.NoError(pb.Act(cbg, gameID, "alice", holdem.Call, 0))
	a.ErrorIs(pb.Act(cbg, gameID, "alice", holdem.Call, 0), holdem.ErrNotYourTurn)

	turn, err := pb.engine.Store().GetPlayerTurn(cbg, gameID)
	a.NoError(err)
	a.Equal("bob", turn)
}

func TestPitBoss_Record(t *testing.T) {
	a := assert.New(t)
	pb, games := setupPitBoss(t, Options{Serialize: true})
	gameID := games[0].ID

	_, err := pb.Join(cbg, gameID, "alice", 1)
	a.NoError(err)

	dealer, _ := pb.Dealer(cbg, gameID)
	for i := 0; i < 30; i++ {
		pb.Record(cbg, &holdem.LogMessage{GameID: gameID, Message: fmt.Sprintf("message %d", i)})
	}

	// unknown games are ignored
	pb.Record(cbg, &holdem.LogMessage{GameID: 404, Message: "lost"})

	logs := dealer.LogMessages()
	if a.Len(logs, logMessageLimit) {
		a.Equal("message 29", logs[len(logs)-1].Message)
	}
}
