package room

import (
	"testing"

	"holdem-server/pkg/holdem"

	"github.com/stretchr/testify/assert"
)

func logsResponse(messages ...string) *Response {
	logs := make([]*holdem.LogMessage, 0, len(messages))
	for _, m := range messages {
		logs = append(logs, &holdem.LogMessage{Message: m})
	}

	return &Response{Key: "logs", Data: logs}
}

func TestClient_Collect(t *testing.T) {
	a := assert.New(t)
	c := NewClient(nil, 1, "alice")

	first := logsResponse("one")
	a.True(c.Send(logsResponse("two")))
	a.True(c.Send(&Response{Key: "game", Value: "old"}))
	a.True(c.Send(&Response{Key: "game", Value: "new"}))
	a.True(c.Send(OK("c1")))
	a.True(c.Send(logsResponse("three")))

	batch := c.Collect(first)
	if a.Len(batch, 4) {
		a.Equal("logs", batch[0].Key)
		logs := batch[0].Data.([]*holdem.LogMessage)
		if a.Len(logs, 2) {
			a.Equal("one", logs[0].Message)
			a.Equal("two", logs[1].Message)
		}

		a.Equal("new", batch[1].Value)
		a.Equal("c1", batch[2].Context)
		a.Len(batch[3].Data, 1)
	}

	// the first response is never modified
	a.Len(first.Data, 1)
	a.Len(drain(c), 0)
}

func TestClient_Collect_stopsAtLeft(t *testing.T) {
	a := assert.New(t)
	c := NewClient(nil, 1, "alice")

	a.True(c.Send(&Response{Key: "left"}))
	a.True(c.Send(OK()))

	batch := c.Collect(&Response{Key: "game"})
	if a.Len(batch, 2) {
		a.True(IsLeft(batch[1]))
	}

	a.Len(drain(c), 1, "responses after left stay queued")
	a.Len(c.Collect(&Response{Key: "left"}), 1)
}

func TestClient_Send_full(t *testing.T) {
	c := NewClient(nil, 1, "alice")
	for i := 0; i < outboxSize; i++ {
		assert.True(t, c.Send(OK()))
	}

	assert.False(t, c.Send(OK()))
}

func TestClient_Received(t *testing.T) {
	a := assert.New(t)
	pb, games := setupPitBoss(t, Options{Serialize: true})
	gameID := games[0].ID

	_, _ = pb.Join(cbg, gameID, "alice", 1)
	_, _ = pb.Join(cbg, gameID, "bob", 2)

	alice := NewClient(nil, gameID, "alice")
	a.NoError(pb.ClientConnected(alice))
	drain(alice)

	alice.Received([]byte("{not json"))
	if res := lastResponse(drain(alice), "error"); a.NotNil(res) {
		a.Equal("invalid message", res.Value)
	}

	alice.Received([]byte(`{"action":"call","context":"a1"}`))
	if res := lastResponse(drain(alice), "status"); a.NotNil(res) {
		a.Equal("a1", res.Context)
	}

	a.Equal("alice", alice.Username())
	a.Equal(gameID, alice.GameID())
}
