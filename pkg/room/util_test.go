package room

import (
	"context"
	"testing"

	"holdem-server/pkg/evaluator"
	"holdem-server/pkg/holdem"
	"holdem-server/pkg/store"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var cbg = context.Background()

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// setupPitBoss returns a pit boss with two rooms backed by an in-memory store
func setupPitBoss(t *testing.T, opts Options) (*PitBoss, []*store.Game) {
	t.Helper()

	if opts.Logger == nil {
		opts.Logger = quietLogger()
	}

	pb := NewPitBoss(opts)
	engine := holdem.NewEngine(store.NewMemoryStore(), evaluator.New(), nil, holdem.Options{
		Recorder: pb,
		Logger:   opts.Logger,
	})
	pb.StartShift(engine)
	t.Cleanup(pb.EndShift)

	games, err := pb.Bootstrap(cbg, []string{"Room 1", "Room 2"})
	require.NoError(t, err)
	require.Len(t, games, 2)

	return pb, games
}

// drain returns every response waiting for the client
func drain(c *Client) []*Response {
	var responses []*Response
	for {
		select {
		case msg := <-c.Outbox():
			responses = append(responses, msg)
		default:
			return responses
		}
	}
}

func lastResponse(responses []*Response, key string) *Response {
	for i := len(responses) - 1; i >= 0; i-- {
		if responses[i].Key == key {
			return responses[i]
		}
	}

	return nil
}

func getPlayers(t *testing.T, pb *PitBoss, gameID int64) []*store.Player {
	t.Helper()

	players, err := pb.engine.Store().ListPlayers(cbg, gameID, true)
	require.NoError(t, err)
	return players
}
