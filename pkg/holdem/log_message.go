package holdem

import (
	"context"
	"time"

	"holdem-server/pkg/deck"

	"github.com/google/uuid"
)

// LogMessage describes something that happened in a game
// If Usernames is empty it is a general statement, otherwise it reads as "{player} did X".
type LogMessage struct {
	UUID      string    `json:"uuid"`
	GameID    int64     `json:"gameId"`
	Usernames []string  `json:"usernames"`
	Cards     deck.Hand `json:"cards"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// Recorder receives log messages as the engine produces them
type Recorder interface {
	Record(ctx context.Context, msg *LogMessage)
}

// RecorderFunc adapts a function to the Recorder interface
type RecorderFunc func(ctx context.Context, msg *LogMessage)

// Record calls fn
func (fn RecorderFunc) Record(ctx context.Context, msg *LogMessage) {
	fn(ctx, msg)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, *LogMessage) {}

func newLogMessage(gameID int64, message string, usernames ...string) *LogMessage {
	if usernames == nil {
		usernames = []string{}
	}

	return &LogMessage{
		UUID:      uuid.New().String(),
		GameID:    gameID,
		Usernames: usernames,
		Message:   message,
		Time:      time.Now(),
	}
}

func (e *Engine) record(ctx context.Context, gameID int64, cards deck.Hand, message string, usernames ...string) {
	msg := newLogMessage(gameID, message, usernames...)
	if cards != nil {
		msg.Cards = cards.Clone()
	}

	e.recorder.Record(ctx, msg)
}
