// Package events fans game log messages out to other services
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"holdem-server/pkg/holdem"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// DefaultSubject is the subject prefix messages are published under
const DefaultSubject = "holdem.events"

// Publisher publishes raw messages, *nats.Conn satisfies it
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Connect returns a connection to the NATS server at url
// A token is only sent if one is supplied.
func Connect(url, token string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.Name("holdem-server"),
	}

	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	return nats.Connect(url, opts...)
}

// NATSRecorder publishes every log message to <subject>.<gameID>
type NATSRecorder struct {
	conn    Publisher
	subject string
	log     logrus.FieldLogger
}

// NewNATSRecorder returns a recorder publishing on conn
func NewNATSRecorder(conn Publisher, subject string, log logrus.FieldLogger) *NATSRecorder {
	if subject == "" {
		subject = DefaultSubject
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &NATSRecorder{
		conn:    conn,
		subject: subject,
		log:     log,
	}
}

// Subject returns the subject messages for gameID are published on
func (n *NATSRecorder) Subject(gameID int64) string {
	return fmt.Sprintf("%s.%d", n.subject, gameID)
}

// Record publishes msg
// Failures are logged, a lost event never holds up the game.
func (n *NATSRecorder) Record(_ context.Context, msg *holdem.LogMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		n.log.WithError(err).Error("could not encode log message")
		return
	}

	if err := n.conn.Publish(n.Subject(msg.GameID), data); err != nil {
		n.log.WithError(err).WithField("uuid", msg.UUID).Error("could not publish log message")
	}
}

// Multi returns a recorder that passes each message to every recorder in order
// nil recorders are skipped.
func Multi(recorders ...holdem.Recorder) holdem.Recorder {
	list := make([]holdem.Recorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			list = append(list, r)
		}
	}

	return holdem.RecorderFunc(func(ctx context.Context, msg *holdem.LogMessage) {
		for _, r := range list {
			r.Record(ctx, msg)
		}
	})
}

// LogRecorder writes every message to the log at debug level
func LogRecorder(log logrus.FieldLogger) holdem.Recorder {
	return holdem.RecorderFunc(func(_ context.Context, msg *holdem.LogMessage) {
		log.WithFields(logrus.Fields{
			"gameID":    msg.GameID,
			"usernames": msg.Usernames,
			"cards":     msg.Cards.String(),
		}).Debug(msg.Message)
	})
}
