// Package holdem is the betting state machine for a Texas Hold'em room
//
// Every operation reads and writes the store one field at a time. Callers that need
// the operations for one game to not interleave must serialize them (see pkg/room).
package holdem

import (
	"holdem-server/pkg/deck"
	"holdem-server/pkg/store"

	"github.com/sirupsen/logrus"
)

// defaults
const (
	DefaultMaxPlayers          = 6
	DefaultStartingMoney       = 100
	DefaultHighRollerThreshold = 1000000
)

// Evaluator scores a hand against the board, lower wins
type Evaluator interface {
	Score(board, hand deck.Hand) int
}

// describer is implemented by evaluators that can name a made hand
type describer interface {
	Describe(board, hand deck.Hand) string
}

// Options configure an Engine
type Options struct {
	MaxPlayers    int
	StartingMoney int

	// HighRollerThreshold is the balance at which Flag is shown to a player
	HighRollerThreshold int
	Flag                string

	Recorder Recorder
	Logger   logrus.FieldLogger
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		MaxPlayers:          DefaultMaxPlayers,
		StartingMoney:       DefaultStartingMoney,
		HighRollerThreshold: DefaultHighRollerThreshold,
	}
}

// Engine runs the rules of the game against a store
type Engine struct {
	store     store.Store
	evaluator Evaluator
	dealer    *deck.Dealer
	opts      Options
	recorder  Recorder
	log       logrus.FieldLogger
}

// NewEngine returns an engine
// A nil dealer draws from a crypto-secure source.
func NewEngine(s store.Store, evaluator Evaluator, dealer *deck.Dealer, opts Options) *Engine {
	if dealer == nil {
		dealer = deck.NewDealer(nil)
	}

	if opts.MaxPlayers <= 0 {
		opts.MaxPlayers = DefaultMaxPlayers
	}

	if opts.StartingMoney <= 0 {
		opts.StartingMoney = DefaultStartingMoney
	}

	if opts.HighRollerThreshold <= 0 {
		opts.HighRollerThreshold = DefaultHighRollerThreshold
	}

	var recorder Recorder = nopRecorder{}
	if opts.Recorder != nil {
		recorder = opts.Recorder
	}

	var log logrus.FieldLogger = logrus.StandardLogger()
	if opts.Logger != nil {
		log = opts.Logger
	}

	return &Engine{
		store:     s,
		evaluator: evaluator,
		dealer:    dealer,
		opts:      opts,
		recorder:  recorder,
		log:       log,
	}
}

// Store returns the backing store
func (e *Engine) Store() store.Store {
	return e.store
}

func (e *Engine) gameLog(gameID int64) logrus.FieldLogger {
	return e.log.WithField("gameID", gameID)
}
