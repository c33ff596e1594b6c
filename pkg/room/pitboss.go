package room

import (
	"context"
	"sync"
	"time"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/store"

	"github.com/coder/quartz"
	"github.com/sirupsen/logrus"
)

// Options configure a PitBoss
type Options struct {
	// Serialize runs the operations for each game one at a time
	// Without it operations run on the caller's goroutine and can interleave.
	Serialize bool

	// TurnTimeout kicks a player who holds the turn this long, zero disables it
	TurnTimeout time.Duration

	Clock  quartz.Clock
	Logger logrus.FieldLogger
}

// PitBoss is responsible for dispatching players to games
type PitBoss struct {
	engine *holdem.Engine
	opts   Options
	timer  *turnTimer
	log    logrus.FieldLogger

	lock    sync.RWMutex
	dealers map[int64]*Dealer
}

// NewPitBoss returns a new dispatch object
func NewPitBoss(opts Options) *PitBoss {
	var log logrus.FieldLogger = logrus.StandardLogger()
	if opts.Logger != nil {
		log = opts.Logger
	}

	return &PitBoss{
		opts:    opts,
		timer:   newTurnTimer(opts.Clock, opts.TurnTimeout),
		log:     log,
		dealers: make(map[int64]*Dealer),
	}
}

// StartShift hands the pit boss the engine it dispatches to
// It must be called before any other method.
func (p *PitBoss) StartShift(engine *holdem.Engine) {
	p.engine = engine
}

// EndShift stops every dealer
func (p *PitBoss) EndShift() {
	p.lock.Lock()
	defer p.lock.Unlock()

	for id, dealer := range p.dealers {
		dealer.EndShift()
		delete(p.dealers, id)
	}
}

// Dealer returns the dealer for the game, starting one if needed
func (p *PitBoss) Dealer(ctx context.Context, gameID int64) (*Dealer, error) {
	p.lock.RLock()
	dealer, found := p.dealers[gameID]
	p.lock.RUnlock()

	if found {
		return dealer, nil
	}

	exists, err := p.engine.Store().GameExists(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, holdem.ErrGameNotFound
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if dealer, found := p.dealers[gameID]; found {
		return dealer, nil
	}

	dealer = NewDealer(gameID, p.engine, p.timer, p.opts.Serialize, p.log)
	dealer.StartShift()
	p.dealers[gameID] = dealer

	return dealer, nil
}

// Bootstrap makes sure a game exists for every name
// Games that already exist (by name) are left as they are.
func (p *PitBoss) Bootstrap(ctx context.Context, names []string) ([]*store.Game, error) {
	games, err := p.engine.Store().ListGames(ctx)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(games))
	for _, g := range games {
		existing[g.Name] = true
	}

	for _, name := range names {
		if existing[name] {
			continue
		}

		game, err := p.engine.Store().CreateGame(ctx, name)
		if err != nil {
			return nil, err
		}

		p.log.WithField("gameID", game.ID).WithField("name", name).Info("created game")
		existing[name] = true
		games = append(games, game)
	}

	return games, nil
}

// Join seats username in the game
func (p *PitBoss) Join(ctx context.Context, gameID int64, username string, avatarID int) (*store.Player, error) {
	dealer, err := p.Dealer(ctx, gameID)
	if err != nil {
		return nil, err
	}

	return dealer.Join(ctx, username, avatarID)
}

// Act plays an action for username in the game
func (p *PitBoss) Act(ctx context.Context, gameID int64, username string, action holdem.Action, value int) error {
	dealer, err := p.Dealer(ctx, gameID)
	if err != nil {
		return err
	}

	return dealer.Act(ctx, username, action, value)
}

// Leave removes username from the game
func (p *PitBoss) Leave(ctx context.Context, gameID int64, username string) error {
	dealer, err := p.Dealer(ctx, gameID)
	if err != nil {
		return err
	}

	return dealer.Leave(ctx, username)
}

// Record forwards a log message to the clients watching its game
func (p *PitBoss) Record(_ context.Context, msg *holdem.LogMessage) {
	p.lock.RLock()
	dealer, found := p.dealers[msg.GameID]
	p.lock.RUnlock()

	if found {
		dealer.addLogMessage(msg)
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) error {
	dealer, err := p.Dealer(context.Background(), client.gameID)
	if err != nil {
		return err
	}

	p.log.WithField("client", client.String()).Debug("client connected")
	dealer.AddClient(client)
	return nil
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.log.WithField("client", client.String()).Debug("client disconnected")
	if client.dealer == nil {
		return
	}

	client.dealer.RemoveClient(client)
}
