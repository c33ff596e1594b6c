package room

import (
	"context"
	"errors"
	"strings"
	"sync"

	"holdem-server/pkg/holdem"
	"holdem-server/pkg/store"

	"github.com/sirupsen/logrus"
)

// ErrDealerClosed is returned when an operation is sent to a dealer after its shift ended
var ErrDealerClosed = errors.New("dealer is closed")

// Dealer runs the operations for one game
// When serialized, every operation runs on the dealer's run loop so that no two operations
// on the game interleave. Different games have their own dealers and run in parallel.
type Dealer struct {
	gameID    int64
	engine    *holdem.Engine
	timer     *turnTimer
	serialize bool
	log       logrus.FieldLogger

	clients     map[*Client]bool
	logMessages []*holdem.LogMessage
	lock        sync.RWMutex

	execInRunLoop chan func()
	close         chan bool
	closeOnce     sync.Once
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(gameID int64, engine *holdem.Engine, timer *turnTimer, serialize bool, log logrus.FieldLogger) *Dealer {
	return &Dealer{
		gameID:        gameID,
		engine:        engine,
		timer:         timer,
		serialize:     serialize,
		log:           log.WithField("gameID", gameID),
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		close:         make(chan bool),
	}
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	if d.serialize {
		go d.runLoop()
	}
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	d.closeOnce.Do(func() {
		close(d.close)
		d.timer.Cancel(d.gameID)
	})
}

func (d *Dealer) runLoop() {
	d.log.Debug("creating dealer run loop")
	for {
		select {
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			d.log.Debug("terminating dealer run loop")
			return
		}
	}
}

// exec runs fn against the game
// actor is the player who asked for the operation, or empty if the server did.
func (d *Dealer) exec(ctx context.Context, actor string, fn func(ctx context.Context) error) error {
	if !d.serialize {
		err := fn(ctx)
		d.afterOp(ctx, actor)
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-d.close:
		return ErrDealerClosed
	default:
	}

	// once queued the operation runs to completion even if the caller goes away
	opCtx := context.WithoutCancel(ctx)
	result := make(chan error, 1)
	op := func() {
		err := fn(opCtx)
		d.afterOp(opCtx, actor)
		result <- err
	}

	select {
	case d.execInRunLoop <- op:
	case <-d.close:
		return ErrDealerClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-d.close:
		return ErrDealerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// afterOp restarts the turn clock and pushes the new state to connected clients
func (d *Dealer) afterOp(ctx context.Context, actor string) {
	game, err := d.engine.Store().GetGame(ctx, d.gameID)
	if err != nil {
		d.log.WithError(err).Error("could not get game")
		return
	}

	turn := ""
	if game.Started {
		turn = game.PlayerTurn
	}

	d.timer.Update(d.gameID, turn, actor, d.turnExpired)
	d.sendGameData(ctx)
}

// turnExpired kicks username if they still hold the turn the timer was started for
func (d *Dealer) turnExpired(username string, gen uint64) {
	err := d.exec(context.Background(), "", func(ctx context.Context) error {
		if !d.timer.IsCurrent(d.gameID, username, gen) {
			return nil
		}

		game, err := d.engine.Store().GetGame(ctx, d.gameID)
		if err != nil {
			return err
		}

		if !game.Started || !strings.EqualFold(game.PlayerTurn, username) {
			return nil
		}

		d.log.WithField("username", username).Info("turn timed out, kicking player")
		return d.engine.KickPlayer(ctx, d.gameID, username)
	})

	if err != nil && !errors.Is(err, ErrDealerClosed) {
		d.log.WithError(err).WithField("username", username).Error("could not kick player")
	}
}

// Join seats username at the table
func (d *Dealer) Join(ctx context.Context, username string, avatarID int) (*store.Player, error) {
	var player *store.Player
	err := d.exec(ctx, username, func(ctx context.Context) error {
		var err error
		player, err = d.engine.Join(ctx, d.gameID, username, avatarID)
		return err
	})

	return player, err
}

// Act plays an action for username
func (d *Dealer) Act(ctx context.Context, username string, action holdem.Action, value int) error {
	return d.exec(ctx, username, func(ctx context.Context) error {
		return d.engine.Act(ctx, d.gameID, username, action, value)
	})
}

// Leave removes username from the table
func (d *Dealer) Leave(ctx context.Context, username string) error {
	return d.exec(ctx, username, func(ctx context.Context) error {
		return d.engine.Leave(ctx, d.gameID, username)
	})
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	logMessages := append([]*holdem.LogMessage(nil), d.logMessages...)
	d.lock.Unlock()

	if len(logMessages) > 0 {
		client.Send(&Response{
			Key:  "logs",
			Data: logMessages,
		})
	}

	d.sendClientData(context.Background(), client)
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) (lastClient bool) {
	d.lock.Lock()
	delete(d.clients, client)
	nClients := len(d.clients)
	d.lock.Unlock()

	return nClients == 0
}

func (d *Dealer) sendGameData(ctx context.Context) {
	for _, client := range d.Clients() {
		d.sendClientData(ctx, client)
	}
}

func (d *Dealer) sendClientData(ctx context.Context, client *Client) {
	game, err := d.engine.GameView(ctx, d.gameID, client.username)
	if err != nil {
		if errors.Is(err, holdem.ErrPlayerNotInGame) {
			client.Send(&Response{Key: "left"})
			return
		}

		d.log.WithError(err).WithField("client", client.String()).Error("could not get game state")
		return
	}

	self, err := d.engine.SelfView(ctx, d.gameID, client.username)
	if err != nil {
		d.log.WithError(err).WithField("client", client.String()).Error("could not get player state")
		return
	}

	if !client.Send(&Response{Key: "game", Data: &TableState{Game: game, Self: self}}) {
		d.log.WithField("client", client.String()).Warn("client is not keeping up, dropped game state")
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *PayloadIn) {
	ctx := context.Background()

	if msg.Action == "leave" {
		if err := d.Leave(ctx, c.username); err != nil {
			c.Send(newErrorResponse(msg.Context, err))
			return
		}

		c.Send(OK(msg.Context))
		return
	}

	action, err := holdem.ActionFromString(msg.Action)
	if err != nil {
		c.Send(newErrorResponse(msg.Context, err))
		return
	}

	if err := d.Act(ctx, c.username, action, msg.Value); err != nil {
		d.log.WithError(err).WithField("client", c.String()).Debug("could not perform action")
		c.Send(newErrorResponse(msg.Context, err))
		return
	}

	c.Send(OK(msg.Context))
}
