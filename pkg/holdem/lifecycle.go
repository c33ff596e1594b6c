package holdem

import (
	"context"
	"crypto/subtle"
	"errors"
	"regexp"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/store"
	"holdem-server/pkg/token"

	"github.com/sirupsen/logrus"
)

// avatar ids map to the images served under /static/img/avatars
const (
	MinAvatarID = 1
	MaxAvatarID = 10
)

const holeCards = 2

// the bet everyone must match to open a hand
const openingBet = 1

const sessionLength = 32

var usernameRx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,12}\z`)

// ValidUsername returns true if the username can be used to join
func ValidUsername(username string) bool {
	return usernameRx.MatchString(username)
}

// Start deals a new hand
// Players without money are removed first. With fewer than two remaining the game is stopped.
// The pot is left as it is, so anything carried over goes to this hand's winner.
func (e *Engine) Start(ctx context.Context, gameID int64) error {
	players, err := e.store.ListPlayers(ctx, gameID, true)
	if err != nil {
		return err
	}

	seated := make([]*store.Player, 0, len(players))
	for _, p := range players {
		if p.Money <= 0 {
			if err := e.removePlayer(ctx, gameID, p.Username, "is out of money"); err != nil {
				return err
			}

			continue
		}

		seated = append(seated, p)
	}

	if len(seated) < 2 {
		return e.stop(ctx, gameID)
	}

	if err := e.store.SetStarted(ctx, gameID, true); err != nil {
		return err
	}

	if err := e.store.SetBoard(ctx, gameID, deck.Hand{}, false); err != nil {
		return err
	}

	if err := e.store.ResetBets(ctx, gameID); err != nil {
		return err
	}

	if err := e.store.UnfoldAll(ctx, gameID); err != nil {
		return err
	}

	for _, p := range seated {
		if err := e.store.SetHand(ctx, gameID, p.Username, e.dealer.Cards(holeCards)); err != nil {
			return err
		}
	}

	first := seated[0].Username
	if err := e.store.SetPlayerTurn(ctx, gameID, first); err != nil {
		return err
	}

	if err := e.store.SetPlayerEndRound(ctx, gameID, first); err != nil {
		return err
	}

	if err := e.store.SetLastBet(ctx, gameID, openingBet); err != nil {
		return err
	}

	e.gameLog(gameID).WithField("players", len(seated)).Info("hand started")
	e.record(ctx, gameID, nil, "new hand dealt")

	return nil
}

// Join seats a new player
// A player joining a hand in progress sits folded until the next one. The game is started
// once two players are seated.
func (e *Engine) Join(ctx context.Context, gameID int64, username string, avatarID int) (*store.Player, error) {
	if !ValidUsername(username) {
		return nil, ErrInvalidUsername
	}

	if avatarID < MinAvatarID || avatarID > MaxAvatarID {
		return nil, ErrInvalidAvatar
	}

	game, err := e.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	players, err := e.store.ListPlayers(ctx, gameID, true)
	if err != nil {
		return nil, err
	}

	if len(players) >= e.opts.MaxPlayers {
		return nil, ErrGameFull
	}

	for _, p := range players {
		if sameUser(p.Username, username) {
			return nil, ErrDuplicateUsername
		}
	}

	session, err := token.Generate(sessionLength)
	if err != nil {
		return nil, err
	}

	player := &store.Player{
		GameID:    gameID,
		Username:  username,
		AvatarID:  avatarID,
		SeatIndex: nextSeat(players),
		Money:     e.opts.StartingMoney,
		Hand:      deck.Hand{},
		Session:   session,
	}

	if err := e.store.CreatePlayer(ctx, player); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, ErrDuplicateUsername
		}

		return nil, err
	}

	e.gameLog(gameID).WithFields(logrus.Fields{
		"username": username,
		"seat":     player.SeatIndex,
	}).Info("player joined")
	e.record(ctx, gameID, nil, "joined", username)

	if game.Started {
		if err := e.store.SetFolded(ctx, gameID, username, true); err != nil {
			return nil, err
		}

		player.Folded = true
		return player, nil
	}

	if len(players)+1 >= 2 {
		if err := e.Start(ctx, gameID); err != nil {
			return nil, err
		}
	}

	return player, nil
}

// nextSeat is one past the player count
// Seats are never renumbered, so it moves past the highest seat if that one is taken.
func nextSeat(players []*store.Player) int {
	seat := len(players) + 1
	for _, p := range players {
		if p.SeatIndex >= seat {
			seat = p.SeatIndex + 1
		}
	}

	return seat
}

// KickPlayer removes a player from the game
// If they hold the turn it is passed on first, and if they close the round the round is
// ended. With fewer than two players left the table is cleared and the game stopped.
func (e *Engine) KickPlayer(ctx context.Context, gameID int64, username string) error {
	game, err := e.getGame(ctx, gameID)
	if err != nil {
		return err
	}

	player, err := e.getPlayer(ctx, gameID, username)
	if err != nil {
		return err
	}

	name := player.Username

	if !game.Started {
		return e.removePlayer(ctx, gameID, name, "left")
	}

	if sameUser(game.PlayerTurn, name) {
		if err := e.NextPlayer(ctx, gameID, name); err != nil {
			return err
		}
	}

	game, err = e.getGame(ctx, gameID)
	if err != nil {
		return err
	}

	if game.Started && sameUser(game.PlayerEndRound, name) {
		if _, err := e.newRound(ctx, gameID); err != nil {
			return err
		}
	}

	// the hand may have been settled above and the player removed with it
	exists, err := e.store.PlayerExists(ctx, gameID, name)
	if err != nil {
		return err
	}

	if exists {
		if err := e.removePlayer(ctx, gameID, name, "left"); err != nil {
			return err
		}
	}

	players, err := e.store.ListPlayers(ctx, gameID, true)
	if err != nil {
		return err
	}

	if len(players) < 2 {
		return e.clearTable(ctx, gameID, players)
	}

	if err := e.repointTurn(ctx, gameID, name, players); err != nil {
		return err
	}

	return e.settle(ctx, gameID)
}

// Leave is called when a player walks away from the table
func (e *Engine) Leave(ctx context.Context, gameID int64, username string) error {
	return e.KickPlayer(ctx, gameID, username)
}

func (e *Engine) clearTable(ctx context.Context, gameID int64, players []*store.Player) error {
	if err := e.store.SetPot(ctx, gameID, 0, false); err != nil {
		return err
	}

	if err := e.store.SetBoard(ctx, gameID, deck.Hand{}, false); err != nil {
		return err
	}

	for _, p := range players {
		if err := e.store.SetHand(ctx, gameID, p.Username, deck.Hand{}); err != nil {
			return err
		}
	}

	return e.stop(ctx, gameID)
}

// repointTurn moves the turn and round-closer off a removed player
func (e *Engine) repointTurn(ctx context.Context, gameID int64, removed string, players []*store.Player) error {
	game, err := e.getGame(ctx, gameID)
	if err != nil {
		return err
	}

	if !game.Started {
		return nil
	}

	turn := game.PlayerTurn
	if sameUser(turn, removed) || turn == "" {
		turn = players[0].Username
		for _, p := range players {
			if !p.Folded {
				turn = p.Username
				break
			}
		}

		if err := e.store.SetPlayerTurn(ctx, gameID, turn); err != nil {
			return err
		}
	}

	if sameUser(game.PlayerEndRound, removed) || game.PlayerEndRound == "" {
		return e.store.SetPlayerEndRound(ctx, gameID, turn)
	}

	return nil
}

// Act plays an action then passes the turn
// If only one player is left in the hand they win it.
func (e *Engine) Act(ctx context.Context, gameID int64, username string, action Action, value int) error {
	if err := e.Play(ctx, gameID, username, action, value); err != nil {
		return err
	}

	if err := e.NextPlayer(ctx, gameID, username); err != nil {
		return err
	}

	return e.settle(ctx, gameID)
}

// Authenticate returns the player if session matches the one issued when they joined
func (e *Engine) Authenticate(ctx context.Context, gameID int64, username, session string) (*store.Player, error) {
	player, err := e.getPlayer(ctx, gameID, username)
	if err != nil {
		return nil, err
	}

	if session == "" || subtle.ConstantTimeCompare([]byte(player.Session), []byte(session)) != 1 {
		return nil, ErrPlayerNotInGame
	}

	return player, nil
}
