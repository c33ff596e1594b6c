package holdem

import (
	"context"
	"errors"
	"strings"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/store"

	"github.com/sirupsen/logrus"
)

// cards dealt to an empty board
const flopSize = 3

const boardSize = 5

func sameUser(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

func (e *Engine) getGame(ctx context.Context, gameID int64) (*store.Game, error) {
	game, err := e.store.GetGame(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrGameNotFound
	}

	return game, err
}

func (e *Engine) getPlayer(ctx context.Context, gameID int64, username string) (*store.Player, error) {
	player, err := e.store.GetPlayer(ctx, gameID, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPlayerNotInGame
	}

	return player, err
}

// Play applies one action for the player holding the turn
// The turn is not advanced. ErrIllegalMove is returned before anything is written.
func (e *Engine) Play(ctx context.Context, gameID int64, username string, action Action, value int) error {
	game, err := e.getGame(ctx, gameID)
	if err != nil {
		return err
	}

	player, err := e.getPlayer(ctx, gameID, username)
	if err != nil {
		return err
	}

	if !game.Started {
		return ErrGameNotStarted
	}

	if !sameUser(game.PlayerTurn, player.Username) {
		return ErrNotYourTurn
	}

	name := player.Username
	lastBet := game.LastBet
	money := player.Money
	amount := 0

	switch action {
	case Fold:
		if err := e.store.SetFolded(ctx, gameID, name, true); err != nil {
			return err
		}
	case Check:
		if player.Bet != lastBet {
			return ErrIllegalMove
		}
	case Call:
		// an all-in call can lower last bet, and the table plays on from there
		if lastBet > money {
			amount = money
		} else {
			amount = lastBet - player.Bet
		}

		if lastBet == 0 && money != 0 {
			amount = 1
		}

		if err := e.store.SetBet(ctx, gameID, name, amount, true); err != nil {
			return err
		}

		if err := e.store.SetMoney(ctx, gameID, name, money-amount, false); err != nil {
			return err
		}

		if err := e.store.SetLastBet(ctx, gameID, amount); err != nil {
			return err
		}
	case Raise:
		if value < lastBet || value <= 0 {
			return ErrIllegalMove
		}

		amount = value
		if amount > money {
			amount = money
		}

		if err := e.store.SetBet(ctx, gameID, name, amount, true); err != nil {
			return err
		}

		if err := e.store.SetMoney(ctx, gameID, name, money-amount, false); err != nil {
			return err
		}

		if err := e.store.SetPlayerEndRound(ctx, gameID, name); err != nil {
			return err
		}

		if err := e.store.SetLastBet(ctx, gameID, amount); err != nil {
			return err
		}
	default:
		return ErrIllegalMove
	}

	e.gameLog(gameID).WithFields(logrus.Fields{
		"username": name,
		"action":   string(action),
		"amount":   amount,
	}).Debug("played")
	e.record(ctx, gameID, nil, action.LogMessage(amount), name)

	return nil
}

// NextPlayer passes the turn on from current
//
// Players are walked in seat order starting after current. Reaching the round-closer ends
// the betting round before any folded check is made. Otherwise the first player who has
// not folded gets the turn. If the walk finds nobody, the turn is left as it is.
func (e *Engine) NextPlayer(ctx context.Context, gameID int64, current string) error {
	players, err := e.store.ListPlayers(ctx, gameID, true)
	if err != nil {
		return err
	}

	idx := -1
	for i, p := range players {
		if sameUser(p.Username, current) {
			idx = i
			break
		}
	}

	if idx < 0 {
		return ErrPlayerNotInGame
	}

	closer, err := e.store.GetPlayerEndRound(ctx, gameID)
	if err != nil {
		return err
	}

	n := len(players)
	for step := 1; step < n; step++ {
		p := players[(idx+step)%n]

		if sameUser(p.Username, closer) {
			showdown, err := e.newRound(ctx, gameID)
			if err != nil {
				return err
			}

			// a showdown starts the next hand, which sets its own turn
			if showdown {
				return nil
			}

			return e.store.SetPlayerTurn(ctx, gameID, p.Username)
		}

		if !p.Folded {
			return e.store.SetPlayerTurn(ctx, gameID, p.Username)
		}
	}

	e.gameLog(gameID).WithField("current", current).Debug("no player to pass the turn to")
	return nil
}

// NewRound ends the betting round
// Bets are swept into the pot and the next card(s) are dealt, or the hand goes to showdown
// once the board is full.
func (e *Engine) NewRound(ctx context.Context, gameID int64) error {
	_, err := e.newRound(ctx, gameID)
	return err
}

func (e *Engine) newRound(ctx context.Context, gameID int64) (showdown bool, err error) {
	if err := e.sweepBets(ctx, gameID); err != nil {
		return false, err
	}

	if err := e.store.SetLastBet(ctx, gameID, 0); err != nil {
		return false, err
	}

	board, err := e.store.GetBoard(ctx, gameID)
	if err != nil {
		return false, err
	}

	var cards deck.Hand
	switch {
	case len(board) == 0:
		cards = e.dealer.Cards(flopSize)
		err = e.store.SetBoard(ctx, gameID, cards, false)
	case len(board) < boardSize:
		cards = e.dealer.Cards(1)
		err = e.store.SetBoard(ctx, gameID, cards, true)
	default:
		return true, e.showdown(ctx, gameID, board)
	}

	if err != nil {
		return false, err
	}

	e.record(ctx, gameID, cards, "dealt")
	return false, nil
}

// sweepBets moves every outstanding bet into the pot
// The pot is written first so a failed write leaves the bets on the table. A call
// below the player's own bet makes that bet negative, and the pot can follow.
func (e *Engine) sweepBets(ctx context.Context, gameID int64) error {
	players, err := e.store.ListPlayers(ctx, gameID, true)
	if err != nil {
		return err
	}

	total := store.SumBets(players)
	if err := e.store.SetPot(ctx, gameID, total, true); err != nil {
		return err
	}

	return e.store.ResetBets(ctx, gameID)
}

// showdown pays the pot to the best hand still in
// Ties go to whoever is seated first.
func (e *Engine) showdown(ctx context.Context, gameID int64, board deck.Hand) error {
	players, err := e.store.ListPlayers(ctx, gameID, false)
	if err != nil {
		return err
	}

	winner := ""
	best := 0
	for _, p := range players {
		score := e.evaluator.Score(board, p.Hand)
		if winner == "" || score < best {
			winner = p.Username
			best = score
		}
	}

	if winner == "" {
		e.gameLog(gameID).Warn("showdown with no players in the hand, pot carries over")
		return nil
	}

	fields := logrus.Fields{
		"winner": winner,
		"score":  best,
	}

	if d, ok := e.evaluator.(describer); ok {
		for _, p := range players {
			if p.Username == winner {
				fields["hand"] = d.Describe(board, p.Hand)
			}
		}
	}

	e.gameLog(gameID).WithFields(fields).Info("showdown")

	return e.MatchWin(ctx, gameID, winner)
}
