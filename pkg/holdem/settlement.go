package holdem

import (
	"context"
	"fmt"

	"holdem-server/pkg/deck"

	"github.com/sirupsen/logrus"
)

// MatchWin pays the pot to winner and sets the table up for the next hand
// Bets still on the table go into the pot first. Anybody left without money is removed.
// With fewer than two players left the game stops, otherwise a new hand is dealt.
func (e *Engine) MatchWin(ctx context.Context, gameID int64, winner string) error {
	if err := e.sweepBets(ctx, gameID); err != nil {
		return err
	}

	pot, err := e.store.GetPot(ctx, gameID)
	if err != nil {
		return err
	}

	if err := e.store.SetMoney(ctx, gameID, winner, pot, true); err != nil {
		return err
	}

	if err := e.store.SetPot(ctx, gameID, 0, false); err != nil {
		return err
	}

	if err := e.store.UnfoldAll(ctx, gameID); err != nil {
		return err
	}

	if err := e.store.SetBoard(ctx, gameID, deck.Hand{}, false); err != nil {
		return err
	}

	e.gameLog(gameID).WithFields(logrus.Fields{
		"winner": winner,
		"pot":    pot,
	}).Info("hand won")
	e.record(ctx, gameID, nil, fmt.Sprintf("won ${%d}", pot), winner)

	players, err := e.store.ListPlayers(ctx, gameID, true)
	if err != nil {
		return err
	}

	remaining := 0
	for _, p := range players {
		if err := e.store.SetHand(ctx, gameID, p.Username, deck.Hand{}); err != nil {
			return err
		}

		if p.Money <= 0 {
			if err := e.removePlayer(ctx, gameID, p.Username, "is out of money"); err != nil {
				return err
			}

			continue
		}

		remaining++
	}

	if remaining < 2 {
		return e.stop(ctx, gameID)
	}

	return e.Start(ctx, gameID)
}

// stop ends play until enough players are seated again
func (e *Engine) stop(ctx context.Context, gameID int64) error {
	if err := e.store.SetStarted(ctx, gameID, false); err != nil {
		return err
	}

	if err := e.store.SetPlayerTurn(ctx, gameID, ""); err != nil {
		return err
	}

	if err := e.store.SetPlayerEndRound(ctx, gameID, ""); err != nil {
		return err
	}

	e.gameLog(gameID).Info("game stopped")
	e.record(ctx, gameID, nil, "game stopped, waiting for players")
	return nil
}

func (e *Engine) removePlayer(ctx context.Context, gameID int64, username, reason string) error {
	if err := e.store.RemovePlayer(ctx, gameID, username); err != nil {
		return err
	}

	e.gameLog(gameID).WithFields(logrus.Fields{
		"username": username,
		"reason":   reason,
	}).Info("player removed")
	e.record(ctx, gameID, nil, reason, username)

	return nil
}

// settle ends the hand if at most one player is still in it
func (e *Engine) settle(ctx context.Context, gameID int64) error {
	game, err := e.getGame(ctx, gameID)
	if err != nil {
		return err
	}

	if !game.Started {
		return nil
	}

	active, err := e.store.ListPlayers(ctx, gameID, false)
	if err != nil {
		return err
	}

	switch len(active) {
	case 0:
		// nobody can win this hand, the pot rolls into the next one
		if err := e.sweepBets(ctx, gameID); err != nil {
			return err
		}

		return e.Start(ctx, gameID)
	case 1:
		return e.MatchWin(ctx, gameID, active[0].Username)
	}

	return nil
}
