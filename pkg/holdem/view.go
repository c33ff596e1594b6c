package holdem

import (
	"context"
	"fmt"

	"holdem-server/pkg/deck"
	"holdem-server/pkg/store"
)

// GameSummary is the public listing of a room
type GameSummary struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// PlayerView is a player as seen by someone at the table
// Hand is only filled in for the player themself.
type PlayerView struct {
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatarUrl"`
	GameID    int64     `json:"gameId"`
	Money     int       `json:"money"`
	Hand      deck.Hand `json:"hand"`
	Seat      int       `json:"seat"`
	Bet       int       `json:"bet"`
	Folded    bool      `json:"folded"`
	Flag      string    `json:"flag,omitempty"`
}

// GameView is the table as seen by one player
type GameView struct {
	Board     deck.Hand     `json:"board"`
	Opponents []*PlayerView `json:"opponents"`
	Playing   string        `json:"playing"`
	Pot       int           `json:"pot"`
}

// AvatarURL returns the image path for an avatar id
func AvatarURL(avatarID int) string {
	return fmt.Sprintf("/static/img/avatars/avatar_%d.png", avatarID)
}

func newPlayerView(p *store.Player, showHand bool) *PlayerView {
	hand := deck.Hand{}
	if showHand {
		hand = p.Hand.Clone()
	}

	return &PlayerView{
		Username:  p.Username,
		AvatarURL: AvatarURL(p.AvatarID),
		GameID:    p.GameID,
		Money:     p.Money,
		Hand:      hand,
		Seat:      p.SeatIndex,
		Bet:       p.Bet,
		Folded:    p.Folded,
	}
}

// GameList returns every room with the number of players seated
func (e *Engine) GameList(ctx context.Context) ([]*GameSummary, error) {
	games, err := e.store.ListGames(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]*GameSummary, len(games))
	for i, g := range games {
		count, err := e.store.CountPlayers(ctx, g.ID)
		if err != nil {
			return nil, err
		}

		list[i] = &GameSummary{
			ID:      g.ID,
			Name:    g.Name,
			Players: count,
		}
	}

	return list, nil
}

// GameView returns the table as seen by username
func (e *Engine) GameView(ctx context.Context, gameID int64, username string) (*GameView, error) {
	game, err := e.getGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	players, err := e.store.ListPlayers(ctx, gameID, true)
	if err != nil {
		return nil, err
	}

	seated := false
	opponents := make([]*PlayerView, 0, len(players))
	for _, p := range players {
		if sameUser(p.Username, username) {
			seated = true
			continue
		}

		opponents = append(opponents, newPlayerView(p, false))
	}

	if !seated {
		return nil, ErrPlayerNotInGame
	}

	playing := ""
	if game.Started {
		playing = game.PlayerTurn
	}

	board := game.Board
	if board == nil {
		board = deck.Hand{}
	}

	return &GameView{
		Board:     board,
		Opponents: opponents,
		Playing:   playing,
		Pot:       game.CurrentPot,
	}, nil
}

// SelfView returns the player's own record with their hand
func (e *Engine) SelfView(ctx context.Context, gameID int64, username string) (*PlayerView, error) {
	player, err := e.getPlayer(ctx, gameID, username)
	if err != nil {
		return nil, err
	}

	view := newPlayerView(player, true)
	if e.opts.Flag != "" && player.Money >= e.opts.HighRollerThreshold {
		view.Flag = e.opts.Flag
	}

	return view, nil
}
