package store

import (
	"context"
	"errors"
	"fmt"

	"holdem-server/pkg/deck"
)

// ErrNotFound is returned when a game or player does not exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicateKey is returned when a player with the same username is already seated
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// Game is a poker room
type Game struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Started        bool      `json:"started"`
	Board          deck.Hand `json:"board"`
	CurrentPot     int       `json:"currentPot"`
	PlayerTurn     string    `json:"playerTurn"`
	PlayerEndRound string    `json:"playerEndRound"`
	LastBet        int       `json:"lastBet"`
}

// Player is a player seated in a game
type Player struct {
	GameID    int64     `json:"gameId"`
	Username  string    `json:"username"`
	AvatarID  int       `json:"avatarId"`
	SeatIndex int       `json:"seatIndex"`
	Money     int       `json:"money"`
	Hand      deck.Hand `json:"hand"`
	Bet       int       `json:"bet"`
	Folded    bool      `json:"folded"`

	// Session identifies the join that created this record
	Session string `json:"-"`
}

// Store holds the game and player records
//
// Every method reads or writes a single field (or a single record) and is applied
// immediately. There are no transactions spanning more than one call, so concurrent
// callers can observe each other's partial updates.
type Store interface {
	CreateGame(ctx context.Context, name string) (*Game, error)
	GameExists(ctx context.Context, gameID int64) (bool, error)
	GetGame(ctx context.Context, gameID int64) (*Game, error)
	ListGames(ctx context.Context) ([]*Game, error)

	SetStarted(ctx context.Context, gameID int64, started bool) error
	GetBoard(ctx context.Context, gameID int64) (deck.Hand, error)
	// SetBoard replaces the board, or appends to it if add is true
	SetBoard(ctx context.Context, gameID int64, cards deck.Hand, add bool) error
	GetPot(ctx context.Context, gameID int64) (int, error)
	SetPot(ctx context.Context, gameID int64, value int, add bool) error
	GetPlayerTurn(ctx context.Context, gameID int64) (string, error)
	SetPlayerTurn(ctx context.Context, gameID int64, username string) error
	GetPlayerEndRound(ctx context.Context, gameID int64) (string, error)
	SetPlayerEndRound(ctx context.Context, gameID int64, username string) error
	GetLastBet(ctx context.Context, gameID int64) (int, error)
	SetLastBet(ctx context.Context, gameID int64, value int) error

	// CreatePlayer registers a player. SeatIndex is assigned by the caller
	CreatePlayer(ctx context.Context, player *Player) error
	GetPlayer(ctx context.Context, gameID int64, username string) (*Player, error)
	PlayerExists(ctx context.Context, gameID int64, username string) (bool, error)
	RemovePlayer(ctx context.Context, gameID int64, username string) error
	// ListPlayers returns the players ordered by seat index
	ListPlayers(ctx context.Context, gameID int64, includeFolded bool) ([]*Player, error)
	CountPlayers(ctx context.Context, gameID int64) (int, error)

	SetMoney(ctx context.Context, gameID int64, username string, value int, add bool) error
	SetBet(ctx context.Context, gameID int64, username string, value int, add bool) error
	SetHand(ctx context.Context, gameID int64, username string, hand deck.Hand) error
	SetFolded(ctx context.Context, gameID int64, username string, folded bool) error
	ResetBets(ctx context.Context, gameID int64) error
	UnfoldAll(ctx context.Context, gameID int64) error
}

func gameNotFound(gameID int64) error {
	return fmt.Errorf("game %d: %w", gameID, ErrNotFound)
}

func playerNotFound(gameID int64, username string) error {
	return fmt.Errorf("player %q in game %d: %w", username, gameID, ErrNotFound)
}

// SumBets returns the total of every bet on the table
func SumBets(players []*Player) int {
	total := 0
	for _, p := range players {
		total += p.Bet
	}

	return total
}
