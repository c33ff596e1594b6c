package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"holdem-server/pkg/deck"
)

// MemoryStore keeps everything in process memory
// Each call is atomic on its own; nothing spans calls.
type MemoryStore struct {
	lock    sync.RWMutex
	nextID  int64
	games   map[int64]*Game
	players map[int64]map[string]*Player
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:  1,
		games:   make(map[int64]*Game),
		players: make(map[int64]map[string]*Player),
	}
}

func playerKey(username string) string {
	return strings.ToLower(username)
}

func cloneGame(g *Game) *Game {
	cp := *g
	cp.Board = g.Board.Clone()
	return &cp
}

func clonePlayer(p *Player) *Player {
	cp := *p
	cp.Hand = p.Hand.Clone()
	return &cp
}

// CreateGame creates a new game
func (m *MemoryStore) CreateGame(_ context.Context, name string) (*Game, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	g := &Game{
		ID:      m.nextID,
		Name:    name,
		Board:   deck.Hand{},
		LastBet: 1,
	}

	m.nextID++
	m.games[g.ID] = g
	m.players[g.ID] = make(map[string]*Player)

	return cloneGame(g), nil
}

// GameExists returns true if the game exists
func (m *MemoryStore) GameExists(_ context.Context, gameID int64) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	_, ok := m.games[gameID]
	return ok, nil
}

// GetGame returns a copy of the game record
func (m *MemoryStore) GetGame(_ context.Context, gameID int64) (*Game, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	g, ok := m.games[gameID]
	if !ok {
		return nil, gameNotFound(gameID)
	}

	return cloneGame(g), nil
}

// ListGames returns every game ordered by ID
func (m *MemoryStore) ListGames(_ context.Context) ([]*Game, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	games := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, cloneGame(g))
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].ID < games[j].ID
	})

	return games, nil
}

// updateGame runs fn against the live record under the write lock
func (m *MemoryStore) updateGame(gameID int64, fn func(g *Game)) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	g, ok := m.games[gameID]
	if !ok {
		return gameNotFound(gameID)
	}

	fn(g)
	return nil
}

// readGame runs fn against the live record under the read lock
func (m *MemoryStore) readGame(gameID int64, fn func(g *Game)) error {
	m.lock.RLock()
	defer m.lock.RUnlock()

	g, ok := m.games[gameID]
	if !ok {
		return gameNotFound(gameID)
	}

	fn(g)
	return nil
}

// SetStarted sets the started flag
func (m *MemoryStore) SetStarted(_ context.Context, gameID int64, started bool) error {
	return m.updateGame(gameID, func(g *Game) {
		g.Started = started
	})
}

// GetBoard returns the community cards
func (m *MemoryStore) GetBoard(_ context.Context, gameID int64) (deck.Hand, error) {
	var board deck.Hand
	err := m.readGame(gameID, func(g *Game) {
		board = g.Board.Clone()
	})

	return board, err
}

// SetBoard replaces or appends to the community cards
func (m *MemoryStore) SetBoard(_ context.Context, gameID int64, cards deck.Hand, add bool) error {
	return m.updateGame(gameID, func(g *Game) {
		if add {
			g.Board = append(g.Board, cards.Clone()...)
			return
		}

		g.Board = cards.Clone()
	})
}

// GetPot returns the current pot
func (m *MemoryStore) GetPot(_ context.Context, gameID int64) (int, error) {
	var pot int
	err := m.readGame(gameID, func(g *Game) {
		pot = g.CurrentPot
	})

	return pot, err
}

// SetPot sets or adds to the pot
func (m *MemoryStore) SetPot(_ context.Context, gameID int64, value int, add bool) error {
	return m.updateGame(gameID, func(g *Game) {
		if add {
			g.CurrentPot += value
			return
		}

		g.CurrentPot = value
	})
}

// GetPlayerTurn returns the username whose action is awaited
func (m *MemoryStore) GetPlayerTurn(_ context.Context, gameID int64) (string, error) {
	var username string
	err := m.readGame(gameID, func(g *Game) {
		username = g.PlayerTurn
	})

	return username, err
}

// SetPlayerTurn sets the username whose action is awaited
func (m *MemoryStore) SetPlayerTurn(_ context.Context, gameID int64, username string) error {
	return m.updateGame(gameID, func(g *Game) {
		g.PlayerTurn = username
	})
}

// GetPlayerEndRound returns the round-closer
func (m *MemoryStore) GetPlayerEndRound(_ context.Context, gameID int64) (string, error) {
	var username string
	err := m.readGame(gameID, func(g *Game) {
		username = g.PlayerEndRound
	})

	return username, err
}

// SetPlayerEndRound sets the round-closer
func (m *MemoryStore) SetPlayerEndRound(_ context.Context, gameID int64, username string) error {
	return m.updateGame(gameID, func(g *Game) {
		g.PlayerEndRound = username
	})
}

// GetLastBet returns the bet level to match
func (m *MemoryStore) GetLastBet(_ context.Context, gameID int64) (int, error) {
	var lastBet int
	err := m.readGame(gameID, func(g *Game) {
		lastBet = g.LastBet
	})

	return lastBet, err
}

// SetLastBet sets the bet level to match
func (m *MemoryStore) SetLastBet(_ context.Context, gameID int64, value int) error {
	return m.updateGame(gameID, func(g *Game) {
		g.LastBet = value
	})
}

// CreatePlayer registers a new player
func (m *MemoryStore) CreatePlayer(_ context.Context, player *Player) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	players, ok := m.players[player.GameID]
	if !ok {
		return gameNotFound(player.GameID)
	}

	key := playerKey(player.Username)
	if _, found := players[key]; found {
		return ErrDuplicateKey
	}

	p := clonePlayer(player)
	if p.Hand == nil {
		p.Hand = deck.Hand{}
	}

	players[key] = p
	return nil
}

// GetPlayer returns a copy of the player record
func (m *MemoryStore) GetPlayer(_ context.Context, gameID int64, username string) (*Player, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	p, ok := m.players[gameID][playerKey(username)]
	if !ok {
		return nil, playerNotFound(gameID, username)
	}

	return clonePlayer(p), nil
}

// PlayerExists returns true if the username is seated in the game
func (m *MemoryStore) PlayerExists(_ context.Context, gameID int64, username string) (bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	_, ok := m.players[gameID][playerKey(username)]
	return ok, nil
}

// RemovePlayer deletes the player record
func (m *MemoryStore) RemovePlayer(_ context.Context, gameID int64, username string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	players, ok := m.players[gameID]
	if !ok {
		return gameNotFound(gameID)
	}

	delete(players, playerKey(username))
	return nil
}

// ListPlayers returns the players ordered by seat index
func (m *MemoryStore) ListPlayers(_ context.Context, gameID int64, includeFolded bool) ([]*Player, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	players, ok := m.players[gameID]
	if !ok {
		return nil, gameNotFound(gameID)
	}

	list := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Folded && !includeFolded {
			continue
		}

		list = append(list, clonePlayer(p))
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].SeatIndex < list[j].SeatIndex
	})

	return list, nil
}

// CountPlayers returns the number of seated players
func (m *MemoryStore) CountPlayers(_ context.Context, gameID int64) (int, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	players, ok := m.players[gameID]
	if !ok {
		return 0, gameNotFound(gameID)
	}

	return len(players), nil
}

func (m *MemoryStore) updatePlayer(gameID int64, username string, fn func(p *Player)) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	p, ok := m.players[gameID][playerKey(username)]
	if !ok {
		return playerNotFound(gameID, username)
	}

	fn(p)
	return nil
}

// SetMoney sets or adds to the player's balance
func (m *MemoryStore) SetMoney(_ context.Context, gameID int64, username string, value int, add bool) error {
	return m.updatePlayer(gameID, username, func(p *Player) {
		if add {
			p.Money += value
			return
		}

		p.Money = value
	})
}

// SetBet sets or adds to the player's bet for the current round
func (m *MemoryStore) SetBet(_ context.Context, gameID int64, username string, value int, add bool) error {
	return m.updatePlayer(gameID, username, func(p *Player) {
		if add {
			p.Bet += value
			return
		}

		p.Bet = value
	})
}

// SetHand replaces the player's hole cards
func (m *MemoryStore) SetHand(_ context.Context, gameID int64, username string, hand deck.Hand) error {
	return m.updatePlayer(gameID, username, func(p *Player) {
		p.Hand = hand.Clone()
	})
}

// SetFolded sets the folded flag
func (m *MemoryStore) SetFolded(_ context.Context, gameID int64, username string, folded bool) error {
	return m.updatePlayer(gameID, username, func(p *Player) {
		p.Folded = folded
	})
}

// ResetBets clears every bet in the game
func (m *MemoryStore) ResetBets(_ context.Context, gameID int64) error {
	return m.eachPlayer(gameID, func(p *Player) {
		p.Bet = 0
	})
}

// UnfoldAll clears every folded flag in the game
func (m *MemoryStore) UnfoldAll(_ context.Context, gameID int64) error {
	return m.eachPlayer(gameID, func(p *Player) {
		p.Folded = false
	})
}

func (m *MemoryStore) eachPlayer(gameID int64, fn func(p *Player)) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	players, ok := m.players[gameID]
	if !ok {
		return gameNotFound(gameID)
	}

	for _, p := range players {
		fn(p)
	}

	return nil
}
