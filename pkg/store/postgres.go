package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"holdem-server/pkg/deck"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	_ "github.com/golang-migrate/migrate/v4/source/file" // needed
)

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

const gameColumns = `
games.id,
games.name,
games.started,
games.board,
games.current_pot,
games.player_turn,
games.player_end_round,
games.last_bet`

const playerColumns = `
players.game_id,
players.username,
players.avatar_id,
players.seat_index,
players.money,
players.hand,
players.bet,
players.folded,
players.session`

// Scanner is an interface that sql should've provided
type Scanner interface {
	Scan(...interface{}) error
}

// OpenPostgres opens and pings a postgres connection
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs the migrations found in migrationsPath
func Migrate(db *sql.DB, migrationsPath string) error {
	logrus.WithField("migrationsPath", migrationsPath).Info("running migrations")
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsPath), "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// PostgresStore persists games and players in postgres
// Add-mode updates are a single UPDATE statement, so each call is atomic.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns a store backed by db
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func gameByRow(row Scanner) (*Game, error) {
	var g Game
	var board string
	if err := row.Scan(&g.ID, &g.Name, &g.Started, &board, &g.CurrentPot, &g.PlayerTurn, &g.PlayerEndRound, &g.LastBet); err != nil {
		return nil, err
	}

	cards, err := deck.CardsFromString(board)
	if err != nil {
		return nil, fmt.Errorf("game %d board: %w", g.ID, err)
	}

	g.Board = cards
	return &g, nil
}

func playerByRow(row Scanner) (*Player, error) {
	var p Player
	var hand string
	if err := row.Scan(&p.GameID, &p.Username, &p.AvatarID, &p.SeatIndex, &p.Money, &hand, &p.Bet, &p.Folded, &p.Session); err != nil {
		return nil, err
	}

	cards, err := deck.CardsFromString(hand)
	if err != nil {
		return nil, fmt.Errorf("player %q hand: %w", p.Username, err)
	}

	p.Hand = cards
	return &p, nil
}

// exec runs a statement and reports ErrNotFound when no row was touched
func (p *PostgresStore) exec(ctx context.Context, notFound error, query string, args ...interface{}) error {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	if ra, err := res.RowsAffected(); err == nil && ra == 0 {
		return notFound
	}

	return nil
}

// CreateGame creates a new game
func (p *PostgresStore) CreateGame(ctx context.Context, name string) (*Game, error) {
	const query = `
INSERT INTO games (name)
VALUES ($1)
RETURNING ` + gameColumns

	return gameByRow(p.db.QueryRowContext(ctx, query, name))
}

// GameExists returns true if the game exists
func (p *PostgresStore) GameExists(ctx context.Context, gameID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`

	var exists bool
	if err := p.db.QueryRowContext(ctx, query, gameID).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// GetGame returns the game record
func (p *PostgresStore) GetGame(ctx context.Context, gameID int64) (*Game, error) {
	const query = `
SELECT ` + gameColumns + `
FROM games
WHERE id = $1`

	g, err := gameByRow(p.db.QueryRowContext(ctx, query, gameID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameNotFound(gameID)
	}

	return g, err
}

// ListGames returns every game ordered by ID
func (p *PostgresStore) ListGames(ctx context.Context) ([]*Game, error) {
	const query = `
SELECT ` + gameColumns + `
FROM games
ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]*Game, 0)
	for rows.Next() {
		g, err := gameByRow(rows)
		if err != nil {
			return nil, err
		}

		games = append(games, g)
	}

	return games, rows.Err()
}

// SetStarted sets the started flag
func (p *PostgresStore) SetStarted(ctx context.Context, gameID int64, started bool) error {
	return p.exec(ctx, gameNotFound(gameID), `UPDATE games SET started = $1 WHERE id = $2`, started, gameID)
}

// GetBoard returns the community cards
func (p *PostgresStore) GetBoard(ctx context.Context, gameID int64) (deck.Hand, error) {
	var board string
	err := p.db.QueryRowContext(ctx, `SELECT board FROM games WHERE id = $1`, gameID).Scan(&board)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, gameNotFound(gameID)
	} else if err != nil {
		return nil, err
	}

	return deck.CardsFromString(board)
}

// SetBoard replaces or appends to the community cards
func (p *PostgresStore) SetBoard(ctx context.Context, gameID int64, cards deck.Hand, add bool) error {
	if !add {
		return p.exec(ctx, gameNotFound(gameID), `UPDATE games SET board = $1 WHERE id = $2`, deck.CardsToString(cards), gameID)
	}

	if len(cards) == 0 {
		return nil
	}

	const query = `
UPDATE games
SET board = CASE WHEN board = '' THEN $1 ELSE board || ',' || $1 END
WHERE id = $2`
	return p.exec(ctx, gameNotFound(gameID), query, deck.CardsToString(cards), gameID)
}

func (p *PostgresStore) getGameInt(ctx context.Context, gameID int64, column string) (int, error) {
	var val int
	err := p.db.QueryRowContext(ctx, `SELECT `+column+` FROM games WHERE id = $1`, gameID).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, gameNotFound(gameID)
	}

	return val, err
}

func (p *PostgresStore) getGameString(ctx context.Context, gameID int64, column string) (string, error) {
	var val string
	err := p.db.QueryRowContext(ctx, `SELECT `+column+` FROM games WHERE id = $1`, gameID).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", gameNotFound(gameID)
	}

	return val, err
}

// GetPot returns the current pot
func (p *PostgresStore) GetPot(ctx context.Context, gameID int64) (int, error) {
	return p.getGameInt(ctx, gameID, "current_pot")
}

// SetPot sets or adds to the pot
func (p *PostgresStore) SetPot(ctx context.Context, gameID int64, value int, add bool) error {
	if add {
		return p.exec(ctx, gameNotFound(gameID), `UPDATE games SET current_pot = current_pot + $1 WHERE id = $2`, value, gameID)
	}

	return p.exec(ctx, gameNotFound(gameID), `UPDATE games SET current_pot = $1 WHERE id = $2`, value, gameID)
}

// GetPlayerTurn returns the username whose action is awaited
func (p *PostgresStore) GetPlayerTurn(ctx context.Context, gameID int64) (string, error) {
	return p.getGameString(ctx, gameID, "player_turn")
}

// SetPlayerTurn sets the username whose action is awaited
func (p *PostgresStore) SetPlayerTurn(ctx context.Context, gameID int64, username string) error {
	return p.exec(ctx, gameNotFound(gameID), `UPDATE games SET player_turn = $1 WHERE id = $2`, username, gameID)
}

// GetPlayerEndRound returns the round-closer
func (p *PostgresStore) GetPlayerEndRound(ctx context.Context, gameID int64) (string, error) {
	return p.getGameString(ctx, gameID, "player_end_round")
}

// SetPlayerEndRound sets the round-closer
func (p *PostgresStore) SetPlayerEndRound(ctx context.Context, gameID int64, username string) error {
	return p.exec(ctx, gameNotFound(gameID), `UPDATE games SET player_end_round = $1 WHERE id = $2`, username, gameID)
}

// GetLastBet returns the bet level to match
func (p *PostgresStore) GetLastBet(ctx context.Context, gameID int64) (int, error) {
	return p.getGameInt(ctx, gameID, "last_bet")
}

// SetLastBet sets the bet level to match
func (p *PostgresStore) SetLastBet(ctx context.Context, gameID int64, value int) error {
	return p.exec(ctx, gameNotFound(gameID), `UPDATE games SET last_bet = $1 WHERE id = $2`, value, gameID)
}

// CreatePlayer registers a new player
func (p *PostgresStore) CreatePlayer(ctx context.Context, player *Player) error {
	const query = `
INSERT INTO players (game_id, username, avatar_id, seat_index, money, hand, bet, folded, session)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := p.db.ExecContext(ctx, query, player.GameID, player.Username, player.AvatarID, player.SeatIndex,
		player.Money, deck.CardsToString(player.Hand), player.Bet, player.Folded, player.Session)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode {
			return ErrDuplicateKey
		}

		return err
	}

	return nil
}

// GetPlayer returns the player record. Usernames match case-insensitively
func (p *PostgresStore) GetPlayer(ctx context.Context, gameID int64, username string) (*Player, error) {
	const query = `
SELECT ` + playerColumns + `
FROM players
WHERE game_id = $1
  AND lower(username) = lower($2)`

	player, err := playerByRow(p.db.QueryRowContext(ctx, query, gameID, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, playerNotFound(gameID, username)
	}

	return player, err
}

// PlayerExists returns true if the username is seated in the game
func (p *PostgresStore) PlayerExists(ctx context.Context, gameID int64, username string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM players WHERE game_id = $1 AND lower(username) = lower($2))`

	var exists bool
	if err := p.db.QueryRowContext(ctx, query, gameID, username).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// RemovePlayer deletes the player record
func (p *PostgresStore) RemovePlayer(ctx context.Context, gameID int64, username string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM players WHERE game_id = $1 AND lower(username) = lower($2)`, gameID, username)
	return err
}

// ListPlayers returns the players ordered by seat index
func (p *PostgresStore) ListPlayers(ctx context.Context, gameID int64, includeFolded bool) ([]*Player, error) {
	const query = `
SELECT ` + playerColumns + `
FROM players
WHERE game_id = $1
  AND ($2::boolean OR NOT folded)
ORDER BY seat_index`

	rows, err := p.db.QueryContext(ctx, query, gameID, includeFolded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*Player, 0)
	for rows.Next() {
		player, err := playerByRow(rows)
		if err != nil {
			return nil, err
		}

		players = append(players, player)
	}

	return players, rows.Err()
}

// CountPlayers returns the number of seated players
func (p *PostgresStore) CountPlayers(ctx context.Context, gameID int64) (int, error) {
	var count int
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players WHERE game_id = $1`, gameID).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (p *PostgresStore) updatePlayer(ctx context.Context, gameID int64, username, set string, value interface{}) error {
	query := `UPDATE players SET ` + set + ` WHERE game_id = $2 AND lower(username) = lower($3)`
	return p.exec(ctx, playerNotFound(gameID, username), query, value, gameID, username)
}

// SetMoney sets or adds to the player's balance
func (p *PostgresStore) SetMoney(ctx context.Context, gameID int64, username string, value int, add bool) error {
	if add {
		return p.updatePlayer(ctx, gameID, username, "money = money + $1", value)
	}

	return p.updatePlayer(ctx, gameID, username, "money = $1", value)
}

// SetBet sets or adds to the player's bet for the current round
func (p *PostgresStore) SetBet(ctx context.Context, gameID int64, username string, value int, add bool) error {
	if add {
		return p.updatePlayer(ctx, gameID, username, "bet = bet + $1", value)
	}

	return p.updatePlayer(ctx, gameID, username, "bet = $1", value)
}

// SetHand replaces the player's hole cards
func (p *PostgresStore) SetHand(ctx context.Context, gameID int64, username string, hand deck.Hand) error {
	return p.updatePlayer(ctx, gameID, username, "hand = $1", deck.CardsToString(hand))
}

// SetFolded sets the folded flag
func (p *PostgresStore) SetFolded(ctx context.Context, gameID int64, username string, folded bool) error {
	return p.updatePlayer(ctx, gameID, username, "folded = $1", folded)
}

// ResetBets clears every bet in the game
func (p *PostgresStore) ResetBets(ctx context.Context, gameID int64) error {
	_, err := p.db.ExecContext(ctx, `UPDATE players SET bet = 0 WHERE game_id = $1`, gameID)
	return err
}

// UnfoldAll clears every folded flag in the game
func (p *PostgresStore) UnfoldAll(ctx context.Context, gameID int64) error {
	_, err := p.db.ExecContext(ctx, `UPDATE players SET folded = false WHERE game_id = $1`, gameID)
	return err
}
