package room

import (
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
)

type turnKey struct {
	gameID   int64
	username string
}

type pendingKick struct {
	key   turnKey
	gen   uint64
	timer *quartz.Timer
}

// turnTimer holds at most one pending kick per game
type turnTimer struct {
	clock   quartz.Clock
	timeout time.Duration

	lock    sync.Mutex
	gen     uint64
	pending map[int64]*pendingKick
}

func newTurnTimer(clock quartz.Clock, timeout time.Duration) *turnTimer {
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &turnTimer{
		clock:   clock,
		timeout: timeout,
		pending: make(map[int64]*pendingKick),
	}
}

// Update schedules expire for the player holding the turn
// The running timer is kept while the same player holds the turn and somebody else acted.
// An empty turn cancels the timer.
func (t *turnTimer) Update(gameID int64, turn, actor string, expire func(username string, gen uint64)) {
	if t.timeout <= 0 {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	current, ok := t.pending[gameID]
	if ok && turn != "" && strings.EqualFold(current.key.username, turn) && !strings.EqualFold(actor, turn) {
		return
	}

	if ok {
		current.timer.Stop()
		delete(t.pending, gameID)
	}

	if turn == "" {
		return
	}

	t.gen++
	gen := t.gen
	t.pending[gameID] = &pendingKick{
		key: turnKey{gameID: gameID, username: turn},
		gen: gen,
		timer: t.clock.AfterFunc(t.timeout, func() {
			go expire(turn, gen)
		}),
	}
}

// IsCurrent returns true if the timer identified by gen is still the game's pending kick
func (t *turnTimer) IsCurrent(gameID int64, username string, gen uint64) bool {
	t.lock.Lock()
	defer t.lock.Unlock()

	current, ok := t.pending[gameID]
	return ok && current.gen == gen && strings.EqualFold(current.key.username, username)
}

// Pending returns the username with a pending kick in gameID
func (t *turnTimer) Pending(gameID int64) (string, bool) {
	t.lock.Lock()
	defer t.lock.Unlock()

	current, ok := t.pending[gameID]
	if !ok {
		return "", false
	}

	return current.key.username, true
}

// Cancel stops the game's pending kick
func (t *turnTimer) Cancel(gameID int64) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if current, ok := t.pending[gameID]; ok {
		current.timer.Stop()
		delete(t.pending, gameID)
	}
}
