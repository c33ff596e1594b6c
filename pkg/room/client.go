package room

import (
	"encoding/json"
	"errors"
	"fmt"

	"holdem-server/pkg/holdem"

	"github.com/gorilla/websocket"
)

const outboxSize = 256

var (
	errInvalidPayload = errors.New("invalid message")
	errNoDealer       = errors.New("game is closed")
)

// Client is one websocket connection watching a game as a seated player
type Client struct {
	conn   *websocket.Conn
	outbox chan *Response
	dealer *Dealer

	gameID   int64
	username string
}

// NewClient returns a client for username watching gameID
func NewClient(conn *websocket.Conn, gameID int64, username string) *Client {
	return &Client{
		conn:     conn,
		outbox:   make(chan *Response, outboxSize),
		gameID:   gameID,
		username: username,
	}
}

// Conn returns the underlying websocket connection
func (c *Client) Conn() *websocket.Conn {
	return c.conn
}

// Send queues res for the client
// Returns false when the outbox is full and the response was dropped.
func (c *Client) Send(res *Response) bool {
	select {
	case c.outbox <- res:
		return true
	default:
		return false
	}
}

// Outbox returns the queued responses
func (c *Client) Outbox() <-chan *Response {
	return c.outbox
}

// Collect returns first followed by everything already queued, compacted for writing
// Adjacent "logs" responses are merged into one and a "game" state immediately
// followed by a newer one is dropped. Anything after a "left" response is discarded
// since the connection ends there.
func (c *Client) Collect(first *Response) []*Response {
	batch := []*Response{first}
	for len(batch) < outboxSize && !IsLeft(batch[len(batch)-1]) {
		select {
		case res := <-c.outbox:
			batch = appendCompacted(batch, res)
		default:
			return batch
		}
	}

	return batch
}

func appendCompacted(batch []*Response, res *Response) []*Response {
	last := batch[len(batch)-1]
	switch {
	case last.Key == "game" && res.Key == "game":
		batch[len(batch)-1] = res
		return batch
	case last.Key == "logs" && res.Key == "logs":
		prev, ok1 := last.Data.([]*holdem.LogMessage)
		next, ok2 := res.Data.([]*holdem.LogMessage)
		if ok1 && ok2 {
			merged := append(append([]*holdem.LogMessage(nil), prev...), next...)
			batch[len(batch)-1] = &Response{Key: "logs", Data: merged}
			return batch
		}
	}

	return append(batch, res)
}

// IsLeft reports whether res tells the client its player is gone from the table
func IsLeft(res *Response) bool {
	return res != nil && res.Key == "left"
}

// GameID returns the game the client is watching
func (c *Client) GameID() int64 {
	return c.gameID
}

// Username returns the player the client is connected as
func (c *Client) Username() string {
	return c.username
}

// String returns a traceable identifier for the player and game
func (c *Client) String() string {
	return fmt.Sprintf("%s:%d", c.username, c.gameID)
}

// Received decodes a raw websocket frame and hands it to the dealer
// A frame that is not a valid payload is answered with an error and the connection stays open.
func (c *Client) Received(data []byte) {
	var msg PayloadIn
	if err := json.Unmarshal(data, &msg); err != nil {
		c.Send(newErrorResponse("", errInvalidPayload))
		return
	}

	c.ReceivedMessage(&msg)
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *PayloadIn) {
	if c.dealer == nil {
		c.Send(newErrorResponse(msg.Context, errNoDealer))
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
