package mux

import (
	"net/http"
	"time"

	"holdem-server/pkg/room"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	closeGrace     = time.Second
	leftGameReason = "left the game"
)

func (m *Mux) getGameWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		player := contextPlayer(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Error("could not upgrade connection")
			return
		}

		client := room.NewClient(conn, player.GameID, player.Username)
		log := logrus.WithField("client", client.String())

		if err := m.pitBoss.ClientConnected(client); err != nil {
			log.WithError(err).Error("could not connect client")
			writeClose(conn, websocket.CloseInternalServerErr, err.Error())
			_ = conn.Close()
			return
		}

		readDone := make(chan struct{})
		go m.webSocketWriteLoop(client, log, readDone)

		m.webSocketReadLoop(client, log)
		close(readDone)
		m.pitBoss.ClientDisconnected(client)
		_ = conn.Close()
	}
}

// webSocketWriteLoop pushes queued responses and keeps the connection alive
// After a "left" response the player has no seat to watch, so the socket is closed normally.
func (m *Mux) webSocketWriteLoop(client *room.Client, log *logrus.Entry, readDone <-chan struct{}) {
	conn := client.Conn()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.WithError(err).Debug("ping failed")
				_ = conn.Close()
				return
			}
		case first := <-client.Outbox():
			for _, res := range client.Collect(first) {
				log.WithField("key", res.Key).WithField("context", res.Context).Trace("sending response")

				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(res); err != nil {
					log.WithError(err).Error("could not write message")
					_ = conn.Close()
					return
				}

				if room.IsLeft(res) {
					log.Debug("player left, closing connection")
					writeClose(conn, websocket.CloseNormalClosure, leftGameReason)
					// the read loop ends once the peer answers
					select {
					case <-readDone:
					case <-time.After(closeGrace):
						_ = conn.Close()
					}
					return
				}
			}
		}
	}
}

// webSocketReadLoop hands every frame to the client until the connection ends
func (m *Mux) webSocketReadLoop(client *room.Client, log *logrus.Entry) {
	conn := client.Conn()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Error("could not read message")
			} else {
				log.WithError(err).Debug("connection closed")
			}
			return
		}

		client.Received(data)
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}
