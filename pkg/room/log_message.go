package room

import (
	"holdem-server/pkg/holdem"
)

const logMessageLimit = 25

// addLogMessage keeps the most recent messages and forwards msg to connected clients
func (d *Dealer) addLogMessage(msg *holdem.LogMessage) {
	d.lock.Lock()
	m := append(d.logMessages, msg)
	if count := len(m); count > logMessageLimit {
		m = m[count-logMessageLimit:]
	}

	d.logMessages = m
	d.lock.Unlock()

	for _, client := range d.Clients() {
		client.Send(&Response{
			Key:  "logs",
			Data: []*holdem.LogMessage{msg},
		})
	}
}

// LogMessages returns the most recent log messages for the game
func (d *Dealer) LogMessages() []*holdem.LogMessage {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return append([]*holdem.LogMessage(nil), d.logMessages...)
}
