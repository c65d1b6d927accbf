package model

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/ws"
)

// Conn is the part of a websocket connection a match writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

var _ Conn = (*websocket.Conn)(nil)

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// add registers conn for playerID unless the player already has a live
// connection, in which case the new one is closed and false returned.
func (gc *GameConnections) add(playerID string, conn Conn) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if _, exists := gc.connections[playerID]; exists {
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		conn.Close()
		return false
	}
	gc.connections[playerID] = conn
	return true
}

func (gc *GameConnections) remove(playerID string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	delete(gc.connections, playerID)
}

func (gc *GameConnections) count() int {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return len(gc.connections)
}

// envelope is a message for one player, or for every connection when to is
// empty.
type envelope struct {
	to  string
	msg ws.Message
}

type outbox []envelope

func (o *outbox) send(to string, msg ws.Message) {
	*o = append(*o, envelope{to: to, msg: msg})
}

func (o *outbox) broadcast(msg ws.Message) {
	o.send("", msg)
}

// hold takes the delivery lock. A match calls it before releasing its own
// lock, so batches reach the connections in the order they were built.
// Lock order is match, then connections.
func (gc *GameConnections) hold() {
	gc.mu.Lock()
}

// flush writes every message in out and releases the lock taken by hold.
// A connection that fails a write is dropped.
func (gc *GameConnections) flush(out outbox) {
	defer gc.mu.Unlock()

	for _, env := range out {
		for playerID, conn := range gc.connections {
			if env.to != "" && env.to != playerID {
				continue
			}
			if err := conn.WriteJSON(env.msg); err != nil {
				log.Warnf("dropping connection of player %s: %v", playerID, err)
				delete(gc.connections, playerID)
			}
		}
	}
}

// deliver is hold and flush for callers outside the match lock.
func (gc *GameConnections) deliver(out outbox) {
	if len(out) == 0 {
		return
	}
	gc.hold()
	gc.flush(out)
}
