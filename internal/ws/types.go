package ws

import (
	"encoding/json"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

// Client to server.
const (
	MessageTypeSendMove    MessageType = "sendMove"
	MessageTypeResign      MessageType = "resign"
	MessageTypeOfferDraw   MessageType = "offerDraw"
	MessageTypeAcceptDraw  MessageType = "acceptDraw"
	MessageTypeDeclineDraw MessageType = "declineDraw"
)

// Server to client. The draw messages above are relayed to the opponent
// under the same names.
const (
	MessageTypeMoveAccepted MessageType = "moveAccepted"
	MessageTypeMoveRejected MessageType = "moveRejected"
	MessageTypeOpponentMove MessageType = "opponentMove"
	MessageTypeGameOver     MessageType = "gameOver"
	MessageTypeGameState    MessageType = "gameState"
	MessageTypeMatchFound   MessageType = "matchFound"
	MessageTypeError        MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload carries sendMove and opponentMove. Promotion is only set for
// a pawn reaching the last rank.
type MovePayload struct {
	From      chess.Position  `json:"from"`
	To        chess.Position  `json:"to"`
	Promotion chess.PieceType `json:"promotion,omitempty"`
}

type MoveRejectedPayload struct {
	Reason string `json:"reason"`
}

type GameOverPayload struct {
	Status chess.Status `json:"status"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage wraps payload in an envelope. A nil payload is left out.
func NewMessage(t MessageType, payload interface{}) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = data
	return msg, nil
}

// MustMessage is NewMessage for payloads that always marshal.
func MustMessage(t MessageType, payload interface{}) Message {
	msg, err := NewMessage(t, payload)
	if err != nil {
		panic(err)
	}
	return msg
}
