package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves one player's game socket until it closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Locals("wsGameID").(string)
	playerID := c.Locals("wsPlayerID").(string)

	// Register this connection with the game
	if err := wsc.gameService.RegisterConnection(gameID, playerID, c); err != nil {
		log.Warnf("game %s: failed to register connection for %s: %v", gameID, playerID, err)
		// A duplicate has already been closed by the match.
		if !errors.Is(err, model.ErrAlreadyConnected) {
			wsc.sendError(c, err.Error())
			c.Close()
		}
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID)

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read from %s: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.gameService.SendError(gameID, playerID, "malformed message")
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: %s from %s: %v", gameID, msg.Type, playerID, err)
			// Rejected moves are answered by the match itself.
			if msg.Type != ws.MessageTypeSendMove {
				wsc.gameService.SendError(gameID, playerID, err.Error())
			}
		}
	}
}

// Handle different types of incoming messages
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeSendMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeResign, ws.MessageTypeOfferDraw,
		ws.MessageTypeAcceptDraw, ws.MessageTypeDeclineDraw:
		return wsc.gameService.HandleAction(gameID, playerID, msg.Type)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking waits on the player's matchmaking socket until a game
// is found or the socket closes.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := c.Locals("wsPlayerID").(string)

	ch := make(chan ws.Message, 1)
	if err := wsc.gameService.RegisterMatchmakingChannel(playerID, ch); err != nil {
		wsc.sendError(c, err.Error())
		c.Close()
		return
	}

	// The client sends nothing; reading only notices the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case msg, ok := <-ch:
		if !ok {
			// Replaced by a newer socket for the same player.
			c.Close()
			<-closed
			return
		}
		if err := c.WriteJSON(msg); err != nil {
			log.Warnf("matchmaking: notify %s: %v", playerID, err)
		}
		c.Close()
		<-closed
	case <-closed:
		// A matchFound that raced the close is kept for the next socket.
		wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)
	}
}

// sendError writes to a socket no match knows about yet.
func (wsc *WebSocketController) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(ws.MustMessage(ws.MessageTypeError, ws.ErrorPayload{Error: errorMsg}))
}
