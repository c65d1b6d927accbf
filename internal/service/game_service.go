package service

import (
	"fmt"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chess-backend/internal/chess"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
)

type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

func (gs *GameService) JoinGame(gameID string, playerID string) (chess.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) CreateGame() (string, error) {
	gameID := uuid.New().String()

	if err := gs.gameManager.CreateGame(gameID); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	return gameID, nil
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	return gs.gameManager.GetGameState(gameID)
}

// LegalMoves lists the destinations of the piece on square, given in
// algebraic notation such as "e2".
func (gs *GameService) LegalMoves(gameID string, square string) ([]chess.Position, error) {
	pos, err := chess.ParseSquare(square)
	if err != nil {
		return nil, err
	}
	return gs.gameManager.LegalMoves(gameID, pos)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move ws.MovePayload) error {
	return gs.gameManager.MakeMove(gameID, playerID, model.MoveRequest(move))
}

func (gs *GameService) HandleAction(gameID string, playerID string, action ws.MessageType) error {
	return gs.gameManager.Act(gameID, playerID, action)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

// SendError reports a failed request on the player's game connection.
func (gs *GameService) SendError(gameID string, playerID string, text string) {
	msg := ws.MustMessage(ws.MessageTypeError, ws.ErrorPayload{Error: text})
	if err := gs.gameManager.Send(gameID, playerID, msg); err != nil {
		log.Debugf("game %s: error for %s not sent: %v", gameID, playerID, err)
	}
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string) {
	gs.gameManager.UnregisterConnection(gameID, playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan ws.Message) error {
	return gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan ws.Message) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) ArchivedGame(gameID string) (model.Record, error) {
	return gs.gameManager.ArchivedGame(gameID)
}

func (gs *GameService) ArchivedGames() ([]model.Record, error) {
	return gs.gameManager.ArchivedGames()
}
