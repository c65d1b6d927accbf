package model

import (
	"time"

	"github.com/benbeisheim/chess-backend/internal/chess"
)

// MoveRequest is a move as submitted by a player. Promotion must be set
// when a pawn reaches the last rank.
type MoveRequest struct {
	From      chess.Position  `json:"from"`
	To        chess.Position  `json:"to"`
	Promotion chess.PieceType `json:"promotion,omitempty"`
}

// GameState is the snapshot broadcast to clients after every change.
type GameState struct {
	ID               string                  `json:"id"`
	FEN              string                  `json:"fen"`
	Board            [8][8]*chess.Piece      `json:"board"`
	ToMove           chess.Color             `json:"toMove"`
	IsCheck          bool                    `json:"isCheck"`
	Status           chess.Status            `json:"status"`
	PendingPromotion *chess.PendingPromotion `json:"pendingPromotion"`
	EnPassant        *chess.EnPassant        `json:"enPassant"`
	Castling         chess.CastlingRights    `json:"castling"`
	HalfMoveClock    int                     `json:"halfMoveClock"`
	LastMove         *chess.MoveRecord       `json:"lastMove"`
	MoveHistory      []string                `json:"moveHistory"`
	DrawOfferedBy    chess.Color             `json:"drawOfferedBy,omitempty"`
	Players          struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

// Record is what is kept of a finished match.
type Record struct {
	ID        string       `json:"id"`
	White     string       `json:"white"`
	Black     string       `json:"black"`
	Status    chess.Status `json:"status"`
	Moves     []string     `json:"moves"`
	FinalFEN  string       `json:"finalFen"`
	StartedAt time.Time    `json:"startedAt"`
	EndedAt   time.Time    `json:"endedAt"`
}
