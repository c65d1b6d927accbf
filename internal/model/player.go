package model

import (
	"github.com/benbeisheim/chess-backend/internal/chess"
)

type Player struct {
	ID string
}

// MatchFoundEvent tells a queued player which game they were paired into.
type MatchFoundEvent struct {
	GameID string      `json:"gameId"`
	Color  chess.Color `json:"color"`
}

// ClientPlayer is a seat as clients see it. TimeLeft is in deciseconds.
type ClientPlayer struct {
	ID       string      `json:"name"`
	Color    chess.Color `json:"color"`
	TimeLeft int         `json:"timeLeft"`
}

type seat struct {
	id    string
	clock *Clock
}

func (s *seat) taken() bool {
	return s.id != ""
}

func (s *seat) client(c chess.Color) ClientPlayer {
	return ClientPlayer{
		ID:       s.id,
		Color:    c,
		TimeLeft: s.clock.Deciseconds(),
	}
}
