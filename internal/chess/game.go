package chess

import (
	"fmt"
	"strings"
)

// MoveRecord is one committed ply.
type MoveRecord struct {
	From      Position  `json:"from"`
	To        Position  `json:"to"`
	Piece     Piece     `json:"piece"`
	Captured  Piece     `json:"captured"`
	Promotion PieceType `json:"promotion,omitempty"`
	Castled   bool      `json:"castled,omitempty"`
}

// String returns the move in coordinate notation, e.g. "e2e4" or "e7e8q".
func (m MoveRecord) String() string {
	s := m.From.String() + m.To.String()
	if m.Promotion != "" {
		s += string(m.Promotion.Letter())
	}
	return s
}

// Game owns one board, its match state and the repetition table. It is the
// only type callers outside the package need. A Game is single-writer: the
// owner serializes all calls.
type Game struct {
	board   *Board
	state   *MatchState
	reps    *RepetitionTracker
	history []MoveRecord
}

// NewGame starts a game from the standard opening position.
func NewGame() *Game {
	return newGame(NewBoard(), NewMatchState())
}

// NewGameFromFEN starts a game from an arbitrary position.
func NewGameFromFEN(fen string) (*Game, error) {
	board, state, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return newGame(board, state), nil
}

func newGame(board *Board, state *MatchState) *Game {
	return &Game{
		board: board,
		state: state,
		reps:  NewRepetitionTracker(positionKey(board, state)),
	}
}

// PieceAt returns the piece on (row, col), if any.
func (g *Game) PieceAt(row, col int) (Piece, bool) {
	return g.board.PieceAt(Sq(row, col))
}

// Grid returns a copy of the squares, indexed [row][col].
func (g *Game) Grid() [8][8]Piece {
	return g.board.grid
}

// PlayMove validates and commits a move for the side to move. A rejected
// move leaves the game exactly as it was. A pawn reaching the last rank
// leaves the game waiting in ResolvePromotion with the turn unchanged.
func (g *Game) PlayMove(from, to Position) error {
	if err := g.board.Validate(from, to, g.state); err != nil {
		return err
	}
	mover := g.board.at(from)

	// Rights go with the home squares: a king or rook leaving, or a rook
	// being captured where it started.
	g.state.Castling.revokeSquare(from)
	g.state.Castling.revokeSquare(to)

	undo := g.board.Apply(from, to)
	irreversible := mover.Type == Pawn || undo.IsCapture()

	g.state.EnPassant = nil
	if mover.Type == Pawn && abs(to.Row-from.Row) == 2 {
		g.state.EnPassant = &EnPassant{File: from.Col, Color: mover.Color}
	}
	if irreversible {
		g.state.HalfMoveClock = 0
	} else {
		g.state.HalfMoveClock++
	}
	g.history = append(g.history, MoveRecord{
		From:     from,
		To:       to,
		Piece:    mover,
		Captured: undo.Captured,
		Castled:  undo.Castled,
	})

	if mover.Type == Pawn && to.Row == mover.Color.Opposite().homeRow() {
		g.state.Promotion = &PendingPromotion{File: to.Col, Color: mover.Color}
		// The position is only complete once the piece is chosen.
		g.reps.Clear()
		return nil
	}

	g.endPly()
	key := positionKey(g.board, g.state)
	if irreversible {
		g.reps.Reset(key)
	} else {
		g.reps.Record(key)
	}
	return nil
}

// endPly hands the move to the other side.
func (g *Game) endPly() {
	if g.state.Turn == Black {
		g.state.FullMoveNumber++
	}
	g.state.Turn = g.state.Turn.Opposite()
}

// ResolvePromotion completes a pending promotion for the side to move.
func (g *Game) ResolvePromotion(choice PieceType) error {
	return g.ResolvePromotionFor(g.state.Turn, choice)
}

// ResolvePromotionFor completes a pending promotion on behalf of color,
// which must be the color that triggered it.
func (g *Game) ResolvePromotionFor(c Color, choice PieceType) error {
	pending := g.state.Promotion
	if pending == nil {
		return ErrNoPromotionPending
	}
	if c != pending.Color {
		return ErrWrongSideForPromotion
	}
	switch choice {
	case Queen, Rook, Bishop, Knight:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPromotion, choice)
	}

	g.board.Promote(pending.Square(), choice)
	if n := len(g.history); n > 0 {
		g.history[n-1].Promotion = choice
	}
	g.state.Promotion = nil
	g.endPly()
	g.reps.Record(positionKey(g.board, g.state))
	return nil
}

// PendingPromotion returns the file and color of a pawn awaiting promotion.
func (g *Game) PendingPromotion() (PendingPromotion, bool) {
	if g.state.Promotion == nil {
		return PendingPromotion{}, false
	}
	return *g.state.Promotion, true
}

// LegalMoves returns the legal destinations of the piece on square. Pieces
// of the side not on move, and empty squares, have none.
func (g *Game) LegalMoves(square Position) []Position {
	return g.board.LegalMoves(square, g.state)
}

// HasAnyLegalMove reports whether the side to move can move at all.
func (g *Game) HasAnyLegalMove() bool {
	return g.board.HasAnyLegalMove(g.state.Turn, g.state)
}

// Evaluate classifies the current position and caches the result as the
// game status. While a promotion is pending the position is incomplete and
// the cached status is returned unchanged.
func (g *Game) Evaluate() (Status, error) {
	if g.state.Promotion != nil {
		return g.state.Status, nil
	}
	status, err := g.board.Evaluate(g.state, g.reps)
	if err != nil {
		return g.state.Status, err
	}
	g.state.Status = status
	return status, nil
}

// Status returns the status cached by the last Evaluate (or by a
// resignation, flag fall or agreed draw).
func (g *Game) Status() Status {
	return g.state.Status
}

// Resign ends the game with a win for the other side.
func (g *Game) Resign(c Color) error {
	return g.finish(Win(c.Opposite(), ReasonResignation))
}

// Flag ends the game with a win for the other side on time.
func (g *Game) Flag(c Color) error {
	return g.finish(Win(c.Opposite(), ReasonTimeout))
}

// AgreeDraw ends the game drawn by agreement.
func (g *Game) AgreeDraw() error {
	return g.finish(Draw(ReasonAgreement))
}

func (g *Game) finish(s Status) error {
	if !g.state.Status.IsOngoing() {
		return ErrGameAlreadyOver
	}
	g.state.Status = s
	return nil
}

func (g *Game) Turn() Color {
	return g.state.Turn
}

// InCheck reports whether the side to move is in check.
func (g *Game) InCheck() (bool, error) {
	return g.board.KingInCheck(g.state.Turn)
}

func (g *Game) Castling() CastlingRights {
	return g.state.Castling
}

// EnPassant returns the current en passant target, if any.
func (g *Game) EnPassant() (EnPassant, bool) {
	if g.state.EnPassant == nil {
		return EnPassant{}, false
	}
	return *g.state.EnPassant, true
}

func (g *Game) HalfMoveClock() int {
	return g.state.HalfMoveClock
}

// RepetitionCount returns how often the current position has occurred
// since the last capture or pawn move.
func (g *Game) RepetitionCount() int {
	return g.reps.Count(positionKey(g.board, g.state))
}

// History returns the committed plies in order.
func (g *Game) History() []MoveRecord {
	out := make([]MoveRecord, len(g.history))
	copy(out, g.history)
	return out
}

// FEN returns the position in Forsyth-Edwards Notation.
func (g *Game) FEN() string {
	return FEN(g.board, g.state)
}

func (g *Game) String() string {
	var sb strings.Builder
	sb.WriteString(g.board.String())
	fmt.Fprintf(&sb, "%s to move, %s\n", g.state.Turn, g.state.Status)
	return sb.String()
}
