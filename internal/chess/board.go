package chess

import (
	"sort"
	"strings"
)

type squareSet map[Position]struct{}

// Board is the 8x8 grid plus a reverse index from piece to the squares it
// occupies. A square holds P exactly when P's index set contains it; the
// two are only ever changed together.
type Board struct {
	grid   [8][8]Piece
	pieces map[Piece]squareSet
}

// UndoRecord is what Apply returns so Revert can restore the board exactly.
type UndoRecord struct {
	Captured   Piece    `json:"captured"`
	CapturedAt Position `json:"capturedAt"`
	Castled    bool     `json:"castled"`
	RookFrom   Position `json:"rookFrom"`
	RookTo     Position `json:"rookTo"`
}

// IsCapture reports whether the applied move removed a piece.
func (u UndoRecord) IsCapture() bool {
	return !u.Captured.IsZero()
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard opening position.
func NewBoard() *Board {
	b := NewEmptyBoard()
	for col, t := range backRank {
		b.Place(Sq(0, col), Piece{Type: t, Color: White})
		b.Place(Sq(1, col), Piece{Type: Pawn, Color: White})
		b.Place(Sq(6, col), Piece{Type: Pawn, Color: Black})
		b.Place(Sq(7, col), Piece{Type: t, Color: Black})
	}
	return b
}

// NewEmptyBoard returns a board with no pieces.
func NewEmptyBoard() *Board {
	return &Board{pieces: make(map[Piece]squareSet)}
}

// Place puts p on pos, replacing whatever stood there. It is meant for
// setting up positions, not for playing moves.
func (b *Board) Place(pos Position, p Piece) {
	b.clear(pos)
	if !p.IsZero() {
		b.set(pos, p)
	}
}

// PieceAt returns the piece on pos, if any.
func (b *Board) PieceAt(pos Position) (Piece, bool) {
	if !pos.InBounds() {
		return Piece{}, false
	}
	p := b.grid[pos.Row][pos.Col]
	return p, !p.IsZero()
}

func (b *Board) at(pos Position) Piece {
	return b.grid[pos.Row][pos.Col]
}

func (b *Board) occupied(pos Position) bool {
	return !b.grid[pos.Row][pos.Col].IsZero()
}

func (b *Board) set(pos Position, p Piece) {
	b.grid[pos.Row][pos.Col] = p
	set, ok := b.pieces[p]
	if !ok {
		set = make(squareSet)
		b.pieces[p] = set
	}
	set[pos] = struct{}{}
}

func (b *Board) clear(pos Position) Piece {
	p := b.grid[pos.Row][pos.Col]
	if p.IsZero() {
		return p
	}
	b.grid[pos.Row][pos.Col] = Piece{}
	set := b.pieces[p]
	delete(set, pos)
	if len(set) == 0 {
		delete(b.pieces, p)
	}
	return p
}

// Squares returns the squares holding p in row-major order.
func (b *Board) Squares(p Piece) []Position {
	set := b.pieces[p]
	out := make([]Position, 0, len(set))
	for pos := range set {
		out = append(out, pos)
	}
	sortPositions(out)
	return out
}

// squaresOfColor snapshots every square held by color. Callers that apply
// and revert moves while walking the result need the copy.
func (b *Board) squaresOfColor(c Color) []Position {
	var out []Position
	for p, set := range b.pieces {
		if p.Color != c {
			continue
		}
		for pos := range set {
			out = append(out, pos)
		}
	}
	sortPositions(out)
	return out
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Row != ps[j].Row {
			return ps[i].Row < ps[j].Row
		}
		return ps[i].Col < ps[j].Col
	})
}

// castleRook returns the rook move implied by a king moving from -> to, if
// that king move is a castle.
func castleRook(p Piece, from, to Position) (rookFrom, rookTo Position, ok bool) {
	if p.Type != King {
		return Position{}, Position{}, false
	}
	row := p.Color.homeRow()
	if from != Sq(row, 4) || to.Row != row {
		return Position{}, Position{}, false
	}
	switch to.Col {
	case 6:
		return Sq(row, 7), Sq(row, 5), true
	case 2:
		return Sq(row, 0), Sq(row, 3), true
	}
	return Position{}, Position{}, false
}

// Apply moves the piece on from to to. The move must already be known to be
// shape-legal. Castling (king from its home square to the castle
// destination) also moves the rook; a pawn moving diagonally onto an empty
// square captures en passant.
func (b *Board) Apply(from, to Position) UndoRecord {
	var undo UndoRecord
	mover := b.clear(from)

	if captured := b.clear(to); !captured.IsZero() {
		undo.Captured = captured
		undo.CapturedAt = to
	} else if mover.Type == Pawn && from.Col != to.Col {
		passed := Sq(from.Row, to.Col)
		undo.Captured = b.clear(passed)
		undo.CapturedAt = passed
	}
	b.set(to, mover)

	if rookFrom, rookTo, ok := castleRook(mover, from, to); ok {
		if rook := b.at(rookFrom); rook.Type == Rook && rook.Color == mover.Color {
			b.clear(rookFrom)
			b.set(rookTo, rook)
			undo.Castled = true
			undo.RookFrom = rookFrom
			undo.RookTo = rookTo
		}
	}
	return undo
}

// Revert undoes Apply(from, to) given the record it returned.
func (b *Board) Revert(from, to Position, undo UndoRecord) {
	if undo.Castled {
		rook := b.clear(undo.RookTo)
		b.set(undo.RookFrom, rook)
	}
	mover := b.clear(to)
	b.set(from, mover)
	if undo.IsCapture() {
		b.set(undo.CapturedAt, undo.Captured)
	}
}

// Promote replaces the pawn on pos with a piece of the given type.
func (b *Board) Promote(pos Position, t PieceType) {
	pawn := b.clear(pos)
	b.set(pos, Piece{Type: t, Color: pawn.Color})
}

// String draws the board with rank 8 on top, "." for empty squares.
func (b *Board) String() string {
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		for col := 0; col < 8; col++ {
			p := b.grid[row][col]
			if p.IsZero() {
				sb.WriteByte('.')
			} else {
				sb.WriteByte(p.FEN())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
