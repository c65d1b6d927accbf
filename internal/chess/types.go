// Package chess is the rules engine: board, move legality, check detection,
// legal move generation and endgame classification. It performs no I/O and
// is not safe for concurrent use; callers serialize access per game.
package chess

import "fmt"

// Color is the side a piece or player belongs to.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opposite returns the other color.
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// homeRow is the back rank of the color.
func (c Color) homeRow() int {
	if c == White {
		return 0
	}
	return 7
}

// forward is the row delta of a pawn advance.
func (c Color) forward() int {
	if c == White {
		return 1
	}
	return -1
}

type PieceType string

const (
	Pawn   PieceType = "pawn"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Rook   PieceType = "rook"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

var pieceLetters = map[PieceType]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

// Letter returns the lower-case FEN letter of the piece type.
func (p PieceType) Letter() byte {
	return pieceLetters[p]
}

// PieceTypeFromLetter maps a FEN letter of either case to a piece type.
func PieceTypeFromLetter(l byte) (PieceType, bool) {
	if l >= 'A' && l <= 'Z' {
		l += 'a' - 'A'
	}
	for t, letter := range pieceLetters {
		if letter == l {
			return t, true
		}
	}
	return "", false
}

// Piece is a colored piece. The zero value is the absence of a piece.
type Piece struct {
	Type  PieceType `json:"type"`
	Color Color     `json:"color"`
}

func (p Piece) IsZero() bool {
	return p.Type == ""
}

// FEN returns the FEN letter: upper case for White.
func (p Piece) FEN() byte {
	l := p.Type.Letter()
	if p.Color == White {
		l -= 'a' - 'A'
	}
	return l
}

func (p Piece) String() string {
	if p.IsZero() {
		return "empty"
	}
	return fmt.Sprintf("%s %s", p.Color, p.Type)
}

// Position is a square. Row 0 is rank 1, Col 0 is file a.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Sq is shorthand for Position{Row: row, Col: col}.
func Sq(row, col int) Position {
	return Position{Row: row, Col: col}
}

// InBounds reports whether the position lies on the board.
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// String returns the algebraic square name, e.g. "e4".
func (p Position) String() string {
	if !p.InBounds() {
		return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+p.Col, p.Row+1)
}

// ParseSquare converts an algebraic square name such as "a2" to a position.
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return Position{Row: int(s[1] - '1'), Col: int(s[0] - 'a')}, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
