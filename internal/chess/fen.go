package chess

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard opening position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN reads a position in Forsyth-Edwards Notation. The half-move
// clock and full-move number may be omitted.
func ParseFEN(fen string) (*Board, *MatchState, error) {
	fields := strings.Fields(fen)
	if len(fields) != 4 && len(fields) != 6 {
		return nil, nil, fmt.Errorf("%w: expected 4 or 6 fields, got %d", ErrInvalidFEN, len(fields))
	}

	board, err := parsePlacement(fields[0])
	if err != nil {
		return nil, nil, err
	}
	state := NewMatchState()

	switch fields[1] {
	case "w":
		state.Turn = White
	case "b":
		state.Turn = Black
	default:
		return nil, nil, fmt.Errorf("%w: side to move %q", ErrInvalidFEN, fields[1])
	}

	state.Castling = CastlingRights{}
	if fields[2] != "-" {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				state.Castling.WhiteKingSide = true
			case 'Q':
				state.Castling.WhiteQueenSide = true
			case 'k':
				state.Castling.BlackKingSide = true
			case 'q':
				state.Castling.BlackQueenSide = true
			default:
				return nil, nil, fmt.Errorf("%w: castling rights %q", ErrInvalidFEN, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		target, err := ParseSquare(fields[3])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, fields[3])
		}
		switch target.Row {
		case 2:
			state.EnPassant = &EnPassant{File: target.Col, Color: White}
		case 5:
			state.EnPassant = &EnPassant{File: target.Col, Color: Black}
		default:
			return nil, nil, fmt.Errorf("%w: en passant square %q", ErrInvalidFEN, fields[3])
		}
	}

	if len(fields) == 6 {
		if state.HalfMoveClock, err = strconv.Atoi(fields[4]); err != nil || state.HalfMoveClock < 0 {
			return nil, nil, fmt.Errorf("%w: half-move clock %q", ErrInvalidFEN, fields[4])
		}
		if state.FullMoveNumber, err = strconv.Atoi(fields[5]); err != nil || state.FullMoveNumber < 1 {
			return nil, nil, fmt.Errorf("%w: full-move number %q", ErrInvalidFEN, fields[5])
		}
	}
	return board, state, nil
}

func parsePlacement(s string) (*Board, error) {
	ranks := strings.Split(s, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	board := NewEmptyBoard()
	for i, rank := range ranks {
		row := 7 - i
		col := 0
		for j := 0; j < len(rank); j++ {
			ch := rank[j]
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			t, ok := PieceTypeFromLetter(ch)
			if !ok || col > 7 {
				return nil, fmt.Errorf("%w: rank %q", ErrInvalidFEN, rank)
			}
			color := Black
			if ch >= 'A' && ch <= 'Z' {
				color = White
			}
			if t == Pawn && (row == 0 || row == 7) {
				return nil, fmt.Errorf("%w: pawn on back rank", ErrInvalidFEN)
			}
			board.Place(Sq(row, col), Piece{Type: t, Color: color})
			col++
		}
		if col != 8 {
			return nil, fmt.Errorf("%w: rank %q has %d files", ErrInvalidFEN, rank, col)
		}
	}
	for _, c := range []Color{White, Black} {
		if _, err := board.KingSquare(c); err != nil {
			return nil, fmt.Errorf("%w: %s %v", ErrInvalidFEN, c, err)
		}
	}
	return board, nil
}

// FEN writes the board and state in Forsyth-Edwards Notation. A pending
// promotion is not representable and the waiting pawn is written as is.
func FEN(b *Board, state *MatchState) string {
	var sb strings.Builder
	for row := 7; row >= 0; row-- {
		empty := 0
		for col := 0; col < 8; col++ {
			p := b.grid[row][col]
			if p.IsZero() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.FEN())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteByte(state.Turn.letter())

	sb.WriteByte(' ')
	rights := ""
	if state.Castling.WhiteKingSide {
		rights += "K"
	}
	if state.Castling.WhiteQueenSide {
		rights += "Q"
	}
	if state.Castling.BlackKingSide {
		rights += "k"
	}
	if state.Castling.BlackQueenSide {
		rights += "q"
	}
	if rights == "" {
		rights = "-"
	}
	sb.WriteString(rights)

	sb.WriteByte(' ')
	if ep := state.EnPassant; ep != nil {
		// The square the pawn passed over.
		row := 2
		if ep.Color == Black {
			row = 5
		}
		sb.WriteString(Sq(row, ep.File).String())
	} else {
		sb.WriteByte('-')
	}

	fmt.Fprintf(&sb, " %d %d", state.HalfMoveClock, state.FullMoveNumber)
	return sb.String()
}
