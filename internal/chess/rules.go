package chess

func knightShape(dr, dc int) bool {
	dr, dc = abs(dr), abs(dc)
	return (dr == 1 && dc == 2) || (dr == 2 && dc == 1)
}

func (b *Board) bishopShape(from, to Position) bool {
	dr, dc := abs(to.Row-from.Row), abs(to.Col-from.Col)
	if dr != dc || dr == 0 {
		return false
	}
	return b.pathClear(from, to)
}

func (b *Board) rookShape(from, to Position) bool {
	if (from.Row != to.Row) == (from.Col != to.Col) {
		// Diagonal, knight-like, or no move at all.
		return false
	}
	return b.pathClear(from, to)
}

func (b *Board) queenShape(from, to Position) bool {
	return b.bishopShape(from, to) || b.rookShape(from, to)
}

// pawnShape covers single and double advances, captures and en passant.
// The end square is known not to hold an own piece.
func (b *Board) pawnShape(p Piece, from, to Position, state *MatchState) bool {
	fwd := p.Color.forward()
	dr, dc := to.Row-from.Row, to.Col-from.Col

	if abs(dc) == 1 && dr == fwd {
		if b.occupied(to) {
			return true
		}
		ep := state.EnPassant
		// The capturing pawn stands on the fifth rank of its own side.
		captureRow := p.Color.Opposite().homeRow() - 3*fwd
		return ep != nil && ep.Color == p.Color.Opposite() && ep.File == to.Col && from.Row == captureRow
	}
	if dc != 0 || b.occupied(to) {
		return false
	}
	if dr == fwd {
		return true
	}
	startRow := p.Color.homeRow() + fwd
	return dr == 2*fwd && from.Row == startRow && !b.occupied(Sq(from.Row+fwd, from.Col))
}

// kingShape covers single steps and castling. Castling needs every one of:
// king on its home square heading for the castle square, the right still
// held, the own rook in its corner, nothing between king and rook, the king
// not in check, and the square it passes not attacked. The landing square
// is covered by the general king-safety test that follows.
func (b *Board) kingShape(p Piece, from, to Position, state *MatchState) (bool, error) {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	if abs(dr) <= 1 && abs(dc) <= 1 {
		return true, nil
	}

	rookFrom, _, ok := castleRook(p, from, to)
	if !ok {
		return false, nil
	}
	if !state.Castling.Has(p.Color, to.Col == 6) {
		return false, nil
	}
	if b.at(rookFrom) != (Piece{Type: Rook, Color: p.Color}) {
		return false, nil
	}
	if !b.pathClear(from, rookFrom) {
		return false, nil
	}

	inCheck, err := b.KingInCheck(p.Color)
	if err != nil || inCheck {
		return false, err
	}

	// Step the king onto the square it crosses and look for an attack there.
	crossed := Sq(from.Row, from.Col+sign(dc))
	undo := b.Apply(from, crossed)
	attacked, err := b.KingInCheck(p.Color)
	b.Revert(from, crossed, undo)
	if err != nil || attacked {
		return false, err
	}
	return true, nil
}

// shapeLegal dispatches on the moving piece's kind.
func (b *Board) shapeLegal(p Piece, from, to Position, state *MatchState) (bool, error) {
	switch p.Type {
	case Pawn:
		return b.pawnShape(p, from, to, state), nil
	case Knight:
		return knightShape(to.Row-from.Row, to.Col-from.Col), nil
	case Bishop:
		return b.bishopShape(from, to), nil
	case Rook:
		return b.rookShape(from, to), nil
	case Queen:
		return b.queenShape(from, to), nil
	case King:
		return b.kingShape(p, from, to, state)
	}
	return false, nil
}
