package chess

// attacks reports whether p standing on from attacks target. Pawns attack
// only their two forward diagonals, kings only adjacent squares; the other
// pieces use their ordinary move shapes, blockers included.
func (b *Board) attacks(p Piece, from, target Position) bool {
	if from == target {
		return false
	}
	dr, dc := target.Row-from.Row, target.Col-from.Col
	switch p.Type {
	case Pawn:
		return dr == p.Color.forward() && abs(dc) == 1
	case Knight:
		return knightShape(dr, dc)
	case Bishop:
		return b.bishopShape(from, target)
	case Rook:
		return b.rookShape(from, target)
	case Queen:
		return b.queenShape(from, target)
	case King:
		return abs(dr) <= 1 && abs(dc) <= 1
	}
	return false
}

// IsAttacked reports whether any piece of by attacks square.
func (b *Board) IsAttacked(square Position, by Color) bool {
	for p, set := range b.pieces {
		if p.Color != by {
			continue
		}
		for from := range set {
			if b.attacks(p, from, square) {
				return true
			}
		}
	}
	return false
}

// KingSquare locates the single king of color c.
func (b *Board) KingSquare(c Color) (Position, error) {
	set := b.pieces[Piece{Type: King, Color: c}]
	switch len(set) {
	case 0:
		return Position{}, ErrKingNotFound
	case 1:
		for pos := range set {
			return pos, nil
		}
	}
	return Position{}, ErrMultipleKings
}

// KingInCheck reports whether the king of color c is attacked. It fails
// only on a corrupted board with no or several kings of that color.
func (b *Board) KingInCheck(c Color) (bool, error) {
	king, err := b.KingSquare(c)
	if err != nil {
		return false, err
	}
	return b.IsAttacked(king, c.Opposite()), nil
}
