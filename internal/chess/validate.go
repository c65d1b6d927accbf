package chess

// Validate checks the move from -> to against the board and state. Checks
// run in a fixed order and the first failure is returned as a *MoveError.
// The board is mutated while testing king safety but is always restored.
func (b *Board) Validate(from, to Position, state *MatchState) error {
	if !from.InBounds() || !to.InBounds() {
		return moveError(from, to, ErrOutOfBounds)
	}
	p, ok := b.PieceAt(from)
	if !ok {
		return moveError(from, to, ErrEmptySource)
	}
	if p.Color != state.Turn {
		return moveError(from, to, ErrWrongSideToMove)
	}
	if target, ok := b.PieceAt(to); ok && target.Color == p.Color {
		return moveError(from, to, ErrOccupiedByOwnColor)
	}
	if state.Promotion != nil {
		return moveError(from, to, ErrPromotionPending)
	}
	if !state.Status.IsOngoing() {
		return moveError(from, to, ErrGameAlreadyOver)
	}

	legal, err := b.shapeLegal(p, from, to, state)
	if err != nil {
		return moveError(from, to, err)
	}
	if !legal {
		return moveError(from, to, ErrShapeIllegal)
	}

	exposed, err := b.leavesKingInCheck(p.Color, from, to)
	if err != nil {
		return moveError(from, to, err)
	}
	if exposed {
		return moveError(from, to, ErrLeavesKingInCheck)
	}
	return nil
}

// leavesKingInCheck plays the move, looks at the mover's king and takes the
// move back regardless of the answer.
func (b *Board) leavesKingInCheck(c Color, from, to Position) (bool, error) {
	undo := b.Apply(from, to)
	defer b.Revert(from, to, undo)
	return b.KingInCheck(c)
}
