package chess

// fiftyMovePlies is the half-move clock value at which the game is drawn.
const fiftyMovePlies = 100

// InsufficientMaterial reports whether neither side has anything besides its
// king and at most one knight or bishop. It is not dead-position
// detection: K+N vs K+N counts as drawn.
func (b *Board) InsufficientMaterial() bool {
	minors := map[Color]int{}
	for p, set := range b.pieces {
		switch p.Type {
		case King:
		case Knight, Bishop:
			minors[p.Color] += len(set)
		default:
			return false
		}
	}
	return minors[White] <= 1 && minors[Black] <= 1
}

// Evaluate classifies the position. The first matching rule wins: fifty-move
// rule, threefold repetition, insufficient material, then checkmate or
// stalemate when the side to move has no legal move. The result is derived
// afresh each call; only resignations, timeouts and agreed draws, which the
// board cannot reproduce, are returned as already recorded.
func (b *Board) Evaluate(state *MatchState, reps *RepetitionTracker) (Status, error) {
	if state.Status.sticky() {
		return state.Status, nil
	}
	if state.HalfMoveClock >= fiftyMovePlies {
		return Draw(ReasonFiftyMoveRule), nil
	}
	if reps != nil && reps.Threefold() {
		return Draw(ReasonThreefoldRepetition), nil
	}
	if b.InsufficientMaterial() {
		return Draw(ReasonInsufficientMaterial), nil
	}

	// Look for moves as if the game were still running; a cached result from
	// an earlier call must not hide them.
	probe := state.clone()
	probe.Status = Ongoing()
	if b.HasAnyLegalMove(state.Turn, probe) {
		return Ongoing(), nil
	}
	inCheck, err := b.KingInCheck(state.Turn)
	if err != nil {
		return Status{}, err
	}
	if inCheck {
		return Win(state.Turn.Opposite(), ReasonCheckmate), nil
	}
	return Draw(ReasonStalemate), nil
}
