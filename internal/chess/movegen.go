package chess

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	bishopDirs  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs    = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

// pseudoLegal lists the squares the piece on from could reach by geometry
// alone. Rays stop at the first occupied square, which is included.
func (b *Board) pseudoLegal(p Piece, from Position) []Position {
	var out []Position
	step := func(dr, dc int) {
		to := Sq(from.Row+dr, from.Col+dc)
		if to.InBounds() {
			out = append(out, to)
		}
	}
	ray := func(dr, dc int) {
		for to := Sq(from.Row+dr, from.Col+dc); to.InBounds(); to = Sq(to.Row+dr, to.Col+dc) {
			out = append(out, to)
			if b.occupied(to) {
				return
			}
		}
	}

	switch p.Type {
	case Pawn:
		fwd := p.Color.forward()
		step(fwd, 0)
		step(2*fwd, 0)
		step(fwd, -1)
		step(fwd, 1)
	case Knight:
		for _, s := range knightSteps {
			step(s[0], s[1])
		}
	case Bishop:
		for _, d := range bishopDirs {
			ray(d[0], d[1])
		}
	case Rook:
		for _, d := range rookDirs {
			ray(d[0], d[1])
		}
	case Queen:
		for _, d := range bishopDirs {
			ray(d[0], d[1])
		}
		for _, d := range rookDirs {
			ray(d[0], d[1])
		}
	case King:
		for _, s := range kingSteps {
			step(s[0], s[1])
		}
		if from == Sq(p.Color.homeRow(), 4) {
			step(0, 2)
			step(0, -2)
		}
	}
	return out
}

// LegalMoves returns every square the piece on square may legally move to,
// in row-major order. An empty square has no moves.
func (b *Board) LegalMoves(square Position, state *MatchState) []Position {
	p, ok := b.PieceAt(square)
	if !ok {
		return nil
	}
	var moves []Position
	for _, to := range b.pseudoLegal(p, square) {
		if b.Validate(square, to, state) == nil {
			moves = append(moves, to)
		}
	}
	sortPositions(moves)
	return moves
}

// HasAnyLegalMove reports whether color has at least one legal move. It
// stops at the first piece that can move.
func (b *Board) HasAnyLegalMove(c Color, state *MatchState) bool {
	for _, from := range b.squaresOfColor(c) {
		p := b.at(from)
		for _, to := range b.pseudoLegal(p, from) {
			if b.Validate(from, to, state) == nil {
				return true
			}
		}
	}
	return false
}
