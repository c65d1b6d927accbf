package chess

// PositionKey identifies a position for repetition purposes: side to move,
// piece placement and castling rights. En passant and pending promotion are
// left out on purpose.
type PositionKey string

// positionKey encodes turn, the 64 squares and the four castling flags.
func positionKey(b *Board, state *MatchState) PositionKey {
	buf := make([]byte, 0, 1+64+4)
	buf = append(buf, state.Turn.letter())
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p := b.grid[row][col]
			if p.IsZero() {
				buf = append(buf, '.')
			} else {
				buf = append(buf, p.FEN())
			}
		}
	}
	for _, right := range []bool{
		state.Castling.WhiteKingSide, state.Castling.WhiteQueenSide,
		state.Castling.BlackKingSide, state.Castling.BlackQueenSide,
	} {
		if right {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
	}
	return PositionKey(buf)
}

func (c Color) letter() byte {
	if c == White {
		return 'w'
	}
	return 'b'
}

// RepetitionTracker counts how often each position has occurred since the
// last irreversible move.
type RepetitionTracker struct {
	counts map[PositionKey]int
}

// NewRepetitionTracker returns a tracker seeded with key at count 1.
func NewRepetitionTracker(key PositionKey) *RepetitionTracker {
	t := &RepetitionTracker{counts: make(map[PositionKey]int)}
	t.Record(key)
	return t
}

// Record counts one more occurrence of key.
func (t *RepetitionTracker) Record(key PositionKey) {
	t.counts[key]++
}

// Reset forgets every position and reseeds with key at count 1. Used after
// captures and pawn moves, which make earlier positions unreachable.
func (t *RepetitionTracker) Reset(key PositionKey) {
	t.Clear()
	t.Record(key)
}

// Clear forgets every position.
func (t *RepetitionTracker) Clear() {
	clear(t.counts)
}

// Count returns how often key has occurred.
func (t *RepetitionTracker) Count(key PositionKey) int {
	return t.counts[key]
}

// Threefold reports whether any position has occurred three times.
func (t *RepetitionTracker) Threefold() bool {
	for _, n := range t.counts {
		if n >= 3 {
			return true
		}
	}
	return false
}
