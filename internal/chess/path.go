package chess

import "iter"

// Between yields the integers strictly between a and b, stepping from a
// towards b. It yields nothing when a and b are equal or adjacent. The
// sequence can be ranged over any number of times.
func Between(a, b int) iter.Seq[int] {
	step := sign(b - a)
	return func(yield func(int) bool) {
		if step == 0 {
			return
		}
		for i := a + step; i != b; i += step {
			if !yield(i) {
				return
			}
		}
	}
}

// squaresBetween yields the squares strictly between from and to along a
// rank, file or diagonal. Files and ranks are stepped with the same
// Between sequence; a constant coordinate is held fixed.
func squaresBetween(from, to Position) iter.Seq[Position] {
	return func(yield func(Position) bool) {
		rows := Between(from.Row, to.Row)
		switch {
		case from.Row == to.Row:
			for c := range Between(from.Col, to.Col) {
				if !yield(Sq(from.Row, c)) {
					return
				}
			}
		case from.Col == to.Col:
			for r := range rows {
				if !yield(Sq(r, from.Col)) {
					return
				}
			}
		default:
			// Diagonal: both sequences have the same length, so walk the
			// rows and advance the file in lockstep.
			c, dc := from.Col, sign(to.Col-from.Col)
			for r := range rows {
				c += dc
				if !yield(Sq(r, c)) {
					return
				}
			}
		}
	}
}

// pathClear reports whether no square strictly between from and to is
// occupied.
func (b *Board) pathClear(from, to Position) bool {
	for pos := range squaresBetween(from, to) {
		if b.occupied(pos) {
			return false
		}
	}
	return true
}
