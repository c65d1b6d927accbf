package chess

import (
	"testing"
)

// sq parses an algebraic square, failing the test on bad input.
func sq(t *testing.T, s string) Position {
	t.Helper()
	pos, err := ParseSquare(s)
	if err != nil {
		t.Fatalf("ParseSquare(%q): %v", s, err)
	}
	return pos
}

func mustFEN(t *testing.T, fen string) (*Board, *MatchState) {
	t.Helper()
	b, state, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b, state
}

func mustGame(t *testing.T, fen string) *Game {
	t.Helper()
	g, err := NewGameFromFEN(fen)
	if err != nil {
		t.Fatalf("NewGameFromFEN(%q): %v", fen, err)
	}
	return g
}

// play plays moves in coordinate notation ("e2e4", "a7a8q") and fails on
// the first rejected one.
func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, mv := range moves {
		if len(mv) != 4 && len(mv) != 5 {
			t.Fatalf("bad move %q", mv)
		}
		if err := g.PlayMove(sq(t, mv[:2]), sq(t, mv[2:4])); err != nil {
			t.Fatalf("PlayMove(%s): %v", mv, err)
		}
		if len(mv) == 5 {
			choice, ok := PieceTypeFromLetter(mv[4])
			if !ok {
				t.Fatalf("bad promotion in %q", mv)
			}
			if err := g.ResolvePromotion(choice); err != nil {
				t.Fatalf("ResolvePromotion(%s): %v", mv, err)
			}
		}
		if _, err := g.Evaluate(); err != nil {
			t.Fatalf("Evaluate after %s: %v", mv, err)
		}
	}
}

func squares(t *testing.T, names ...string) []Position {
	t.Helper()
	out := make([]Position, len(names))
	for i, n := range names {
		out[i] = sq(t, n)
	}
	return out
}
