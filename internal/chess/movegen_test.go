package chess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestLegalMoves(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		square string
		want   []string
	}{
		{"opening knight", StartFEN, "g1", []string{"f3", "h3"}},
		{"opening pawn", StartFEN, "e2", []string{"e3", "e4"}},
		{"opening bishop is boxed in", StartFEN, "f1", nil},
		{"empty square", StartFEN, "e4", nil},
		{"piece of the side not on move", StartFEN, "e7", nil},
		{"castling both ways", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1",
			[]string{"c1", "d1", "f1", "g1", "d2", "e2", "f2"}},
		{"en passant is listed", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5", []string{"e6", "d6"}},
		{"pinned knight has none", "4k3/4r3/8/8/8/8/4N3/4K3 w - - 0 1", "e2", nil},
		{"only block or capture in check", "4k3/8/8/8/8/8/1B6/r3K3 w - - 0 1", "b2", []string{"a1", "c1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, state := mustFEN(t, tt.fen)
			got := b.LegalMoves(sq(t, tt.square), state)
			want := squares(t, tt.want...)
			sortPositions(want)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("LegalMoves(%s) mismatch (-want +got):\n%s", tt.square, diff)
			}
		})
	}
}

func countMoves(b *Board, state *MatchState) int {
	n := 0
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			n += len(b.LegalMoves(Sq(row, col), state))
		}
	}
	return n
}

func TestMoveCounts(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want int
	}{
		{"opening", StartFEN, 20},
		{"after e4", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1", 20},
		{"lone kings", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", 5},
		{"checkmated", "1k2R3/ppp5/8/8/8/8/8/4K3 b - - 0 1", 0},
		{"stalemated", "k7/p7/P7/8/8/8/8/1R2K3 b - - 0 1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, state := mustFEN(t, tt.fen)
			if got := countMoves(b, state); got != tt.want {
				t.Errorf("legal moves = %d, want %d", got, tt.want)
			}
			if got := b.HasAnyLegalMove(state.Turn, state); got != (tt.want > 0) {
				t.Errorf("HasAnyLegalMove = %v, want %v", got, tt.want > 0)
			}
		})
	}
}
