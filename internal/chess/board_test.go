package chess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestApplyRevertRestoresBoard(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to string
	}{
		{"quiet move", StartFEN, "g1", "f3"},
		{"double step", StartFEN, "e2", "e4"},
		{"capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4", "d5"},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5", "d6"},
		{"king side castle", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1", "g1"},
		{"queen side castle", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8", "c8"},
		{"pawn onto last rank", "1n2k3/P7/8/8/8/8/8/4K3 w - - 0 1", "a7", "b8"},
		{"last piece of a kind captured", "4k3/8/8/8/8/8/1q6/Q3K3 w - - 0 1", "a1", "b2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, _ := mustFEN(t, tt.fen)
			got, _ := mustFEN(t, tt.fen)

			from, to := sq(t, tt.from), sq(t, tt.to)
			undo := got.Apply(from, to)
			got.Revert(from, to, undo)

			if diff := cmp.Diff(want, got, cmp.AllowUnexported(Board{})); diff != "" {
				t.Errorf("board after Apply/Revert mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplySpecialMoves(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to string
		want     string // board after the move, rank 8 first
		undo     UndoRecord
	}{
		{
			name: "en passant removes the passed pawn",
			fen:  "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
			from: "e5", to: "d6",
			want: "....k...\n........\n...P....\n........\n........\n........\n........\n....K...\n",
			undo: UndoRecord{Captured: Piece{Pawn, Black}, CapturedAt: Sq(4, 3)},
		},
		{
			name: "castle moves the rook",
			fen:  "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			from: "e1", to: "g1",
			want: "r...k..r\n........\n........\n........\n........\n........\n........\nR....RK.\n",
			undo: UndoRecord{Castled: true, RookFrom: Sq(0, 7), RookTo: Sq(0, 5)},
		},
		{
			name: "castle destination without its rook moves the king only",
			fen:  "4k3/8/8/8/8/8/8/4K3 w - - 0 1",
			from: "e1", to: "c1",
			want: "....k...\n........\n........\n........\n........\n........\n........\n..K.....\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := mustFEN(t, tt.fen)
			undo := b.Apply(sq(t, tt.from), sq(t, tt.to))
			if diff := cmp.Diff(tt.undo, undo); diff != "" {
				t.Errorf("UndoRecord mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, b.String()); diff != "" {
				t.Errorf("board mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIndexMatchesGrid(t *testing.T) {
	b := NewBoard()
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			p, ok := b.PieceAt(Sq(row, col))
			if !ok {
				continue
			}
			found := false
			for _, pos := range b.Squares(p) {
				if pos == Sq(row, col) {
					found = true
				}
			}
			if !found {
				t.Errorf("%s on %s missing from index", p, Sq(row, col))
			}
		}
	}

	if got := len(b.Squares(Piece{Pawn, White})); got != 8 {
		t.Errorf("white pawns = %d, want 8", got)
	}
	want := []Position{Sq(7, 1), Sq(7, 6)}
	if diff := cmp.Diff(want, b.Squares(Piece{Knight, Black})); diff != "" {
		t.Errorf("black knights mismatch (-want +got):\n%s", diff)
	}
}

func TestPromoteSwapsPiece(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Sq(0, 4), Piece{King, White})
	b.Place(Sq(7, 4), Piece{King, Black})
	b.Place(Sq(7, 0), Piece{Pawn, White})
	b.Promote(Sq(7, 0), Knight)

	if p, _ := b.PieceAt(Sq(7, 0)); p != (Piece{Knight, White}) {
		t.Errorf("PieceAt(a8) = %v, want white knight", p)
	}
	if diff := cmp.Diff([]Position{Sq(7, 0)}, b.Squares(Piece{Knight, White})); diff != "" {
		t.Errorf("white knights mismatch (-want +got):\n%s", diff)
	}
	if n := len(b.Squares(Piece{Pawn, White})); n != 0 {
		t.Errorf("white pawns left in index: %d", n)
	}
}

func TestPieceAtOutOfBounds(t *testing.T) {
	b := NewBoard()
	for _, pos := range []Position{Sq(-1, 0), Sq(0, 8), Sq(8, 8)} {
		if _, ok := b.PieceAt(pos); ok {
			t.Errorf("PieceAt(%v) reported a piece", pos)
		}
	}
}
