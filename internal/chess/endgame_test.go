package chess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want bool
	}{
		{"K vs K", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"K+B vs K", "4k3/8/8/8/8/8/8/4KB2 w - - 0 1", true},
		{"K+N vs K", "4k3/8/8/8/8/8/8/4KN2 w - - 0 1", true},
		{"K vs K+n", "4k1n1/8/8/8/8/8/8/4K3 w - - 0 1", true},
		{"K+B vs K+b", "4kb2/8/8/8/8/8/8/2B1K3 w - - 0 1", true},
		{"K+N vs K+n", "4kn2/8/8/8/8/8/8/4KN2 w - - 0 1", true},
		{"K+B vs K+n", "4kn2/8/8/8/8/8/8/4KB2 w - - 0 1", true},
		{"K+B+B vs K", "4k3/8/8/8/8/8/8/2B1KB2 w - - 0 1", false},
		{"K+N+N vs K", "4k3/8/8/8/8/8/8/1N2K1N1 w - - 0 1", false},
		{"K+R vs K", "4k3/8/8/8/8/8/8/4KR2 w - - 0 1", false},
		{"K+Q vs K", "4k3/8/8/8/8/8/8/4KQ2 w - - 0 1", false},
		{"K+P vs K", "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1", false},
		{"opening", StartFEN, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := mustFEN(t, tt.fen)
			if got := b.InsufficientMaterial(); got != tt.want {
				t.Errorf("InsufficientMaterial() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluatePriority(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		reps int // extra visits of the current position
		want Status
	}{
		// Mated and the clock has run out: the clock rule comes first.
		{"fifty moves before checkmate", "1k2R3/ppp5/8/8/8/8/8/4K3 b - - 100 80", 0, Draw(ReasonFiftyMoveRule)},
		{"repetition before material", "4k3/8/8/8/8/8/8/4K3 w - - 0 1", 2, Draw(ReasonThreefoldRepetition)},
		{"material before stalemate", "k7/8/1K6/4B3/8/8/8/8 b - - 0 1", 0, Draw(ReasonInsufficientMaterial)},
		{"checkmate", "1k2R3/ppp5/8/8/8/8/8/4K3 b - - 0 1", 0, Win(White, ReasonCheckmate)},
		{"stalemate", "k7/p7/P7/8/8/8/8/1R2K3 b - - 0 1", 0, Draw(ReasonStalemate)},
		{"ongoing", StartFEN, 0, Ongoing()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, state := mustFEN(t, tt.fen)
			key := positionKey(b, state)
			reps := NewRepetitionTracker(key)
			for i := 0; i < tt.reps; i++ {
				reps.Record(key)
			}

			got, err := b.Evaluate(state, reps)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Evaluate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEvaluateIgnoresStaleResult(t *testing.T) {
	// A cached board-derived result must not stop the probe from seeing
	// the moves that exist now.
	b, state := mustFEN(t, StartFEN)
	state.Status = Draw(ReasonStalemate)

	got, err := b.Evaluate(state, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != Ongoing() {
		t.Errorf("Evaluate() = %v, want ongoing", got)
	}
}

func TestEvaluateCorruptBoard(t *testing.T) {
	b := NewEmptyBoard()
	b.Place(Sq(0, 0), Piece{King, White})
	b.Place(Sq(7, 7), Piece{Rook, Black})
	state := NewMatchState()
	state.Turn = Black

	if _, err := b.Evaluate(state, nil); !IsCorruption(err) {
		t.Errorf("Evaluate on a board without a black king: err = %v", err)
	}
}

func TestRepetitionTracker(t *testing.T) {
	r := NewRepetitionTracker("a")
	r.Record("b")
	r.Record("a")
	if r.Count("a") != 2 || r.Count("b") != 1 || r.Threefold() {
		t.Fatalf("counts a=%d b=%d", r.Count("a"), r.Count("b"))
	}
	r.Record("a")
	if !r.Threefold() {
		t.Error("Threefold() = false after three visits")
	}

	r.Reset("c")
	if r.Count("a") != 0 || r.Count("c") != 1 {
		t.Errorf("after Reset: a=%d c=%d", r.Count("a"), r.Count("c"))
	}
	r.Clear()
	if r.Count("c") != 0 {
		t.Errorf("after Clear: c=%d", r.Count("c"))
	}
}

func TestPositionKeyIgnoresEnPassant(t *testing.T) {
	b1, s1 := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	b2, s2 := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 w - - 0 1")
	if positionKey(b1, s1) != positionKey(b2, s2) {
		t.Error("en passant target changed the key")
	}

	b3, s3 := mustFEN(t, "4k3/8/8/3pP3/8/8/8/4K3 b - - 0 1")
	if positionKey(b2, s2) == positionKey(b3, s3) {
		t.Error("side to move did not change the key")
	}
}
