package model

import (
	"errors"
	"testing"
)

func TestQueuePairsInArrivalOrder(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"ann", "bob", "cid"} {
		if err := q.AddPlayer(Player{ID: id}); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	if err := q.AddPlayer(Player{ID: "bob"}); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("duplicate AddPlayer err = %v, want %v", err, ErrAlreadyQueued)
	}

	p1, p2, ok := q.GetNextPair()
	if !ok || p1.ID != "ann" || p2.ID != "bob" {
		t.Errorf("GetNextPair() = %v, %v, %v", p1, p2, ok)
	}
	if _, _, ok := q.GetNextPair(); ok {
		t.Error("paired a lone player")
	}
	if q.Size() != 1 {
		t.Errorf("Size() = %d, want 1", q.Size())
	}
}

func TestQueueRemove(t *testing.T) {
	q := NewQueue()
	q.AddPlayer(Player{ID: "ann"})
	q.AddPlayer(Player{ID: "bob"})

	if !q.Remove("ann") {
		t.Error("Remove(ann) = false")
	}
	if q.Remove("ann") {
		t.Error("second Remove(ann) = true")
	}
	if q.Size() != 1 {
		t.Errorf("Size() = %d, want 1", q.Size())
	}
}
