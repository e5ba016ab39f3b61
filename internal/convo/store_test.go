package convo

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func mustStore(t *testing.T, capacity int) *Store {
	t.Helper()
	s, err := NewStore(capacity)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return s
}

func TestNewStore_RejectsNegativeDefault(t *testing.T) {
	_, err := NewStore(-1)
	if !errors.Is(err, ErrNegativeCapacity) {
		t.Fatalf("expected ErrNegativeCapacity, got %v", err)
	}
}

func TestStore_GetCreatesLazilyWithDefaultCapacity(t *testing.T) {
	s := mustStore(t, 10)
	snap := s.Get("c1")
	if snap.Capacity != 10 {
		t.Fatalf("expected capacity 10, got %d", snap.Capacity)
	}
	if len(snap.Turns) != 0 {
		t.Fatalf("expected empty window, got %d turns", len(snap.Turns))
	}
}

func TestStore_AppendKeepsMostRecentWithinCapacity(t *testing.T) {
	s := mustStore(t, 3)
	for i := 1; i <= 5; i++ {
		s.AppendTurn("c1", RoleUser, fmt.Sprintf("t%d", i))
		snap := s.Get("c1")
		if len(snap.Turns) > 3 {
			t.Fatalf("window exceeded capacity after append %d: %d turns", i, len(snap.Turns))
		}
	}
	snap := s.Get("c1")
	want := []string{"t3", "t4", "t5"}
	if len(snap.Turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(snap.Turns))
	}
	for i, text := range want {
		if snap.Turns[i].Text != text {
			t.Errorf("turn %d: expected %q, got %q", i, text, snap.Turns[i].Text)
		}
	}
}

func TestStore_ZeroCapacityRetainsNothing(t *testing.T) {
	s := mustStore(t, 0)
	s.AppendTurn("c1", RoleUser, "hello")
	if n := len(s.Get("c1").Turns); n != 0 {
		t.Fatalf("expected 0 turns, got %d", n)
	}
}

func TestStore_SetCapacityTruncatesToNewest(t *testing.T) {
	s := mustStore(t, 10)
	for i := 1; i <= 5; i++ {
		s.AppendTurn("c1", RoleUser, fmt.Sprintf("t%d", i))
	}
	if err := s.SetCapacity("c1", 3); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	snap := s.Get("c1")
	want := []string{"t3", "t4", "t5"}
	if len(snap.Turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(snap.Turns))
	}
	for i, text := range want {
		if snap.Turns[i].Text != text {
			t.Errorf("turn %d: expected %q, got %q", i, text, snap.Turns[i].Text)
		}
	}
	if snap.Capacity != 3 {
		t.Errorf("expected capacity 3, got %d", snap.Capacity)
	}
}

func TestStore_SetCapacityNegativeLeavesStateUnchanged(t *testing.T) {
	s := mustStore(t, 10)
	s.AppendTurn("c1", RoleUser, "t1")
	s.AppendTurn("c1", RoleModel, "t2")

	err := s.SetCapacity("c1", -1)
	if !errors.Is(err, ErrNegativeCapacity) {
		t.Fatalf("expected ErrNegativeCapacity, got %v", err)
	}
	snap := s.Get("c1")
	if len(snap.Turns) != 2 {
		t.Fatalf("expected 2 turns untouched, got %d", len(snap.Turns))
	}
	if snap.Capacity != 10 {
		t.Fatalf("expected capacity 10 untouched, got %d", snap.Capacity)
	}
}

func TestStore_ClearEmptiesTurnsKeepsCapacity(t *testing.T) {
	s := mustStore(t, 10)
	if err := s.SetCapacity("c1", 4); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	s.AppendTurn("c1", RoleUser, "t1")
	s.Clear("c1")

	snap := s.Get("c1")
	if len(snap.Turns) != 0 {
		t.Fatalf("expected empty window, got %d turns", len(snap.Turns))
	}
	if snap.Capacity != 4 {
		t.Fatalf("expected capacity 4, got %d", snap.Capacity)
	}
}

func TestStore_ChannelsAreIsolated(t *testing.T) {
	s := mustStore(t, 10)
	s.AppendTurn("c1", RoleUser, "only in c1")
	if n := len(s.Get("c2").Turns); n != 0 {
		t.Fatalf("expected c2 empty, got %d turns", n)
	}
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	s := mustStore(t, 10)
	s.AppendTurn("c1", RoleUser, "t1")
	snap := s.Get("c1")
	snap.Turns[0].Text = "mutated"
	if got := s.Get("c1").Turns[0].Text; got != "t1" {
		t.Fatalf("store turn mutated through snapshot: %q", got)
	}
}

// Two in-flight exchanges in one channel may interleave around the model
// call; turn order between them is unspecified, but the capacity bound must
// hold through any interleaving of appends.
func TestStore_ConcurrentAppendsKeepCapacityBound(t *testing.T) {
	s := mustStore(t, 8)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.AppendTurn("c1", RoleUser, fmt.Sprintf("w%d-%d", w, i))
				if n := len(s.Get("c1").Turns); n > 8 {
					t.Errorf("window exceeded capacity: %d turns", n)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	if n := len(s.Get("c1").Turns); n != 8 {
		t.Fatalf("expected full window of 8 turns, got %d", n)
	}
}
