package registry

import (
	"sync"
	"testing"

	"github.com/dshills/hookchain/hook"
)

func noop(priority int) hook.Hooker {
	return hook.New(priority, nil, nil)
}

func priorities(snap []*Registration) []int {
	out := make([]int, len(snap))
	for i, r := range snap {
		out[i] = r.Priority()
	}
	return out
}

func TestAddOrdersByPriorityDescending(t *testing.T) {
	r := New()
	r.Add(noop(10))
	r.Add(noop(100))
	r.Add(noop(50))

	got := priorities(r.Snapshot())
	want := []int{100, 50, 10}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot order = %v, want %v", got, want)
		}
	}
}

func TestAddBreaksTiesByInsertionOrder(t *testing.T) {
	r := New()
	first := r.Add(noop(50))
	second := r.Add(noop(50))
	third := r.Add(noop(50))

	snap := r.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d, want 3", len(snap))
	}
	if snap[0] != first || snap[1] != second || snap[2] != third {
		t.Fatal("equal-priority registrations not in insertion order")
	}
}

func TestRegistrationIDsAreUnique(t *testing.T) {
	r := New()
	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		reg := r.Add(noop(i))
		if seen[reg.ID()] {
			t.Fatalf("duplicate registration id %d", reg.ID())
		}
		seen[reg.ID()] = true
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	r := New()
	reg := r.Add(noop(50))
	r.Add(noop(10))

	if !r.Remove(reg) {
		t.Fatal("first Remove returned false")
	}
	if !reg.Revoked() {
		t.Fatal("registration not marked revoked")
	}
	if r.Remove(reg) {
		t.Fatal("second Remove returned true")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}

func TestRemoveNil(t *testing.T) {
	r := New()
	if r.Remove(nil) {
		t.Fatal("Remove(nil) returned true")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	r := New()
	reg := r.Add(noop(50))

	snap := r.Snapshot()
	r.Remove(reg)
	r.Add(noop(100))

	// The earlier snapshot is untouched by later writes.
	if len(snap) != 1 || snap[0] != reg {
		t.Fatal("snapshot changed after Remove/Add")
	}
	if got := r.Snapshot(); len(got) != 1 || got[0].Priority() != 100 {
		t.Fatalf("current snapshot = %v", priorities(got))
	}
}

func TestConcurrentAddRemove(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				reg := r.Add(noop(g*100 + i))
				if i%2 == 0 {
					r.Remove(reg)
				}
			}
		}(g)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			snap := r.Snapshot()
			for j := 1; j < len(snap); j++ {
				if snap[j-1].Priority() < snap[j].Priority() {
					t.Errorf("snapshot out of order at %d", j)
					return
				}
			}
		}
	}()

	wg.Wait()
	<-done

	if r.Len() != 8*50 {
		t.Fatalf("Len = %d, want %d", r.Len(), 8*50)
	}
}
