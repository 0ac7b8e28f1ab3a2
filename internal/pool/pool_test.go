package pool

import "testing"

type thing struct {
	Kind  uint32
	Value uint32
}

// checkInvariants walks the pool's internal structure and fails the test
// if slot 0 is active, or if the free list reached from firstFree contains
// a cycle or an active slot.
func checkInvariants[T any](t *testing.T, p *Pool[T]) {
	t.Helper()

	if p.nodes[0].Active {
		t.Fatalf("slot 0 must never be active")
	}

	seen := make(map[uint32]bool)
	for i := p.firstFree; i != 0; i = p.nextFree[i] {
		if seen[i] {
			t.Fatalf("free list contains a cycle at index %d", i)
		}
		seen[i] = true
		if p.nodes[i].Active {
			t.Fatalf("free list contains active slot %d", i)
		}
	}
}

func TestNewPoolLayout(t *testing.T) {
	p := NewPool[thing](4)
	if p.Capacity() != 4 {
		t.Fatalf("Capacity() = %d, want 4", p.Capacity())
	}
	checkInvariants(t, p)

	for i := 0; i < 3; i++ {
		r := p.Spawn()
		if r.IsZero() {
			t.Fatalf("Spawn() #%d returned Nil, want a valid ref", i)
		}
	}
	if r := p.Spawn(); !r.IsZero() {
		t.Fatalf("Spawn() on a full pool = %+v, want Nil", r)
	}
}

func TestSpawnGetRoundTrip(t *testing.T) {
	p := NewPool[thing](8)

	r := p.Spawn()
	payload := p.Get(r)
	payload.Kind = 7
	payload.Value = 42

	got, ok := p.GetOK(r)
	if !ok {
		t.Fatalf("GetOK(%+v) ok = false, want true", r)
	}
	if got.Kind != 7 || got.Value != 42 {
		t.Fatalf("got payload %+v, want {Kind:7 Value:42}", *got)
	}
}

func TestGetPanicsOnInvalidRef(t *testing.T) {
	p := NewPool[thing](4)

	defer func() {
		if recover() == nil {
			t.Fatalf("Get(Nil) did not panic")
		}
	}()
	p.Get(Nil)
}

func TestDestroyBumpsGeneration(t *testing.T) {
	p := NewPool[thing](4)

	r1 := p.Spawn()
	p.Destroy(r1)
	if p.IsValid(r1) {
		t.Fatalf("IsValid(%+v) = true after Destroy, want false", r1)
	}

	r2 := p.Spawn()
	if r2.Index != r1.Index {
		t.Fatalf("expected slot reuse: r2.Index = %d, want %d", r2.Index, r1.Index)
	}
	if r2.Generation == r1.Generation {
		t.Fatalf("r2.Generation = r1.Generation = %d, want a bump", r1.Generation)
	}
	if p.IsValid(r1) {
		t.Fatalf("stale ref %+v reports valid after slot reuse as %+v", r1, r2)
	}
	if !p.IsValid(r2) {
		t.Fatalf("IsValid(%+v) = false, want true", r2)
	}

	checkInvariants(t, p)
}

func TestDestroyIsIdempotent(t *testing.T) {
	p := NewPool[thing](4)

	r := p.Spawn()
	p.Destroy(r)
	p.Destroy(r) // must be a no-op, not a double-free of the slot

	checkInvariants(t, p)

	// After one destroy all three usable slots are free again, so two
	// re-spawns must both succeed.
	a := p.Spawn()
	b := p.Spawn()
	if a.IsZero() || b.IsZero() {
		t.Fatalf("expected two spawns to succeed after one destroy, got %+v, %+v", a, b)
	}
}

func TestAllVisitsActiveSlotsInIndexOrder(t *testing.T) {
	p := NewPool[thing](6)

	refs := make([]Ref, 0, 4)
	for i := 0; i < 4; i++ {
		refs = append(refs, p.Spawn())
	}
	p.Destroy(refs[1])

	var seen []uint32
	p.All(func(r Ref, payload *thing) {
		seen = append(seen, r.Index)
	})

	if len(seen) != 3 {
		t.Fatalf("All visited %d slots, want 3 (one destroyed)", len(seen))
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] <= seen[i-1] {
			t.Fatalf("All visited out of index order: %v", seen)
		}
	}
	for _, idx := range seen {
		if idx == refs[1].Index {
			t.Fatalf("All visited destroyed slot %d", idx)
		}
	}
}

func TestForKindFiltersByPredicate(t *testing.T) {
	p := NewPool[thing](8)

	for k := uint32(0); k < 3; k++ {
		r := p.Spawn()
		p.Get(r).Kind = k % 2
	}

	var count int
	p.ForKind(func(payload *thing) bool { return payload.Kind == 0 }, func(r Ref, payload *thing) {
		count++
	})

	if count != 2 {
		t.Fatalf("ForKind matched %d, want 2", count)
	}
}
