package pool

import "testing"

func TestDestroyLaterIsDeferred(t *testing.T) {
	p := NewPool[thing](8)

	r := p.Spawn()
	if !p.DestroyLater(r) {
		t.Fatalf("DestroyLater(%+v) = false, want true", r)
	}
	if !p.IsValid(r) {
		t.Fatalf("ref invalidated before flush")
	}
	if p.PendingDestroyCount() != 1 {
		t.Fatalf("PendingDestroyCount() = %d, want 1", p.PendingDestroyCount())
	}

	n := p.FlushDestroyLater()
	if n != 1 {
		t.Fatalf("FlushDestroyLater() = %d, want 1", n)
	}
	if p.IsValid(r) {
		t.Fatalf("ref still valid after flush")
	}
	if p.PendingDestroyCount() != 0 {
		t.Fatalf("queue not drained after flush")
	}
}

func TestFlushIgnoresStaleDuplicates(t *testing.T) {
	p := NewPool[thing](8)

	r := p.Spawn()
	p.DestroyLater(r)
	p.DestroyLater(r) // duplicate enqueue of the same still-live ref

	n := p.FlushDestroyLater()
	if n != 1 {
		t.Fatalf("FlushDestroyLater() = %d, want 1 (duplicate must count once)", n)
	}
	checkInvariants(t, p)
}

func TestFlushSkipsHandleInvalidatedBeforeFlush(t *testing.T) {
	p := NewPool[thing](8)

	r := p.Spawn()
	p.DestroyLater(r)
	p.Destroy(r) // invalidated by an eager destroy before the flush runs

	n := p.FlushDestroyLater()
	if n != 0 {
		t.Fatalf("FlushDestroyLater() = %d, want 0 (already-destroyed ref must be skipped)", n)
	}
}

func TestFlushOfDestroyedParentDoesNotDoubleCountSubtree(t *testing.T) {
	p := NewPool[thing](8)

	parent := p.Spawn()
	child := p.Spawn()
	p.AttachChild(parent, child)

	p.DestroyLater(parent)
	p.DestroyLater(child) // child is torn down as part of parent's subtree first

	n := p.FlushDestroyLater()
	if n != 1 {
		t.Fatalf("FlushDestroyLater() = %d, want 1 (child entry must be skipped as already destroyed)", n)
	}
	if p.IsValid(parent) || p.IsValid(child) {
		t.Fatalf("parent or child still valid after flush")
	}
}

func TestClearDestroyLaterDropsWithoutDestroying(t *testing.T) {
	p := NewPool[thing](8)

	r := p.Spawn()
	p.DestroyLater(r)
	p.ClearDestroyLater()

	if p.PendingDestroyCount() != 0 {
		t.Fatalf("PendingDestroyCount() = %d after clear, want 0", p.PendingDestroyCount())
	}
	if !p.IsValid(r) {
		t.Fatalf("ref invalidated by ClearDestroyLater, want untouched")
	}
}

func TestDestroyLaterRejectsNilRef(t *testing.T) {
	p := NewPool[thing](4)

	if p.DestroyLater(Nil) {
		t.Fatalf("DestroyLater(Nil) = true, want false")
	}
}

func TestDestroyLaterRejectsOverflow(t *testing.T) {
	p := NewPool[thing](4) // 3 usable slots

	refs := []Ref{p.Spawn(), p.Spawn(), p.Spawn()}
	for i, r := range refs {
		if !p.DestroyLater(r) {
			t.Fatalf("DestroyLater(#%d) = false, want true (queue not yet full)", i)
		}
	}

	extra := p.Spawn() // pool is already full, but test the queue cap directly
	if extra.IsZero() {
		extra = refs[0]
	}
	if p.DestroyLater(extra) {
		t.Fatalf("DestroyLater on a full queue = true, want false")
	}
}

func TestQueueDestroyIfEnqueuesMatching(t *testing.T) {
	p := NewPool[thing](8)

	for k := uint32(0); k < 5; k++ {
		r := p.Spawn()
		p.Get(r).Kind = k % 2
	}

	n := p.QueueDestroyIf(func(r Ref, payload *thing) bool { return payload.Kind == 1 })
	if n != 2 {
		t.Fatalf("QueueDestroyIf matched %d, want 2", n)
	}
	if p.PendingDestroyCount() != 2 {
		t.Fatalf("PendingDestroyCount() = %d, want 2", p.PendingDestroyCount())
	}

	p.FlushDestroyLater()
	var remaining int
	p.All(func(r Ref, payload *thing) { remaining++ })
	if remaining != 3 {
		t.Fatalf("remaining active slots = %d, want 3", remaining)
	}
}
