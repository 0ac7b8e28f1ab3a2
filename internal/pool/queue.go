package pool

// DestroyLater enqueues r for destruction at the next FlushDestroyLater.
// Returns false if r.Index is zero or the queue is already at capacity.
// There is no deduplication and no validity check at enqueue time beyond
// the index-zero check: stale handles are accepted and filtered at flush,
// keeping this hot path branch-free.
func (p *Pool[T]) DestroyLater(r Ref) bool {
	if r.Index == 0 {
		return false
	}
	if len(p.destroyQueue) >= p.destroyQueueCap {
		return false
	}
	p.destroyQueue = append(p.destroyQueue, r)
	return true
}

// PendingDestroyCount returns the number of handles currently queued.
func (p *Pool[T]) PendingDestroyCount() int {
	return len(p.destroyQueue)
}

// ClearDestroyLater drops all pending handles without destroying anything.
func (p *Pool[T]) ClearDestroyLater() {
	p.destroyQueue = p.destroyQueue[:0]
}

// FlushDestroyLater calls Destroy on every queued handle in insertion
// order and returns the number that were valid at the moment of their
// individual destroy call. Duplicates count once: the first occurrence
// consumes the slot, so later copies find it inactive and are silently
// ignored.
func (p *Pool[T]) FlushDestroyLater() int {
	count := 0
	for _, r := range p.destroyQueue {
		if p.IsValid(r) {
			p.Destroy(r)
			count++
		}
	}
	p.destroyQueue = p.destroyQueue[:0]
	return count
}

// QueueDestroyIf scans all active slots, calling pred(ref, payload) for
// each, and enqueues every Ref for which pred returns true. It stops
// enqueuing once the queue overflows. Returns the number of successful
// enqueues.
func (p *Pool[T]) QueueDestroyIf(pred func(Ref, *T) bool) int {
	enqueued := 0
	p.All(func(r Ref, payload *T) {
		if len(p.destroyQueue) >= p.destroyQueueCap {
			return
		}
		if pred(r, payload) {
			if p.DestroyLater(r) {
				enqueued++
			}
		}
	})
	return enqueued
}
