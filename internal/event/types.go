package event

import "github.com/l1jgo/thingpool/internal/pool"

// Event types emitted by the demo's tick loop and snapshot operations.

// Spawned is emitted when a new ref is allocated.
type Spawned struct {
	Ref pool.Ref
}

// Destroyed is emitted by the demo loop when DestroyLater accepts a ref;
// the FlushDestroyLater call later in the same tick tears it down.
type Destroyed struct {
	Ref pool.Ref
}

// SnapshotSaved is emitted after a successful SaveToFile.
type SnapshotSaved struct {
	Path string
}

// SnapshotSaveFailed is emitted when SaveToFile returns an error.
type SnapshotSaveFailed struct {
	Path string
	Err  error
}

// SnapshotLoadFailed is emitted when LoadFromFile returns an error. The
// pool itself is left untouched by a failed load; this event exists so a
// caller's telemetry sink can record the attempt.
type SnapshotLoadFailed struct {
	Path string
	Err  error
}
