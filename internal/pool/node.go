package pool

// node is one slot in the pool's backing array. Slot 0 is the permanently
// inactive nil sentinel and is never returned by Spawn.
//
// Fields are exported so encoding/binary can decode directly into a
// []node[T] via reflection: binary.Read calls reflect.Value.Set on each
// destination field, which panics on an unexported field (binary.Write
// has no such restriction — it only reads values). Nothing outside this
// package imports node directly; Pool[T]'s own methods are the only
// access path, via Ref.
type node[T any] struct {
	Generation uint32
	Active     bool

	Parent      uint32
	FirstChild  uint32
	NextSibling uint32
	PrevSibling uint32

	Payload T
}
