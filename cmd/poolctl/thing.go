package main

// thing is the demo payload type poolctl's pool holds. It is intentionally
// a plain fixed-size struct: every field must stay binary-encodable for
// pool.Pool[thing].SaveToFile/LoadFromFile to work.
type thing struct {
	Kind  uint32
	Value int32
	Age   uint32
}
