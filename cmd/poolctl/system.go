package main

import (
	"time"

	"github.com/l1jgo/thingpool/internal/pool"
	"github.com/l1jgo/thingpool/internal/sim"
)

// agingSystem increments every active thing's Age field once per tick. It
// runs in PhaseUpdate, ahead of the destroy-predicate scan that reads Age.
type agingSystem struct {
	pool *pool.Pool[thing]
}

func (s *agingSystem) Phase() sim.Phase { return sim.PhaseUpdate }

func (s *agingSystem) Update(dt time.Duration) {
	s.pool.All(func(r pool.Ref, payload *thing) {
		payload.Age++
	})
}
