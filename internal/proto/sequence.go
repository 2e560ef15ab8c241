package proto

import (
	"sync/atomic"
	"time"
)

const seqSeed int32 = 0x7fffffff

// Sequence hands out request IDs. Seeded at the top of the positive int32
// range; once the current value no longer fits in 28 bits it reseeds from the
// clock into [0, 99999] instead of running into the sign bit. After a reseed,
// uniqueness against very recently issued IDs is only probabilistic, which
// caps sane pipelining depth at well under 100000 outstanding requests.
type Sequence struct {
	id atomic.Int32
}

// NewSequence returns a Sequence ready for Next. The first Next already
// reseeds, since the seed itself fails the 28-bit check.
func NewSequence() *Sequence {
	s := &Sequence{}
	s.id.Store(seqSeed)
	return s
}

// Next returns a fresh request ID. Safe for concurrent callers; the CAS loop
// guarantees no two of them observe the same value.
func (s *Sequence) Next() int32 {
	for {
		cur := s.id.Load()
		var next int32
		if cur&0x0fffffff != cur {
			next = int32((time.Now().UnixNano() / 100000) % 100000)
		} else {
			next = cur + 1
		}
		if s.id.CompareAndSwap(cur, next) {
			return next
		}
	}
}
