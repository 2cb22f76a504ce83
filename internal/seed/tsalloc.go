package seed

// TsAllocator hands out strictly-increasing microsecond timestamps per
// entry. The store rejects a write whose timestamp already exists in the
// entry (HTTP 409); remapped clip timestamps can collide after ns -> µs
// truncation, so colliding candidates are bumped forward by one
// microsecond.
type TsAllocator struct {
	lastUS map[string]int64
}

// NewTsAllocator creates an empty allocator.
func NewTsAllocator() *TsAllocator {
	return &TsAllocator{lastUS: make(map[string]int64)}
}

// AllocUS converts a nanosecond timestamp to microseconds, guaranteeing
// the result is strictly greater than any previously allocated timestamp
// for the same entry.
func (a *TsAllocator) AllocUS(entry string, tsNS int64) int64 {
	cand := tsNS / 1_000
	last, ok := a.lastUS[entry]
	if ok && cand <= last {
		cand = last + 1
	}
	a.lastUS[entry] = cand
	return cand
}
