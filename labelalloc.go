package labelmodel

// sentinelLabel marks an absent term, a masked-out position, or a
// shift-outside entry. It contributes nothing to the matrix view.
const sentinelLabel int64 = -1

// LabelAllocator hands out contiguous, strictly monotonic blocks of
// integer labels. A Model owns two independent counters,
// one for variable-labels and one for constraint-labels; allocation is
// the only mutation path for label state.
type LabelAllocator struct {
	nextVar int64
	nextCon int64
}

// newLabelAllocator returns an allocator whose counters start at 0.
func newLabelAllocator() *LabelAllocator {
	return &LabelAllocator{}
}

// AllocateVariables reserves n contiguous variable-labels and returns the
// half-open range [start, start+n).
func (a *LabelAllocator) AllocateVariables(n int) (start int64, end int64) {
	start = a.nextVar
	a.nextVar += int64(n)
	return start, a.nextVar
}

// AllocateConstraints reserves n contiguous constraint-labels.
func (a *LabelAllocator) AllocateConstraints(n int) (start int64, end int64) {
	start = a.nextCon
	a.nextCon += int64(n)
	return start, a.nextCon
}

// clone returns a copy carrying the same counter state, so a cloned
// Model's future allocations never collide with labels already issued to
// the original.
func (a *LabelAllocator) clone() *LabelAllocator {
	return &LabelAllocator{nextVar: a.nextVar, nextCon: a.nextCon}
}
