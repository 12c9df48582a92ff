package reporting

import "math"

// BreakPolicy decides, before a block is emitted, whether it must move to a
// new page. Estimates are soft: a block taller than a whole page is still
// placed on a fresh page rather than looping.
type BreakPolicy struct {
	SafeMarginThreshold float64
}

// NeedsBreak reports whether a block of the given estimated height does not
// fit in what is left of the current page.
func (p BreakPolicy) NeedsBreak(l *Layout, height float64) bool {
	if l.fresh() {
		return false
	}
	return height > l.RemainingSpace()
}

// SectionNeedsBreak reports whether the space left is below the safe margin
// a new section needs.
func (p BreakPolicy) SectionNeedsBreak(l *Layout) bool {
	if l.fresh() {
		return false
	}
	threshold := p.SafeMarginThreshold
	if threshold <= 0 {
		threshold = DefaultSafeMarginThreshold
	}
	return l.RemainingSpace() < threshold
}

// RowsThatFit is how many rows of rowHeight fit in space. It is never
// negative.
func RowsThatFit(space, rowHeight float64) int {
	if rowHeight <= 0 || space <= 0 {
		return 0
	}
	return int(math.Floor(space/rowHeight + 1e-9))
}

// requiresFreshPage is the height estimate for blocks that may only start at
// the top of an untouched page.
var requiresFreshPage = math.Inf(1)
