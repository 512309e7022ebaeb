package model

import "math"

// Order sorts by one entity property.
type Order struct {
	Property string
	Desc     bool
}

// Pageable selects a zero-based page of a listing.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

// Offset returns the index of the first row of the page, saturating at
// math.MaxInt instead of overflowing.
func (p Pageable) Offset() int {
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}
