package models

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// Page selects a 1-based window of a result set.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"pageSize"`
}

// Normalize clamps out-of-range values instead of handing them to storage.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	// Keep (Number-1)*Size within int so the offset never wraps negative.
	if maxNumber := math.MaxInt / p.Size; p.Number > maxNumber {
		p.Number = maxNumber
	}
	return p
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Size
}
