package cart

import (
	"encoding/json"
	"math"
)

// Line is a single cart entry. ID equals the product identifier and is unique
// across the cart. Name and Price are snapshots taken when the product was
// first added; they are not re-synced if the catalog changes.
type Line struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Subtotal returns the line total (unit price times quantity).
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Count sums quantities across all lines.
func Count(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// Total sums price times quantity across all lines.
func Total(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

// MarshalLines serialises the full sequence for wholesale persistence.
func MarshalLines(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(lines)
}

// UnmarshalLines decodes a persisted cart. A value that is not a JSON array
// yields an empty cart; individual elements that fail to decode (wrong field
// types, non-numeric prices stored by older schema bugs) are dropped rather
// than failing the whole load.
func UnmarshalLines(raw []byte) []Line {
	if len(raw) == 0 {
		return []Line{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []Line{}
	}
	lines := make([]Line, 0, len(elems))
	for _, e := range elems {
		var l Line
		if err := json.Unmarshal(e, &l); err != nil {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// Sanitize drops lines that violate cart invariants: a price that is not a
// finite number, or a quantity that is not positive. Relative order of the
// surviving lines is preserved.
func Sanitize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if math.IsNaN(l.Price) || math.IsInf(l.Price, 0) {
			continue
		}
		if l.Quantity <= 0 {
			continue
		}
		out = append(out, l)
	}
	return out
}
