package alignment

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNonMonotonic reports segments whose start times do not strictly increase.
var ErrNonMonotonic = errors.New("segment starts are not strictly increasing")

// CloseGaps returns a copy of segments with the first start forced to 0 and
// each end moved to one millisecond before the next start. The last end is
// kept. Starts must strictly increase. A segment whose successor starts one
// millisecond later, or a last segment matched on a zero-width word, ends
// where it starts; ends never precede starts.
func CloseGaps(segments []Segment) ([]Segment, error) {
	for i := 1; i < len(segments); i++ {
		if segments[i].Start <= segments[i-1].Start {
			return nil, fmt.Errorf("%w: segment %d (order %d) starts at %d, previous at %d",
				ErrNonMonotonic, i, segments[i].OrderID, segments[i].Start, segments[i-1].Start)
		}
	}
	out := slices.Clone(segments)
	if len(out) == 0 {
		return out, nil
	}
	out[0].Start = 0
	for i := 0; i < len(out)-1; i++ {
		out[i].End = out[i+1].Start - 1
	}
	return out, nil
}
