package alignment

// Range is a word's (start, end) pair in milliseconds.
type Range struct {
	Start int64
	End   int64
}

// UsedRanges records word ranges already claimed by a segment.
type UsedRanges map[Range]struct{}

// Contains reports whether r has been claimed.
func (u UsedRanges) Contains(r Range) bool {
	_, ok := u[r]
	return ok
}

// State is threaded through the aligner one token at a time. Words starting
// at or before Cursor cannot open a new match.
type State struct {
	Cursor int64
	Used   UsedRanges
}

// NewState returns the initial state. The cursor starts at -1 so a word
// beginning at 0 ms is matchable.
func NewState() State {
	return State{Cursor: -1, Used: UsedRanges{}}
}

// claim returns a new state with the given ranges marked used and the cursor
// moved to end. The receiver is left untouched.
func (s State) claim(ranges []Range, end int64) State {
	used := make(UsedRanges, len(s.Used)+len(ranges))
	for r := range s.Used {
		used[r] = struct{}{}
	}
	for _, r := range ranges {
		used[r] = struct{}{}
	}
	return State{Cursor: end, Used: used}
}
