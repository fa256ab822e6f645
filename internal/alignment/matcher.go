package alignment

import (
	"errors"
	"slices"
	"strings"
)

// ErrEmptyPhrase is returned for keywords with no matchable words.
var ErrEmptyPhrase = errors.New("empty phrase")

// Match is a phrase occurrence: the start of its first word, the end of its
// last word, and the word positions it consumed in ascending order.
type Match struct {
	Start     int64
	End       int64
	Positions []int
}

// FindPhrase returns the earliest valid occurrence of phrase. A candidate may
// only open on a word starting after state.Cursor; later phrase words skip
// positions whose range is already used. Every candidate start is tried, any
// candidate touching a used range is rejected, and the survivor with the
// smallest (start, end, positions) wins. ok is false when nothing matches.
func FindPhrase(phrase string, index *WordIndex, state State) (Match, bool, error) {
	targets := strings.Fields(lower(phrase))
	if !hasMatchableWord(targets) {
		return Match{}, false, ErrEmptyPhrase
	}
	for i := range targets {
		targets[i] = cleanLowered(targets[i])
	}

	var candidates []Match
	for i := 0; i < index.Len(); i++ {
		if index.words[i].Start <= state.Cursor {
			continue
		}
		if !cleanedMatch(index.clean[i], targets[0]) {
			continue
		}
		m, ok := extend(index, state.Used, i, targets[1:])
		if !ok || touchesUsed(index, state.Used, m.Positions) {
			continue
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		return Match{}, false, nil
	}
	slices.SortStableFunc(candidates, compareMatches)
	return candidates[0], true, nil
}

// extend binds each remaining target to the next unused matching word after
// the previous binding. It never revisits an earlier binding.
func extend(index *WordIndex, used UsedRanges, first int, rest []string) (Match, bool) {
	m := Match{
		Start:     index.words[first].Start,
		End:       index.words[first].End,
		Positions: []int{first},
	}
	pos := first + 1
	for _, target := range rest {
		found := false
		for ; pos < index.Len(); pos++ {
			if used.Contains(index.rangeAt(pos)) {
				continue
			}
			if cleanedMatch(index.clean[pos], target) {
				m.End = index.words[pos].End
				m.Positions = append(m.Positions, pos)
				pos++
				found = true
				break
			}
		}
		if !found {
			return Match{}, false
		}
	}
	return m, true
}

func touchesUsed(index *WordIndex, used UsedRanges, positions []int) bool {
	for _, p := range positions {
		if used.Contains(index.rangeAt(p)) {
			return true
		}
	}
	return false
}

func compareMatches(a, b Match) int {
	switch {
	case a.Start != b.Start:
		return cmpInt64(a.Start, b.Start)
	case a.End != b.End:
		return cmpInt64(a.End, b.End)
	default:
		return slices.Compare(a.Positions, b.Positions)
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func hasMatchableWord(targets []string) bool {
	for _, t := range targets {
		if cleanLowered(t) != "" {
			return true
		}
	}
	return false
}
