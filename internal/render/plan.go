package render

import (
	"cmp"
	"slices"

	"reelsmith/internal/alignment"
	"reelsmith/internal/keywords"
)

// Clip is a segment scheduled on the output timeline.
type Clip struct {
	OrderID int
	Type    keywords.MediaType
	Path    string
	Start   int64
	End     int64
}

// Duration returns the on-screen length in milliseconds.
func (c Clip) Duration() int64 {
	return c.End - c.Start
}

// Plan orders segments by order id and stretches each to the next one's
// start. The last segment keeps its end. Ends never precede starts and never
// pass audioMillis; clips left with no duration are dropped. A non-positive
// audioMillis disables the clamp.
func Plan(segments []alignment.Segment, audioMillis int64) []Clip {
	sorted := slices.Clone(segments)
	slices.SortStableFunc(sorted, func(a, b alignment.Segment) int {
		return cmp.Compare(a.OrderID, b.OrderID)
	})

	clips := make([]Clip, 0, len(sorted))
	for i, seg := range sorted {
		end := seg.End
		if i < len(sorted)-1 {
			end = sorted[i+1].Start
		}
		end = max(end, seg.Start)
		if audioMillis > 0 && end > audioMillis {
			end = audioMillis
		}
		clip := Clip{OrderID: seg.OrderID, Type: seg.Type, Path: seg.Path, Start: seg.Start, End: end}
		if clip.Duration() <= 0 {
			continue
		}
		clips = append(clips, clip)
	}
	return clips
}
