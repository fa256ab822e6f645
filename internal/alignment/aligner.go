package alignment

import (
	"errors"
	"log/slog"
	"slices"

	"reelsmith/internal/keywords"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/transcript"
)

const decisionAlignment = "keyword_alignment"

// Aligner matches keyword tokens against one transcript.
type Aligner struct {
	index     *WordIndex
	mediaRoot string
	logger    *slog.Logger
}

// NewAligner indexes words for repeated lookups. A nil logger discards output.
func NewAligner(words []transcript.Word, mediaRoot string, logger *slog.Logger) *Aligner {
	return &Aligner{
		index:     NewWordIndex(words),
		mediaRoot: mediaRoot,
		logger:    logging.NewComponentLogger(logger, "aligner"),
	}
}

// Step aligns a single token. On a match it returns the segment and a new
// state with the matched words claimed and the cursor at the match end. On a
// miss it returns the input state unchanged and ok=false. The input state is
// never mutated.
func (a *Aligner) Step(state State, tok keywords.Token) (State, Segment, bool) {
	if state.Used == nil {
		state.Used = UsedRanges{}
	}
	match, ok, err := FindPhrase(tok.Keyword, a.index, state)
	if err != nil {
		reason := err.Error()
		if errors.Is(err, ErrEmptyPhrase) {
			reason = "keyword has no matchable words"
		}
		a.drop(tok, reason)
		return state, Segment{}, false
	}
	if !ok {
		a.drop(tok, "no unused occurrence after cursor")
		return state, Segment{}, false
	}

	ranges := make([]Range, 0, len(match.Positions))
	for _, p := range match.Positions {
		ranges = append(ranges, a.index.rangeAt(p))
	}
	next := state.claim(ranges, match.End)
	seg := Segment{
		OrderID: tok.OrderID,
		Type:    tok.Type,
		Keyword: tok.Keyword,
		Start:   match.Start,
		End:     match.End,
		Path:    MediaPath(a.mediaRoot, tok.Type, tok.OrderID),
	}
	a.logger.Debug("keyword aligned",
		logging.Args(append(logging.DecisionAttrs(decisionAlignment, "matched", "earliest unused occurrence"),
			logging.Int("order_id", tok.OrderID),
			logging.String("keyword", tok.Keyword),
			logging.Int64("start_ms", seg.Start),
			logging.Int64("end_ms", seg.End),
		)...)...,
	)
	return next, seg, true
}

// Align walks tokens in ascending order_id and returns one segment per
// matched token. The caller's slice is not reordered.
func (a *Aligner) Align(tokens []keywords.Token) []Segment {
	ordered := slices.Clone(tokens)
	keywords.SortByOrder(ordered)

	state := NewState()
	segments := make([]Segment, 0, len(ordered))
	for _, tok := range ordered {
		var (
			seg Segment
			ok  bool
		)
		state, seg, ok = a.Step(state, tok)
		if ok {
			segments = append(segments, seg)
		}
	}
	a.logger.Info("alignment complete",
		logging.Int("tokens", len(ordered)),
		logging.Int("segments", len(segments)),
		logging.Int("dropped", len(ordered)-len(segments)),
	)
	return segments
}

func (a *Aligner) drop(tok keywords.Token, reason string) {
	a.logger.Debug("keyword dropped",
		logging.Args(append(logging.DecisionAttrs(decisionAlignment, "dropped", reason),
			logging.Int("order_id", tok.OrderID),
			logging.String("keyword", tok.Keyword),
		)...)...,
	)
}

// Build aligns tokens against words and closes the gaps between segments.
// Tokens must carry unique positive order ids.
func Build(words []transcript.Word, tokens []keywords.Token, mediaRoot string, logger *slog.Logger) ([]Segment, error) {
	if err := keywords.Validate(tokens); err != nil {
		return nil, services.Wrap(services.ErrValidation, "alignment", "validate keywords", "", err)
	}
	segments := NewAligner(words, mediaRoot, logger).Align(tokens)
	return CloseGaps(segments)
}
