package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reelsmith/internal/generate"
	"reelsmith/internal/logging"
	"reelsmith/internal/transcript"
)

// extractionResponse is the JSON shape requested from the model.
type extractionResponse struct {
	Keywords []extractedKeyword `json:"keywords" jsonschema_description:"Keywords in sentence order"`
}

type extractedKeyword struct {
	OrderID int    `json:"order_id" jsonschema_description:"1-based position within the sentence"`
	Type    string `json:"type" jsonschema:"enum=image,enum=gif,enum=text"`
	Keyword string `json:"keyword" jsonschema_description:"Keyword copied verbatim from the sentence"`
}

// Extractor turns narration sentences into keyword tokens.
type Extractor struct {
	client generate.Client
	delay  time.Duration
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// NewExtractor builds an extractor that waits delay between sentence requests.
func NewExtractor(client generate.Client, delay time.Duration, logger *slog.Logger) *Extractor {
	return &Extractor{
		client: client,
		delay:  delay,
		logger: logging.NewComponentLogger(logger, "keywords"),
		sleep:  sleepContext,
	}
}

// Extract requests keywords for each sentence and numbers them globally from
// 1. A sentence whose request fails or yields nothing is used whole as a
// single text keyword. Only context cancellation is returned as an error.
func (e *Extractor) Extract(ctx context.Context, sentences []transcript.Sentence) ([]Token, error) {
	var tokens []Token
	nextID := 1
	for i, sentence := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(sentence.Text)
		if text == "" {
			continue
		}
		found := e.sentenceKeywords(ctx, sentence.ID, text)
		if len(found) == 0 {
			found = []Token{{Type: MediaText, Keyword: text}}
		}
		for _, tok := range found {
			tok.OrderID = nextID
			nextID++
			tokens = append(tokens, tok)
		}
		if i < len(sentences)-1 && e.delay > 0 {
			if err := e.sleep(ctx, e.delay); err != nil {
				return nil, err
			}
		}
	}
	e.logger.Info("keywords extracted",
		logging.Int("sentences", len(sentences)),
		logging.Int("keywords", len(tokens)),
	)
	if tokens == nil {
		tokens = []Token{}
	}
	return tokens, nil
}

func (e *Extractor) sentenceKeywords(ctx context.Context, id int, text string) []Token {
	var resp extractionResponse
	req := generate.Request{
		Name:   "sentence keywords",
		System: extractionPrompt,
		User:   "Input sentence:\n" + text,
		Shape:  extractionResponse{},
	}
	if err := generate.Complete(ctx, e.client, req, &resp); err != nil {
		logging.WarnWithContext(e.logger, "keyword extraction failed; using full sentence", "keyword_extraction_failed",
			logging.Int("sentence_id", id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "sentence illustrated as a single text card"),
		)
		return nil
	}
	raw := make([]Token, 0, len(resp.Keywords))
	for _, kw := range resp.Keywords {
		typ, ok := ParseMediaType(kw.Type)
		if !ok {
			e.logger.Debug("keyword skipped",
				logging.Args(append(logging.DecisionAttrs("keyword_extraction", "skipped", fmt.Sprintf("unknown type %q", kw.Type)),
					logging.String("keyword", kw.Keyword),
				)...)...,
			)
			continue
		}
		raw = append(raw, Token{OrderID: kw.OrderID, Type: typ, Keyword: strings.TrimSpace(kw.Keyword)})
	}
	SortByOrder(raw)
	return Dedupe(raw)
}

// Dedupe keeps one token per keyword (case-insensitive) at the position of its
// first occurrence, upgraded to the highest-priority type seen for it:
// image over gif over text. Blank keywords are dropped.
func Dedupe(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	index := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		key := strings.ToLower(strings.TrimSpace(tok.Keyword))
		if key == "" {
			continue
		}
		if at, ok := index[key]; ok {
			if tok.Type.priority() > out[at].Type.priority() {
				out[at].Type = tok.Type
			}
			continue
		}
		index[key] = len(out)
		out = append(out, tok)
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
