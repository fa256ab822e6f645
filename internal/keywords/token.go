package keywords

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/services"
)

// MediaType selects how a keyword is illustrated.
type MediaType string

const (
	MediaText  MediaType = "text"
	MediaImage MediaType = "image"
	MediaGIF   MediaType = "gif"
)

// ParseMediaType normalizes a model-supplied type. Unknown values are returned
// as-is with ok=false.
func ParseMediaType(value string) (MediaType, bool) {
	normalized := MediaType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case MediaText, MediaImage, MediaGIF:
		return normalized, true
	default:
		return normalized, false
	}
}

// priority ranks types for de-duplication: image beats gif beats text.
func (m MediaType) priority() int {
	switch m {
	case MediaImage:
		return 3
	case MediaGIF:
		return 2
	case MediaText:
		return 1
	default:
		return 0
	}
}

// Token is one keyword or phrase to illustrate, in playback order.
type Token struct {
	OrderID int       `json:"order_id"`
	Type    MediaType `json:"type"`
	Keyword string    `json:"keyword"`
}

// SortByOrder stably sorts tokens by ascending OrderID.
func SortByOrder(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].OrderID < tokens[j].OrderID })
}

// Validate checks that every order id is positive and appears once. Two
// tokens sharing an order id would share one media path.
func Validate(tokens []Token) error {
	seen := make(map[int]int, len(tokens))
	for i, tok := range tokens {
		if tok.OrderID <= 0 {
			return fmt.Errorf("token %d has non-positive order_id %d", i, tok.OrderID)
		}
		if prev, dup := seen[tok.OrderID]; dup {
			return fmt.Errorf("tokens %d and %d share order_id %d", prev, i, tok.OrderID)
		}
		seen[tok.OrderID] = i
	}
	return nil
}

// Load reads a keyword token list.
func Load(path string) ([]Token, error) {
	var tokens []Token
	if err := readJSON(path, &tokens); err != nil {
		return nil, err
	}
	if err := Validate(tokens); err != nil {
		return nil, services.Wrap(services.ErrValidation, "keywords", "validate", path, err)
	}
	return tokens, nil
}

// Save writes tokens as indented JSON.
func Save(path string, tokens []Token) error {
	if tokens == nil {
		return errors.New("tokens are nil")
	}
	if err := fileutil.WriteJSONAtomic(path, tokens); err != nil {
		return fmt.Errorf("save keywords: %w", err)
	}
	return nil
}
