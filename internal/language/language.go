package language

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrUnknown reports a value that is neither a language tag nor a known
// English language name.
var ErrUnknown = errors.New("unknown language")

// alignable lists the languages WhisperX ships a default wav2vec2 alignment
// model for. Without one the transcript has no word timestamps.
var alignable = []string{
	"ar", "ca", "cs", "da", "de", "el", "en", "es", "eu", "fa", "fi", "fr",
	"gl", "he", "hi", "hr", "hu", "it", "ja", "ka", "ko", "lv", "ml", "nl",
	"nn", "no", "pl", "pt", "ro", "ru", "sk", "sl", "te", "tl", "tr", "uk",
	"ur", "vi", "zh",
}

var (
	alignableSet map[string]struct{}
	byName       map[string]string
	namer        = display.English.Languages()
)

func init() {
	alignableSet = make(map[string]struct{}, len(alignable))
	byName = make(map[string]string, len(alignable))
	for _, code := range alignable {
		alignableSet[code] = struct{}{}
		if name := namer.Name(language.MustParseBase(code)); name != "" {
			byName[strings.ToLower(name)] = code
		}
	}
}

// Normalize maps a BCP 47 tag ("en-US"), an ISO 639 code ("eng") or an
// English language name ("German") to its ISO 639-1 code.
func Normalize(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: empty value", ErrUnknown)
	}
	if code, ok := byName[strings.ToLower(value)]; ok {
		return code, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(value, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrUnknown, value)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", fmt.Errorf("%w %q", ErrUnknown, value)
	}
	return base.String(), nil
}

// Alignable reports whether WhisperX can produce word timestamps for code.
func Alignable(code string) bool {
	_, ok := alignableSet[code]
	return ok
}

// DisplayName returns the English name for code, or the code upper-cased when
// it is not a recognized language.
func DisplayName(code string) string {
	base, err := language.ParseBase(strings.TrimSpace(code))
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(code))
	}
	if name := namer.Name(base); name != "" {
		return name
	}
	return strings.ToUpper(code)
}
