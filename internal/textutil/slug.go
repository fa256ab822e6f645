package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// untitled is returned when nothing in the input survives slugging.
const untitled = "untitled"

// Slug lowercases the first maxWords words of value, strips accents and joins
// runs of letters and digits with single dashes. The result is cut to maxLen
// bytes. Non-positive limits disable the corresponding cap.
func Slug(value string, maxWords, maxLen int) string {
	words := strings.Fields(foldAccents(value))
	if maxWords > 0 && len(words) > maxWords {
		words = words[:maxWords]
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.Join(words, " ") {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingDash = true
	}

	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = strings.ToValidUTF8(out[:maxLen], "")
	}
	out = strings.Trim(out, "-")
	if out == "" {
		return untitled
	}
	return out
}

func foldAccents(value string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, value)
	if err != nil {
		return value
	}
	return out
}
