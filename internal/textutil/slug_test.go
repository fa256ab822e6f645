package textutil

import (
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		maxWords int
		maxLen   int
		want     string
	}{
		{"empty", "", 6, 40, "untitled"},
		{"punctuation only", "?!", 6, 40, "untitled"},
		{"single word", "Docker", 6, 40, "docker"},
		{"collapses punctuation", "Why is Kubernetes so complicated? A deep dive", 6, 40, "why-is-kubernetes-so-complicated-a"},
		{"folds accents", "Café Überblick", 0, 0, "cafe-uberblick"},
		{"keeps digits", "Top 10 GPUs of 2026", 0, 0, "top-10-gpus-of-2026"},
		{"truncates", strings.Repeat("abcdefghij ", 6), 6, 40, "abcdefghij-abcdefghij-abcdefghij-abcdefg"},
		{"trims trailing dash after cut", "abcd efgh", 0, 5, "abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.value, tt.maxWords, tt.maxLen); got != tt.want {
				t.Fatalf("Slug(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}
