package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TextNormalizer wraps transform.Transformer to provide convenient string normalization methods.
// This is not safe for concurrent use.
type TextNormalizer struct {
	transformer transform.Transformer
}

// NewTextNormalizer creates a new TextNormalizer instance.
func NewTextNormalizer() *TextNormalizer {
	return &TextNormalizer{
		transformer: transform.Chain(
			norm.NFKD,                          // Decompose with compatibility decomposition
			runes.Remove(runes.In(unicode.Mn)), // Remove non-spacing marks
			runes.Map(unicode.ToLower),         // Convert to lowercase before normalization
			norm.NFKC,                          // Normalize with compatibility composition
		),
	}
}

// Normalize cleans up text using the normalizer.
// Returns empty string if normalization fails or input is empty.
func (n *TextNormalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}

	// Clean up whitespace while preserving newlines
	s = CompressWhitespacePreserveNewlines(s)
	if s == "" {
		return ""
	}

	result, _, err := transform.String(n.transformer, s)
	if err != nil || result == "" {
		return ""
	}

	return result
}

// NormalizeKeyword reduces a chat command to a comparable form: trimmed,
// lowercased, accents stripped and all whitespace runs collapsed to one space.
func NormalizeKeyword(s string) string {
	return CompressAllWhitespace(NewTextNormalizer().Normalize(s))
}

// IsKeyword reports whether s is exactly the given command word.
func IsKeyword(s, keyword string) bool {
	return NormalizeKeyword(s) == keyword
}

// HasKeywordPrefix reports whether s begins with the given command word.
func HasKeywordPrefix(s, keyword string) bool {
	return strings.HasPrefix(NormalizeKeyword(s), keyword)
}
