package interview

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

	stopWords = map[string]bool{
		"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
		"were": true, "be": true, "been": true, "being": true, "have": true,
		"has": true, "had": true, "do": true, "does": true, "did": true,
		"will": true, "would": true, "could": true, "should": true, "may": true,
		"might": true, "can": true, "you": true, "your": true, "me": true,
		"my": true, "how": true, "what": true, "when": true, "where": true,
		"why": true, "which": true, "this": true, "that": true, "these": true,
		"those": true, "tell": true, "explain": true, "describe": true,
		"about": true, "give": true, "example": true, "walk": true, "through": true,
	}
)

const maxNormalizedTokens = 15

// Normalize reduces question text to its dedup key: lowercase, punctuation
// stripped, stop words and tokens of two characters or fewer dropped, first
// 15 tokens kept in order. Paraphrases that reorder clauses or differ only
// after the 15th significant token are not caught.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonWordRe.ReplaceAllString(text, "")

	words := make([]string, 0, maxNormalizedTokens)
	for _, w := range strings.Fields(text) {
		if stopWords[w] || utf8.RuneCountInString(w) <= 2 {
			continue
		}
		words = append(words, w)
		if len(words) == maxNormalizedTokens {
			break
		}
	}
	return strings.Join(words, " ")
}

// TruncateBytes cuts s to at most n bytes without splitting a UTF-8
// sequence.
func TruncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
