// Package textnorm provides token normalization shared by the feature space
// builder and the query pipeline. Both sides must agree on it exactly: a query
// token can only match a corpus feature if they normalize to the same string.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_']+`)

// FoldAccents removes combining marks from s (NFD decomposition with marks
// stripped), so "été" and "ete" compare equal.
func FoldAccents(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeToken canonicalizes a raw token: NFKC normalization, accent
// folding, lower-casing, and stripping of leading/trailing underscores and
// apostrophes. Returns "" for tokens of length <= 2 or stop words.
func NormalizeToken(raw string) string {
	token := norm.NFKC.String(raw)
	token = strings.ToLower(FoldAccents(token))
	token = strings.Trim(token, "_'")
	if utf8.RuneCountInString(token) <= 2 || IsStopWord(token) {
		return ""
	}
	return token
}

// Tokenize splits text into normalized tokens, dropping empty ones.
func Tokenize(text string) []string {
	var tokens []string
	for _, raw := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if token := NormalizeToken(raw); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// QueryTokens returns the unique normalized tokens of a query in first-seen
// order, together with per-token occurrence counts.
func QueryTokens(query string) ([]string, map[string]float64) {
	counts := make(map[string]float64)
	var ordered []string
	for _, token := range Tokenize(query) {
		if _, seen := counts[token]; !seen {
			ordered = append(ordered, token)
		}
		counts[token]++
	}
	return ordered, counts
}
