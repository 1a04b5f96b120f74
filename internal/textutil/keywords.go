package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// stopWords are common English filler terms that carry no search value.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "has": {}, "his": {}, "him": {}, "its": {},
	"this": {}, "that": {}, "with": {}, "from": {}, "they": {}, "have": {},
	"will": {}, "your": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"their": {}, "there": {}, "then": {}, "them": {}, "these": {}, "those": {},
	"into": {}, "over": {}, "very": {}, "some": {}, "such": {}, "show": {},
	"showing": {}, "scene": {}, "shot": {}, "view": {}, "image": {},
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics strips combining marks so accented terms tokenize to their
// ASCII base form ("café" -> "cafe").
func FoldDiacritics(text string) string {
	folded, _, err := transform.String(diacriticFolder, text)
	if err != nil {
		return text
	}
	return folded
}

// Tokenize splits text into lowercase tokens, folding diacritics and
// filtering tokens shorter than 3 characters.
func Tokenize(text string) []string {
	lowered := strings.ToLower(FoldDiacritics(text))
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// Keywords extracts up to max significant terms from text, preserving first
// occurrence order, dropping stop words and duplicates.
func Keywords(text string, max int) []string {
	if max <= 0 {
		return nil
	}
	tokens := Tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	keywords := make([]string, 0, max)
	for _, token := range tokens {
		if _, ok := stopWords[token]; ok {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
		if len(keywords) == max {
			break
		}
	}
	return keywords
}
