package retrieval

import (
	"fmt"
	"regexp"
	"strings"
)

// anatomyTagRE matches the bracketed anatomy context a vision pass prepends
// to the retrieval query.
var anatomyTagRE = regexp.MustCompile(`^\[PATIENT IMAGING ANATOMY:\s*([^\]]+)\]\s*`)

// AnatomyPrefix renders the bracketed anatomy tag for a retrieval query
func AnatomyPrefix(label string) string {
	return fmt.Sprintf("[PATIENT IMAGING ANATOMY: %s] ", label)
}

// ParseAnatomyTag splits a retrieval query into its anatomy context (empty
// when the query carries none) and the remaining free text.
func ParseAnatomyTag(query string) (anatomy, remainder string) {
	m := anatomyTagRE.FindStringSubmatch(query)
	if m == nil {
		return "", query
	}
	return strings.TrimSpace(m[1]), query[len(m[0]):]
}

// stopwords are dropped during tokenization: articles, connectives, and the
// clinical filler that free-text symptom descriptions tend to open with.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"by": {}, "for": {}, "from": {}, "had": {}, "has": {}, "have": {},
	"in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "was": {}, "were": {}, "with": {},
	"patient": {}, "presents": {}, "presenting": {}, "complains": {},
	"reports": {}, "history": {},
}

var nonToken = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases the input, strips punctuation, drops stopwords and
// single-character fragments, and dedupes while preserving first-seen order.
func Tokenize(s string) []string {
	fields := strings.Fields(nonToken.ReplaceAllString(strings.ToLower(s), " "))

	seen := make(map[string]struct{}, len(fields))
	var tokens []string
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// tokenSet builds a membership set over the tokens of all given strings
func tokenSet(texts ...string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			set[tok] = struct{}{}
		}
	}
	return set
}

// coverage is the fraction of query tokens present in the set
func coverage(queryTokens []string, set map[string]struct{}) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	hits := 0
	for _, tok := range queryTokens {
		if _, ok := set[tok]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

// containsSequence reports whether needle occurs as a contiguous token
// subsequence of haystack.
func containsSequence(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
