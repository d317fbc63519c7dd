package topics

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Keyword tokens: letter runs including accented characters, 3+ runes after
// filtering.
var wordPattern = regexp.MustCompile(`[a-zA-ZÀ-ÿ]+`)

const minTokenLength = 3

// tokenize lowercases text and returns its non-stopword keyword tokens.
func tokenize(text string) []string {
	var tokens []string
	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len([]rune(word)) < minTokenLength || IsStopword(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// UniqueTokens returns the distinct non-stopword vocabulary across texts.
func UniqueTokens(texts []string) map[string]struct{} {
	unique := make(map[string]struct{})
	for _, text := range texts {
		for _, token := range tokenize(text) {
			unique[token] = struct{}{}
		}
	}
	return unique
}

// termCount tracks a term's frequency and the order it was first seen, so
// frequency ties resolve to earlier occurrences.
type termCount struct {
	term      string
	count     int
	firstSeen int
}

// docTerms returns each document's unigram+bigram terms over keyword tokens.
func docTerms(text string) []string {
	tokens := tokenize(text)
	terms := make([]string, 0, 2*len(tokens))
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// documentFrequencies counts, per term, how many documents contain it.
func documentFrequencies(texts []string) map[string]int {
	df := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range docTerms(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}
	return df
}

// rankTerms orders terms by descending frequency, ties broken by first
// occurrence.
func rankTerms(counts map[string]*termCount) []string {
	ranked := make([]*termCount, 0, len(counts))
	for _, tc := range counts {
		ranked = append(ranked, tc)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].firstSeen < ranked[j].firstSeen
	})
	terms := make([]string, len(ranked))
	for i, tc := range ranked {
		terms[i] = tc.term
	}
	return terms
}

// ExtractKeywordsSimple extracts up to topN keywords by raw term frequency
// with stopword filtering. Terms appearing only once are dropped.
func ExtractKeywordsSimple(texts []string, topN int) []string {
	counts := make(map[string]*termCount)
	position := 0
	for _, text := range texts {
		for _, token := range tokenize(text) {
			if tc, ok := counts[token]; ok {
				tc.count++
			} else {
				counts[token] = &termCount{term: token, count: 1, firstSeen: position}
			}
			position++
		}
	}

	var keywords []string
	for _, term := range rankTerms(counts) {
		if counts[term].count < 2 {
			continue
		}
		keywords = append(keywords, term)
		if len(keywords) == topN {
			break
		}
	}
	return keywords
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateKeywords drops stopwords, short tokens and purely numeric tokens.
func ValidateKeywords(keywords []string) []string {
	var valid []string
	for _, kw := range keywords {
		if IsStopword(kw) {
			continue
		}
		if len([]rune(kw)) < minTokenLength {
			continue
		}
		if isNumeric(kw) {
			continue
		}
		valid = append(valid, kw)
	}
	return valid
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func titleCase(phrase string) string {
	words := strings.Fields(phrase)
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}
