package rag

import (
	"strings"
	"unicode"
)

const (
	lexicalLengthScale = float32(10.0)
	maxLexicalScore    = float32(0.4)
	fileNameMatchBonus = float32(0.1)
)

var lexicalStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {}, "what": {}, "which": {},
	"o": {}, "os": {}, "um": {}, "uma": {}, "de": {}, "do": {}, "da": {}, "e": {}, "que": {},
}

// lexicalScore measures how many query terms occur in a chunk, normalised by
// chunk length and clamped to [0, maxLexicalScore]. Query terms found in the
// source file name add a small bonus.
func lexicalScore(query, chunkText, fileName string) float32 {
	queryTokens := filterStopwords(tokenize(query))
	if len(queryTokens) == 0 {
		return 0
	}

	chunkTokens := tokenize(chunkText)
	if len(chunkTokens) == 0 {
		return 0
	}

	chunkFreq := make(map[string]int, len(chunkTokens))
	for _, token := range chunkTokens {
		chunkFreq[token]++
	}

	var rawMatches int
	for _, token := range queryTokens {
		rawMatches += chunkFreq[token]
	}

	score := (float32(rawMatches) / (1 + float32(len(chunkTokens)))) * lexicalLengthScale

	if nameTokens := tokenize(fileName); len(nameTokens) > 0 {
		nameSet := make(map[string]struct{}, len(nameTokens))
		for _, token := range nameTokens {
			nameSet[token] = struct{}{}
		}
		for _, token := range queryTokens {
			if _, ok := nameSet[token]; ok {
				score += fileNameMatchBonus
			}
		}
	}

	return min(max(score, 0), maxLexicalScore)
}

func tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	return strings.Fields(builder.String())
}

func filterStopwords(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, isStop := lexicalStopwords[token]; isStop {
			continue
		}
		result = append(result, token)
	}
	return result
}
