// Package embedding provides local embedding providers that need no model server.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// DefaultDimension is the vector size used when none is configured.
const DefaultDimension = 256

// Hashing maps text to a fixed-size vector with the hashing trick: every
// token is hashed into one of Dimension buckets with a hash-derived sign,
// and the result is L2-normalised. Identical input always yields the
// identical vector.
type Hashing struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewHashing creates a hashing embedder producing vectors of the given size.
func NewHashing(dimension int) (*Hashing, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dimension)
	}
	return &Hashing{
		dimension:    dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}, nil
}

// ID identifies the provider and its vector space.
func (h *Hashing) ID() string { return fmt.Sprintf("hashing:%d", h.dimension) }

// Dimension returns the size of produced vectors.
func (h *Hashing) Dimension() int { return h.dimension }

// Embed embeds each text independently.
func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *Hashing) vector(text string) []float32 {
	acc := make([]float64, h.dimension)
	for _, tok := range h.tokenize(text) {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(tok))
		sum := hasher.Sum64()

		bucket := int(sum % uint64(h.dimension))
		if sum>>63 == 1 {
			acc[bucket]--
		} else {
			acc[bucket]++
		}
	}

	norm := 0.0
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	vec := make([]float32, h.dimension)
	if norm == 0 {
		return vec
	}
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec
}

func (h *Hashing) tokenize(text string) []string {
	raw := h.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := h.stopwords[t]; stop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "it", "this", "that", "these", "those",
		"from", "what", "which", "who", "how", "do", "does",
		"o", "os", "um", "uma", "uns", "umas", "de", "do", "da", "dos", "das", "e", "que", "em", "no",
		"na", "nos", "nas", "ao", "para", "com", "por", "qual", "quais",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
