package index

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"
	"unicode/utf8"

	"mga-chatbot/internal/domain"
)

// TokensPerRune approximates token counts from character counts (4 chars per token).
const TokensPerRune = 4.0

// BuildStats describes one index build.
type BuildStats struct {
	Partition   string          `json:"partition"`
	Fingerprint string          `json:"fingerprint"`
	Provider    string          `json:"provider"`
	Backend     string          `json:"backend"`
	Files       int             `json:"files"`
	Documents   int             `json:"documents"`
	Chunks      int             `json:"chunks"`
	Skipped     []string        `json:"skipped,omitempty"`
	TokenStats  ChunkTokenStats `json:"chunk_token_stats"`
	// IndexVersion identifies the (provider, file set) pair the index was built from.
	IndexVersion string        `json:"index_version"`
	BuiltAt      time.Time     `json:"built_at"`
	Duration     time.Duration `json:"duration_ns"`
}

// ChunkTokenStats contains statistics about estimated token counts in chunks.
type ChunkTokenStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
	P95  int     `json:"p95"`
}

func chunkTokenStats(chunks []domain.Chunk) ChunkTokenStats {
	counts := make([]int, 0, len(chunks))
	for _, c := range chunks {
		counts = append(counts, estimateTokens(c.Text))
	}
	return computeTokenStats(counts)
}

func estimateTokens(text string) int {
	n := int(math.Round(float64(utf8.RuneCountInString(text)) / TokensPerRune))
	if n < 1 {
		return 1
	}
	return n
}

// computeTokenStats computes min, max, mean, and p95 from token counts.
func computeTokenStats(tokenCounts []int) ChunkTokenStats {
	if len(tokenCounts) == 0 {
		return ChunkTokenStats{}
	}

	sorted := make([]int, len(tokenCounts))
	copy(sorted, tokenCounts)
	sort.Ints(sorted)

	sum := 0
	for _, count := range sorted {
		sum += count
	}
	mean := float64(sum) / float64(len(sorted))

	p95Index := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	if p95Index < 0 {
		p95Index = 0
	}

	return ChunkTokenStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100,
		P95:  sorted[p95Index],
	}
}

func indexVersion(provider, fingerprint string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", provider, fingerprint)))
	return hex.EncodeToString(hash[:])[:16]
}
