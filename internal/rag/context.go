package rag

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/index"
)

// MaxExcerptRunes is the longest chunk text placed in the context.
const MaxExcerptRunes = 300

// TruncationMarker ends an excerpt that was cut.
const TruncationMarker = "..."

var citationPattern = regexp.MustCompile(`\[(\d{1,2})\]`)

// BuildContext renders hits as numbered excerpts separated by blank lines:
//
//	[1] report.pdf (page 2, chunk 0)
//	<text>
func BuildContext(hits []index.Hit) string {
	var b strings.Builder
	for i, h := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(excerptHeader(i+1, h))
		b.WriteByte('\n')
		b.WriteString(truncate(h.Chunk.Text, MaxExcerptRunes))
	}
	return b.String()
}

func excerptHeader(rank int, h index.Hit) string {
	c := h.Chunk
	if c.Source.Source.Format == domain.FormatPDF {
		return fmt.Sprintf("[%d] %s (page %d, chunk %d)", rank, c.SourceName(), c.Source.Segment+1, c.Seq)
	}
	return fmt.Sprintf("[%d] %s (chunk %d)", rank, c.SourceName(), c.Seq)
}

// truncate cuts text to at most limit runes, appending TruncationMarker only
// when something was removed.
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit]) + TruncationMarker
}

// citedRanks returns the excerpt numbers in 1..n that answer refers to as "[k]".
func citedRanks(answer string, n int) map[int]bool {
	cited := make(map[int]bool)
	for _, m := range citationPattern.FindAllStringSubmatch(answer, -1) {
		rank, err := strconv.Atoi(m[1])
		if err != nil || rank < 1 || rank > n {
			continue
		}
		cited[rank] = true
	}
	return cited
}
