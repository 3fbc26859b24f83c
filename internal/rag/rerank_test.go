package rag

import (
	"math"
	"strings"
	"testing"
)

func TestLexicalScoreBasicMatch(t *testing.T) {
	query := "Project updates"
	chunk := "The project timeline lists recent updates for the project. These updates cover scope."
	score := lexicalScore(query, chunk, "planning")

	if score <= 0 {
		t.Fatalf("expected score to be positive, got %f", score)
	}
	if score > maxLexicalScore {
		t.Fatalf("score should be clamped to maxLexicalScore, got %f", score)
	}
}

func TestLexicalScoreFileNameBonus(t *testing.T) {
	query := "budget"
	chunk := "General context without the keyword."
	score := lexicalScore(query, chunk, "budget_2025")

	if math.Abs(float64(score-fileNameMatchBonus)) > 0.0001 {
		t.Fatalf("expected file name bonus only (%f), got %f", fileNameMatchBonus, score)
	}
}

func TestLexicalScoreStopwordsRemoved(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"english", "the and of"},
		{"portuguese", "o que de uma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if score := lexicalScore(tt.query, tt.query, ""); score != 0 {
				t.Fatalf("expected score 0 when query tokens are only stopwords, got %f", score)
			}
		})
	}
}

func TestLexicalScoreNormalization(t *testing.T) {
	query := "project"
	chunk := "project " + strings.Repeat(" filler", 200)
	score := lexicalScore(query, chunk, "")

	if score <= 0 {
		t.Fatalf("expected normalized score to stay positive, got %f", score)
	}
	if score > maxLexicalScore {
		t.Fatalf("expected score to be clamped to %f, got %f", maxLexicalScore, score)
	}
}

func TestLexicalScoreEmptyChunk(t *testing.T) {
	if score := lexicalScore("grass", "", "grass"); score != 0 {
		t.Errorf("lexicalScore() = %f, want 0 for empty chunk", score)
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Relatório-Final, v2!")
	want := []string{"relatório", "final", "v2"}
	if len(got) != len(want) {
		t.Fatalf("tokenize() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tokenize()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
