// Package responder turns a question and its retrieved context into an answer.
package responder

import (
	"context"
	"fmt"
)

// Prompt is everything a responder needs to answer one question.
type Prompt struct {
	SystemInstruction string
	Context           string
	Question          string
}

// DefaultSystemInstruction asks the model to stay within the retrieved excerpts.
const DefaultSystemInstruction = "You are an internal assistant for a team. Answer the question using only " +
	"the numbered document excerpts provided. Cite excerpts by their number. If the excerpts do not " +
	"contain the answer, say that the documents do not cover it."

// DefaultTemplateNote fills the answer slot of the template responder.
const DefaultTemplateNote = "(no generative model is configured; the excerpts above are the closest matches)"

// Template renders the retrieved context into a fixed answer without any
// generation. It never fails.
type Template struct {
	note string
}

// NewTemplate creates a Template responder. An empty note uses DefaultTemplateNote.
func NewTemplate(note string) *Template {
	if note == "" {
		note = DefaultTemplateNote
	}
	return &Template{note: note}
}

// Respond returns the context wrapped in the fixed answer format.
func (t *Template) Respond(_ context.Context, p Prompt) (string, error) {
	return fmt.Sprintf("Based on the documents:\n%s\n\nAnswer: %s", p.Context, t.note), nil
}
