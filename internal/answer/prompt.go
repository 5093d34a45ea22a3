// Package answer generates grounded answers from assembled chunk context.
package answer

import (
	"fmt"
	"strings"

	"github.com/mediamind/mediamind/internal/model"
)

// InsufficientContextSentinel is the exact sentence the model is instructed
// to produce when the provided context cannot answer the question. Detection
// of insufficient answers matches against it.
const InsufficientContextSentinel = "I cannot answer this question based on the provided documents."

const systemPrompt = `You are a careful assistant that answers questions using ONLY the provided document excerpts.

Rules:
- Base your answer strictly on the excerpts. Do not use outside knowledge.
- If the excerpts do not contain the information needed, reply with exactly: "` + InsufficientContextSentinel + `"
- Be concise and factual. When the excerpts disagree, say so.`

// BuildPrompt renders the question with its numbered context excerpts
func BuildPrompt(question string, used []model.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Document excerpts:\n\n")
	for i, c := range used {
		fmt.Fprintf(&b, "[Excerpt %d]\n%s\n\n", i+1, strings.TrimSpace(c.Chunk.Text))
	}
	b.WriteString("Question: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// IsInsufficient reports whether the generated text declares the context
// insufficient. The check tolerates surrounding prose and quoting.
func IsInsufficient(text string) bool {
	return strings.Contains(text, InsufficientContextSentinel)
}
