package rag

import (
	"strings"

	"github.com/talentsift/screener/internal/domain"
)

// HRPromptTemplate instructs the model to answer only from the retrieved
// resume text. {context} and {input} are filled per question.
const HRPromptTemplate = "You are an expert HR assistant. " +
	"Answer based ONLY on the provided resumes:\n" +
	"Context: {context}\n\n" +
	"Question: {input}"

// RenderPrompt substitutes the retrieved context and the question into the
// template's {context} and {input} slots.
func RenderPrompt(template, context, input string) string {
	out := strings.ReplaceAll(template, "{context}", context)
	return strings.ReplaceAll(out, "{input}", input)
}

// BuildContext concatenates retrieved chunk contents in rank order.
func BuildContext(chunks []domain.ScoredChunk) string {
	var sb strings.Builder
	for i, c := range chunks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(c.Chunk.Content)
	}
	return sb.String()
}
