// Package rag runs the retrieval-augmented question-answering flow:
// retrieve the top-k chunks for a question, render them into the prompt
// template, and return the model's answer.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/talentsift/screener/internal/domain"
)

// BlankQuestionMessage is returned for empty input without touching the
// retriever or the model.
const BlankQuestionMessage = "Please enter a question."

// Orchestrator holds the collaborators for one question-answer cycle. It
// carries no per-call state; every Answer call is independent.
type Orchestrator struct {
	index    domain.VectorIndex
	llm      domain.TextGenerator
	k        int
	template string
	log      *slog.Logger
}

func NewOrchestrator(index domain.VectorIndex, llm domain.TextGenerator, k int, log *slog.Logger) *Orchestrator {
	if k <= 0 {
		k = 5
	}
	return &Orchestrator{
		index:    index,
		llm:      llm,
		k:        k,
		template: HRPromptTemplate,
		log:      log,
	}
}

// Answer runs a single question through retrieve → render → generate and
// returns the result as display text. Errors from the retriever or the
// model are converted to a user-visible error string at this boundary so
// the front end never crashes mid-session.
func (o *Orchestrator) Answer(ctx context.Context, question string) string {
	if strings.TrimSpace(question) == "" {
		return BlankQuestionMessage
	}

	answer, err := o.ask(ctx, question)
	if err != nil {
		o.log.Error("question answering failed", "error", err)
		return fmt.Sprintf("Error: %v", err)
	}
	return answer
}

func (o *Orchestrator) ask(ctx context.Context, question string) (string, error) {
	chunks, err := o.index.Retrieve(ctx, question, o.k)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	o.log.Info("retrieved context", "question", question, "chunks", len(chunks))

	prompt := RenderPrompt(o.template, BuildContext(chunks), question)

	answer, err := o.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return answer, nil
}
