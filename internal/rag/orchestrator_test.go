package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/talentsift/screener/internal/domain"
)

type stubIndex struct {
	chunks    []domain.ScoredChunk
	err       error
	calls     int
	lastQuery string
	lastK     int
}

func (s *stubIndex) EnsureIndex(ctx context.Context) error { return nil }

func (s *stubIndex) Upsert(ctx context.Context, chunks []domain.Chunk) (int, error) {
	return len(chunks), nil
}

func (s *stubIndex) Retrieve(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	s.calls++
	s.lastQuery = query
	s.lastK = k
	return s.chunks, s.err
}

type stubGenerator struct {
	answer  string
	err     error
	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnswer_BlankQuestionShortCircuits(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		index := &stubIndex{}
		gen := &stubGenerator{}
		o := NewOrchestrator(index, gen, 5, testLogger())

		got := o.Answer(context.Background(), q)
		if got != BlankQuestionMessage {
			t.Errorf("Answer(%q) = %q, want %q", q, got, BlankQuestionMessage)
		}
		if index.calls != 0 {
			t.Errorf("Answer(%q): retriever was called %d times", q, index.calls)
		}
		if gen.calls != 0 {
			t.Errorf("Answer(%q): model was called %d times", q, gen.calls)
		}
	}
}

func TestAnswer_PromptContainsContextAndQuestion(t *testing.T) {
	aliceChunk := "Alice is a Python developer with 5 years experience in Django and FastAPI."
	question := "Which candidate has Django experience?"

	index := &stubIndex{
		chunks: []domain.ScoredChunk{
			{Chunk: domain.Chunk{Content: aliceChunk, Metadata: domain.Metadata{Source: "alice_resume.pdf"}}, Score: 0.92},
		},
	}
	gen := &stubGenerator{answer: "Alice does."}
	o := NewOrchestrator(index, gen, 5, testLogger())

	got := o.Answer(context.Background(), question)
	if got != "Alice does." {
		t.Errorf("answer = %q, want the stub output verbatim", got)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt, aliceChunk) {
		t.Errorf("prompt missing retrieved chunk text:\n%s", prompt)
	}
	if !strings.Contains(prompt, question) {
		t.Errorf("prompt missing question text:\n%s", prompt)
	}
}

func TestAnswer_DefaultKIsFive(t *testing.T) {
	index := &stubIndex{}
	gen := &stubGenerator{answer: "ok"}
	o := NewOrchestrator(index, gen, 0, testLogger())

	o.Answer(context.Background(), "Who knows Python?")
	if index.lastK != 5 {
		t.Errorf("k = %d, want 5", index.lastK)
	}
}

func TestAnswer_FreshCycleEachCall(t *testing.T) {
	index := &stubIndex{}
	gen := &stubGenerator{answer: "ok"}
	o := NewOrchestrator(index, gen, 5, testLogger())

	o.Answer(context.Background(), "Who knows Python?")
	o.Answer(context.Background(), "Who knows Go?")

	if index.calls != 2 {
		t.Errorf("retriever called %d times, want 2", index.calls)
	}
	if gen.calls != 2 {
		t.Errorf("model called %d times, want 2", gen.calls)
	}
	if index.lastQuery != "Who knows Go?" {
		t.Errorf("last query = %q, want the second question", index.lastQuery)
	}
}

func TestAnswer_RetrieveErrorBecomesErrorString(t *testing.T) {
	index := &stubIndex{err: errors.New("index unreachable")}
	gen := &stubGenerator{}
	o := NewOrchestrator(index, gen, 5, testLogger())

	got := o.Answer(context.Background(), "Who knows Python?")
	if !strings.HasPrefix(got, "Error: ") {
		t.Errorf("answer = %q, want an Error: string", got)
	}
	if !strings.Contains(got, "index unreachable") {
		t.Errorf("answer = %q, want the cause included", got)
	}
	if gen.calls != 0 {
		t.Errorf("model was called %d times after a retrieval failure", gen.calls)
	}
}

func TestAnswer_GenerateErrorBecomesErrorString(t *testing.T) {
	index := &stubIndex{}
	gen := &stubGenerator{err: errors.New("model timeout")}
	o := NewOrchestrator(index, gen, 5, testLogger())

	got := o.Answer(context.Background(), "Who knows Python?")
	if !strings.HasPrefix(got, "Error: ") {
		t.Errorf("answer = %q, want an Error: string", got)
	}
}

func TestHRPromptTemplate_HasSlots(t *testing.T) {
	if !strings.Contains(HRPromptTemplate, "{context}") {
		t.Error("template missing {context} slot")
	}
	if !strings.Contains(HRPromptTemplate, "{input}") {
		t.Error("template missing {input} slot")
	}
}

func TestBuildContext_RankOrder(t *testing.T) {
	chunks := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Content: "first"}, Score: 0.9},
		{Chunk: domain.Chunk{Content: "second"}, Score: 0.5},
	}
	got := BuildContext(chunks)
	if got != "first\n\nsecond" {
		t.Errorf("BuildContext = %q", got)
	}
}
