package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/talentsift/screener/internal/domain"
	"github.com/talentsift/screener/internal/pinecone"
)

type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 0, 0}, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

type fakeIndexClient struct {
	ensureCalls int
	upserted    [][]pinecone.Vector
	matches     []pinecone.Match
	queryErr    error
	upsertErr   error
}

func (f *fakeIndexClient) EnsureIndex(ctx context.Context, spec pinecone.IndexSpec) (string, error) {
	f.ensureCalls++
	return "test-host", nil
}

func (f *fakeIndexClient) Upsert(ctx context.Context, host string, vectors []pinecone.Vector) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.upserted = append(f.upserted, vectors)
	return len(vectors), nil
}

func (f *fakeIndexClient) Query(ctx context.Context, host string, vector []float32, topK int) ([]pinecone.Match, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if topK < len(f.matches) {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func testGateway(e domain.Embedder, c indexClient) *Gateway {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewGateway(e, c, "resumes-index", "aws", "us-east-1", log)
}

func TestEnsureIndex_Idempotent(t *testing.T) {
	client := &fakeIndexClient{}
	g := testGateway(&fakeEmbedder{}, client)

	if err := g.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.EnsureIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.ensureCalls != 1 {
		t.Errorf("EnsureIndex hit the control plane %d times, want 1", client.ensureCalls)
	}
}

func TestUpsert_EmbedsAndWrites(t *testing.T) {
	client := &fakeIndexClient{}
	emb := &fakeEmbedder{}
	g := testGateway(emb, client)

	chunks := []domain.Chunk{
		{Content: "Alice knows Django.", Metadata: domain.Metadata{Source: "alice_resume.pdf", Page: 0}},
		{Content: "Bob knows pandas.", Metadata: domain.Metadata{Source: "bob_resume.pdf", Page: 1}},
	}
	n, err := g.Upsert(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("upserted = %d, want 2", n)
	}
	if emb.calls != 2 {
		t.Errorf("embedder called %d times, want 2", emb.calls)
	}
	if len(client.upserted) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(client.upserted))
	}

	batch := client.upserted[0]
	ids := map[string]bool{}
	for i, v := range batch {
		if v.ID == "" {
			t.Errorf("vector %d: empty id", i)
		}
		ids[v.ID] = true
		if v.Metadata["text"] != chunks[i].Content {
			t.Errorf("vector %d: text metadata = %v", i, v.Metadata["text"])
		}
		if v.Metadata["source"] != chunks[i].Metadata.Source {
			t.Errorf("vector %d: source metadata = %v", i, v.Metadata["source"])
		}
	}
	if len(ids) != 2 {
		t.Error("expected unique record ids")
	}
}

func TestUpsert_EmbedErrorSurfaces(t *testing.T) {
	client := &fakeIndexClient{}
	g := testGateway(&fakeEmbedder{err: errors.New("hf unavailable")}, client)

	_, err := g.Upsert(context.Background(), []domain.Chunk{{Content: "x"}})
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(client.upserted) != 0 {
		t.Error("nothing should be written after an embedding failure")
	}
}

func TestUpsert_WriteErrorSurfaces(t *testing.T) {
	client := &fakeIndexClient{upsertErr: errors.New("partial network failure")}
	g := testGateway(&fakeEmbedder{}, client)

	if _, err := g.Upsert(context.Background(), []domain.Chunk{{Content: "x"}}); err == nil {
		t.Fatal("expected the write failure to surface")
	}
}

func TestRetrieve_MapsMatches(t *testing.T) {
	client := &fakeIndexClient{
		matches: []pinecone.Match{
			{ID: "a", Score: 0.9, Metadata: map[string]any{"text": "Alice", "source": "alice_resume.pdf", "page": float64(0)}},
			{ID: "b", Score: 0.4, Metadata: map[string]any{"text": "Bob", "source": "bob_resume.pdf", "page": float64(1)}},
		},
	}
	g := testGateway(&fakeEmbedder{}, client)

	results, err := g.Retrieve(context.Background(), "Who knows Django?", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.Content != "Alice" || results[0].Score != 0.9 {
		t.Errorf("first result = %+v", results[0])
	}
	if results[1].Chunk.Metadata.Source != "bob_resume.pdf" || results[1].Chunk.Metadata.Page != 1 {
		t.Errorf("second result metadata = %+v", results[1].Chunk.Metadata)
	}
	if results[0].Score < results[1].Score {
		t.Error("results should be ranked by descending similarity")
	}
}

func TestRetrieve_AtMostK(t *testing.T) {
	client := &fakeIndexClient{
		matches: []pinecone.Match{
			{ID: "a", Score: 0.9, Metadata: map[string]any{"text": "Alice"}},
			{ID: "b", Score: 0.8, Metadata: map[string]any{"text": "Bob"}},
			{ID: "c", Score: 0.7, Metadata: map[string]any{"text": "Carol"}},
		},
	}
	g := testGateway(&fakeEmbedder{}, client)

	results, err := g.Retrieve(context.Background(), "anyone", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestRetrieve_InvalidK(t *testing.T) {
	g := testGateway(&fakeEmbedder{}, &fakeIndexClient{})
	for _, k := range []int{0, -1} {
		if _, err := g.Retrieve(context.Background(), "q", k); err == nil {
			t.Errorf("expected an error for k=%d", k)
		}
	}
}

func TestRetrieve_QueryErrorSurfaces(t *testing.T) {
	client := &fakeIndexClient{queryErr: errors.New("rate limited")}
	g := testGateway(&fakeEmbedder{}, client)

	if _, err := g.Retrieve(context.Background(), "q", 5); err == nil {
		t.Fatal("expected an error")
	}
}
