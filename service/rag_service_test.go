package service

import (
	"context"
	"strings"
	"testing"

	"github.com/openkms/docchat-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	chunks    []types.DocumentChunk
	distances []float32
	lastLimit int
}

func (s *fakeStore) BatchInsertChunks(ctx context.Context, chunks []types.DocumentChunk, embeddings [][]float32) error {
	return nil
}

func (s *fakeStore) DeleteByFile(ctx context.Context, fileName string) error { return nil }

func (s *fakeStore) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]types.DocumentChunk, []float32, error) {
	s.lastLimit = limit
	return s.chunks, s.distances, nil
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) { return int64(len(s.chunks)), nil }

func (s *fakeStore) Reset(ctx context.Context) error { return nil }

type fakeEmbedder struct{}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

type fakeAI struct {
	lastPrompt string
	answer     string
}

func (a *fakeAI) Chat(ctx context.Context, messages []types.Message) (*types.Message, error) {
	a.lastPrompt = messages[len(messages)-1].Content
	return &types.Message{Role: "assistant", Content: a.answer}, nil
}

func (a *fakeAI) ChatStream(ctx context.Context, messages []types.Message, handler types.StreamHandler) error {
	handler(a.answer)
	return nil
}

func TestRetrieveScores(t *testing.T) {
	store := &fakeStore{
		chunks: []types.DocumentChunk{
			{ID: "a_chunk_0", Content: "first", FileName: "a.docx"},
			{ID: "b_chunk_0", Content: "second", FileName: "b.docx"},
		},
		distances: []float32{0.2, 0.5},
	}
	rag := NewRAGService(store, &fakeEmbedder{}, &fakeAI{}, 5)

	docs, err := rag.Retrieve(context.Background(), "question", 0)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 5, store.lastLimit)
	assert.InDelta(t, 0.8, docs[0].Score, 1e-6)
	assert.InDelta(t, 0.5, docs[1].Score, 1e-6)
}

func TestBuildContext(t *testing.T) {
	rag := NewRAGService(&fakeStore{}, &fakeEmbedder{}, &fakeAI{}, 5)

	docs := []types.RetrievedDocument{
		{Chunk: types.DocumentChunk{FileName: "guide.docx", Kind: types.ChunkKindText, Content: "Text body"}},
		{Chunk: types.DocumentChunk{FileName: "guide (image)", Kind: types.ChunkKindOCR, Content: "Scanned text"}},
		{Chunk: types.DocumentChunk{Kind: types.ChunkKindText, Content: "Anonymous"}},
	}

	ctx := rag.BuildContext(docs)

	assert.Contains(t, ctx, "[Document 1: guide.docx]\nText body")
	assert.Contains(t, ctx, "[Document 2: guide (image) (image content)]\nScanned text")
	assert.Contains(t, ctx, "[Document 3: Unknown]\nAnonymous")
}

func TestBuildContextBudget(t *testing.T) {
	rag := NewRAGService(&fakeStore{}, &fakeEmbedder{}, &fakeAI{}, 5)

	big := strings.Repeat("x", 3900)
	docs := []types.RetrievedDocument{
		{Chunk: types.DocumentChunk{FileName: "a.docx", Kind: types.ChunkKindText, Content: big}},
		{Chunk: types.DocumentChunk{FileName: "b.docx", Kind: types.ChunkKindText, Content: big}},
	}

	ctx := rag.BuildContext(docs)

	assert.Contains(t, ctx, "a.docx")
	assert.NotContains(t, ctx, "b.docx")
}

func TestBuildContextBudgetMultibyte(t *testing.T) {
	rag := NewRAGService(&fakeStore{}, &fakeEmbedder{}, &fakeAI{}, 5)

	// 1500 hangul runes are 4500 bytes; the budget counts runes, so two
	// such documents still fit under the 4000-character cap.
	hangul := strings.Repeat("가", 1500)
	docs := []types.RetrievedDocument{
		{Chunk: types.DocumentChunk{FileName: "a.docx", Kind: types.ChunkKindText, Content: hangul}},
		{Chunk: types.DocumentChunk{FileName: "b.docx", Kind: types.ChunkKindText, Content: hangul}},
		{Chunk: types.DocumentChunk{FileName: "c.docx", Kind: types.ChunkKindText, Content: hangul}},
	}

	ctx := rag.BuildContext(docs)

	assert.Contains(t, ctx, "a.docx")
	assert.Contains(t, ctx, "b.docx")
	assert.NotContains(t, ctx, "c.docx")
}

func TestQueryNoDocuments(t *testing.T) {
	rag := NewRAGService(&fakeStore{}, &fakeEmbedder{}, &fakeAI{answer: "unused"}, 5)

	res, err := rag.Query(context.Background(), "anything", 0)

	require.NoError(t, err)
	assert.Equal(t, noDocumentsAnswer, res.Answer)
	assert.Empty(t, res.Sources)
}

func TestQuery(t *testing.T) {
	store := &fakeStore{
		chunks: []types.DocumentChunk{
			{ID: "a_chunk_0", Content: "alpha", FileName: "a.docx", Kind: types.ChunkKindText},
			{ID: "a_chunk_1", Content: "beta", FileName: "a.docx", Kind: types.ChunkKindText},
			{ID: "b_chunk_0", Content: "gamma", FileName: "b.docx", Kind: types.ChunkKindText},
			{ID: "b_chunk_1", Content: "delta", FileName: "b.docx", Kind: types.ChunkKindText},
		},
		distances: []float32{0.1, 0.2, 0.3, 0.4},
	}
	ai := &fakeAI{answer: "final answer"}
	rag := NewRAGService(store, &fakeEmbedder{}, ai, 5)

	res, err := rag.Query(context.Background(), "what is alpha?", 0)

	require.NoError(t, err)
	assert.Equal(t, "final answer", res.Answer)
	assert.Contains(t, ai.lastPrompt, "alpha")
	assert.Contains(t, ai.lastPrompt, "Question: what is alpha?")

	// Sources are deduplicated per file, best score first.
	require.Len(t, res.Sources, 2)
	assert.Equal(t, "a.docx", res.Sources[0].FileName)
	assert.InDelta(t, 0.9, res.Sources[0].Score, 1e-6)
	assert.Equal(t, "b.docx", res.Sources[1].FileName)
	assert.InDelta(t, 0.7, res.Sources[1].Score, 1e-6)

	// Retrieved documents are capped at three.
	assert.Len(t, res.RetrievedDocs, 3)
}

func TestQueryStream(t *testing.T) {
	store := &fakeStore{
		chunks: []types.DocumentChunk{
			{ID: "a_chunk_0", Content: "alpha", FileName: "a.docx", Kind: types.ChunkKindText},
		},
		distances: []float32{0.1},
	}
	ai := &fakeAI{answer: "streamed answer"}
	rag := NewRAGService(store, &fakeEmbedder{}, ai, 5)

	var got strings.Builder
	sources, err := rag.QueryStream(context.Background(), "what is alpha?", 0, func(delta string) {
		got.WriteString(delta)
	})

	require.NoError(t, err)
	assert.Equal(t, "streamed answer", got.String())
	require.Len(t, sources, 1)
	assert.Equal(t, "a.docx", sources[0].FileName)
}

func TestQueryStreamNoDocuments(t *testing.T) {
	rag := NewRAGService(&fakeStore{}, &fakeEmbedder{}, &fakeAI{answer: "unused"}, 5)

	var got strings.Builder
	sources, err := rag.QueryStream(context.Background(), "anything", 0, func(delta string) {
		got.WriteString(delta)
	})

	require.NoError(t, err)
	assert.Equal(t, noDocumentsAnswer, got.String())
	assert.Empty(t, sources)
}

func TestCollectSourcesRounding(t *testing.T) {
	docs := []types.RetrievedDocument{
		{Chunk: types.DocumentChunk{FileName: "a.docx", Kind: types.ChunkKindText}, Score: 0.87654},
	}

	sources := collectSources(docs)

	require.Len(t, sources, 1)
	assert.Equal(t, float32(0.877), sources[0].Score)
}
