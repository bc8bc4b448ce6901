package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/openkms/docchat-be/database"
	"github.com/openkms/docchat-be/types"
)

const (
	DefaultTopK     = 5
	maxContextChars = 4000
)

const noDocumentsAnswer = "관련된 문서를 찾을 수 없습니다. 다른 질문을 시도해보세요."

// RAGService retrieves similar chunks for a question and asks the LLM to
// answer from them.
type RAGService struct {
	store    database.VectorDatabase
	embedder Embedder
	ai       AIService
	topK     int
}

func NewRAGService(store database.VectorDatabase, embedder Embedder, ai AIService, topK int) *RAGService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RAGService{
		store:    store,
		embedder: embedder,
		ai:       ai,
		topK:     topK,
	}
}

// Retrieve embeds the query and returns the topK most similar chunks
// with scores (1 - cosine distance).
func (s *RAGService) Retrieve(ctx context.Context, query string, topK int) ([]types.RetrievedDocument, error) {
	if topK <= 0 {
		topK = s.topK
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, distances, err := s.store.SearchSimilar(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	docs := make([]types.RetrievedDocument, 0, len(chunks))
	for i, chunk := range chunks {
		var score float32
		if i < len(distances) {
			score = 1 - distances[i]
		}
		docs = append(docs, types.RetrievedDocument{
			Chunk: chunk,
			Score: score,
		})
	}
	return docs, nil
}

// BuildContext renders retrieved chunks as numbered document blocks,
// stopping once the context budget is spent.
func (s *RAGService) BuildContext(docs []types.RetrievedDocument) string {
	var parts []string
	currentLength := 0

	for i, doc := range docs {
		fileName := doc.Chunk.FileName
		if fileName == "" {
			fileName = "Unknown"
		}

		var item string
		if doc.Chunk.Kind == types.ChunkKindOCR {
			item = fmt.Sprintf("[Document %d: %s (image content)]\n%s\n", i+1, fileName, doc.Chunk.Content)
		} else {
			item = fmt.Sprintf("[Document %d: %s]\n%s\n", i+1, fileName, doc.Chunk.Content)
		}

		// The budget counts characters, not bytes; hangul is 3 bytes
		// per rune and would otherwise shrink the context to a third.
		itemLength := utf8.RuneCountInString(item)
		if currentLength+itemLength > maxContextChars {
			break
		}
		parts = append(parts, item)
		currentLength += itemLength
	}

	return strings.Join(parts, "\n")
}

func (s *RAGService) buildPrompt(docs []types.RetrievedDocument, query string) string {
	return fmt.Sprintf(
		"The following content was retrieved from internal company documents:\n\n%s\n\nQuestion: %s\n\nAnswer the question based on the document content above.",
		s.BuildContext(docs), query)
}

// Query runs the full pipeline: retrieve, build context, generate.
func (s *RAGService) Query(ctx context.Context, query string, topK int) (*types.AskResponse, error) {
	docs, err := s.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return &types.AskResponse{
			Question: query,
			Answer:   noDocumentsAnswer,
			Sources:  []types.Source{},
		}, nil
	}

	answer, err := s.ai.Chat(ctx, []types.Message{{Role: "user", Content: s.buildPrompt(docs, query)}})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	retrieved := docs
	if len(retrieved) > 3 {
		retrieved = retrieved[:3]
	}

	return &types.AskResponse{
		Question:      query,
		Answer:        answer.Content,
		Sources:       collectSources(docs),
		RetrievedDocs: retrieved,
	}, nil
}

// QueryStream runs the same pipeline but delivers the answer through the
// handler as it is generated. Sources are returned once the stream ends.
func (s *RAGService) QueryStream(ctx context.Context, query string, topK int, handler types.StreamHandler) ([]types.Source, error) {
	docs, err := s.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		handler(noDocumentsAnswer)
		return []types.Source{}, nil
	}

	if err := s.ai.ChatStream(ctx, []types.Message{{Role: "user", Content: s.buildPrompt(docs, query)}}, handler); err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}
	return collectSources(docs), nil
}

// collectSources deduplicates source documents, keeping the best score.
func collectSources(docs []types.RetrievedDocument) []types.Source {
	seen := make(map[string]bool)
	sources := make([]types.Source, 0, len(docs))
	for _, doc := range docs {
		fileName := doc.Chunk.FileName
		if fileName == "" {
			fileName = "Unknown"
		}
		key := fileName + "|" + doc.Chunk.Kind
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, types.Source{
			FileName: fileName,
			Kind:     doc.Chunk.Kind,
			Score:    roundScore(doc.Score),
		})
	}
	return sources
}

func roundScore(score float32) float32 {
	return float32(math.Round(float64(score)*1000) / 1000)
}
